package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/relaycore/relay-server/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_chat: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket base address")
	user := flag.String("user", "cli-user", "username")
	flag.Parse()

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr+"/"+*user, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	fmt.Printf("Connected to %s as %s\n", *addr, *user)
	fmt.Println("Send with '@recipient message'. Ctrl+C to exit.")

	go func() {
		defer cancel()
		readLoop(ctx, conn)
	}()

	writeLoop(ctx, conn)

	stop()
	cancel()
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	return nil
}

func readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		var outbound struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		}
		if err := wsjson.Read(ctx, conn, &outbound); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			log.Printf("read error: %v", err)
			return
		}

		switch outbound.Type {
		case proto.OutboundTypeUserList:
			var evt proto.UserListData
			if err := json.Unmarshal(outbound.Data, &evt); err != nil {
				log.Printf("unmarshal user_list: %v", err)
				continue
			}
			fmt.Printf("online: %s\n", strings.Join(evt.Users, ", "))
		case proto.OutboundTypeChatMessage:
			var evt proto.DeliveredMessageData
			if err := json.Unmarshal(outbound.Data, &evt); err != nil {
				log.Printf("unmarshal chat_message: %v", err)
				continue
			}
			fmt.Printf("%s: %s\n", evt.Sender, evt.Message)

			// Confirm we have seen it.
			receipt, _ := json.Marshal(proto.ReadReceiptData{MessageID: evt.MessageID, Sender: evt.Sender})
			if err := wsjson.Write(ctx, conn, proto.Inbound{Type: proto.InboundTypeReadReceipt, Data: receipt}); err != nil {
				log.Printf("send read receipt: %v", err)
				return
			}
		case proto.OutboundTypeMessageSentAck:
			var evt proto.MessageSentAckData
			if err := json.Unmarshal(outbound.Data, &evt); err != nil {
				log.Printf("unmarshal message_sent_ack: %v", err)
				continue
			}
			fmt.Printf("(sent to %s, id %d)\n", evt.Recipient, evt.MessageID)
		case proto.OutboundTypeMessageRead:
			var evt proto.MessageReadData
			if err := json.Unmarshal(outbound.Data, &evt); err != nil {
				log.Printf("unmarshal message_read: %v", err)
				continue
			}
			fmt.Printf("(message %d read)\n", evt.MessageID)
		default:
			log.Printf("unknown frame type %q", outbound.Type)
		}
	}
}

func writeLoop(ctx context.Context, conn *websocket.Conn) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "@") {
			fmt.Println("usage: @recipient message")
			continue
		}
		parts := strings.SplitN(strings.TrimPrefix(line, "@"), " ", 2)
		if len(parts) != 2 || parts[0] == "" || strings.TrimSpace(parts[1]) == "" {
			fmt.Println("usage: @recipient message")
			continue
		}

		payload, err := json.Marshal(proto.ChatMessageData{Recipient: parts[0], Message: parts[1]})
		if err != nil {
			log.Printf("marshal chat message: %v", err)
			continue
		}
		if err := wsjson.Write(ctx, conn, proto.Inbound{Type: proto.InboundTypeChatMessage, Data: payload}); err != nil {
			log.Printf("send: %v", err)
			return
		}
	}
}
