package http

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/relaycore/relay-server/internal/core"
	"github.com/relaycore/relay-server/internal/proto"
)

// dispatch maps one decoded inbound envelope onto the session's router.
// Frames with unparseable payloads or unknown types are dropped here.
func dispatch(ctx context.Context, router *core.Router, inbound proto.Inbound, logger zerolog.Logger) {
	switch inbound.Type {
	case proto.InboundTypeChatMessage:
		var msg proto.ChatMessageData
		if err := json.Unmarshal(inbound.Data, &msg); err != nil {
			logger.Warn().Err(err).Msg("malformed chat_message payload dropped")
			return
		}
		router.SendChat(ctx, msg.Recipient, msg.Message)
	case proto.InboundTypeReadReceipt:
		var receipt proto.ReadReceiptData
		if err := json.Unmarshal(inbound.Data, &receipt); err != nil {
			logger.Warn().Err(err).Msg("malformed read_receipt payload dropped")
			return
		}
		router.RelayReadReceipt(receipt.MessageID, receipt.Sender)
	default:
		logger.Debug().Str("type", inbound.Type).Msg("unknown frame type ignored")
	}
}

func outboundFromEvent(ev *core.Event) proto.Outbound {
	switch ev.Kind {
	case core.EventUserList:
		return proto.Outbound{
			Type: proto.OutboundTypeUserList,
			Data: proto.UserListData{Users: ev.Users},
		}
	case core.EventMessageSentAck:
		return proto.Outbound{
			Type: proto.OutboundTypeMessageSentAck,
			Data: proto.MessageSentAckData{MessageID: ev.MessageID, Recipient: ev.Recipient},
		}
	case core.EventChatMessage:
		return proto.Outbound{
			Type: proto.OutboundTypeChatMessage,
			Data: proto.DeliveredMessageData{
				MessageID: ev.Message.ID,
				Sender:    ev.Message.Sender,
				Message:   ev.Message.Text,
				TS:        ev.Message.CreatedAt.Unix(),
			},
		}
	case core.EventMessageRead:
		return proto.Outbound{
			Type: proto.OutboundTypeMessageRead,
			Data: proto.MessageReadData{MessageID: ev.MessageID},
		}
	default:
		return proto.Outbound{Type: "event"}
	}
}
