package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/relaycore/relay-server/internal/config"
	"github.com/relaycore/relay-server/internal/core"
	"github.com/relaycore/relay-server/internal/proto"
	"github.com/relaycore/relay-server/internal/store"
)

// stubStore is an in-memory MessageStore for transport tests.
type stubStore struct {
	mu     sync.Mutex
	nextID int64
	fail   bool
	failOn string // body that triggers a storage failure
	saved  []store.Message
}

func (s *stubStore) SaveMessage(_ context.Context, sender, recipient, body string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail || (s.failOn != "" && body == s.failOn) {
		return 0, store.ErrUnavailable
	}
	s.nextID++
	s.saved = append(s.saved, store.Message{
		ID:        s.nextID,
		Sender:    sender,
		Recipient: recipient,
		Body:      body,
		CreatedAt: time.Now(),
	})
	return s.nextID, nil
}

func (s *stubStore) History(_ context.Context, userA, userB string, limit int) ([]store.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return nil, store.ErrUnavailable
	}
	var out []store.Message
	for _, m := range s.saved {
		if (m.Sender == userA && m.Recipient == userB) || (m.Sender == userB && m.Recipient == userA) {
			out = append(out, m)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (s *stubStore) Close() error { return nil }

func startTestServer(t *testing.T) (*httptest.Server, *stubStore) {
	return startTestServerWithFrameLimit(t, 0)
}

func startTestServerWithFrameLimit(t *testing.T, frameLimit int) (*httptest.Server, *stubStore) {
	t.Helper()

	logger := zerolog.Nop()
	st := &stubStore{}
	registry := core.NewRegistry()
	broadcaster := core.NewBroadcaster(registry, &logger)

	server := NewServer(config.Config{
		Addr:              ":0",
		ReadHeaderTimeout: time.Second,
		ShutdownTimeout:   time.Second,
		HistoryLimit:      50,
		SessionBuffer:     32,
		FrameLimit:        frameLimit,
	}, registry, broadcaster, st, &logger)

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return ts, st
}

func dialUser(ctx context.Context, t *testing.T, ts *httptest.Server, username string) *websocket.Conn {
	t.Helper()

	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws/" + username
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", username, err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "done") })
	return conn
}

type frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// readFrameOfType reads frames until one of the wanted type arrives, skipping
// user_list frames that interleave with chat traffic.
func readFrameOfType(ctx context.Context, t *testing.T, conn *websocket.Conn, wanted string, out any) {
	t.Helper()

	for {
		var f frame
		if err := wsjson.Read(ctx, conn, &f); err != nil {
			t.Fatalf("read frame: %v", err)
		}
		if f.Type == wanted {
			if out != nil {
				if err := json.Unmarshal(f.Data, out); err != nil {
					t.Fatalf("unmarshal %s: %v", wanted, err)
				}
			}
			return
		}
		if f.Type != proto.OutboundTypeUserList {
			t.Fatalf("expected frame %q, got %q", wanted, f.Type)
		}
	}
}

func readUserList(ctx context.Context, t *testing.T, conn *websocket.Conn) []string {
	t.Helper()

	var data proto.UserListData
	readFrameOfType(ctx, t, conn, proto.OutboundTypeUserList, &data)
	return data.Users
}

func sendFrame(ctx context.Context, t *testing.T, conn *websocket.Conn, frameType string, data any) {
	t.Helper()

	payload, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal %s: %v", frameType, err)
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: frameType, Data: payload}); err != nil {
		t.Fatalf("write %s: %v", frameType, err)
	}
}
