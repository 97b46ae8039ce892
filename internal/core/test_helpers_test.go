package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/relaycore/relay-server/internal/store"
)

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
			t.Fatalf("expected event kind %v, got %v", kind, ev.Kind)
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

func mustNoEvent(t *testing.T, ch <-chan *Event) {
	t.Helper()

	select {
	case ev := <-ch:
		t.Fatalf("expected no event, got kind %v", ev.Kind)
	case <-time.After(50 * time.Millisecond):
	}
}

// memStore is an in-memory MessageStore for router tests.
type memStore struct {
	mu     sync.Mutex
	nextID int64
	fail   bool
	saved  []savedMessage
}

type savedMessage struct {
	sender, recipient, body string
}

func (m *memStore) SaveMessage(_ context.Context, sender, recipient, body string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return 0, errors.New("store down")
	}
	m.nextID++
	m.saved = append(m.saved, savedMessage{sender, recipient, body})
	return m.nextID, nil
}

func (m *memStore) History(_ context.Context, _, _ string, _ int) ([]store.Message, error) {
	return nil, nil
}

func (m *memStore) Close() error { return nil }
