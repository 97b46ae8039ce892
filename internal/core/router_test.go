package core

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
)

func newTestRouter(t *testing.T, username string, reg *Registry, st *memStore) (*Router, *Session) {
	t.Helper()

	session := NewSession(username, 8)
	if err := reg.Register(session); err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	return NewRouter(session, reg, st, zerolog.Nop()), session
}

func TestSendChatAcksSenderBeforeForwarding(t *testing.T) {
	reg := NewRegistry()
	st := &memStore{}

	router, alice := newTestRouter(t, "alice", reg, st)
	_, bob := newTestRouter(t, "bob", reg, st)

	router.SendChat(context.Background(), "bob", "hi")

	ack := mustEvent(t, alice.Events, EventMessageSentAck)
	if ack.MessageID != 1 || ack.Recipient != "bob" {
		t.Fatalf("unexpected ack: %+v", ack)
	}

	fwd := mustEvent(t, bob.Events, EventChatMessage)
	if fwd.Message.ID != ack.MessageID || fwd.Message.Sender != "alice" || fwd.Message.Text != "hi" {
		t.Fatalf("unexpected forward: %+v", fwd.Message)
	}
	mustNoEvent(t, bob.Events)
}

func TestSendChatToOfflineRecipientStillAcks(t *testing.T) {
	reg := NewRegistry()
	st := &memStore{}

	router, alice := newTestRouter(t, "alice", reg, st)

	router.SendChat(context.Background(), "bob", "hi")

	ack := mustEvent(t, alice.Events, EventMessageSentAck)
	if ack.Recipient != "bob" {
		t.Fatalf("unexpected ack: %+v", ack)
	}
	if len(st.saved) != 1 {
		t.Fatalf("expected message persisted, saved=%d", len(st.saved))
	}
}

func TestSendChatDropsFramesMissingFields(t *testing.T) {
	reg := NewRegistry()
	st := &memStore{}

	router, alice := newTestRouter(t, "alice", reg, st)

	router.SendChat(context.Background(), "", "hi")
	router.SendChat(context.Background(), "bob", "")

	mustNoEvent(t, alice.Events)
	if len(st.saved) != 0 {
		t.Fatalf("expected nothing persisted, saved=%d", len(st.saved))
	}
}

func TestSendChatStorageFailureIsSilent(t *testing.T) {
	reg := NewRegistry()
	st := &memStore{fail: true}

	router, alice := newTestRouter(t, "alice", reg, st)
	_, bob := newTestRouter(t, "bob", reg, st)

	router.SendChat(context.Background(), "bob", "hi")

	mustNoEvent(t, alice.Events)
	mustNoEvent(t, bob.Events)

	// The session keeps working once the store recovers.
	st.fail = false
	router.SendChat(context.Background(), "bob", "hi again")

	ack := mustEvent(t, alice.Events, EventMessageSentAck)
	fwd := mustEvent(t, bob.Events, EventChatMessage)
	if fwd.Message.ID != ack.MessageID {
		t.Fatalf("ack id %d != forward id %d", ack.MessageID, fwd.Message.ID)
	}
}

func TestRelayReadReceiptToOnlineSender(t *testing.T) {
	reg := NewRegistry()
	st := &memStore{}

	_, alice := newTestRouter(t, "alice", reg, st)
	bobRouter, bob := newTestRouter(t, "bob", reg, st)

	bobRouter.RelayReadReceipt(7, "alice")

	ev := mustEvent(t, alice.Events, EventMessageRead)
	if ev.MessageID != 7 {
		t.Fatalf("unexpected message id: %d", ev.MessageID)
	}
	mustNoEvent(t, bob.Events)
}

func TestRelayReadReceiptToOfflineSenderIsDropped(t *testing.T) {
	reg := NewRegistry()
	st := &memStore{}

	bobRouter, bob := newTestRouter(t, "bob", reg, st)

	bobRouter.RelayReadReceipt(7, "alice")
	bobRouter.RelayReadReceipt(8, "nobody")

	mustNoEvent(t, bob.Events)
}
