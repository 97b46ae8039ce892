package core

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/relaycore/relay-server/internal/store"
)

// Router drives one session's frame handling. It holds no durable state
// between frames; all cross-session effects go through the registry and the
// message store.
type Router struct {
	session  *Session
	registry *Registry
	store    store.MessageStore
	log      zerolog.Logger
}

// NewRouter builds a router bound to one registered session.
func NewRouter(session *Session, registry *Registry, st store.MessageStore, logger zerolog.Logger) *Router {
	return &Router{session: session, registry: registry, store: st, log: logger}
}

// SendChat persists a chat message from this session and routes it. The
// sender is acked strictly before any forward to the recipient; a storage
// failure drops the frame without an ack and the session stays open.
func (rt *Router) SendChat(ctx context.Context, recipient, text string) {
	if recipient == "" || text == "" {
		rt.log.Debug().Str("recipient", recipient).Msg("chat frame missing field, dropped")
		return
	}

	id, err := rt.store.SaveMessage(ctx, rt.session.Username, recipient, text)
	if err != nil {
		rt.log.Warn().Err(err).Str("recipient", recipient).Msg("chat frame dropped, store unavailable")
		return
	}

	ack := &Event{Kind: EventMessageSentAck, MessageID: id, Recipient: recipient}
	if err := rt.session.Send(ctx, ack); err != nil {
		rt.log.Warn().Err(err).Int64("message_id", id).Msg("ack not delivered, session closing")
		return
	}

	peer, ok := rt.registry.Lookup(recipient)
	if !ok {
		// Durable but undelivered; the recipient catches up through history.
		return
	}
	forward := &Event{Kind: EventChatMessage, Message: Message{
		ID:        id,
		Sender:    rt.session.Username,
		Recipient: recipient,
		Text:      text,
		CreatedAt: time.Now(),
	}}
	if !peer.TrySend(forward) {
		rt.log.Warn().Str("recipient", recipient).Int64("message_id", id).Msg("forward skipped, recipient buffer full")
	}
}

// RelayReadReceipt forwards a read notice to the original sender. If the
// sender is offline the notice is dropped; receipts are never queued.
func (rt *Router) RelayReadReceipt(messageID int64, sender string) {
	peer, ok := rt.registry.Lookup(sender)
	if !ok {
		return
	}
	if !peer.TrySend(&Event{Kind: EventMessageRead, MessageID: messageID}) {
		rt.log.Warn().Str("sender", sender).Int64("message_id", messageID).Msg("read receipt skipped, sender buffer full")
	}
}
