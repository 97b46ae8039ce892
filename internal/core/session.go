package core

import (
	"context"
	"time"
)

// Session is one identified client connection as seen by the core layer.
// It is owned by the registry from a successful Register until Unregister.
type Session struct {
	Username    string
	ConnectedAt time.Time
	Events      chan *Event
}

// NewSession constructs a session with a buffered event channel.
func NewSession(username string, buffer int) *Session {
	if buffer <= 0 {
		buffer = 32
	}
	return &Session{
		Username:    username,
		ConnectedAt: time.Now(),
		Events:      make(chan *Event, buffer),
	}
}

// Send queues an event for delivery, blocking until there is room in the
// session's buffer or ctx is done.
func (s *Session) Send(ctx context.Context, ev *Event) error {
	select {
	case s.Events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TrySend queues an event without blocking. Returns false if the session's
// buffer is full.
func (s *Session) TrySend(ev *Event) bool {
	select {
	case s.Events <- ev:
		return true
	default:
		return false
	}
}
