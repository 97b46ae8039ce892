package store

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable reports that the message store cannot be reached.
var ErrUnavailable = errors.New("message store unavailable")

// Message represents a persisted chat message.
type Message struct {
	ID        int64
	Sender    string
	Recipient string
	Body      string
	CreatedAt time.Time
}

// MessageStore is the narrow persistence contract the relay consumes.
type MessageStore interface {
	// SaveMessage appends a message and returns its assigned id.
	SaveMessage(ctx context.Context, sender, recipient, body string) (int64, error)
	// History returns up to limit messages exchanged between two users,
	// oldest first.
	History(ctx context.Context, userA, userB string, limit int) ([]Message, error)
	// Close releases the underlying storage resources.
	Close() error
}
