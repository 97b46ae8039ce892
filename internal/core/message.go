package core

import "time"

// Message is the domain model for a relayed chat message.
type Message struct {
	ID        int64
	Sender    string
	Recipient string
	Text      string
	CreatedAt time.Time
}
