package core

// EventKind is a notification the core emits to sessions.
type EventKind int

const (
	// EventUserList carries the current set of connected usernames.
	EventUserList EventKind = iota
	// EventMessageSentAck confirms to the sender that a message was stored.
	EventMessageSentAck
	// EventChatMessage delivers a chat message to its recipient.
	EventChatMessage
	// EventMessageRead notifies the original sender that a message was seen.
	EventMessageRead
)

// Event is sent to sessions to describe what happened in the system.
type Event struct {
	Kind      EventKind
	Users     []string // EventUserList
	Message   Message  // EventChatMessage
	MessageID int64    // EventMessageSentAck, EventMessageRead
	Recipient string   // EventMessageSentAck
}
