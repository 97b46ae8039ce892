package proto

import "encoding/json"

// Inbound is the envelope for frames coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	InboundTypeChatMessage = "chat_message"
	InboundTypeReadReceipt = "read_receipt"

	OutboundTypeUserList       = "user_list"
	OutboundTypeChatMessage    = "chat_message"
	OutboundTypeMessageSentAck = "message_sent_ack"
	OutboundTypeMessageRead    = "message_read"
)

// ChatMessageData is a chat message from the client.
type ChatMessageData struct {
	Recipient string `json:"recipient"`
	Message   string `json:"message"`
}

// ReadReceiptData reports that the client has seen a message. Sender is the
// original author the notice is relayed back to.
type ReadReceiptData struct {
	MessageID int64  `json:"message_id"`
	Sender    string `json:"sender"`
}

// Outbound is the envelope for frames sent to the client.
type Outbound struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// UserListData carries the current set of connected usernames.
type UserListData struct {
	Users []string `json:"users"`
}

// MessageSentAckData confirms to the sender that a message was stored.
type MessageSentAckData struct {
	MessageID int64  `json:"message_id"`
	Recipient string `json:"recipient"`
}

// DeliveredMessageData is a chat message forwarded to its recipient.
type DeliveredMessageData struct {
	MessageID int64  `json:"message_id"`
	Sender    string `json:"sender"`
	Message   string `json:"message"`
	TS        int64  `json:"ts"`
}

// MessageReadData notifies the original sender that a message was seen.
type MessageReadData struct {
	MessageID int64 `json:"message_id"`
}
