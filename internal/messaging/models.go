package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Message is one chat line between the two participants of a match.
type Message struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	MatchID     uuid.UUID  `db:"match_id" json:"matchId"`
	SenderID    uuid.UUID  `db:"sender_id" json:"senderId"`
	RecipientID uuid.UUID  `db:"recipient_id" json:"recipientId"`
	Content     string     `db:"content" json:"content"`
	IsRead      bool       `db:"is_read" json:"isRead"`
	SentAt      time.Time  `db:"sent_at" json:"sentAt"`
	ReadAt      *time.Time `db:"read_at" json:"readAt,omitempty"`
}

type SendMessageRequest struct {
	Content string `json:"content" validate:"required"`
}

type MarkReadRequest struct {
	MessageIDs []uuid.UUID `json:"messageIds" validate:"required,min=1,max=500"`
}

type MarkReadResult struct {
	Updated int64 `json:"updated"`
}

type UnreadCount struct {
	Count int `json:"count"`
}

// EventType names a realtime event pushed over the websocket.
type EventType string

const (
	EventMessage EventType = "message"
	EventRead    EventType = "read"
)

// Event is the envelope written to connected clients.
type Event struct {
	Type      EventType       `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// ReadReceipt tells a sender that the partner read their messages.
type ReadReceipt struct {
	MatchID  uuid.UUID   `json:"matchId,omitempty"`
	ReaderID uuid.UUID   `json:"readerId"`
	IDs      []uuid.UUID `json:"messageIds,omitempty"`
	Count    int64       `json:"count"`
}
