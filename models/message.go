package models

import (
	"encoding/json"
	"time"
)

// Message status values. The status only ever moves forward in practice
// (sent -> delivered -> read) but the store does not enforce ordering.
const (
	StatusSent      = "sent"
	StatusDelivered = "delivered"
	StatusRead      = "read"
)

// Message represents a single chat message. Conversations are not stored;
// they are derived at query time by grouping messages on WaID.
type Message struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	WaID      string          `gorm:"not null;index" json:"wa_id"` // counterparty/conversation identifier
	Name      string          `json:"name"`                        // counterparty display name
	Number    string          `json:"number"`                      // counterparty phone number
	Message   string          `gorm:"type:text" json:"message"`
	Status    string          `gorm:"not null;default:'sent'" json:"status"`
	Timestamp time.Time       `gorm:"index" json:"timestamp"`
	MetaMsgID string          `gorm:"index" json:"meta_msg_id,omitempty"` // external correlation id for status updates
	Raw       json.RawMessage `gorm:"type:jsonb" json:"raw,omitempty"`    // original inbound payload, kept for audit
}

// TableName specifies the table name for the Message model
func (Message) TableName() string {
	return "processed_messages"
}

// ChatSummary is the query-time projection of a conversation: the identity
// fields and message fields of the most recent message for one WaID.
type ChatSummary struct {
	WaID          string    `json:"_id"`
	Name          string    `json:"name"`
	Number        string    `json:"number"`
	LastMessage   string    `json:"lastMessage"`
	LastStatus    string    `json:"lastStatus"`
	LastTimestamp time.Time `json:"lastTimestamp"`
}
