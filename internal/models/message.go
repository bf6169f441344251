package models

import "time"

// MessageType separates member concerns from admin-generated notices.
type MessageType string

const (
	MessageFromUser MessageType = "user"
	MessageSystem   MessageType = "system"
)

// MessageStatus is pending until an admin resolves it.
type MessageStatus string

const (
	MessagePending  MessageStatus = "pending"
	MessageResolved MessageStatus = "resolved"
)

// Valid reports whether s is a known status.
func (s MessageStatus) Valid() bool {
	return s == MessagePending || s == MessageResolved
}

// Message is a thread between one member and the admins.
type Message struct {
	ID            int64         `json:"id"`
	AccountID     int64         `json:"account_id"`
	Subject       string        `json:"subject"`
	Body          string        `json:"message"`
	Type          MessageType   `json:"message_type"`
	Status        MessageStatus `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
	ResolvedAt    *time.Time    `json:"resolved_at,omitempty"`
	AdminReply    string        `json:"admin_reply,omitempty"`
	RepliedAt     *time.Time    `json:"replied_at,omitempty"`
	UserReply     string        `json:"user_reply,omitempty"`
	UserRepliedAt *time.Time    `json:"user_replied_at,omitempty"`

	FullName string `json:"full_name,omitempty"`
}

// MessageFilter narrows message listings. Zero values mean no constraint.
type MessageFilter struct {
	AccountID int64
	Type      MessageType
	Status    MessageStatus
	Limit     int
}
