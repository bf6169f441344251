package models

import "time"

// ActivityType classifies audit entries.
type ActivityType string

const (
	ActivityLogin   ActivityType = "login"
	ActivityPayment ActivityType = "payment"
	ActivityMessage ActivityType = "message"
	ActivityProfile ActivityType = "profile"
	ActivityOther   ActivityType = "other"
)

// Activity is an append-only audit entry.
type Activity struct {
	ID          int64        `json:"id"`
	AccountID   int64        `json:"account_id"`
	Type        ActivityType `json:"action_type"`
	Description string       `json:"description"`
	Timestamp   time.Time    `json:"timestamp"`
	RelatedID   *int64       `json:"related_object_id,omitempty"`

	Username string `json:"username,omitempty"`
}
