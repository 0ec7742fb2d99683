package entities

import "time"

type MessageStatus string

const (
	MessageStatusPending MessageStatus = "pending"
	// MessageStatusSending is the transient claim state a store flips a row
	// into while a dispatcher tick holds it. Rows never finish a tick in
	// this state; stale ones are reclaimed as pending.
	MessageStatusSending MessageStatus = "sending"
	MessageStatusSent    MessageStatus = "sent"
	MessageStatusFailed  MessageStatus = "failed"
)

// MaxAttempts is the retry ceiling. A message that has failed this many
// times is terminal and never selected again.
const MaxAttempts = 3

type Message struct {
	ID           string
	Recipient    string
	Subject      string
	Body         string
	Status       MessageStatus
	Attempts     int
	LastError    string
	ScheduledFor time.Time
	SentAt       *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
