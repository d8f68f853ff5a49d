package domain

import "time"

// Transaction models a single money transfer within an input batch.
// A zero Timestamp marks a record whose timestamp could not be parsed;
// the transfer still participates in graph construction and scoring, only
// velocity detection ignores it.
type Transaction struct {
	ID         string    `json:"transaction_id"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	Amount     float64   `json:"amount"`
	Timestamp  time.Time `json:"timestamp"`
}

// HasTimestamp reports whether the transfer carries a parseable timestamp.
func (t Transaction) HasTimestamp() bool {
	return !t.Timestamp.IsZero()
}
