// internal/models/notification.go
package models

// Outcome names the event a notification reports.
type Outcome string

const (
	OutcomeQueued   Outcome = "queued"
	OutcomeAccepted Outcome = "accepted"
	OutcomeRejected Outcome = "rejected"
	OutcomeInfo     Outcome = "info_requested"
)

type Notification struct {
	ID          string  `json:"id"`
	RecipientID string  `json:"recipientId"`
	Outcome     Outcome `json:"outcome"`
	Channel     string  `json:"channel"` // "email", "topic", "log"
	Status      string  `json:"status"`  // "sent", "failed", "disabled"
	Body        string  `json:"body"`
	SentAt      string  `json:"sentAt"`
}
