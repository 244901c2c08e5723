// internal/models/application.go
package models

import "time"

// ApplicationStatus is the lifecycle state of a guild application.
// Transitions are monotonic: pending -> accepted | rejected.
type ApplicationStatus string

const (
	StatusPending  ApplicationStatus = "pending"
	StatusAccepted ApplicationStatus = "accepted"
	StatusRejected ApplicationStatus = "rejected"
)

// IsTerminal reports whether no further transitions are permitted.
func (s ApplicationStatus) IsTerminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

// ApplicationRecord is one guild application. The JSON field names are the
// durable document layout; the whole record set is rewritten on every change.
type ApplicationRecord struct {
	ID              string            `json:"id"`
	UserID          string            `json:"userId"`
	Username        string            `json:"username,omitempty"`
	SubmittedAt     time.Time         `json:"timestamp"`
	Status          ApplicationStatus `json:"status"`
	Answers         map[string]string `json:"data"`
	ProcessedBy     string            `json:"processedBy,omitempty"`
	ProcessedAt     *time.Time        `json:"processedAt,omitempty"`
	RejectionReason string            `json:"rejectionReason,omitempty"`
}

// Clone returns a deep copy so callers can hand records out without
// exposing the machine's internal slice to mutation.
func (r ApplicationRecord) Clone() ApplicationRecord {
	out := r
	if r.Answers != nil {
		out.Answers = make(map[string]string, len(r.Answers))
		for k, v := range r.Answers {
			out.Answers[k] = v
		}
	}
	if r.ProcessedAt != nil {
		t := *r.ProcessedAt
		out.ProcessedAt = &t
	}
	return out
}
