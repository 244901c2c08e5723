// internal/models/intake.go
package models

import "time"

// IntakeDraft holds a partially collected application while the applicant is
// between form phases. Drafts are transient: they live in the draft cache,
// never in the durable store, and are dropped on expiry or re-begin.
type IntakeDraft struct {
	UserID    string            `json:"userId"`
	Username  string            `json:"username,omitempty"`
	StartedAt time.Time         `json:"startedAt"`
	PhaseOne  map[string]string `json:"phaseOne,omitempty"`
}

// PhaseOneComplete reports whether phase-two answers may be submitted.
func (d *IntakeDraft) PhaseOneComplete() bool {
	return d != nil && len(d.PhaseOne) > 0
}
