// internal/workers/review/view-queue/models.go
package viewqueue

type Input struct {
	ReviewerID string `json:"reviewerId"`
}

// QueueEntry is one pending application in display order.
type QueueEntry struct {
	Position      int    `json:"position"`
	ApplicationID string `json:"applicationId"`
	UserID        string `json:"userId"`
	Username      string `json:"username,omitempty"`
	IGN           string `json:"ign,omitempty"`
	SubmittedAt   string `json:"submittedAt"`
}

type Output struct {
	TotalPending int          `json:"totalPending"`
	Entries      []QueueEntry `json:"entries"`
}
