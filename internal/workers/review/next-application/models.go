// internal/workers/review/next-application/models.go
package nextapplication

type Input struct {
	ReviewerID string `json:"reviewerId"`
}

type Output struct {
	HasNext       bool              `json:"hasNext"`
	ApplicationID string            `json:"applicationId,omitempty"`
	UserID        string            `json:"userId,omitempty"`
	Username      string            `json:"username,omitempty"`
	SubmittedAt   string            `json:"submittedAt,omitempty"`
	Answers       map[string]string `json:"answers,omitempty"`
}
