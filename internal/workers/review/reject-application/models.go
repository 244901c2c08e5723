// internal/workers/review/reject-application/models.go
package rejectapplication

// Input targets a record either directly by ID or by the applicant. A blank
// reason is recorded as "No reason provided.".
type Input struct {
	ApplicationID string `json:"applicationId,omitempty"`
	ApplicantID   string `json:"applicantId,omitempty"`
	ReviewerID    string `json:"reviewerId"`
	Reason        string `json:"reason,omitempty"`
}

type Output struct {
	ApplicationID   string `json:"applicationId"`
	Status          string `json:"status"`
	ProcessedBy     string `json:"processedBy"`
	ProcessedAt     string `json:"processedAt"`
	RejectionReason string `json:"rejectionReason"`
}
