// internal/workers/review/accept-application/models.go
package acceptapplication

// Input targets a record either directly by ID or by the applicant, in which
// case the applicant's pending application is resolved.
type Input struct {
	ApplicationID string `json:"applicationId,omitempty"`
	ApplicantID   string `json:"applicantId,omitempty"`
	ReviewerID    string `json:"reviewerId"`
}

type Output struct {
	ApplicationID string `json:"applicationId"`
	Status        string `json:"status"`
	ProcessedBy   string `json:"processedBy"`
	ProcessedAt   string `json:"processedAt"`
}
