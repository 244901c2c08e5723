// internal/workers/review/request-screenshot/models.go
package requestscreenshot

type Input struct {
	ApplicationID string `json:"applicationId"`
	ReviewerID    string `json:"reviewerId"`
}

type Output struct {
	ApplicationID string `json:"applicationId"`
	Requested     bool   `json:"requested"`
}
