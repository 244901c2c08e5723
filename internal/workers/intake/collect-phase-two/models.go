// internal/workers/intake/collect-phase-two/models.go
package collectphasetwo

type Input struct {
	UserID  string            `json:"userId"`
	Answers map[string]string `json:"answers"`
}

type Output struct {
	ApplicationID string `json:"applicationId"`
	QueuePosition int    `json:"queuePosition"`
	Status        string `json:"status"`
}
