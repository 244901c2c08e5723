// internal/workers/intake/collect-phase-one/models.go
package collectphaseone

import "guild-intake/pkg/registry"

type Input struct {
	UserID  string            `json:"userId"`
	Answers map[string]string `json:"answers"`
}

type Output struct {
	PhaseOneRecorded bool                `json:"phaseOneRecorded"`
	NextQuestions    []registry.Question `json:"nextQuestions"`
}
