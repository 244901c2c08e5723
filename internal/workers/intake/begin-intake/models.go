// internal/workers/intake/begin-intake/models.go
package beginintake

import "guild-intake/pkg/registry"

type Input struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

type Output struct {
	IntakeStarted bool                `json:"intakeStarted"`
	Questions     []registry.Question `json:"questions"`
}
