// internal/notify/log.go
package notify

import (
	"context"

	"guild-intake/internal/common/logger"
	"guild-intake/internal/models"
)

// LogDispatcher writes every notification to the log instead of sending it.
// Used when no outbound channel is configured, and in tests.
type LogDispatcher struct {
	logger logger.Logger
}

func NewLogDispatcher(log logger.Logger) *LogDispatcher {
	return &LogDispatcher{logger: log.WithFields(map[string]interface{}{"component": "notify"})}
}

func (d *LogDispatcher) NotifyApplicant(_ context.Context, rec models.ApplicationRecord, outcome models.Outcome, actorID string) error {
	d.logger.Info("applicant notification", map[string]interface{}{
		"userId":  rec.UserID,
		"outcome": string(outcome),
		"body":    applicantMessage(rec, outcome, actorID),
	})
	return nil
}

func (d *LogDispatcher) NotifyReviewers(_ context.Context, rec models.ApplicationRecord, outcome models.Outcome, actorID string) error {
	d.logger.Info("reviewer notification", map[string]interface{}{
		"applicationId": rec.ID,
		"outcome":       string(outcome),
		"body":          reviewerMessage(rec, outcome, actorID),
	})
	return nil
}

func (d *LogDispatcher) NotifyQueued(_ context.Context, rec models.ApplicationRecord, position int) error {
	d.logger.Info("queued notification", map[string]interface{}{
		"userId":   rec.UserID,
		"position": position,
		"body":     queuedMessage(rec, position),
	})
	return nil
}

func (d *LogDispatcher) RequestInfo(_ context.Context, rec models.ApplicationRecord, actorID string) error {
	d.logger.Info("screenshot request", map[string]interface{}{
		"userId":  rec.UserID,
		"actorId": actorID,
	})
	return nil
}
