// Package audit writes an append-only trail of application transitions to
// Postgres. It hangs off the review machine as a post-commit hook: auditing
// is best-effort and never fails a transition.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"guild-intake/internal/common/logger"
	"guild-intake/internal/models"
)

// Recorder appends transition events to the audit_log table.
type Recorder struct {
	db     *sql.DB
	logger logger.Logger
}

func NewRecorder(db *sql.DB, log logger.Logger) *Recorder {
	return &Recorder{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "audit"}),
	}
}

// AfterTransition implements review.TransitionHook.
func (r *Recorder) AfterTransition(ctx context.Context, event string, rec models.ApplicationRecord, actorID string) {
	details, err := json.Marshal(map[string]interface{}{
		"userId":          rec.UserID,
		"username":        rec.Username,
		"status":          string(rec.Status),
		"processedBy":     rec.ProcessedBy,
		"rejectionReason": rec.RejectionReason,
		"actorId":         actorID,
	})
	if err != nil {
		r.logger.Warn("failed to marshal audit details", map[string]interface{}{
			"error": err,
		})
		details = []byte("{}")
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO audit_log (event_type, resource_type, resource_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		event,
		"application",
		rec.ID,
		details,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		r.logger.Warn("audit log insert failed", map[string]interface{}{
			"error":         err,
			"applicationId": rec.ID,
			"event":         event,
		})
	}
}
