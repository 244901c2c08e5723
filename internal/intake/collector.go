// internal/intake/collector.go
package intake

import (
	"context"
	"fmt"
	"time"

	stderrors "guild-intake/internal/common/errors"
	"guild-intake/internal/common/logger"
	"guild-intake/internal/common/metrics"
	"guild-intake/internal/models"
	"guild-intake/pkg/registry"
)

// Promoter hands a completed draft to the review queue. Satisfied by
// review.Machine.
type Promoter interface {
	Enqueue(ctx context.Context, userID, username string, answers map[string]string) (models.ApplicationRecord, int, error)
}

// Collector drives the two-phase intake form. It owns the draft lifecycle;
// the Promoter owns the queue.
type Collector struct {
	cache    Cache
	promoter Promoter
	logger   logger.Logger
	now      func() time.Time
}

func NewCollector(cache Cache, promoter Promoter, log logger.Logger) *Collector {
	return &Collector{
		cache:    cache,
		promoter: promoter,
		logger:   log.WithFields(map[string]interface{}{"component": "intake"}),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Begin opens a fresh draft for the applicant. Any prior draft is discarded:
// re-beginning resets the form rather than erroring.
func (c *Collector) Begin(ctx context.Context, userID, username string) (models.IntakeDraft, error) {
	draft := models.IntakeDraft{
		UserID:    userID,
		Username:  username,
		StartedAt: c.now(),
	}
	if err := c.cache.Put(ctx, draft); err != nil {
		return models.IntakeDraft{}, err
	}

	metrics.IntakeDraftsStarted.Inc()
	c.logger.Info("intake started", map[string]interface{}{
		"userId":   userID,
		"username": username,
	})
	return draft, nil
}

// SubmitPhaseOne validates and records the character-profile answers.
// The applicant must have an active draft.
func (c *Collector) SubmitPhaseOne(ctx context.Context, userID string, answers map[string]string) (models.IntakeDraft, error) {
	draft, ok, err := c.cache.Get(ctx, userID)
	if err != nil {
		return models.IntakeDraft{}, err
	}
	if !ok {
		return models.IntakeDraft{}, stderrors.NewNoActiveIntakeError(userID)
	}

	if err := registry.ValidateAnswers(registry.PhaseOne, answers); err != nil {
		return models.IntakeDraft{}, stderrors.NewValidationFailedError(err.Error())
	}

	draft.PhaseOne = answers
	if err := c.cache.Put(ctx, draft); err != nil {
		return models.IntakeDraft{}, err
	}

	c.logger.Info("phase one collected", map[string]interface{}{"userId": userID})
	return draft, nil
}

// SubmitPhaseTwo validates the final answers, merges both phases, promotes
// the result to the pending queue, and drops the draft. Promotion failures
// (including a duplicate pending application) leave the draft in place so
// the applicant does not have to re-enter everything.
func (c *Collector) SubmitPhaseTwo(ctx context.Context, userID string, answers map[string]string) (models.ApplicationRecord, int, error) {
	draft, ok, err := c.cache.Get(ctx, userID)
	if err != nil {
		return models.ApplicationRecord{}, 0, err
	}
	if !ok || !draft.PhaseOneComplete() {
		return models.ApplicationRecord{}, 0, stderrors.NewNoActiveIntakeError(userID)
	}

	if err := registry.ValidateAnswers(registry.PhaseTwo, answers); err != nil {
		return models.ApplicationRecord{}, 0, stderrors.NewValidationFailedError(err.Error())
	}

	merged := make(map[string]string, len(draft.PhaseOne)+len(answers))
	for k, v := range draft.PhaseOne {
		merged[k] = v
	}
	for k, v := range answers {
		merged[k] = v
	}

	rec, position, err := c.promoter.Enqueue(ctx, userID, draft.Username, merged)
	if err != nil {
		return models.ApplicationRecord{}, 0, err
	}

	// Draft cleanup is best-effort; the TTL collects stragglers.
	if err := c.cache.Delete(ctx, userID); err != nil {
		c.logger.Warn("draft cleanup failed", map[string]interface{}{
			"userId": userID,
			"error":  fmt.Sprint(err),
		})
	}

	return rec, position, nil
}

// Draft returns the applicant's active draft, if any.
func (c *Collector) Draft(ctx context.Context, userID string) (models.IntakeDraft, bool, error) {
	return c.cache.Get(ctx, userID)
}
