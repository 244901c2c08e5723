package rejectapplication

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guild-intake/internal/common/auth"
	stderrors "guild-intake/internal/common/errors"
	"guild-intake/internal/common/logger"
	"guild-intake/internal/models"
	"guild-intake/internal/review"
)

type memStore struct {
	mu      sync.Mutex
	records []models.ApplicationRecord
}

func (s *memStore) Load(ctx context.Context) ([]models.ApplicationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ApplicationRecord, len(s.records))
	copy(out, s.records)
	return out, nil
}

func (s *memStore) Save(ctx context.Context, records []models.ApplicationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make([]models.ApplicationRecord, len(records))
	copy(s.records, records)
	return nil
}

type noopDispatcher struct{}

func (noopDispatcher) NotifyApplicant(ctx context.Context, rec models.ApplicationRecord, outcome models.Outcome, actorID string) error {
	return nil
}
func (noopDispatcher) NotifyReviewers(ctx context.Context, rec models.ApplicationRecord, outcome models.Outcome, actorID string) error {
	return nil
}
func (noopDispatcher) NotifyQueued(ctx context.Context, rec models.ApplicationRecord, position int) error {
	return nil
}
func (noopDispatcher) RequestInfo(ctx context.Context, rec models.ApplicationRecord, actorID string) error {
	return nil
}

func setupHandler(t *testing.T, reviewers ...string) (*Handler, *review.Machine) {
	t.Helper()
	log := logger.NewTestLogger(t)
	machine := review.New(context.Background(), &memStore{}, noopDispatcher{}, log)
	gate := auth.NewStaticGate(reviewers)
	return NewHandler(&Config{Timeout: 15 * time.Second}, machine, gate, log), machine
}

func TestHandler_Execute_RejectWithReason(t *testing.T) {
	handler, machine := setupHandler(t, "officer-1")

	rec, _, err := machine.Enqueue(context.Background(), "user-1", "Aria", nil)
	require.NoError(t, err)

	output, err := handler.Execute(context.Background(), &Input{
		ApplicationID: rec.ID,
		ReviewerID:    "officer-1",
		Reason:        "gearscore below requirement",
	})
	require.NoError(t, err)

	assert.Equal(t, "rejected", output.Status)
	assert.Equal(t, "gearscore below requirement", output.RejectionReason)
	assert.Equal(t, "officer-1", output.ProcessedBy)
}

func TestHandler_Execute_RejectWithoutReason(t *testing.T) {
	handler, machine := setupHandler(t, "officer-1")

	rec, _, err := machine.Enqueue(context.Background(), "user-1", "Aria", nil)
	require.NoError(t, err)

	output, err := handler.Execute(context.Background(), &Input{
		ApplicationID: rec.ID,
		ReviewerID:    "officer-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "No reason provided.", output.RejectionReason)
}

func TestHandler_Execute_RejectByApplicant(t *testing.T) {
	handler, machine := setupHandler(t, "officer-1")

	rec, _, err := machine.Enqueue(context.Background(), "user-1", "Aria", nil)
	require.NoError(t, err)

	output, err := handler.Execute(context.Background(), &Input{
		ApplicantID: "user-1",
		ReviewerID:  "officer-1",
		Reason:      "inactive",
	})
	require.NoError(t, err)
	assert.Equal(t, rec.ID, output.ApplicationID)

	_, err = handler.Execute(context.Background(), &Input{
		ApplicantID: "user-1",
		ReviewerID:  "officer-1",
	})
	assert.True(t, stderrors.Is(err, stderrors.ErrCodeNoPendingApplication))
}

func TestHandler_Execute_UnprivilegedReviewer(t *testing.T) {
	handler, machine := setupHandler(t, "officer-1")

	rec, _, err := machine.Enqueue(context.Background(), "user-1", "Aria", nil)
	require.NoError(t, err)

	_, err = handler.Execute(context.Background(), &Input{
		ApplicationID: rec.ID,
		ReviewerID:    "member-1",
	})
	assert.True(t, stderrors.Is(err, stderrors.ErrCodePermissionDenied))
}
