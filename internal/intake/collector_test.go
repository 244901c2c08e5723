package intake

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stderrors "guild-intake/internal/common/errors"
	"guild-intake/internal/common/logger"
	"guild-intake/internal/models"
)

var phaseOneAnswers = map[string]string{
	"ign":          "Aria",
	"weapon":       "SNS/GS",
	"gearscore":    "3200",
	"hours":        "4",
	"availability": "All three, most weeks",
}

var phaseTwoAnswers = map[string]string{
	"pvp": "Mostly small-scale, GvG caller in my last guild",
}

// fakePromoter records the last Enqueue and can be told to fail.
type fakePromoter struct {
	lastUserID   string
	lastUsername string
	lastAnswers  map[string]string
	err          error
}

func (p *fakePromoter) Enqueue(ctx context.Context, userID, username string, answers map[string]string) (models.ApplicationRecord, int, error) {
	p.lastUserID = userID
	p.lastUsername = username
	p.lastAnswers = answers
	if p.err != nil {
		return models.ApplicationRecord{}, 0, p.err
	}
	return models.ApplicationRecord{
		ID:      "app-001",
		UserID:  userID,
		Status:  models.StatusPending,
		Answers: answers,
	}, 3, nil
}

func newTestCollector(promoter *fakePromoter) (*Collector, *MemoryCache) {
	cache := NewMemoryCache(30*time.Minute, 100)
	return NewCollector(cache, promoter, logger.NewNoOpLogger()), cache
}

func TestBeginCreatesDraft(t *testing.T) {
	c, cache := newTestCollector(&fakePromoter{})

	draft, err := c.Begin(context.Background(), "user-1", "Aria")
	require.NoError(t, err)
	assert.Equal(t, "user-1", draft.UserID)
	assert.False(t, draft.PhaseOneComplete())

	stored, ok, err := cache.Get(context.Background(), "user-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Aria", stored.Username)
}

func TestBeginResetsExistingDraft(t *testing.T) {
	c, _ := newTestCollector(&fakePromoter{})

	_, err := c.Begin(context.Background(), "user-1", "Aria")
	require.NoError(t, err)
	_, err = c.SubmitPhaseOne(context.Background(), "user-1", phaseOneAnswers)
	require.NoError(t, err)

	draft, err := c.Begin(context.Background(), "user-1", "Aria")
	require.NoError(t, err)
	assert.False(t, draft.PhaseOneComplete())
}

func TestSubmitPhaseOneWithoutDraft(t *testing.T) {
	c, _ := newTestCollector(&fakePromoter{})

	_, err := c.SubmitPhaseOne(context.Background(), "user-1", phaseOneAnswers)
	assert.True(t, stderrors.Is(err, stderrors.ErrCodeNoActiveIntake))
}

func TestSubmitPhaseOneValidation(t *testing.T) {
	c, _ := newTestCollector(&fakePromoter{})
	_, err := c.Begin(context.Background(), "user-1", "Aria")
	require.NoError(t, err)

	incomplete := map[string]string{"ign": "Aria"}
	_, err = c.SubmitPhaseOne(context.Background(), "user-1", incomplete)
	assert.True(t, stderrors.Is(err, stderrors.ErrCodeValidationFailed))

	blank := map[string]string{}
	for k, v := range phaseOneAnswers {
		blank[k] = v
	}
	blank["gearscore"] = ""
	_, err = c.SubmitPhaseOne(context.Background(), "user-1", blank)
	assert.True(t, stderrors.Is(err, stderrors.ErrCodeValidationFailed))
}

func TestSubmitPhaseTwoRequiresPhaseOne(t *testing.T) {
	c, _ := newTestCollector(&fakePromoter{})
	_, err := c.Begin(context.Background(), "user-1", "Aria")
	require.NoError(t, err)

	_, _, err = c.SubmitPhaseTwo(context.Background(), "user-1", phaseTwoAnswers)
	assert.True(t, stderrors.Is(err, stderrors.ErrCodeNoActiveIntake))
}

func TestSubmitPhaseTwoPromotesMergedAnswers(t *testing.T) {
	promoter := &fakePromoter{}
	c, cache := newTestCollector(promoter)

	_, err := c.Begin(context.Background(), "user-1", "Aria")
	require.NoError(t, err)
	_, err = c.SubmitPhaseOne(context.Background(), "user-1", phaseOneAnswers)
	require.NoError(t, err)

	rec, position, err := c.SubmitPhaseTwo(context.Background(), "user-1", phaseTwoAnswers)
	require.NoError(t, err)
	assert.Equal(t, "app-001", rec.ID)
	assert.Equal(t, 3, position)

	assert.Equal(t, "Aria", promoter.lastUsername)
	assert.Equal(t, "3200", promoter.lastAnswers["gearscore"])
	assert.Equal(t, phaseTwoAnswers["pvp"], promoter.lastAnswers["pvp"])

	// Draft is consumed by promotion.
	_, ok, err := cache.Get(context.Background(), "user-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSubmitPhaseTwoKeepsDraftOnPromotionFailure(t *testing.T) {
	promoter := &fakePromoter{err: errors.New("queue unavailable")}
	c, cache := newTestCollector(promoter)

	_, err := c.Begin(context.Background(), "user-1", "Aria")
	require.NoError(t, err)
	_, err = c.SubmitPhaseOne(context.Background(), "user-1", phaseOneAnswers)
	require.NoError(t, err)

	_, _, err = c.SubmitPhaseTwo(context.Background(), "user-1", phaseTwoAnswers)
	require.Error(t, err)

	_, ok, err := cache.Get(context.Background(), "user-1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryCacheTTLExpiry(t *testing.T) {
	cache := NewMemoryCache(30*time.Minute, 100)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	require.NoError(t, cache.Put(context.Background(), models.IntakeDraft{UserID: "user-1"}))

	now = now.Add(29 * time.Minute)
	_, ok, err := cache.Get(context.Background(), "user-1")
	require.NoError(t, err)
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok, err = cache.Get(context.Background(), "user-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryCacheEvictsStalestAtCapacity(t *testing.T) {
	cache := NewMemoryCache(30*time.Minute, 2)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	require.NoError(t, cache.Put(context.Background(), models.IntakeDraft{UserID: "user-1"}))
	now = now.Add(time.Minute)
	require.NoError(t, cache.Put(context.Background(), models.IntakeDraft{UserID: "user-2"}))
	now = now.Add(time.Minute)
	require.NoError(t, cache.Put(context.Background(), models.IntakeDraft{UserID: "user-3"}))

	_, ok, _ := cache.Get(context.Background(), "user-1")
	assert.False(t, ok, "stalest draft should have been evicted")
	_, ok, _ = cache.Get(context.Background(), "user-2")
	assert.True(t, ok)
	_, ok, _ = cache.Get(context.Background(), "user-3")
	assert.True(t, ok)
}
