package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guild-intake/internal/models"
)

func rec(id, userID string, submitted time.Time, status models.ApplicationStatus) models.ApplicationRecord {
	return models.ApplicationRecord{
		ID:          id,
		UserID:      userID,
		SubmittedAt: submitted,
		Status:      status,
		Answers:     map[string]string{"ign": userID},
	}
}

func TestPendingInOrder_FiltersAndSorts(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	records := []models.ApplicationRecord{
		rec("app-3", "u3", base.Add(2*time.Hour), models.StatusPending),
		rec("app-1", "u1", base, models.StatusAccepted),
		rec("app-2", "u2", base.Add(time.Hour), models.StatusPending),
		rec("app-4", "u4", base.Add(30*time.Minute), models.StatusRejected),
		rec("app-5", "u5", base.Add(10*time.Minute), models.StatusPending),
	}

	pending := PendingInOrder(records)
	require.Len(t, pending, 3)
	assert.Equal(t, []string{"app-5", "app-2", "app-3"}, []string{pending[0].ID, pending[1].ID, pending[2].ID})
}

func TestPendingInOrder_TieBrokenByID(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	records := []models.ApplicationRecord{
		rec("app-b", "u2", at, models.StatusPending),
		rec("app-a", "u1", at, models.StatusPending),
	}

	pending := PendingInOrder(records)
	require.Len(t, pending, 2)
	assert.Equal(t, "app-a", pending[0].ID)
	assert.Equal(t, "app-b", pending[1].ID)
}

func TestPendingInOrder_InsertionDoesNotReorder(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	records := []models.ApplicationRecord{
		rec("app-1", "u1", base, models.StatusPending),
		rec("app-2", "u2", base.Add(time.Hour), models.StatusPending),
	}
	before := PendingInOrder(records)

	records = append(records, rec("app-3", "u3", base.Add(2*time.Hour), models.StatusPending))
	after := PendingInOrder(records)

	require.Len(t, after, 3)
	for i := range before {
		assert.Equal(t, before[i].ID, after[i].ID)
	}
}

func TestNext(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	_, ok := Next(nil)
	assert.False(t, ok)

	_, ok = Next([]models.ApplicationRecord{rec("app-1", "u1", base, models.StatusAccepted)})
	assert.False(t, ok)

	head, ok := Next([]models.ApplicationRecord{
		rec("app-2", "u2", base.Add(time.Hour), models.StatusPending),
		rec("app-1", "u1", base, models.StatusPending),
	})
	require.True(t, ok)
	assert.Equal(t, "app-1", head.ID)
}

func TestPositionOf(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	records := make([]models.ApplicationRecord, 0, 5)
	for i := 0; i < 5; i++ {
		records = append(records, rec(
			string(rune('a'+i)), "u", base.Add(time.Duration(i)*time.Minute), models.StatusPending))
	}

	// 3rd-oldest of 5 pending records ranks 3
	pos, ok := PositionOf(records, "c")
	require.True(t, ok)
	assert.Equal(t, 3, pos)

	records[0].Status = models.StatusAccepted
	pos, ok = PositionOf(records, "c")
	require.True(t, ok)
	assert.Equal(t, 2, pos)

	_, ok = PositionOf(records, "a")
	assert.False(t, ok, "non-pending record has no queue position")

	_, ok = PositionOf(records, "missing")
	assert.False(t, ok)
}
