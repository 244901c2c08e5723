// Package queue derives the ordered pending view from a record sequence.
// It is a read-only view: nothing here mutates records.
package queue

import (
	"sort"

	"guild-intake/internal/models"
)

// PendingInOrder filters records to status pending, ordered by submission
// time ascending. Ties are broken by ID ascending so the order is
// deterministic.
func PendingInOrder(records []models.ApplicationRecord) []models.ApplicationRecord {
	pending := make([]models.ApplicationRecord, 0, len(records))
	for _, r := range records {
		if r.Status == models.StatusPending {
			pending = append(pending, r)
		}
	}

	sort.SliceStable(pending, func(i, j int) bool {
		if pending[i].SubmittedAt.Equal(pending[j].SubmittedAt) {
			return pending[i].ID < pending[j].ID
		}
		return pending[i].SubmittedAt.Before(pending[j].SubmittedAt)
	})

	return pending
}

// Next returns the first pending record, if any.
func Next(records []models.ApplicationRecord) (models.ApplicationRecord, bool) {
	pending := PendingInOrder(records)
	if len(pending) == 0 {
		return models.ApplicationRecord{}, false
	}
	return pending[0], true
}

// PositionOf returns the 1-based rank of the given pending record.
// Returns false when the record is absent or no longer pending.
func PositionOf(records []models.ApplicationRecord, id string) (int, bool) {
	for i, r := range PendingInOrder(records) {
		if r.ID == id {
			return i + 1, true
		}
	}
	return 0, false
}
