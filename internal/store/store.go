// Package store owns the durable application document. The representation is
// a single human-readable JSON array rewritten in full on every change, so
// callers must serialize Save calls; the review machine is the only writer.
package store

import (
	"context"

	"guild-intake/internal/models"
)

// Store is the durable mapping from application ID to record.
type Store interface {
	// Load reads the durable representation. A missing document is not an
	// error: storage is initialized and an empty sequence returned.
	Load(ctx context.Context) ([]models.ApplicationRecord, error)

	// Save atomically replaces the durable representation with the given
	// full sequence. Whole-document overwrite, not incremental.
	Save(ctx context.Context, records []models.ApplicationRecord) error
}
