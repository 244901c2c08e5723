package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guild-intake/internal/models"
)

func testRecords() []models.ApplicationRecord {
	processedAt := time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC)
	return []models.ApplicationRecord{
		{
			ID:          "app-1",
			UserID:      "user-1",
			Username:    "bas",
			SubmittedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
			Status:      models.StatusPending,
			Answers:     map[string]string{"ign": "Bas", "pvp": "yes"},
		},
		{
			ID:          "app-2",
			UserID:      "user-2",
			SubmittedAt: time.Date(2025, 3, 1, 13, 0, 0, 0, time.UTC),
			Status:      models.StatusRejected,
			Answers:     map[string]string{"ign": "Kaas"},
			ProcessedBy: "officer-1",
			ProcessedAt: &processedAt,

			RejectionReason: "No reason provided.",
		},
	}
}

func TestFileStore_Load_InitializesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "applications.json")
	fs := NewFileStore(path)

	records, err := fs.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)

	// Load created the file as a side effect
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(data))
}

func TestFileStore_SaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "applications.json")
	fs := NewFileStore(path)

	require.NoError(t, fs.Save(context.Background(), testRecords()))

	loaded, err := fs.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testRecords(), loaded)

	// save(load()) leaves the document byte-identical
	before, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, fs.Save(context.Background(), loaded))
	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestFileStore_Save_WholeDocumentReplace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "applications.json")
	fs := NewFileStore(path)

	require.NoError(t, fs.Save(context.Background(), testRecords()))
	require.NoError(t, fs.Save(context.Background(), testRecords()[:1]))

	loaded, err := fs.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, loaded, 1)
	assert.Equal(t, "app-1", loaded[0].ID)
}

func TestFileStore_Load_CorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "applications.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	fs := NewFileStore(path)
	_, err := fs.Load(context.Background())
	assert.Error(t, err)
}

func TestFileStore_DocumentLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "applications.json")
	fs := NewFileStore(path)

	require.NoError(t, fs.Save(context.Background(), testRecords()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Len(t, doc, 2)

	assert.Equal(t, "user-1", doc[0]["userId"])
	assert.Equal(t, "pending", doc[0]["status"])
	assert.Contains(t, doc[0], "timestamp")
	assert.Contains(t, doc[0], "data")
	assert.NotContains(t, doc[0], "processedBy")
	assert.Equal(t, "officer-1", doc[1]["processedBy"])
}
