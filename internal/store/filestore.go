package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"guild-intake/internal/models"
)

// FileStore keeps the full record sequence in one JSON file. Best-effort
// durability: a failed write leaves the previous document on disk, and no
// atomicity is guaranteed beyond what the filesystem provides.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load(_ context.Context) ([]models.ApplicationRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			// First run: create the document so later saves have a home.
			if werr := s.write(nil); werr != nil {
				return nil, fmt.Errorf("initialize store file: %w", werr)
			}
			return []models.ApplicationRecord{}, nil
		}
		return nil, fmt.Errorf("read store file: %w", err)
	}

	if len(data) == 0 {
		return []models.ApplicationRecord{}, nil
	}

	var records []models.ApplicationRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse store file: %w", err)
	}
	return records, nil
}

func (s *FileStore) Save(_ context.Context, records []models.ApplicationRecord) error {
	if err := s.write(records); err != nil {
		return fmt.Errorf("write store file: %w", err)
	}
	return nil
}

func (s *FileStore) write(records []models.ApplicationRecord) error {
	if records == nil {
		records = []models.ApplicationRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}
