// Package archive mirrors processed applications into an Elasticsearch index
// so officers can search decision history without scanning the durable
// document. Indexing is a post-commit hook and best-effort.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"guild-intake/internal/common/logger"
	"guild-intake/internal/models"
)

// Indexer writes terminal application records to the archive index.
type Indexer struct {
	es     *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewIndexer(es *elasticsearch.Client, index string, log logger.Logger) *Indexer {
	return &Indexer{
		es:     es,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "archive"}),
	}
}

// AfterTransition implements review.TransitionHook. Only terminal records
// are archived; queued events are skipped.
func (i *Indexer) AfterTransition(ctx context.Context, event string, rec models.ApplicationRecord, actorID string) {
	if !rec.Status.IsTerminal() {
		return
	}

	if err := i.Index(ctx, rec); err != nil {
		i.logger.Warn("archive indexing failed", map[string]interface{}{
			"applicationId": rec.ID,
			"event":         event,
			"error":         fmt.Sprint(err),
		})
	}
}

// Index upserts one record document, keyed by application ID so re-indexing
// is idempotent.
func (i *Indexer) Index(ctx context.Context, rec models.ApplicationRecord) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      i.index,
		DocumentID: rec.ID,
		Body:       strings.NewReader(string(body)),
		Refresh:    "false",
	}

	res, err := req.Do(ctx, i.es)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index request failed: %s", res.String())
	}
	return nil
}

// Search finds archived records matching the query string across applicant
// name and answers.
func (i *Indexer) Search(ctx context.Context, query string, size int) ([]models.ApplicationRecord, error) {
	queryBody := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"username", "userId", "data.*", "rejectionReason"},
			},
		},
		"size": size,
	}

	body, _ := json.Marshal(queryBody)
	req := esapi.SearchRequest{
		Index: []string{i.index},
		Body:  strings.NewReader(string(body)),
	}

	res, err := req.Do(ctx, i.es)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search failed: %s", res.String())
	}

	var r struct {
		Hits struct {
			Hits []struct {
				Source models.ApplicationRecord `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, err
	}

	records := make([]models.ApplicationRecord, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		records = append(records, hit.Source)
	}
	return records, nil
}
