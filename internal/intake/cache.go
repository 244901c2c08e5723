// Package intake runs the two-phase application form: begin a draft, collect
// phase-one answers, collect phase-two answers, promote to the review queue.
// Drafts are transient and TTL-bounded; abandoning the form costs nothing.
package intake

import (
	"context"
	"sync"
	"time"

	"guild-intake/internal/models"
)

// Cache stores in-flight intake drafts keyed by applicant user ID.
// Implementations bound memory: entries expire after a TTL. Get returns
// ok=false for a missing or expired draft; Put overwrites any existing draft
// for the user.
type Cache interface {
	Get(ctx context.Context, userID string) (models.IntakeDraft, bool, error)
	Put(ctx context.Context, draft models.IntakeDraft) error
	Delete(ctx context.Context, userID string) error
}

type memoryEntry struct {
	draft     models.IntakeDraft
	expiresAt time.Time
}

// MemoryCache is the default single-process backend. Capacity is capped:
// when full, the stalest draft is evicted to admit a new one.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	max     int
	now     func() time.Time
}

func NewMemoryCache(ttl time.Duration, maxDrafts int) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		max:     maxDrafts,
		now:     time.Now,
	}
}

func (c *MemoryCache) Get(ctx context.Context, userID string) (models.IntakeDraft, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[userID]
	if !ok {
		return models.IntakeDraft{}, false, nil
	}
	if c.now().After(entry.expiresAt) {
		delete(c.entries, userID)
		return models.IntakeDraft{}, false, nil
	}
	return entry.draft, true, nil
}

func (c *MemoryCache) Put(ctx context.Context, draft models.IntakeDraft) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sweepLocked()
	if _, exists := c.entries[draft.UserID]; !exists && c.max > 0 && len(c.entries) >= c.max {
		c.evictStalestLocked()
	}
	c.entries[draft.UserID] = memoryEntry{
		draft:     draft,
		expiresAt: c.now().Add(c.ttl),
	}
	return nil
}

func (c *MemoryCache) Delete(ctx context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
	return nil
}

func (c *MemoryCache) sweepLocked() {
	now := c.now()
	for userID, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, userID)
		}
	}
}

func (c *MemoryCache) evictStalestLocked() {
	var victim string
	var oldest time.Time
	for userID, entry := range c.entries {
		if victim == "" || entry.expiresAt.Before(oldest) {
			victim = userID
			oldest = entry.expiresAt
		}
	}
	if victim != "" {
		delete(c.entries, victim)
	}
}
