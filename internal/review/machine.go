// Package review implements the application queue and its review state
// machine. The Machine is the single mutator of the record list and the only
// writer of the durable store; every transition re-checks status and persists
// under one lock, so racing reviewers resolve to exactly one winner.
package review

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	stderrors "guild-intake/internal/common/errors"
	"guild-intake/internal/common/logger"
	"guild-intake/internal/common/metrics"
	"guild-intake/internal/models"
	"guild-intake/internal/notify"
	"guild-intake/internal/queue"
	"guild-intake/internal/store"
)

// Transition events delivered to hooks after a committed change.
const (
	EventQueued   = "application_queued"
	EventAccepted = "application_accepted"
	EventRejected = "application_rejected"
)

// TransitionHook observes committed transitions. Hooks run after the store
// write and outside the lock; they cannot fail a transition.
type TransitionHook interface {
	AfterTransition(ctx context.Context, event string, rec models.ApplicationRecord, actorID string)
}

// Machine owns the in-memory record list. All mutation goes through it.
type Machine struct {
	mu         sync.Mutex
	records    []models.ApplicationRecord
	store      store.Store
	dispatcher notify.Dispatcher
	logger     logger.Logger
	hooks      []TransitionHook
	now        func() time.Time
	newID      func() string
}

type Option func(*Machine)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) { m.now = now }
}

// WithIDGenerator overrides record ID minting.
func WithIDGenerator(newID func() string) Option {
	return func(m *Machine) { m.newID = newID }
}

// WithHooks registers post-commit observers (audit log, archive index).
func WithHooks(hooks ...TransitionHook) Option {
	return func(m *Machine) { m.hooks = append(m.hooks, hooks...) }
}

// New loads the durable document and returns a ready machine. A load failure
// degrades to an empty queue: logged, never fatal.
func New(ctx context.Context, st store.Store, dispatcher notify.Dispatcher, log logger.Logger, opts ...Option) *Machine {
	m := &Machine{
		store:      st,
		dispatcher: dispatcher,
		logger:     log.WithFields(map[string]interface{}{"component": "review"}),
		now:        func() time.Time { return time.Now().UTC() },
		newID:      func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(m)
	}

	records, err := st.Load(ctx)
	if err != nil {
		m.logger.Error("store load failed, starting with empty queue", map[string]interface{}{
			"error": fmt.Sprint(err),
		})
		records = nil
	}
	m.records = records
	return m
}

// Enqueue promotes merged intake answers to a pending record: mints an ID,
// stamps the submission time, persists, and reports the queue position.
// An applicant with a pending record cannot queue a second one.
func (m *Machine) Enqueue(ctx context.Context, userID, username string, answers map[string]string) (models.ApplicationRecord, int, error) {
	m.mu.Lock()

	for _, r := range m.records {
		if r.UserID == userID && r.Status == models.StatusPending {
			m.mu.Unlock()
			return models.ApplicationRecord{}, 0, stderrors.NewDuplicateApplicationError(userID)
		}
	}

	rec := models.ApplicationRecord{
		ID:          m.newID(),
		UserID:      userID,
		Username:    username,
		SubmittedAt: m.now(),
		Status:      models.StatusPending,
		Answers:     answers,
	}

	next := make([]models.ApplicationRecord, len(m.records), len(m.records)+1)
	copy(next, m.records)
	next = append(next, rec)

	if err := m.store.Save(ctx, next); err != nil {
		m.mu.Unlock()
		return models.ApplicationRecord{}, 0, stderrors.NewStoreUnavailableError("save", err)
	}
	m.records = next

	position, _ := queue.PositionOf(m.records, rec.ID)
	m.mu.Unlock()

	metrics.ApplicationsSubmitted.Inc()
	m.logger.Info("application queued", map[string]interface{}{
		"applicationId": rec.ID,
		"userId":        userID,
		"position":      position,
	})

	m.dispatch(ctx, "queued", func() error {
		return m.dispatcher.NotifyQueued(ctx, rec, position)
	})
	m.dispatch(ctx, "reviewers", func() error {
		return m.dispatcher.NotifyReviewers(ctx, rec, models.OutcomeQueued, "")
	})
	m.runHooks(ctx, EventQueued, rec, "")

	return rec.Clone(), position, nil
}

// Accept transitions the record to accepted. Exactly one of two racing
// reviewers succeeds; the other observes ALREADY_PROCESSED.
func (m *Machine) Accept(ctx context.Context, id, reviewerID string) (models.ApplicationRecord, error) {
	return m.transition(ctx, byID(id), reviewerID, models.StatusAccepted, "")
}

// Reject transitions the record to rejected. An empty reason is recorded as
// "No reason provided.".
func (m *Machine) Reject(ctx context.Context, id, reviewerID, reason string) (models.ApplicationRecord, error) {
	return m.transition(ctx, byID(id), reviewerID, models.StatusRejected, reason)
}

// AcceptByApplicant resolves the applicant's single pending record and
// accepts it.
func (m *Machine) AcceptByApplicant(ctx context.Context, userID, reviewerID string) (models.ApplicationRecord, error) {
	return m.transition(ctx, byApplicant(userID), reviewerID, models.StatusAccepted, "")
}

// RejectByApplicant resolves the applicant's single pending record and
// rejects it.
func (m *Machine) RejectByApplicant(ctx context.Context, userID, reviewerID, reason string) (models.ApplicationRecord, error) {
	return m.transition(ctx, byApplicant(userID), reviewerID, models.StatusRejected, reason)
}

// RequestInfo asks the applicant for more detail (a build screenshot).
// No state change: the record may be in any status.
func (m *Machine) RequestInfo(ctx context.Context, id, reviewerID string) (models.ApplicationRecord, error) {
	m.mu.Lock()
	idx := m.indexByID(id)
	if idx == -1 {
		m.mu.Unlock()
		return models.ApplicationRecord{}, stderrors.NewApplicationNotFoundError(id)
	}
	rec := m.records[idx].Clone()
	m.mu.Unlock()

	m.dispatch(ctx, "applicant", func() error {
		return m.dispatcher.RequestInfo(ctx, rec, reviewerID)
	})
	return rec, nil
}

// selector locates the target record for a transition and names the error
// when it is absent.
type selector struct {
	locate   func(records []models.ApplicationRecord) int
	notFound func() error
}

func byID(id string) selector {
	return selector{
		locate: func(records []models.ApplicationRecord) int {
			for i, r := range records {
				if r.ID == id {
					return i
				}
			}
			return -1
		},
		notFound: func() error { return stderrors.NewApplicationNotFoundError(id) },
	}
}

// byApplicant resolves the oldest pending record for the applicant.
func byApplicant(userID string) selector {
	return selector{
		locate: func(records []models.ApplicationRecord) int {
			head := ""
			for _, r := range queue.PendingInOrder(records) {
				if r.UserID == userID {
					head = r.ID
					break
				}
			}
			if head == "" {
				return -1
			}
			for i, r := range records {
				if r.ID == head {
					return i
				}
			}
			return -1
		},
		notFound: func() error { return stderrors.NewNoPendingApplicationError(userID) },
	}
}

func (m *Machine) transition(ctx context.Context, sel selector, reviewerID string, target models.ApplicationStatus, reason string) (models.ApplicationRecord, error) {
	m.mu.Lock()

	idx := sel.locate(m.records)
	if idx == -1 {
		m.mu.Unlock()
		return models.ApplicationRecord{}, sel.notFound()
	}

	current := m.records[idx]
	if current.Status != models.StatusPending {
		m.mu.Unlock()
		return models.ApplicationRecord{}, stderrors.NewAlreadyProcessedError(current.ID, string(current.Status))
	}

	updated := current.Clone()
	updated.Status = target
	updated.ProcessedBy = reviewerID
	processedAt := m.now()
	updated.ProcessedAt = &processedAt
	if target == models.StatusRejected {
		if reason == "" {
			reason = "No reason provided."
		}
		updated.RejectionReason = reason
	}

	next := make([]models.ApplicationRecord, len(m.records))
	copy(next, m.records)
	next[idx] = updated

	// Persist before reporting success; a failed save commits nothing.
	if err := m.store.Save(ctx, next); err != nil {
		m.mu.Unlock()
		return models.ApplicationRecord{}, stderrors.NewStoreUnavailableError("save", err)
	}
	m.records = next
	m.mu.Unlock()

	outcome := models.OutcomeAccepted
	event := EventAccepted
	if target == models.StatusRejected {
		outcome = models.OutcomeRejected
		event = EventRejected
	}

	metrics.ApplicationsProcessed.WithLabelValues(string(target)).Inc()
	m.logger.Info("application processed", map[string]interface{}{
		"applicationId": updated.ID,
		"userId":        updated.UserID,
		"status":        string(target),
		"processedBy":   reviewerID,
	})

	m.dispatch(ctx, "applicant", func() error {
		return m.dispatcher.NotifyApplicant(ctx, updated, outcome, reviewerID)
	})
	m.dispatch(ctx, "reviewers", func() error {
		return m.dispatcher.NotifyReviewers(ctx, updated, outcome, reviewerID)
	})
	m.runHooks(ctx, event, updated, reviewerID)

	return updated.Clone(), nil
}

// dispatch sends one notification, swallowing failures: a committed
// transition never rolls back because a send failed.
func (m *Machine) dispatch(ctx context.Context, channel string, send func() error) {
	if err := send(); err != nil {
		metrics.NotificationFailures.WithLabelValues(channel).Inc()
		m.logger.Warn("notification dispatch failed", map[string]interface{}{
			"channel": channel,
			"error":   fmt.Sprint(err),
		})
	}
}

func (m *Machine) runHooks(ctx context.Context, event string, rec models.ApplicationRecord, actorID string) {
	for _, h := range m.hooks {
		h.AfterTransition(ctx, event, rec, actorID)
	}
}

func (m *Machine) indexByID(id string) int {
	for i, r := range m.records {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// Pending returns the current queue, oldest first.
func (m *Machine) Pending() []models.ApplicationRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	pending := queue.PendingInOrder(m.records)
	out := make([]models.ApplicationRecord, len(pending))
	for i, r := range pending {
		out[i] = r.Clone()
	}
	return out
}

// Next returns the head of the queue, if any.
func (m *Machine) Next() (models.ApplicationRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := queue.Next(m.records)
	if !ok {
		return models.ApplicationRecord{}, false
	}
	return rec.Clone(), true
}

// PositionOf returns the 1-based queue rank of a pending record.
func (m *Machine) PositionOf(id string) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return queue.PositionOf(m.records, id)
}

// Get returns the record with the given ID regardless of status.
func (m *Machine) Get(id string) (models.ApplicationRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.indexByID(id)
	if idx == -1 {
		return models.ApplicationRecord{}, false
	}
	return m.records[idx].Clone(), true
}
