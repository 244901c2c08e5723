package review

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stderrors "guild-intake/internal/common/errors"
	"guild-intake/internal/common/logger"
	"guild-intake/internal/models"
)

// fakeStore keeps the saved document in memory and can be told to fail.
type fakeStore struct {
	mu      sync.Mutex
	records []models.ApplicationRecord
	loadErr error
	saveErr error
	saves   int
}

func (s *fakeStore) Load(ctx context.Context) ([]models.ApplicationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	out := make([]models.ApplicationRecord, len(s.records))
	copy(out, s.records)
	return out, nil
}

func (s *fakeStore) Save(ctx context.Context, records []models.ApplicationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	s.records = make([]models.ApplicationRecord, len(records))
	copy(s.records, records)
	return nil
}

type dispatchCall struct {
	method  string
	outcome models.Outcome
	recID   string
}

// recordingDispatcher captures every dispatch; sendErr makes all sends fail.
type recordingDispatcher struct {
	mu      sync.Mutex
	calls   []dispatchCall
	sendErr error
}

func (d *recordingDispatcher) record(method string, recID string, outcome models.Outcome) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, dispatchCall{method: method, outcome: outcome, recID: recID})
	return d.sendErr
}

func (d *recordingDispatcher) NotifyApplicant(ctx context.Context, rec models.ApplicationRecord, outcome models.Outcome, actorID string) error {
	return d.record("NotifyApplicant", rec.ID, outcome)
}

func (d *recordingDispatcher) NotifyReviewers(ctx context.Context, rec models.ApplicationRecord, outcome models.Outcome, actorID string) error {
	return d.record("NotifyReviewers", rec.ID, outcome)
}

func (d *recordingDispatcher) NotifyQueued(ctx context.Context, rec models.ApplicationRecord, position int) error {
	return d.record("NotifyQueued", rec.ID, models.OutcomeQueued)
}

func (d *recordingDispatcher) RequestInfo(ctx context.Context, rec models.ApplicationRecord, actorID string) error {
	return d.record("RequestInfo", rec.ID, models.OutcomeInfo)
}

func (d *recordingDispatcher) callsFor(method string) []dispatchCall {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []dispatchCall
	for _, c := range d.calls {
		if c.method == method {
			out = append(out, c)
		}
	}
	return out
}

func newTestMachine(t *testing.T, st *fakeStore, d *recordingDispatcher) *Machine {
	t.Helper()
	seq := 0
	return New(context.Background(), st, d, logger.NewNoOpLogger(),
		WithClock(func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("app-%03d", seq)
		}),
	)
}

func TestEnqueueQueuesAndNotifies(t *testing.T) {
	st := &fakeStore{}
	d := &recordingDispatcher{}
	m := newTestMachine(t, st, d)

	rec, position, err := m.Enqueue(context.Background(), "user-1", "Aria", map[string]string{"ign": "Aria"})
	require.NoError(t, err)

	assert.Equal(t, "app-001", rec.ID)
	assert.Equal(t, models.StatusPending, rec.Status)
	assert.Equal(t, 1, position)
	assert.Equal(t, 1, st.saves)
	require.Len(t, d.callsFor("NotifyQueued"), 1)
	require.Len(t, d.callsFor("NotifyReviewers"), 1)
	assert.Equal(t, models.OutcomeQueued, d.callsFor("NotifyReviewers")[0].outcome)
}

func TestEnqueueRejectsSecondPendingForSameApplicant(t *testing.T) {
	st := &fakeStore{}
	m := newTestMachine(t, st, &recordingDispatcher{})

	_, _, err := m.Enqueue(context.Background(), "user-1", "Aria", nil)
	require.NoError(t, err)

	_, _, err = m.Enqueue(context.Background(), "user-1", "Aria", nil)
	assert.True(t, stderrors.Is(err, stderrors.ErrCodeDuplicateApplication))
	assert.Equal(t, 1, st.saves)
}

func TestEnqueueAllowsResubmitAfterTerminal(t *testing.T) {
	st := &fakeStore{}
	m := newTestMachine(t, st, &recordingDispatcher{})

	first, _, err := m.Enqueue(context.Background(), "user-1", "Aria", nil)
	require.NoError(t, err)
	_, err = m.Reject(context.Background(), first.ID, "officer-1", "gear too low")
	require.NoError(t, err)

	_, position, err := m.Enqueue(context.Background(), "user-1", "Aria", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, position)
}

func TestAcceptStampsReviewerAndNotifies(t *testing.T) {
	st := &fakeStore{}
	d := &recordingDispatcher{}
	m := newTestMachine(t, st, d)

	rec, _, err := m.Enqueue(context.Background(), "user-1", "Aria", nil)
	require.NoError(t, err)

	got, err := m.Accept(context.Background(), rec.ID, "officer-1")
	require.NoError(t, err)

	assert.Equal(t, models.StatusAccepted, got.Status)
	assert.Equal(t, "officer-1", got.ProcessedBy)
	require.NotNil(t, got.ProcessedAt)
	assert.Empty(t, got.RejectionReason)

	applicant := d.callsFor("NotifyApplicant")
	require.Len(t, applicant, 1)
	assert.Equal(t, models.OutcomeAccepted, applicant[0].outcome)

	// Durable copy matches the reported state.
	assert.Equal(t, models.StatusAccepted, st.records[0].Status)
}

func TestRejectDefaultsReason(t *testing.T) {
	st := &fakeStore{}
	m := newTestMachine(t, st, &recordingDispatcher{})

	rec, _, err := m.Enqueue(context.Background(), "user-1", "Aria", nil)
	require.NoError(t, err)

	got, err := m.Reject(context.Background(), rec.ID, "officer-1", "")
	require.NoError(t, err)
	assert.Equal(t, "No reason provided.", got.RejectionReason)
}

func TestSecondReviewerLoses(t *testing.T) {
	st := &fakeStore{}
	m := newTestMachine(t, st, &recordingDispatcher{})

	rec, _, err := m.Enqueue(context.Background(), "user-1", "Aria", nil)
	require.NoError(t, err)

	_, err = m.Accept(context.Background(), rec.ID, "officer-1")
	require.NoError(t, err)

	_, err = m.Reject(context.Background(), rec.ID, "officer-2", "late")
	assert.True(t, stderrors.Is(err, stderrors.ErrCodeAlreadyProcessed))

	got, ok := m.Get(rec.ID)
	require.True(t, ok)
	assert.Equal(t, "officer-1", got.ProcessedBy)
	assert.Equal(t, models.StatusAccepted, got.Status)
}

func TestConcurrentReviewersExactlyOneWins(t *testing.T) {
	st := &fakeStore{}
	m := newTestMachine(t, st, &recordingDispatcher{})

	rec, _, err := m.Enqueue(context.Background(), "user-1", "Aria", nil)
	require.NoError(t, err)

	const reviewers = 8
	errs := make([]error, reviewers)
	var wg sync.WaitGroup
	for i := 0; i < reviewers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_, errs[i] = m.Accept(context.Background(), rec.ID, fmt.Sprintf("officer-%d", i))
			} else {
				_, errs[i] = m.Reject(context.Background(), rec.ID, fmt.Sprintf("officer-%d", i), "")
			}
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			assert.True(t, stderrors.Is(err, stderrors.ErrCodeAlreadyProcessed))
		}
	}
	assert.Equal(t, 1, wins)
}

func TestSaveFailureLeavesRecordPending(t *testing.T) {
	st := &fakeStore{}
	d := &recordingDispatcher{}
	m := newTestMachine(t, st, d)

	rec, _, err := m.Enqueue(context.Background(), "user-1", "Aria", nil)
	require.NoError(t, err)

	st.saveErr = errors.New("disk full")
	_, err = m.Accept(context.Background(), rec.ID, "officer-1")
	assert.True(t, stderrors.Is(err, stderrors.ErrCodeStoreUnavailable))

	// No in-memory commit, no outcome notifications.
	got, ok := m.Get(rec.ID)
	require.True(t, ok)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.Empty(t, d.callsFor("NotifyApplicant"))

	st.saveErr = nil
	_, err = m.Accept(context.Background(), rec.ID, "officer-1")
	assert.NoError(t, err)
}

func TestDispatchFailureDoesNotFailTransition(t *testing.T) {
	st := &fakeStore{}
	d := &recordingDispatcher{sendErr: errors.New("smtp down")}
	m := newTestMachine(t, st, d)

	rec, _, err := m.Enqueue(context.Background(), "user-1", "Aria", nil)
	require.NoError(t, err)

	got, err := m.Accept(context.Background(), rec.ID, "officer-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, got.Status)
}

func TestTransitionByApplicant(t *testing.T) {
	st := &fakeStore{}
	m := newTestMachine(t, st, &recordingDispatcher{})

	_, _, err := m.Enqueue(context.Background(), "user-1", "Aria", nil)
	require.NoError(t, err)

	got, err := m.AcceptByApplicant(context.Background(), "user-1", "officer-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, got.Status)

	_, err = m.RejectByApplicant(context.Background(), "user-1", "officer-1", "")
	assert.True(t, stderrors.Is(err, stderrors.ErrCodeNoPendingApplication))
}

func TestRequestInfoLeavesStateUntouched(t *testing.T) {
	st := &fakeStore{}
	d := &recordingDispatcher{}
	m := newTestMachine(t, st, d)

	rec, _, err := m.Enqueue(context.Background(), "user-1", "Aria", nil)
	require.NoError(t, err)
	savesBefore := st.saves

	got, err := m.RequestInfo(context.Background(), rec.ID, "officer-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.Equal(t, savesBefore, st.saves)
	require.Len(t, d.callsFor("RequestInfo"), 1)

	_, err = m.RequestInfo(context.Background(), "missing", "officer-1")
	assert.True(t, stderrors.Is(err, stderrors.ErrCodeApplicationNotFound))
}

func TestLoadFailureDegradesToEmptyQueue(t *testing.T) {
	st := &fakeStore{loadErr: errors.New("corrupt document")}
	m := newTestMachine(t, st, &recordingDispatcher{})

	assert.Empty(t, m.Pending())
	_, ok := m.Next()
	assert.False(t, ok)
}

func TestQueueViewsOrderAndPosition(t *testing.T) {
	st := &fakeStore{}
	clock := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	m := New(context.Background(), st, &recordingDispatcher{}, logger.NewNoOpLogger(),
		WithClock(func() time.Time {
			clock = clock.Add(time.Minute)
			return clock
		}),
	)

	var ids []string
	for i := 0; i < 3; i++ {
		rec, _, err := m.Enqueue(context.Background(), fmt.Sprintf("user-%d", i), "", nil)
		require.NoError(t, err)
		ids = append(ids, rec.ID)
	}

	pending := m.Pending()
	require.Len(t, pending, 3)
	assert.Equal(t, ids[0], pending[0].ID)

	head, ok := m.Next()
	require.True(t, ok)
	assert.Equal(t, ids[0], head.ID)

	pos, ok := m.PositionOf(ids[2])
	require.True(t, ok)
	assert.Equal(t, 3, pos)
}

type recordingHook struct {
	mu     sync.Mutex
	events []string
}

func (h *recordingHook) AfterTransition(ctx context.Context, event string, rec models.ApplicationRecord, actorID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
}

func TestHooksObserveCommittedTransitions(t *testing.T) {
	st := &fakeStore{}
	hook := &recordingHook{}
	seq := 0
	m := New(context.Background(), st, &recordingDispatcher{}, logger.NewNoOpLogger(),
		WithClock(func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }),
		WithIDGenerator(func() string { seq++; return fmt.Sprintf("app-%03d", seq) }),
		WithHooks(hook),
	)

	rec, _, err := m.Enqueue(context.Background(), "user-1", "Aria", nil)
	require.NoError(t, err)
	_, err = m.Accept(context.Background(), rec.ID, "officer-1")
	require.NoError(t, err)

	assert.Equal(t, []string{EventQueued, EventAccepted}, hook.events)
}
