package lifecycle

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"civicfix/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore applies mutations under a lock against a fresh copy, mirroring the
// transactional read-validate-write contract of the Firestore store.
type memStore struct {
	mu      sync.Mutex
	reports map[string]types.Report
	history map[string][]types.StatusHistoryEntry
}

func newMemStore(reports ...types.Report) *memStore {
	s := &memStore{
		reports: make(map[string]types.Report),
		history: make(map[string][]types.StatusHistoryEntry),
	}
	for _, r := range reports {
		s.reports[r.ID] = r
		s.history[r.ID] = []types.StatusHistoryEntry{{
			ReportID:  r.ID,
			Status:    r.Status,
			ChangedBy: r.ReporterID,
			ChangedAt: r.ReportedAt,
		}}
	}
	return s
}

func (s *memStore) GetReport(_ context.Context, id string) (types.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[id]
	if !ok {
		return types.Report{}, ErrReportNotFound
	}
	return r, nil
}

func (s *memStore) ApplyStatusChange(_ context.Context, id string, mutate func(r *types.Report) (types.StatusHistoryEntry, error)) (types.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[id]
	if !ok {
		return types.Report{}, ErrReportNotFound
	}
	entry, err := mutate(&r)
	if err != nil {
		return types.Report{}, err
	}
	s.reports[id] = r
	s.history[id] = append(s.history[id], entry)
	return r, nil
}

func (s *memStore) History(_ context.Context, id string) ([]types.StatusHistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.StatusHistoryEntry(nil), s.history[id]...), nil
}

func newReport(id, status string) types.Report {
	return types.Report{
		ID:         id,
		Category:   "Pothole",
		Status:     status,
		ReporterID: "citizen-1",
		Latitude:   28.6139,
		Longitude:  77.2090,
		ReportedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestValidateTransitionTable(t *testing.T) {
	cases := []struct {
		current, target string
		noop            bool
		wantErr         any
	}{
		{types.StatusReported, types.StatusAcknowledged, false, nil},
		{types.StatusAcknowledged, types.StatusInProgress, false, nil},
		{types.StatusInProgress, types.StatusAcknowledged, false, nil}, // backward is fine
		{types.StatusInProgress, types.StatusReported, false, nil},    // any backward move
		{types.StatusReported, types.StatusReported, true, nil},
		{types.StatusReported, types.StatusInProgress, false, &SkippedStageError{}},
		{types.StatusReported, types.StatusResolved, false, &ResolutionRequiresEvidenceError{}},
		{types.StatusAcknowledged, types.StatusResolved, false, &ResolutionRequiresEvidenceError{}},
		{types.StatusResolved, types.StatusInProgress, false, &LockedAfterResolutionError{}},
		{types.StatusResolved, types.StatusReported, false, &LockedAfterResolutionError{}},
		{types.StatusReported, "bogus", false, &UnknownStatusError{}},
	}

	for _, tc := range cases {
		noop, err := ValidateTransition(tc.current, tc.target)
		if tc.wantErr == nil {
			assert.NoError(t, err, "%s -> %s", tc.current, tc.target)
			assert.Equal(t, tc.noop, noop, "%s -> %s", tc.current, tc.target)
			continue
		}
		switch tc.wantErr.(type) {
		case *SkippedStageError:
			var e *SkippedStageError
			assert.True(t, errors.As(err, &e), "%s -> %s", tc.current, tc.target)
		case *ResolutionRequiresEvidenceError:
			var e *ResolutionRequiresEvidenceError
			assert.True(t, errors.As(err, &e), "%s -> %s", tc.current, tc.target)
		case *LockedAfterResolutionError:
			var e *LockedAfterResolutionError
			assert.True(t, errors.As(err, &e), "%s -> %s", tc.current, tc.target)
		case *UnknownStatusError:
			var e *UnknownStatusError
			assert.True(t, errors.As(err, &e), "%s -> %s", tc.current, tc.target)
		}
	}
}

func TestUpdateStatusForwardStampsAndAppendsHistory(t *testing.T) {
	store := newMemStore(newReport("r1", types.StatusReported))
	engine := NewEngine(store)

	res, err := engine.UpdateStatus(context.Background(), "r1", types.StatusAcknowledged, "admin-1", "on it")
	require.NoError(t, err)
	assert.Equal(t, types.StatusReported, res.OldStatus)
	assert.Equal(t, types.StatusAcknowledged, res.NewStatus)
	assert.Equal(t, "admin-1", res.ChangedBy)
	assert.False(t, res.NoChange)

	r, _ := store.GetReport(context.Background(), "r1")
	require.NotNil(t, r.AcknowledgedAt)

	history, _ := store.History(context.Background(), "r1")
	require.Len(t, history, 2) // initial reported + this change
	assert.Equal(t, types.StatusAcknowledged, history[1].Status)
	assert.Equal(t, "on it", history[1].Notes)
}

func TestUpdateStatusSkippedStageRejected(t *testing.T) {
	store := newMemStore(newReport("r1", types.StatusReported))
	engine := NewEngine(store)

	_, err := engine.UpdateStatus(context.Background(), "r1", types.StatusInProgress, "admin-1", "")
	var skipErr *SkippedStageError
	require.True(t, errors.As(err, &skipErr))
	assert.Equal(t, types.StatusReported, skipErr.Current)
	assert.Equal(t, types.StatusInProgress, skipErr.Attempted)

	// Nothing committed.
	r, _ := store.GetReport(context.Background(), "r1")
	assert.Equal(t, types.StatusReported, r.Status)
	history, _ := store.History(context.Background(), "r1")
	assert.Len(t, history, 1)
}

func TestUpdateStatusBackwardAccepted(t *testing.T) {
	r := newReport("r1", types.StatusInProgress)
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	r.AcknowledgedAt = &now
	r.InProgressAt = &now
	store := newMemStore(r)
	engine := NewEngine(store)

	res, err := engine.UpdateStatus(context.Background(), "r1", types.StatusAcknowledged, "admin-1", "")
	require.NoError(t, err)
	assert.Equal(t, types.StatusAcknowledged, res.NewStatus)

	// Set-once: the original acknowledged timestamp survives the re-entry.
	got, _ := store.GetReport(context.Background(), "r1")
	assert.Equal(t, now, *got.AcknowledgedAt)
}

func TestUpdateStatusSameStatusIsNoop(t *testing.T) {
	store := newMemStore(newReport("r1", types.StatusReported))
	engine := NewEngine(store)

	res, err := engine.UpdateStatus(context.Background(), "r1", types.StatusReported, "admin-1", "")
	require.NoError(t, err)
	assert.True(t, res.NoChange)

	history, _ := store.History(context.Background(), "r1")
	assert.Len(t, history, 1)
}

func TestUpdateStatusResolvedViaGenericPathRejected(t *testing.T) {
	store := newMemStore(newReport("r1", types.StatusInProgress))
	engine := NewEngine(store)

	_, err := engine.UpdateStatus(context.Background(), "r1", types.StatusResolved, "admin-1", "")
	var evErr *ResolutionRequiresEvidenceError
	assert.True(t, errors.As(err, &evErr))
}

func TestUpdateStatusLockedAfterResolution(t *testing.T) {
	store := newMemStore(newReport("r1", types.StatusResolved))
	engine := NewEngine(store)

	for _, target := range []string{types.StatusReported, types.StatusAcknowledged, types.StatusInProgress} {
		_, err := engine.UpdateStatus(context.Background(), "r1", target, "admin-1", "")
		var lockErr *LockedAfterResolutionError
		assert.True(t, errors.As(err, &lockErr), "target %s", target)
	}
}

func TestUpdateStatusDeletedReportRejected(t *testing.T) {
	r := newReport("r1", types.StatusDeleted)
	r.IsDeleted = true
	store := newMemStore(r)
	engine := NewEngine(store)

	_, err := engine.UpdateStatus(context.Background(), "r1", types.StatusAcknowledged, "admin-1", "")
	assert.ErrorIs(t, err, ErrReportDeleted)
}

func TestUpdateStatusUnknownReport(t *testing.T) {
	engine := NewEngine(newMemStore())
	_, err := engine.UpdateStatus(context.Background(), "missing", types.StatusAcknowledged, "admin-1", "")
	assert.ErrorIs(t, err, ErrReportNotFound)
}

func TestResolveWithEvidence(t *testing.T) {
	store := newMemStore(newReport("r1", types.StatusInProgress))
	engine := NewEngine(store)

	res, err := engine.ResolveWithEvidence(context.Background(), "r1", "admin-1", "Resolved with geo-verified evidence. Distance: 12.40m", func(r *types.Report) {
		r.ResolvedBy = "admin-1"
		r.ResolutionImageURL = "/uploads/x.jpg"
	})
	require.NoError(t, err)
	assert.Equal(t, types.StatusInProgress, res.OldStatus)
	assert.Equal(t, types.StatusResolved, res.NewStatus)

	r, _ := store.GetReport(context.Background(), "r1")
	assert.Equal(t, types.StatusResolved, r.Status)
	assert.Equal(t, "admin-1", r.ResolvedBy)
	assert.Equal(t, "/uploads/x.jpg", r.ResolutionImageURL)
	require.NotNil(t, r.ResolvedAt)

	history, _ := store.History(context.Background(), "r1")
	require.Len(t, history, 2)
	assert.Equal(t, types.StatusResolved, history[1].Status)
	assert.Contains(t, history[1].Notes, "Distance")
}

func TestResolveWithEvidenceTwiceRejected(t *testing.T) {
	store := newMemStore(newReport("r1", types.StatusReported))
	engine := NewEngine(store)

	_, err := engine.ResolveWithEvidence(context.Background(), "r1", "admin-1", "", nil)
	require.NoError(t, err)

	_, err = engine.ResolveWithEvidence(context.Background(), "r1", "admin-1", "", nil)
	var arErr *AlreadyResolvedError
	require.True(t, errors.As(err, &arErr))
	assert.Equal(t, "r1", arErr.ReportID)
}

func TestConcurrentResolvesExactlyOneSucceeds(t *testing.T) {
	store := newMemStore(newReport("r1", types.StatusInProgress))
	engine := NewEngine(store)

	const attempts = 8
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := engine.ResolveWithEvidence(context.Background(), "r1", "admin-1", "", nil)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		var arErr *AlreadyResolvedError
		assert.True(t, errors.As(err, &arErr))
	}
	assert.Equal(t, 1, succeeded)

	history, _ := store.History(context.Background(), "r1")
	assert.Len(t, history, 2)
}

func TestTimelineAgreesWithTimestamps(t *testing.T) {
	store := newMemStore(newReport("r1", types.StatusReported))
	engine := NewEngine(store)

	tl, err := engine.Timeline(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "completed", tl.Stages[types.StatusReported].Status)
	assert.Equal(t, "pending", tl.Stages[types.StatusAcknowledged].Status)
	assert.Equal(t, "pending", tl.Stages[types.StatusInProgress].Status)
	assert.Equal(t, "pending", tl.Stages[types.StatusResolved].Status)

	_, err = engine.UpdateStatus(context.Background(), "r1", types.StatusAcknowledged, "admin-1", "")
	require.NoError(t, err)

	tl, err = engine.Timeline(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "completed", tl.Stages[types.StatusAcknowledged].Status)
	require.NotNil(t, tl.Stages[types.StatusAcknowledged].Timestamp)
	assert.Equal(t, types.StatusAcknowledged, tl.CurrentStatus)
	assert.Len(t, tl.History, 2)
}

func TestHistoryChronological(t *testing.T) {
	store := newMemStore(newReport("r1", types.StatusReported))
	engine := NewEngine(store)

	_, err := engine.UpdateStatus(context.Background(), "r1", types.StatusAcknowledged, "admin-1", "")
	require.NoError(t, err)
	_, err = engine.UpdateStatus(context.Background(), "r1", types.StatusInProgress, "admin-2", "")
	require.NoError(t, err)

	history, err := engine.History(context.Background(), "r1")
	require.NoError(t, err)
	require.Len(t, history, 3)
	for i := 1; i < len(history); i++ {
		assert.False(t, history[i].ChangedAt.Before(history[i-1].ChangedAt))
	}
	assert.Equal(t, types.StatusInProgress, history[2].Status)
}
