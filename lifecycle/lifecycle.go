// Package lifecycle enforces the report status state machine: forward
// progression one stage at a time, backward moves allowed, resolved terminal
// and reachable only through the evidence-gated path.
package lifecycle

import (
	"context"
	"errors"
	"time"

	"civicfix/types"
)

var stageOrder = []string{
	types.StatusReported,
	types.StatusAcknowledged,
	types.StatusInProgress,
	types.StatusResolved,
}

// StageOrder returns the ordered lifecycle stages.
func StageOrder() []string {
	out := make([]string, len(stageOrder))
	copy(out, stageOrder)
	return out
}

// StageIndex returns the ordinal of a status within the lifecycle, or false
// if the status is not part of it.
func StageIndex(status string) (int, bool) {
	for i, s := range stageOrder {
		if s == status {
			return i, true
		}
	}
	return 0, false
}

// ValidateTransition checks the generic transition rule. It returns
// noop=true when the target equals the current status (accepted without any
// state change) and a typed error for every invalid request.
func ValidateTransition(current, target string) (noop bool, err error) {
	j, ok := StageIndex(target)
	if !ok {
		return false, &UnknownStatusError{Status: target}
	}

	if current == target {
		return true, nil
	}

	if current == types.StatusResolved {
		return false, &LockedAfterResolutionError{Attempted: target}
	}

	if target == types.StatusResolved {
		return false, &ResolutionRequiresEvidenceError{}
	}

	i, ok := StageIndex(current)
	if !ok {
		// A report whose status left the vocabulary (legacy data) can only be
		// repaired through backward-compatible moves; treat it as stage zero.
		i = 0
	}

	if j > i+1 {
		return false, &SkippedStageError{Current: current, Attempted: target}
	}

	return false, nil
}

// Store is the persistence surface the engine needs. ApplyStatusChange must
// read the report, run mutate on the fresh copy, and commit the mutated
// report together with the returned history entry atomically; concurrent
// conflicting changes must not both commit.
type Store interface {
	GetReport(ctx context.Context, reportID string) (types.Report, error)
	ApplyStatusChange(ctx context.Context, reportID string, mutate func(r *types.Report) (types.StatusHistoryEntry, error)) (types.Report, error)
	History(ctx context.Context, reportID string) ([]types.StatusHistoryEntry, error)
}

// TransitionResult describes an accepted transition for the response body and
// downstream notification.
type TransitionResult struct {
	ReportID  string    `json:"report_id"`
	OldStatus string    `json:"old_status"`
	NewStatus string    `json:"new_status"`
	ChangedBy string    `json:"changed_by"`
	ChangedAt time.Time `json:"changed_at"`
	Notes     string    `json:"notes,omitempty"`
	NoChange  bool      `json:"no_change,omitempty"`
}

type Engine struct {
	store Store
	now   func() time.Time
}

func NewEngine(store Store) *Engine {
	return &Engine{store: store, now: time.Now}
}

// UpdateStatus applies the generic transition rule and records the change.
// Same-status requests succeed as a no-op without touching the store.
func (e *Engine) UpdateStatus(ctx context.Context, reportID, newStatus, changedBy, notes string) (*TransitionResult, error) {
	if _, ok := StageIndex(newStatus); !ok {
		return nil, &UnknownStatusError{Status: newStatus}
	}

	var result TransitionResult
	_, err := e.store.ApplyStatusChange(ctx, reportID, func(r *types.Report) (types.StatusHistoryEntry, error) {
		if r.IsDeleted {
			return types.StatusHistoryEntry{}, ErrReportDeleted
		}

		noop, err := ValidateTransition(r.Status, newStatus)
		if err != nil {
			return types.StatusHistoryEntry{}, err
		}
		if noop {
			result = TransitionResult{
				ReportID:  reportID,
				OldStatus: r.Status,
				NewStatus: r.Status,
				ChangedBy: changedBy,
				ChangedAt: e.now().UTC(),
				NoChange:  true,
			}
			return types.StatusHistoryEntry{}, errNoChange
		}

		now := e.now().UTC()
		old := r.Status
		r.Status = newStatus
		r.UpdatedAt = &now
		e.stampStage(r, newStatus, now)

		result = TransitionResult{
			ReportID:  reportID,
			OldStatus: old,
			NewStatus: newStatus,
			ChangedBy: changedBy,
			ChangedAt: now,
			Notes:     notes,
		}
		return types.StatusHistoryEntry{
			ReportID:  reportID,
			Status:    newStatus,
			ChangedBy: changedBy,
			ChangedAt: now,
			Notes:     notes,
		}, nil
	})
	if errors.Is(err, errNoChange) {
		return &result, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ResolveWithEvidence is the only path to the resolved status. The attach
// callback runs inside the same atomic mutation so the evidence fields and
// the status flip commit together.
func (e *Engine) ResolveWithEvidence(ctx context.Context, reportID, changedBy, notes string, attach func(r *types.Report)) (*TransitionResult, error) {
	var result TransitionResult
	_, err := e.store.ApplyStatusChange(ctx, reportID, func(r *types.Report) (types.StatusHistoryEntry, error) {
		if r.IsDeleted {
			return types.StatusHistoryEntry{}, ErrReportDeleted
		}
		if r.Status == types.StatusResolved {
			return types.StatusHistoryEntry{}, &AlreadyResolvedError{ReportID: reportID}
		}

		now := e.now().UTC()
		old := r.Status
		r.Status = types.StatusResolved
		r.UpdatedAt = &now
		e.stampStage(r, types.StatusResolved, now)
		if attach != nil {
			attach(r)
		}

		result = TransitionResult{
			ReportID:  reportID,
			OldStatus: old,
			NewStatus: types.StatusResolved,
			ChangedBy: changedBy,
			ChangedAt: now,
			Notes:     notes,
		}
		return types.StatusHistoryEntry{
			ReportID:  reportID,
			Status:    types.StatusResolved,
			ChangedBy: changedBy,
			ChangedAt: now,
			Notes:     notes,
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// stampStage sets the stage timestamp the first time a stage is entered.
// Re-entering a stage after a backward move does not overwrite it.
func (e *Engine) stampStage(r *types.Report, status string, now time.Time) {
	switch status {
	case types.StatusAcknowledged:
		if r.AcknowledgedAt == nil {
			r.AcknowledgedAt = &now
		}
	case types.StatusInProgress:
		if r.InProgressAt == nil {
			r.InProgressAt = &now
		}
	case types.StatusResolved:
		if r.ResolvedAt == nil {
			r.ResolvedAt = &now
		}
	}
}

// History returns the chronological status trail.
func (e *Engine) History(ctx context.Context, reportID string) ([]types.StatusHistoryEntry, error) {
	if _, err := e.store.GetReport(ctx, reportID); err != nil {
		return nil, err
	}
	return e.store.History(ctx, reportID)
}

// Timeline builds the fixed four-stage view from the report's stage
// timestamps; it always agrees with them by construction.
func (e *Engine) Timeline(ctx context.Context, reportID string) (*types.Timeline, error) {
	r, err := e.store.GetReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	history, err := e.store.History(ctx, reportID)
	if err != nil {
		return nil, err
	}

	reportedAt := r.ReportedAt
	stages := map[string]types.TimelineStage{
		types.StatusReported: {
			Status:    "completed",
			Timestamp: &reportedAt,
			Notes:     "Issue reported by citizen",
		},
		types.StatusAcknowledged: stage(r.AcknowledgedAt, "Issue acknowledged by admin"),
		types.StatusInProgress:   stage(r.InProgressAt, "Work started on issue"),
		types.StatusResolved:     stage(r.ResolvedAt, "Issue resolved with evidence"),
	}

	return &types.Timeline{
		ReportID:      reportID,
		CurrentStatus: r.Status,
		Stages:        stages,
		History:       history,
	}, nil
}

func stage(ts *time.Time, notes string) types.TimelineStage {
	s := types.TimelineStage{Status: "pending", Notes: notes}
	if ts != nil {
		s.Status = "completed"
		s.Timestamp = ts
	}
	return s
}
