package lifecycle

import (
	"errors"
	"fmt"
)

// ErrReportNotFound is returned by stores when the report does not exist.
var ErrReportNotFound = errors.New("report not found")

// errNoChange aborts a same-status mutation without committing anything.
var errNoChange = errors.New("no status change")

// ErrReportDeleted rejects status changes on soft-deleted reports.
var ErrReportDeleted = errors.New("report has been deleted")

// UnknownStatusError rejects statuses outside the lifecycle vocabulary.
type UnknownStatusError struct {
	Status string
}

func (e *UnknownStatusError) Error() string {
	return fmt.Sprintf("unknown status %q, valid statuses: %v", e.Status, StageOrder())
}

// SkippedStageError rejects forward jumps of more than one stage.
type SkippedStageError struct {
	Current   string
	Attempted string
}

func (e *SkippedStageError) Error() string {
	return fmt.Sprintf("cannot skip status stages: current %q, attempted %q", e.Current, e.Attempted)
}

// LockedAfterResolutionError rejects any status change once a report is
// resolved. There is no reopen path.
type LockedAfterResolutionError struct {
	Attempted string
}

func (e *LockedAfterResolutionError) Error() string {
	return fmt.Sprintf("report is resolved and cannot be changed to %q", e.Attempted)
}

// ResolutionRequiresEvidenceError rejects moving to resolved through the
// generic transition path; resolution must go through the evidence-gated
// resolve flow.
type ResolutionRequiresEvidenceError struct{}

func (e *ResolutionRequiresEvidenceError) Error() string {
	return "resolution requires evidence upload, use the resolve endpoint"
}

// AlreadyResolvedError rejects resolving a report twice. Resolution is a
// one-shot event.
type AlreadyResolvedError struct {
	ReportID string
}

func (e *AlreadyResolvedError) Error() string {
	return fmt.Sprintf("report %s is already resolved", e.ReportID)
}
