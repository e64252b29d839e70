package types

import "time"

// Report lifecycle statuses. The first four form the ordered lifecycle;
// deleted is a terminal overlay reachable only through soft deletion.
const (
	StatusReported     = "reported"
	StatusAcknowledged = "acknowledged"
	StatusInProgress   = "in_progress"
	StatusResolved     = "resolved"
	StatusDeleted      = "deleted"
)

// ActiveStatuses are the statuses considered by the duplicate scan.
var ActiveStatuses = []string{StatusReported, StatusAcknowledged, StatusInProgress}

type Report struct {
	ID          string  `firestore:"-" json:"id"`
	Title       string  `firestore:"title" json:"title"`
	Description string  `firestore:"description,omitempty" json:"description,omitempty"`
	Category    string  `firestore:"category" json:"category"`
	ImageURL    string  `firestore:"imageUrl,omitempty" json:"image_url,omitempty"`
	Latitude    float64 `firestore:"latitude" json:"latitude"`
	Longitude   float64 `firestore:"longitude" json:"longitude"`
	Address     string  `firestore:"address,omitempty" json:"address,omitempty"`

	// AI-generated fields
	AITitle       string   `firestore:"aiTitle,omitempty" json:"ai_generated_title,omitempty"`
	AIDescription string   `firestore:"aiDescription,omitempty" json:"ai_generated_description,omitempty"`
	AITags        []string `firestore:"aiTags,omitempty" json:"ai_tags,omitempty"`

	UrgencyScore int    `firestore:"urgencyScore" json:"urgency_score"`
	UrgencyLabel string `firestore:"urgencyLabel" json:"urgency_label"`

	MCQResponses *MCQResponses `firestore:"mcqResponses,omitempty" json:"mcq_responses,omitempty"`

	ReporterID string `firestore:"reporterId" json:"reporter_id"`
	Status     string `firestore:"status" json:"status"`
	AdminNotes string `firestore:"adminNotes,omitempty" json:"admin_notes,omitempty"`

	// Soft-deletion overlay, independent of the main lifecycle.
	IsDeleted      bool       `firestore:"isDeleted" json:"is_deleted"`
	DeletionReason string     `firestore:"deletionReason,omitempty" json:"deletion_reason,omitempty"`
	DeletedAt      *time.Time `firestore:"deletedAt,omitempty" json:"deleted_at,omitempty"`

	// Resolution evidence
	ResolvedBy            string                 `firestore:"resolvedBy,omitempty" json:"resolved_by,omitempty"`
	ResolutionImageURL    string                 `firestore:"resolutionImageUrl,omitempty" json:"resolution_image_url,omitempty"`
	ResolutionCoordinates *ResolutionCoordinates `firestore:"resolutionCoordinates,omitempty" json:"resolution_coordinates,omitempty"`

	// Stage timestamps, each set once the first time the stage is entered.
	ReportedAt     time.Time  `firestore:"reportedAt" json:"reported_at"`
	AcknowledgedAt *time.Time `firestore:"acknowledgedAt,omitempty" json:"acknowledged_at,omitempty"`
	InProgressAt   *time.Time `firestore:"inProgressAt,omitempty" json:"in_progress_at,omitempty"`
	ResolvedAt     *time.Time `firestore:"resolvedAt,omitempty" json:"resolved_at,omitempty"`

	CreatedAt time.Time  `firestore:"createdAt" json:"created_at"`
	UpdatedAt *time.Time `firestore:"updatedAt,omitempty" json:"updated_at,omitempty"`
}

// ResolutionCoordinates is the structured evidence-location record persisted
// on a resolved report.
type ResolutionCoordinates struct {
	Latitude                   float64 `firestore:"latitude" json:"latitude"`
	Longitude                  float64 `firestore:"longitude" json:"longitude"`
	DistanceFromOriginalMeters float64 `firestore:"distanceFromOriginalMeters" json:"distance_from_original_meters"`
	Source                     string  `firestore:"source" json:"source"`
}

// MCQResponses are the structured answers a citizen gives at submission time.
type MCQResponses struct {
	Duration     string `firestore:"duration,omitempty" json:"duration,omitempty"`
	Severity     string `firestore:"severity,omitempty" json:"severity,omitempty"`
	AffectedArea string `firestore:"affectedArea,omitempty" json:"affectedArea,omitempty"`
}

// StatusHistoryEntry is one row of the append-only status trail kept in the
// statusHistory subcollection of a report.
type StatusHistoryEntry struct {
	ID        string    `firestore:"-" json:"id"`
	ReportID  string    `firestore:"reportId" json:"report_id"`
	Status    string    `firestore:"status" json:"status"`
	ChangedBy string    `firestore:"changedBy" json:"changed_by"`
	ChangedAt time.Time `firestore:"changedAt" json:"changed_at"`
	Notes     string    `firestore:"notes,omitempty" json:"notes,omitempty"`
}

// TimelineStage is one of the four fixed stages in the denormalized timeline view.
type TimelineStage struct {
	Status    string     `json:"status"` // completed or pending
	Timestamp *time.Time `json:"timestamp"`
	Notes     string     `json:"notes"`
}

type Timeline struct {
	ReportID      string                   `json:"report_id"`
	CurrentStatus string                   `json:"current_status"`
	Stages        map[string]TimelineStage `json:"stages"`
	History       []StatusHistoryEntry     `json:"history"`
}

type Comment struct {
	ID        string    `firestore:"-" json:"id"`
	ReportID  string    `firestore:"reportId" json:"report_id"`
	UserID    string    `firestore:"userId" json:"user_id"`
	UserName  string    `firestore:"userName,omitempty" json:"user_name,omitempty"`
	Text      string    `firestore:"text" json:"text"`
	CreatedAt time.Time `firestore:"createdAt" json:"created_at"`
}

// ReportSummary is the shape returned when a submission matches an existing
// nearby report.
type ReportSummary struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Category  string  `json:"category"`
	Status    string  `json:"status"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Upvotes   int     `json:"upvotes"`
	Comments  int     `json:"comments"`
}
