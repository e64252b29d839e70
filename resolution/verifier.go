// Package resolution orchestrates evidence-gated report resolution: the
// identity gate, EXIF-only GPS extraction, the geofence check, evidence
// upload, and the atomic status flip.
package resolution

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"civicfix/exifgps"
	"civicfix/geo"
	"civicfix/lifecycle"
	"civicfix/types"
)

// MaxDistanceMeters is the default geofence radius between the original
// report location and the evidence photo's embedded coordinates.
const MaxDistanceMeters = 30.0

// coordinateSource is the only accepted provenance for resolution evidence.
const coordinateSource = "EXIF"

// Storage persists evidence images and returns a serving URL.
type Storage interface {
	UploadImage(ctx context.Context, filename string, content []byte) (string, error)
}

// ArtifactStore reads and writes verification artifacts linked to a report.
type ArtifactStore interface {
	LatestVerified(ctx context.Context, reportID, adminID string, since time.Time) (types.FaceVerification, bool, error)
	SaveAdminVerification(ctx context.Context, v types.AdminVerification) error
}

// Policy configures the identity gate consulted at step 3. The gate is
// togglable; with RequireFaceVerification false the check is skipped
// entirely.
type Policy struct {
	RequireFaceVerification bool
	// FreshnessWindow bounds how old a verification artifact may be and still
	// satisfy the gate. Zero means any artifact counts.
	FreshnessWindow time.Duration
}

type Config struct {
	Store      lifecycle.Store
	Engine     *lifecycle.Engine
	ExtractGPS func(image []byte) (exifgps.Coordinates, error)
	Storage    Storage
	Artifacts  ArtifactStore
	Policy     Policy
	// MaxDistanceMeters overrides the default geofence radius when > 0.
	MaxDistanceMeters float64
}

type Verifier struct {
	cfg Config
	now func() time.Time
}

func NewVerifier(cfg Config) *Verifier {
	if cfg.MaxDistanceMeters <= 0 {
		cfg.MaxDistanceMeters = MaxDistanceMeters
	}
	if cfg.ExtractGPS == nil {
		cfg.ExtractGPS = exifgps.FromImage
	}
	return &Verifier{cfg: cfg, now: time.Now}
}

// Request carries one resolution attempt.
type Request struct {
	ReportID string
	AdminID  string

	EvidenceImage    []byte
	EvidenceFilename string
	Notes            string

	// Optional admin-side verification selfie, linked for audit.
	AdminVerificationImage    []byte
	AdminVerificationFilename string
}

// Result is returned on full success.
type Result struct {
	ReportID                  string                       `json:"report_id"`
	ResolutionImageURL        string                       `json:"resolution_image_url"`
	DistanceMeters            float64                      `json:"distance_meters"`
	Coordinates               types.ResolutionCoordinates  `json:"resolution_coordinates"`
	OldStatus                 string                       `json:"old_status"`
	NewStatus                 string                       `json:"new_status"`
	ChangedAt                 time.Time                    `json:"changed_at"`
	AdminVerificationImageURL string                       `json:"admin_verification_image_url,omitempty"`
}

// Resolve runs the resolution algorithm in strict order. Any failure aborts
// before the status flip; the report only changes on full success, in one
// atomic commit.
func (v *Verifier) Resolve(ctx context.Context, req Request) (*Result, error) {
	report, err := v.cfg.Store.GetReport(ctx, req.ReportID)
	if err != nil {
		return nil, err
	}

	if report.Status == types.StatusResolved {
		return nil, &lifecycle.AlreadyResolvedError{ReportID: req.ReportID}
	}
	if report.IsDeleted {
		return nil, lifecycle.ErrReportDeleted
	}

	if v.cfg.Policy.RequireFaceVerification {
		since := time.Time{}
		if v.cfg.Policy.FreshnessWindow > 0 {
			since = v.now().Add(-v.cfg.Policy.FreshnessWindow)
		}
		_, ok, err := v.cfg.Artifacts.LatestVerified(ctx, req.ReportID, req.AdminID, since)
		if err != nil {
			return nil, fmt.Errorf("failed to look up face verification: %w", err)
		}
		if !ok {
			return nil, &VerificationRequiredError{ReportID: req.ReportID, AdminID: req.AdminID}
		}
	} else {
		log.Println("Face verification is optional, skipping verification check")
	}

	coords, err := v.cfg.ExtractGPS(req.EvidenceImage)
	if err != nil {
		log.Printf("Failed to extract GPS from resolution image for report %s: %v", req.ReportID, err)
		return nil, &MissingLocationEvidenceError{}
	}

	distance := geo.DistanceMeters(report.Latitude, report.Longitude, coords.Latitude, coords.Longitude)
	if distance > v.cfg.MaxDistanceMeters {
		return nil, &LocationTooFarError{DistanceMeters: distance, MaxMeters: v.cfg.MaxDistanceMeters}
	}

	imageURL, err := v.cfg.Storage.UploadImage(ctx, req.EvidenceFilename, req.EvidenceImage)
	if err != nil {
		return nil, fmt.Errorf("failed to store resolution evidence: %w", err)
	}

	resCoords := types.ResolutionCoordinates{
		Latitude:                   coords.Latitude,
		Longitude:                  coords.Longitude,
		DistanceFromOriginalMeters: math.Round(distance*100) / 100,
		Source:                     coordinateSource,
	}

	notes := req.Notes
	if notes == "" {
		notes = fmt.Sprintf("Resolved with geo-verified evidence. Distance: %.2fm", distance)
	}

	transition, err := v.cfg.Engine.ResolveWithEvidence(ctx, req.ReportID, req.AdminID, notes, func(r *types.Report) {
		r.ResolvedBy = req.AdminID
		r.ResolutionImageURL = imageURL
		r.ResolutionCoordinates = &resCoords
		if req.Notes != "" {
			r.AdminNotes = req.Notes
		}
	})
	if err != nil {
		return nil, err
	}

	result := &Result{
		ReportID:           req.ReportID,
		ResolutionImageURL: imageURL,
		DistanceMeters:     resCoords.DistanceFromOriginalMeters,
		Coordinates:        resCoords,
		OldStatus:          transition.OldStatus,
		NewStatus:          transition.NewStatus,
		ChangedAt:          transition.ChangedAt,
	}

	// The resolution is committed; the audit selfie is best-effort.
	if len(req.AdminVerificationImage) > 0 {
		url, err := v.cfg.Storage.UploadImage(ctx, req.AdminVerificationFilename, req.AdminVerificationImage)
		if err != nil {
			log.Printf("Failed to store admin verification image for report %s: %v", req.ReportID, err)
			return result, nil
		}
		artifact := types.AdminVerification{
			ReportID:   req.ReportID,
			AdminID:    req.AdminID,
			ImageURL:   url,
			CapturedAt: v.now().UTC(),
		}
		if err := v.cfg.Artifacts.SaveAdminVerification(ctx, artifact); err != nil {
			log.Printf("Failed to persist admin verification record for report %s: %v", req.ReportID, err)
			return result, nil
		}
		result.AdminVerificationImageURL = url
	}

	return result, nil
}
