package resolution

import "fmt"

// MissingLocationEvidenceError means the evidence photo carried no embedded
// GPS. Coordinates supplied out-of-band are not a substitute at resolution
// time.
type MissingLocationEvidenceError struct{}

func (e *MissingLocationEvidenceError) Error() string {
	return "evidence image must include EXIF GPS data; enable the camera's " +
		"location services and take a new photo with coordinates embedded in the image metadata"
}

// LocationTooFarError carries the measured distance and the threshold so the
// admin can self-correct.
type LocationTooFarError struct {
	DistanceMeters float64
	MaxMeters      float64
}

func (e *LocationTooFarError) Error() string {
	return fmt.Sprintf("evidence location too far from reported issue: distance %.2fm, maximum allowed %.2fm; take a photo from within %.0fm of the original location",
		e.DistanceMeters, e.MaxMeters, e.MaxMeters)
}

// VerificationRequiredError means the face-verification precondition was not
// met. Kept distinct from evidence errors so clients can route the admin to
// the verification step.
type VerificationRequiredError struct {
	ReportID string
	AdminID  string
}

func (e *VerificationRequiredError) Error() string {
	return fmt.Sprintf("face verification required before resolving report %s", e.ReportID)
}
