package types

import "time"

// FaceVerification is a gate artifact recorded when an admin passes the face
// check for a report. The resolution policy only accepts artifacts newer than
// the configured freshness window.
type FaceVerification struct {
	ID         string    `firestore:"-" json:"id"`
	ReportID   string    `firestore:"reportId" json:"report_id"`
	AdminID    string    `firestore:"adminId" json:"admin_id"`
	Verified   bool      `firestore:"verified" json:"face_verified"`
	Reason     string    `firestore:"reason,omitempty" json:"reason,omitempty"`
	VerifiedAt time.Time `firestore:"verifiedAt" json:"verified_at"`
}

// AdminVerification links an admin-side verification selfie to a resolution
// event for audit.
type AdminVerification struct {
	ID         string    `firestore:"-" json:"id"`
	ReportID   string    `firestore:"reportId" json:"report_id"`
	AdminID    string    `firestore:"adminId" json:"admin_id"`
	ImageURL   string    `firestore:"imageUrl" json:"verification_image_url"`
	CapturedAt time.Time `firestore:"capturedAt" json:"captured_at"`
}
