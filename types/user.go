package types

import "time"

const (
	RoleCitizen = "citizen"
	RoleAdmin   = "admin"
)

type User struct {
	ID           string `firestore:"-" json:"id"`
	Email        string `firestore:"email" json:"email"`
	FullName     string `firestore:"fullName" json:"full_name"`
	MobileNumber string `firestore:"mobileNumber,omitempty" json:"mobile_number,omitempty"`
	Role         string `firestore:"role" json:"role"`

	// Admin-specific fields
	Municipality string `firestore:"municipality,omitempty" json:"municipality_name,omitempty"`
	Department   string `firestore:"department,omitempty" json:"department_name,omitempty"`

	IsActive  bool      `firestore:"isActive" json:"is_active"`
	CreatedAt time.Time `firestore:"createdAt" json:"created_at"`
}

// Session maps a bearer token to a user. Token issuance is handled by the
// auth collaborator; this service only looks sessions up.
type Session struct {
	Token     string    `firestore:"-" json:"token"`
	UserID    string    `firestore:"userId" json:"user_id"`
	ExpiresAt time.Time `firestore:"expiresAt" json:"expires_at"`
	CreatedAt time.Time `firestore:"createdAt" json:"created_at"`
}
