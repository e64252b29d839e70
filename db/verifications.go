package db

import (
	"context"
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"civicfix/types"
)

const (
	faceVerificationsCollection  = "faceVerifications"
	adminVerificationsCollection = "adminVerifications"
)

// SaveFaceVerification records a face-gate check outcome and returns its ID.
func SaveFaceVerification(client *firestore.Client, v types.FaceVerification) (string, error) {
	ctx := context.Background()
	if v.VerifiedAt.IsZero() {
		v.VerifiedAt = time.Now().UTC()
	}

	docRef := client.Collection(faceVerificationsCollection).NewDoc()
	if _, err := docRef.Set(ctx, v); err != nil {
		return "", fmt.Errorf("failed to save face verification: %w", err)
	}
	return docRef.ID, nil
}

// VerificationStore adapts Firestore to the resolution verifier's artifact
// surface.
type VerificationStore struct {
	Client *firestore.Client
}

func NewVerificationStore(client *firestore.Client) *VerificationStore {
	return &VerificationStore{Client: client}
}

// LatestVerified returns the newest passing face verification for the report
// and admin recorded at or after since.
func (s *VerificationStore) LatestVerified(ctx context.Context, reportID, adminID string, since time.Time) (types.FaceVerification, bool, error) {
	var v types.FaceVerification

	q := s.Client.Collection(faceVerificationsCollection).
		Where("reportId", "==", reportID).
		Where("adminId", "==", adminID).
		Where("verified", "==", true)
	if !since.IsZero() {
		q = q.Where("verifiedAt", ">=", since)
	}

	docs, err := q.OrderBy("verifiedAt", firestore.Desc).Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return v, false, err
	}
	if len(docs) == 0 {
		return v, false, nil
	}

	if err := docs[0].DataTo(&v); err != nil {
		return v, false, err
	}
	v.ID = docs[0].Ref.ID
	return v, true, nil
}

// SaveAdminVerification links an admin verification selfie to a resolution.
func (s *VerificationStore) SaveAdminVerification(ctx context.Context, v types.AdminVerification) error {
	docRef := s.Client.Collection(adminVerificationsCollection).NewDoc()
	if _, err := docRef.Set(ctx, v); err != nil {
		return fmt.Errorf("failed to save admin verification: %w", err)
	}
	return nil
}

// GetAdminVerifications returns the audit selfies recorded for a report,
// newest first.
func GetAdminVerifications(client *firestore.Client, reportID string) ([]types.AdminVerification, error) {
	ctx := context.Background()

	iter := client.Collection(adminVerificationsCollection).
		Where("reportId", "==", reportID).
		OrderBy("capturedAt", firestore.Desc).
		Documents(ctx)

	var out []types.AdminVerification
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var v types.AdminVerification
		if err := doc.DataTo(&v); err != nil {
			return nil, err
		}
		v.ID = doc.Ref.ID
		out = append(out, v)
	}
	return out, nil
}

// DeleteExpiredFaceVerifications removes gate artifacts older than the
// cutoff. Called by the nightly cron.
func DeleteExpiredFaceVerifications(client *firestore.Client, cutoff time.Time) (int, error) {
	ctx := context.Background()

	docs, err := client.Collection(faceVerificationsCollection).
		Where("verifiedAt", "<", cutoff).
		Documents(ctx).
		GetAll()
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, doc := range docs {
		if _, err := doc.Ref.Delete(ctx); err != nil {
			log.Printf("Failed to delete expired face verification %s: %v", doc.Ref.ID, err)
			continue
		}
		deleted++
	}
	return deleted, nil
}
