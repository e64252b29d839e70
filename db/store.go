package db

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"civicfix/lifecycle"
	"civicfix/types"
)

// ReportStore adapts Firestore to the lifecycle engine's persistence surface.
// Status changes run inside a Firestore transaction so the mutated report and
// its history entry commit together, and concurrent conflicting changes
// cannot both land.
type ReportStore struct {
	Client *firestore.Client
}

func NewReportStore(client *firestore.Client) *ReportStore {
	return &ReportStore{Client: client}
}

func (s *ReportStore) GetReport(ctx context.Context, reportID string) (types.Report, error) {
	var report types.Report

	doc, err := s.Client.Collection(reportsCollection).Doc(reportID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return report, lifecycle.ErrReportNotFound
		}
		return report, fmt.Errorf("failed to get report %s: %w", reportID, err)
	}

	if err := doc.DataTo(&report); err != nil {
		return report, fmt.Errorf("failed to decode report %s: %w", reportID, err)
	}
	report.ID = doc.Ref.ID
	return report, nil
}

func (s *ReportStore) ApplyStatusChange(ctx context.Context, reportID string, mutate func(r *types.Report) (types.StatusHistoryEntry, error)) (types.Report, error) {
	docRef := s.Client.Collection(reportsCollection).Doc(reportID)

	var updated types.Report
	err := s.Client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return lifecycle.ErrReportNotFound
			}
			return err
		}

		var r types.Report
		if err := doc.DataTo(&r); err != nil {
			return fmt.Errorf("failed to decode report %s: %w", reportID, err)
		}
		r.ID = doc.Ref.ID

		entry, err := mutate(&r)
		if err != nil {
			return err
		}

		if err := tx.Set(docRef, r); err != nil {
			return fmt.Errorf("failed to set report document: %w", err)
		}
		historyRef := docRef.Collection(statusHistorySubcol).NewDoc()
		if err := tx.Set(historyRef, entry); err != nil {
			return fmt.Errorf("failed to append history entry: %w", err)
		}

		updated = r
		return nil
	})
	if err != nil {
		return types.Report{}, err
	}
	return updated, nil
}

func (s *ReportStore) History(ctx context.Context, reportID string) ([]types.StatusHistoryEntry, error) {
	iter := s.Client.Collection(reportsCollection).Doc(reportID).
		Collection(statusHistorySubcol).
		OrderBy("changedAt", firestore.Asc).
		Documents(ctx)

	var entries []types.StatusHistoryEntry
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var e types.StatusHistoryEntry
		if err := doc.DataTo(&e); err != nil {
			return nil, err
		}
		e.ID = doc.Ref.ID
		entries = append(entries, e)
	}
	return entries, nil
}
