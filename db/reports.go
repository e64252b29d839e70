package db

import (
	"context"
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"civicfix/lifecycle"
	"civicfix/types"
)

const (
	reportsCollection   = "reports"
	statusHistorySubcol = "statusHistory"
	upvotesSubcol       = "upvotes"
	commentsSubcol      = "comments"
	defaultListLimit    = 50
	maxListLimit        = 200
)

// CreateReport writes the report document together with its initial
// "reported" history entry in one transaction and returns the new ID.
func CreateReport(client *firestore.Client, report types.Report) (string, error) {
	ctx := context.Background()

	now := time.Now().UTC()
	report.Status = types.StatusReported
	report.ReportedAt = now
	report.CreatedAt = now
	report.IsDeleted = false

	docRef := client.Collection(reportsCollection).NewDoc()
	historyRef := docRef.Collection(statusHistorySubcol).NewDoc()

	entry := types.StatusHistoryEntry{
		ReportID:  docRef.ID,
		Status:    types.StatusReported,
		ChangedBy: report.ReporterID,
		ChangedAt: now,
		Notes:     "Issue reported by citizen",
	}

	err := client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := tx.Set(docRef, report); err != nil {
			return fmt.Errorf("failed to set report document: %w", err)
		}
		if err := tx.Set(historyRef, entry); err != nil {
			return fmt.Errorf("failed to set initial history entry: %w", err)
		}
		return nil
	})
	if err != nil {
		log.Printf("Create report transaction failed: %v", err)
		return "", err
	}

	return docRef.ID, nil
}

// GetReport fetches a single report by document ID.
func GetReport(client *firestore.Client, reportID string) (types.Report, error) {
	ctx := context.Background()
	var report types.Report

	doc, err := client.Collection(reportsCollection).Doc(reportID).Get(ctx)
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

// GetActiveReports returns all non-deleted reports in an active lifecycle
// stage. Category matching is done by the caller, case-insensitively.
func GetActiveReports(client *firestore.Client) ([]types.Report, error) {
	ctx := context.Background()

	docs, err := client.Collection(reportsCollection).
		Where("status", "in", types.ActiveStatuses).
		Where("isDeleted", "==", false).
		Documents(ctx).
		GetAll()
	if err != nil {
		return nil, err
	}

	var reports []types.Report
	for _, doc := range docs {
		var r types.Report
		if err := doc.DataTo(&r); err != nil {
			return nil, err
		}
		r.ID = doc.Ref.ID
		reports = append(reports, r)
	}
	return reports, nil
}

// ListReports returns reports newest first, optionally filtered by status
// and category.
func ListReports(client *firestore.Client, statusFilter, categoryFilter string, limit int) ([]types.Report, error) {
	ctx := context.Background()

	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	q := client.Collection(reportsCollection).Where("isDeleted", "==", false)
	if statusFilter != "" {
		q = q.Where("status", "==", statusFilter)
	}
	if categoryFilter != "" {
		q = q.Where("category", "==", categoryFilter)
	}

	iter := q.OrderBy("createdAt", firestore.Desc).Limit(limit).Documents(ctx)

	var reports []types.Report
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var r types.Report
		if err := doc.DataTo(&r); err != nil {
			return nil, err
		}
		r.ID = doc.Ref.ID
		reports = append(reports, r)
	}
	return reports, nil
}

// SoftDeleteReport marks a report deleted without removing the document or
// its history. Already-deleted reports are left untouched.
func SoftDeleteReport(client *firestore.Client, reportID, reason string) error {
	ctx := context.Background()
	docRef := client.Collection(reportsCollection).Doc(reportID)

	return client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return lifecycle.ErrReportNotFound
			}
			return err
		}

		var r types.Report
		if err := doc.DataTo(&r); err != nil {
			return err
		}
		if r.IsDeleted {
			return lifecycle.ErrReportDeleted
		}

		now := time.Now().UTC()
		return tx.Update(docRef, []firestore.Update{
			{Path: "isDeleted", Value: true},
			{Path: "deletionReason", Value: reason},
			{Path: "deletedAt", Value: now},
			{Path: "updatedAt", Value: now},
		})
	})
}

// ToggleUpvote adds or removes the caller's upvote. Returns true when the
// report is upvoted after the call.
func ToggleUpvote(client *firestore.Client, reportID, userID string) (bool, error) {
	ctx := context.Background()
	voteRef := client.Collection(reportsCollection).Doc(reportID).Collection(upvotesSubcol).Doc(userID)

	upvoted := false
	err := client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		_, err := tx.Get(voteRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				upvoted = true
				return tx.Set(voteRef, map[string]interface{}{
					"userId":  userID,
					"votedAt": time.Now().UTC(),
				})
			}
			return err
		}
		return tx.Delete(voteRef)
	})
	return upvoted, err
}

// CountUpvotes returns the number of upvote docs under a report.
func CountUpvotes(client *firestore.Client, reportID string) (int, error) {
	ctx := context.Background()
	docs, err := client.Collection(reportsCollection).Doc(reportID).Collection(upvotesSubcol).Documents(ctx).GetAll()
	if err != nil {
		return 0, err
	}
	return len(docs), nil
}

// AddComment appends a comment and returns its ID.
func AddComment(client *firestore.Client, comment types.Comment) (string, error) {
	ctx := context.Background()
	comment.CreatedAt = time.Now().UTC()

	docRef := client.Collection(reportsCollection).Doc(comment.ReportID).Collection(commentsSubcol).NewDoc()
	if _, err := docRef.Set(ctx, comment); err != nil {
		return "", fmt.Errorf("failed to add comment: %w", err)
	}
	return docRef.ID, nil
}

// GetComments returns a report's comments oldest first.
func GetComments(client *firestore.Client, reportID string) ([]types.Comment, error) {
	ctx := context.Background()

	iter := client.Collection(reportsCollection).Doc(reportID).
		Collection(commentsSubcol).
		OrderBy("createdAt", firestore.Asc).
		Documents(ctx)

	var comments []types.Comment
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var c types.Comment
		if err := doc.DataTo(&c); err != nil {
			return nil, err
		}
		c.ID = doc.Ref.ID
		comments = append(comments, c)
	}
	return comments, nil
}

// CountComments returns the number of comments under a report.
func CountComments(client *firestore.Client, reportID string) (int, error) {
	ctx := context.Background()
	docs, err := client.Collection(reportsCollection).Doc(reportID).Collection(commentsSubcol).Documents(ctx).GetAll()
	if err != nil {
		return 0, err
	}
	return len(docs), nil
}
