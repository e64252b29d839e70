package handlers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"cloud.google.com/go/firestore"
	language "cloud.google.com/go/language/apiv2"
	"github.com/gin-gonic/gin"

	"civicfix/ai"
	"civicfix/db"
	"civicfix/detection"
	"civicfix/exifgps"
	"civicfix/geo"
	"civicfix/geocode"
	"civicfix/nlp"
	"civicfix/resolution"
	"civicfix/types"
)

// CreateReportHandler accepts a multipart report submission. Coordinates come
// from the photo's EXIF when present, otherwise from the form fields. A
// nearby same-category active report short-circuits creation and returns the
// existing report instead.
func CreateReportHandler(c *gin.Context, firestoreClient *firestore.Client, uploader resolution.Storage, aiClient *ai.Client, langClient *language.Client) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	category := c.PostForm("category")
	if category == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "category is required"})
		return
	}

	image, imageFilename, err := readFormFile(c, "image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read image: " + err.Error()})
		return
	}

	lat, lng, coordsOK := submissionCoordinates(c, image)
	if !coordsOK {
		c.JSON(http.StatusBadRequest, gin.H{"error": "valid coordinates are required, either in the photo EXIF or as latitude/longitude fields"})
		return
	}

	mcq := types.MCQResponses{
		Duration:     c.PostForm("duration"),
		Severity:     c.PostForm("severity"),
		AffectedArea: c.PostForm("affected_area"),
	}

	// Duplicate scan is best-effort: a failed lookup never blocks submission.
	active, err := db.GetActiveReports(firestoreClient)
	if err != nil {
		log.Printf("Duplicate scan failed, accepting report anyway: %v", err)
	} else if match, found := detection.FindNearestDuplicate(active, category, lat, lng, detection.DuplicateRadiusMeters); found {
		c.JSON(http.StatusOK, gin.H{
			"duplicate":       true,
			"distance_meters": match.Distance,
			"existing_report": summarize(firestoreClient, match.Report),
			"message":         "A similar issue was already reported nearby. Consider upvoting it instead.",
		})
		return
	}

	report := types.Report{
		Category:    category,
		Description: c.PostForm("description"),
		Latitude:    lat,
		Longitude:   lng,
		ReporterID:  user.ID,
	}
	if mcq != (types.MCQResponses{}) {
		report.MCQResponses = &mcq
	}

	if len(image) > 0 {
		url, err := uploader.UploadImage(c.Request.Context(), imageFilename, image)
		if err != nil {
			log.Printf("Failed to store report image: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store image"})
			return
		}
		report.ImageURL = url
	}

	enrichReport(c, &report, aiClient, langClient, user.FullName)

	id, err := db.CreateReport(firestoreClient, report)
	if err != nil {
		log.Printf("Failed to create report: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create report"})
		return
	}
	report.ID = id
	report.Status = types.StatusReported

	c.JSON(http.StatusCreated, gin.H{"duplicate": false, "report": report})
}

// submissionCoordinates prefers EXIF GPS from the uploaded photo and falls
// back to the form fields.
func submissionCoordinates(c *gin.Context, image []byte) (float64, float64, bool) {
	if len(image) > 0 {
		if coords, err := exifgps.FromImage(image); err == nil {
			return coords.Latitude, coords.Longitude, true
		}
	}

	lat, errLat := strconv.ParseFloat(c.PostForm("latitude"), 64)
	lng, errLng := strconv.ParseFloat(c.PostForm("longitude"), 64)
	if errLat != nil || errLng != nil || !geo.Valid(lat, lng) {
		return 0, 0, false
	}
	return lat, lng, true
}

// enrichReport fills in the AI title, description, tags, urgency and address.
// Every enrichment is best-effort; the report is stored either way.
func enrichReport(c *gin.Context, report *types.Report, aiClient *ai.Client, langClient *language.Client, reporterName string) {
	now := time.Now().UTC()
	ctx := c.Request.Context()

	var mcq types.MCQResponses
	if report.MCQResponses != nil {
		mcq = *report.MCQResponses
	}

	summary := aiClient.GenerateSummary(ctx, ai.SummaryRequest{
		Category:      report.Category,
		ReportingTime: now,
		Latitude:      report.Latitude,
		Longitude:     report.Longitude,
		MCQ:           mcq,
		ReporterName:  reporterName,
	})
	report.AITitle = summary.Title
	report.AIDescription = summary.Description
	report.AITags = summary.Tags
	if report.Title == "" {
		report.Title = summary.Title
	}

	classification := aiClient.ClassifyUrgency(ctx, ai.ClassificationRequest{
		Title:         report.Title,
		Description:   report.Description,
		Category:      report.Category,
		MCQ:           mcq,
		Latitude:      report.Latitude,
		Longitude:     report.Longitude,
		ReportingTime: now,
	})
	report.UrgencyScore = classification.UrgencyScore
	report.UrgencyLabel = classification.UrgencyLabel

	if langClient != nil && report.Description != "" {
		if tags, err := nlp.ExtractTags(langClient, report.Description); err != nil {
			log.Printf("Entity tag extraction failed: %v", err)
		} else if len(tags) > 0 {
			report.AITags = append(report.AITags, tags...)
		}
	}

	if address, err := geocode.ReverseGeocode(report.Latitude, report.Longitude); err != nil {
		log.Printf("Reverse geocoding failed: %v", err)
	} else {
		report.Address = address
	}
}

func summarize(firestoreClient *firestore.Client, r types.Report) types.ReportSummary {
	upvotes, err := db.CountUpvotes(firestoreClient, r.ID)
	if err != nil {
		log.Printf("Failed to count upvotes for %s: %v", r.ID, err)
	}
	comments, err := db.CountComments(firestoreClient, r.ID)
	if err != nil {
		log.Printf("Failed to count comments for %s: %v", r.ID, err)
	}
	return types.ReportSummary{
		ID:        r.ID,
		Title:     r.Title,
		Category:  r.Category,
		Status:    r.Status,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		Upvotes:   upvotes,
		Comments:  comments,
	}
}

// ListReportsHandler returns reports newest first with optional status and
// category filters.
func ListReportsHandler(c *gin.Context, firestoreClient *firestore.Client) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	reports, err := db.ListReports(firestoreClient, c.Query("status"), c.Query("category"), limit)
	if err != nil {
		log.Printf("Failed to list reports: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list reports"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reports": reports, "count": len(reports)})
}

// GetReportHandler returns a single report with its community counts.
func GetReportHandler(c *gin.Context, firestoreClient *firestore.Client) {
	report, err := db.GetReport(firestoreClient, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if report.IsDeleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		return
	}

	upvotes, err := db.CountUpvotes(firestoreClient, report.ID)
	if err != nil {
		log.Printf("Failed to count upvotes for %s: %v", report.ID, err)
	}
	comments, err := db.CountComments(firestoreClient, report.ID)
	if err != nil {
		log.Printf("Failed to count comments for %s: %v", report.ID, err)
	}

	c.JSON(http.StatusOK, gin.H{"report": report, "upvotes": upvotes, "comments": comments})
}

// DeleteReportHandler soft-deletes a report. Citizens may only delete their
// own reports; admins may delete any.
func DeleteReportHandler(c *gin.Context, firestoreClient *firestore.Client) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	reportID := c.Param("id")
	report, err := db.GetReport(firestoreClient, reportID)
	if err != nil {
		respondError(c, err)
		return
	}
	if user.Role != types.RoleAdmin && report.ReporterID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "you can only delete your own reports"})
		return
	}

	reason := c.Query("reason")
	if reason == "" {
		reason = "Deleted by " + user.Role
	}

	if err := db.SoftDeleteReport(firestoreClient, reportID, reason); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "report deleted", "report_id": reportID})
}
