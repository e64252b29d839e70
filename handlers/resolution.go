package handlers

import (
	"log"
	"net/http"

	"cloud.google.com/go/firestore"
	"github.com/gin-gonic/gin"

	"civicfix/db"
	"civicfix/resolution"
	"civicfix/types"
)

// ResolveReportHandler runs the evidence-gated resolution flow. Admin only.
func ResolveReportHandler(c *gin.Context, verifier *resolution.Verifier) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	evidence, evidenceFilename, err := readFormFile(c, "resolution_image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read resolution image: " + err.Error()})
		return
	}
	if len(evidence) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "resolution_image is required"})
		return
	}

	selfie, selfieFilename, err := readFormFile(c, "verification_image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read verification image: " + err.Error()})
		return
	}

	result, err := verifier.Resolve(c.Request.Context(), resolution.Request{
		ReportID:                  c.Param("id"),
		AdminID:                   user.ID,
		EvidenceImage:             evidence,
		EvidenceFilename:          evidenceFilename,
		Notes:                     c.PostForm("notes"),
		AdminVerificationImage:    selfie,
		AdminVerificationFilename: selfieFilename,
	})
	if err != nil {
		log.Printf("Resolution of %s rejected: %v", c.Param("id"), err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "report resolved", "resolution": result})
}

// GetResolutionDetailsHandler returns the evidence recorded on a resolved
// report, including linked admin verification selfies.
func GetResolutionDetailsHandler(c *gin.Context, firestoreClient *firestore.Client) {
	report, err := db.GetReport(firestoreClient, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if report.Status != types.StatusResolved {
		c.JSON(http.StatusBadRequest, gin.H{"error": "report is not resolved"})
		return
	}

	verifications, err := db.GetAdminVerifications(firestoreClient, report.ID)
	if err != nil {
		log.Printf("Failed to load admin verifications for %s: %v", report.ID, err)
	}

	c.JSON(http.StatusOK, gin.H{
		"report_id":              report.ID,
		"resolved_by":            report.ResolvedBy,
		"resolved_at":            report.ResolvedAt,
		"resolution_image_url":   report.ResolutionImageURL,
		"resolution_coordinates": report.ResolutionCoordinates,
		"admin_notes":            report.AdminNotes,
		"admin_verifications":    verifications,
	})
}
