package handlers

import (
	"log"
	"net/http"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/gin-gonic/gin"

	"civicfix/db"
	"civicfix/types"
	"civicfix/verification"
)

// VerifyFaceInstantHandler runs the face check on an uploaded image without
// persisting anything. Used by clients to pre-check a selfie.
func VerifyFaceInstantHandler(c *gin.Context, gate *verification.Gate) {
	image, _, err := readFormFile(c, "image")
	if err != nil || len(image) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image is required"})
		return
	}

	result, err := gate.Verify(c.Request.Context(), image)
	if err != nil {
		log.Printf("Instant face verification failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "face verification unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"face_verified": result.Passed(), "reason": result.Reason})
}

// VerifyFaceForReportHandler runs the face check and records the outcome as a
// gate artifact for the report. A passing artifact satisfies the resolution
// policy until it ages out.
func VerifyFaceForReportHandler(c *gin.Context, firestoreClient *firestore.Client, gate *verification.Gate) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	reportID := c.Param("id")
	if _, err := db.GetReport(firestoreClient, reportID); err != nil {
		respondError(c, err)
		return
	}

	image, _, err := readFormFile(c, "image")
	if err != nil || len(image) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image is required"})
		return
	}

	result, err := gate.Verify(c.Request.Context(), image)
	if err != nil {
		log.Printf("Face verification for report %s failed: %v", reportID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "face verification unavailable"})
		return
	}

	artifact := types.FaceVerification{
		ReportID:   reportID,
		AdminID:    user.ID,
		Verified:   result.Passed(),
		Reason:     result.Reason,
		VerifiedAt: time.Now().UTC(),
	}
	id, err := db.SaveFaceVerification(firestoreClient, artifact)
	if err != nil {
		log.Printf("Failed to persist face verification for report %s: %v", reportID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record verification"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"verification_id": id,
		"report_id":       reportID,
		"face_verified":   artifact.Verified,
		"reason":          artifact.Reason,
	})
}
