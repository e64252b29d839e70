package handlers

import (
	"log"
	"net/http"

	"cloud.google.com/go/firestore"
	"github.com/gin-gonic/gin"

	"civicfix/db"
	"civicfix/types"
)

// UpvoteHandler toggles the caller's upvote on a report.
func UpvoteHandler(c *gin.Context, firestoreClient *firestore.Client) {
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

	upvoted, err := db.ToggleUpvote(firestoreClient, reportID, user.ID)
	if err != nil {
		log.Printf("Failed to toggle upvote on %s: %v", reportID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record vote"})
		return
	}

	count, err := db.CountUpvotes(firestoreClient, reportID)
	if err != nil {
		log.Printf("Failed to count upvotes on %s: %v", reportID, err)
	}

	c.JSON(http.StatusOK, gin.H{"report_id": reportID, "upvoted": upvoted, "upvotes": count})
}

// AddCommentHandler appends a comment to a report.
func AddCommentHandler(c *gin.Context, firestoreClient *firestore.Client) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var body struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reportID := c.Param("id")
	if _, err := db.GetReport(firestoreClient, reportID); err != nil {
		respondError(c, err)
		return
	}

	comment := types.Comment{
		ReportID: reportID,
		UserID:   user.ID,
		UserName: user.FullName,
		Text:     body.Text,
	}
	id, err := db.AddComment(firestoreClient, comment)
	if err != nil {
		log.Printf("Failed to add comment to %s: %v", reportID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add comment"})
		return
	}
	comment.ID = id

	c.JSON(http.StatusCreated, gin.H{"comment": comment})
}

// GetCommentsHandler returns a report's comments oldest first.
func GetCommentsHandler(c *gin.Context, firestoreClient *firestore.Client) {
	reportID := c.Param("id")
	if _, err := db.GetReport(firestoreClient, reportID); err != nil {
		respondError(c, err)
		return
	}

	comments, err := db.GetComments(firestoreClient, reportID)
	if err != nil {
		log.Printf("Failed to load comments for %s: %v", reportID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load comments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"report_id": reportID, "comments": comments, "count": len(comments)})
}
