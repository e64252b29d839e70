package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"civicfix/lifecycle"
)

// UpdateStatusHandler applies a generic status transition. The resolved
// status is rejected here; it is only reachable through the resolution
// endpoint.
func UpdateStatusHandler(c *gin.Context, engine *lifecycle.Engine) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var body struct {
		Status string `json:"status" binding:"required"`
		Notes  string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := engine.UpdateStatus(c.Request.Context(), c.Param("id"), body.Status, user.ID, body.Notes)
	if err != nil {
		log.Printf("Status update for %s rejected: %v", c.Param("id"), err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetHistoryHandler returns the chronological status trail.
func GetHistoryHandler(c *gin.Context, engine *lifecycle.Engine) {
	history, err := engine.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"report_id": c.Param("id"), "history": history})
}

// GetTimelineHandler returns the fixed four-stage timeline view.
func GetTimelineHandler(c *gin.Context, engine *lifecycle.Engine) {
	timeline, err := engine.Timeline(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, timeline)
}
