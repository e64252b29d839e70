package routes

import (
	"cloud.google.com/go/firestore"
	language "cloud.google.com/go/language/apiv2"
	"github.com/gin-gonic/gin"

	"civicfix/ai"
	"civicfix/handlers"
	"civicfix/lifecycle"
	"civicfix/resolution"
	"civicfix/verification"
)

// Deps carries the shared clients injected into handlers.
type Deps struct {
	Firestore *firestore.Client
	Engine    *lifecycle.Engine
	Verifier  *resolution.Verifier
	FaceGate  *verification.Gate
	Uploader  resolution.Storage
	AI        *ai.Client
	Language  *language.Client

	// UploadsDir serves stored images from disk when the local uploader is
	// active. Empty disables the static route.
	UploadsDir string
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.Default()

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "Hello, welcome to CivicFix!",
		})
	})

	if d.UploadsDir != "" {
		r.Static("/uploads", d.UploadsDir)
	}

	api := r.Group("/api/civicfix")
	{
		api.GET("/reports", func(c *gin.Context) {
			handlers.ListReportsHandler(c, d.Firestore)
		})
		api.GET("/reports/:id", func(c *gin.Context) {
			handlers.GetReportHandler(c, d.Firestore)
		})
		api.GET("/reports/:id/comments", func(c *gin.Context) {
			handlers.GetCommentsHandler(c, d.Firestore)
		})
		api.GET("/reports/:id/status-history", func(c *gin.Context) {
			handlers.GetHistoryHandler(c, d.Engine)
		})
		api.GET("/reports/:id/timeline", func(c *gin.Context) {
			handlers.GetTimelineHandler(c, d.Engine)
		})
		api.GET("/reports/:id/resolution", func(c *gin.Context) {
			handlers.GetResolutionDetailsHandler(c, d.Firestore)
		})
	}

	authed := api.Group("")
	authed.Use(handlers.AuthMiddleware(d.Firestore))
	{
		authed.POST("/reports", func(c *gin.Context) {
			handlers.CreateReportHandler(c, d.Firestore, d.Uploader, d.AI, d.Language)
		})
		authed.DELETE("/reports/:id", func(c *gin.Context) {
			handlers.DeleteReportHandler(c, d.Firestore)
		})
		authed.POST("/reports/:id/upvote", func(c *gin.Context) {
			handlers.UpvoteHandler(c, d.Firestore)
		})
		authed.POST("/reports/:id/comments", func(c *gin.Context) {
			handlers.AddCommentHandler(c, d.Firestore)
		})
	}

	admin := authed.Group("")
	admin.Use(handlers.RequireAdmin())
	{
		admin.PATCH("/reports/:id/status", func(c *gin.Context) {
			handlers.UpdateStatusHandler(c, d.Engine)
		})
		admin.POST("/reports/:id/resolve", func(c *gin.Context) {
			handlers.ResolveReportHandler(c, d.Verifier)
		})
		admin.POST("/reports/:id/verify-face", func(c *gin.Context) {
			handlers.VerifyFaceForReportHandler(c, d.Firestore, d.FaceGate)
		})
		admin.POST("/verify-face", func(c *gin.Context) {
			handlers.VerifyFaceInstantHandler(c, d.FaceGate)
		})
	}

	return r
}
