package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"civicfix/lifecycle"
	"civicfix/resolution"
	"civicfix/types"
)

const userContextKey = "currentUser"

// currentUser returns the authenticated user set by the auth middleware.
func currentUser(c *gin.Context) (types.User, bool) {
	v, ok := c.Get(userContextKey)
	if !ok {
		return types.User{}, false
	}
	user, ok := v.(types.User)
	return user, ok
}

// readFormFile reads an uploaded multipart file fully into memory. Returns
// nil bytes when the field is absent.
func readFormFile(c *gin.Context, field string) ([]byte, string, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, "", nil
		}
		return nil, "", err
	}
	return readFileHeader(fileHeader)
}

func readFileHeader(fh *multipart.FileHeader) ([]byte, string, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "", err
	}
	return data, fh.Filename, nil
}

// respondError maps domain errors onto HTTP statuses. Unknown errors become
// an opaque 500; the caller logs the details.
func respondError(c *gin.Context, err error) {
	var (
		unknownStatus  *lifecycle.UnknownStatusError
		skipped        *lifecycle.SkippedStageError
		locked         *lifecycle.LockedAfterResolutionError
		needsEvidence  *lifecycle.ResolutionRequiresEvidenceError
		alreadyDone    *lifecycle.AlreadyResolvedError
		missingGPS     *resolution.MissingLocationEvidenceError
		tooFar         *resolution.LocationTooFarError
		needsFaceCheck *resolution.VerificationRequiredError
	)

	switch {
	case errors.Is(err, lifecycle.ErrReportNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
	case errors.Is(err, lifecycle.ErrReportDeleted):
		c.JSON(http.StatusBadRequest, gin.H{"error": "report has been deleted"})
	case errors.As(err, &unknownStatus),
		errors.As(err, &skipped),
		errors.As(err, &locked),
		errors.As(err, &needsEvidence),
		errors.As(err, &missingGPS),
		errors.As(err, &tooFar):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &alreadyDone):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &needsFaceCheck):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
