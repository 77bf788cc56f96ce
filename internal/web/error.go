package web

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ytget/videocatcher/internal/model"
)

// Error codes surfaced to the UI
const (
	CodeValidation   = "validation"
	CodeAuthRequired = "auth_required"
	CodeExtraction   = "extraction_failed"
	CodeStorage      = "storage_failed"
)

// respondError maps the domain error taxonomy onto HTTP status codes. The
// auth-required code is distinct so the UI can prompt for a cookie
// re-upload instead of showing a generic failure.
func respondError(c *gin.Context, err error) {
	var validationErr *model.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error(), "code": CodeValidation})
		return
	}

	var authErr *model.AuthRequiredError
	if errors.As(err, &authErr) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":    authErr.Error(),
			"code":     CodeAuthRequired,
			"platform": authErr.Platform.String(),
		})
		return
	}

	var extractionErr *model.ExtractionError
	if errors.As(err, &extractionErr) {
		c.JSON(http.StatusBadGateway, gin.H{"error": extractionErr.Error(), "code": CodeExtraction})
		return
	}

	var storageErr *model.StorageError
	if errors.As(err, &storageErr) {
		log.Printf("Storage failure: %v", storageErr)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure, try again later", "code": CodeStorage})
		return
	}

	log.Printf("Unclassified request failure: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
