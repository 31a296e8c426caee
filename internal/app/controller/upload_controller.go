package controller

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/dealradar/dealradar-backend/internal/errors"
	"github.com/dealradar/dealradar-backend/internal/middleware"
	"github.com/dealradar/dealradar-backend/internal/storage"
)

// UploadController issues presigned upload URLs for brand logos.
type UploadController struct {
	storage *storage.S3Storage
}

// NewUploadController creates an upload controller. storage may be nil
// when S3 is not configured.
func NewUploadController(storage *storage.S3Storage) *UploadController {
	return &UploadController{storage: storage}
}

type presignLogoRequest struct {
	ContentType string `json:"content_type" binding:"required"`
}

// PresignLogo handles POST /api/upload/logo
func (ctrl *UploadController) PresignLogo(c *gin.Context) {
	if ctrl.storage == nil {
		apperrors.RespondWithError(c, http.StatusServiceUnavailable,
			apperrors.UploadFailed, "File uploads are not configured")
		return
	}

	var req presignLogoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "content_type is required")
		return
	}

	upload, err := ctrl.storage.PresignLogoUpload(c.Request.Context(), req.ContentType)
	if err != nil {
		if strings.Contains(err.Error(), "unsupported content type") {
			apperrors.BadRequest(c, apperrors.UploadInvalidFileType, "Only JPEG, PNG, WebP, and SVG images are allowed")
			return
		}
		middleware.GetLoggerFromContext(c).Error("Failed to presign upload", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, upload)
}
