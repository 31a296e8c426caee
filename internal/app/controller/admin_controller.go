package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dealradar/dealradar-backend/internal/app/service"
	apperrors "github.com/dealradar/dealradar-backend/internal/errors"
	"github.com/dealradar/dealradar-backend/internal/middleware"
)

// AdminController exposes the admin analytics endpoints.
type AdminController struct {
	analyticsService service.AnalyticsService
}

// NewAdminController creates an admin controller.
func NewAdminController(analyticsService service.AnalyticsService) *AdminController {
	return &AdminController{analyticsService: analyticsService}
}

// Stats handles GET /api/admin/stats
func (ctrl *AdminController) Stats(c *gin.Context) {
	dashboard, err := ctrl.analyticsService.Dashboard(c.Request.Context())
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to build dashboard", err, nil)
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, dashboard)
}
