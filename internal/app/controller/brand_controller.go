package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dealradar/dealradar-backend/internal/app/service"
	apperrors "github.com/dealradar/dealradar-backend/internal/errors"
	"github.com/dealradar/dealradar-backend/internal/middleware"
)

// BrandController exposes the brand HTTP endpoints.
type BrandController struct {
	brandService service.BrandService
}

// NewBrandController creates a brand controller.
func NewBrandController(brandService service.BrandService) *BrandController {
	return &BrandController{brandService: brandService}
}

// List handles GET /api/brands
func (ctrl *BrandController) List(c *gin.Context) {
	brands, err := ctrl.brandService.List()
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to list brands", err, nil)
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, brands)
}

// Get handles GET /api/brands/:id
func (ctrl *BrandController) Get(c *gin.Context) {
	id, err := parseUintParam(c.Param("id"))
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "id must be a positive integer")
		return
	}

	brand, err := ctrl.brandService.Get(id)
	if err != nil {
		if errors.Is(err, service.ErrBrandNotFound) {
			apperrors.NotFound(c, apperrors.BrandNotFound, "Brand not found")
			return
		}
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, brand)
}

type createBrandRequest struct {
	Name string `json:"name" binding:"required"`
}

// Create handles POST /api/brands. Creating an existing name returns the
// stored brand unchanged.
func (ctrl *BrandController) Create(c *gin.Context) {
	var req createBrandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "name is required")
		return
	}

	brand, err := ctrl.brandService.GetOrCreate(req.Name)
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to create brand", err, map[string]interface{}{
			"name": req.Name,
		})
		info := apperrors.ParseError(err, "brand")
		apperrors.BadRequest(c, info.Code, info.Message)
		return
	}

	c.JSON(http.StatusCreated, brand)
}
