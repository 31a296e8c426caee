package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dealradar/dealradar-backend/internal/app/service"
	apperrors "github.com/dealradar/dealradar-backend/internal/errors"
	"github.com/dealradar/dealradar-backend/internal/middleware"
)

// CategoryController exposes the category HTTP endpoints.
type CategoryController struct {
	categoryService service.CategoryService
}

// NewCategoryController creates a category controller.
func NewCategoryController(categoryService service.CategoryService) *CategoryController {
	return &CategoryController{categoryService: categoryService}
}

// List handles GET /api/categories
func (ctrl *CategoryController) List(c *gin.Context) {
	categories, err := ctrl.categoryService.List()
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to list categories", err, nil)
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, categories)
}

// Get handles GET /api/categories/:id
func (ctrl *CategoryController) Get(c *gin.Context) {
	id, err := parseUintParam(c.Param("id"))
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "id must be a positive integer")
		return
	}

	category, err := ctrl.categoryService.Get(id)
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			apperrors.NotFound(c, apperrors.CategoryNotFound, "Category not found")
			return
		}
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, category)
}

type createCategoryRequest struct {
	Name     string `json:"name" binding:"required"`
	ParentID *uint  `json:"parent_id"`
}

// Create handles POST /api/categories. Creating an existing name returns
// the stored category unchanged.
func (ctrl *CategoryController) Create(c *gin.Context) {
	var req createCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "name is required")
		return
	}

	category, err := ctrl.categoryService.GetOrCreate(req.Name, req.ParentID)
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			apperrors.BadRequest(c, apperrors.CategoryBadParent, "Parent category does not exist")
			return
		}
		middleware.GetLoggerFromContext(c).Error("Failed to create category", err, map[string]interface{}{
			"name": req.Name,
		})
		info := apperrors.ParseError(err, "category")
		apperrors.BadRequest(c, info.Code, info.Message)
		return
	}

	c.JSON(http.StatusCreated, category)
}
