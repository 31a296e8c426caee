package controller

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dealradar/dealradar-backend/internal/app/model"
	"github.com/dealradar/dealradar-backend/internal/app/repository"
	"github.com/dealradar/dealradar-backend/internal/app/service"
	apperrors "github.com/dealradar/dealradar-backend/internal/errors"
	"github.com/dealradar/dealradar-backend/internal/middleware"
)

// CouponController exposes the coupon HTTP endpoints.
type CouponController struct {
	couponService   service.CouponService
	feedbackService service.FeedbackService
	adjudicator     service.AdjudicatorService
	brandService    service.BrandService
	categoryService service.CategoryService
}

// NewCouponController creates a coupon controller.
func NewCouponController(
	couponService service.CouponService,
	feedbackService service.FeedbackService,
	adjudicator service.AdjudicatorService,
	brandService service.BrandService,
	categoryService service.CategoryService,
) *CouponController {
	return &CouponController{
		couponService:   couponService,
		feedbackService: feedbackService,
		adjudicator:     adjudicator,
		brandService:    brandService,
		categoryService: categoryService,
	}
}

// List handles GET /api/coupons
func (ctrl *CouponController) List(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	filter := repository.CouponFilter{
		Search: c.Query("search"),
		Sort:   repository.CouponSort(c.Query("sort")),
	}

	if v := c.Query("categoryId"); v != "" {
		id, err := parseUintParam(v)
		if err != nil {
			apperrors.BadRequest(c, apperrors.ValidationInvalidID, "categoryId must be a positive integer")
			return
		}
		filter.CategoryID = &id
	}
	if v := c.Query("brandId"); v != "" {
		id, err := parseUintParam(v)
		if err != nil {
			apperrors.BadRequest(c, apperrors.ValidationInvalidID, "brandId must be a positive integer")
			return
		}
		filter.BrandID = &id
	}
	if v := c.Query("includeInactive"); v != "" {
		include, err := strconv.ParseBool(v)
		if err != nil {
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "includeInactive must be a boolean")
			return
		}
		filter.IncludeInactive = include
	}
	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			apperrors.BadRequest(c, apperrors.ValidationInvalidRange, "limit must be a non-negative integer")
			return
		}
		filter.Limit = limit
	}
	if v := c.Query("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			apperrors.BadRequest(c, apperrors.ValidationInvalidRange, "offset must be a non-negative integer")
			return
		}
		filter.Offset = offset
	}

	coupons, total, err := ctrl.couponService.List(filter)
	if err != nil {
		log.Error("Failed to list coupons", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"coupons": coupons,
		"total":   total,
	})
}

// Get handles GET /api/coupons/:id
func (ctrl *CouponController) Get(c *gin.Context) {
	id, ok := couponIDParam(c)
	if !ok {
		return
	}

	coupon, err := ctrl.couponService.Get(id)
	if err != nil {
		respondCouponError(c, err)
		return
	}

	c.JSON(http.StatusOK, coupon)
}

type createCouponRequest struct {
	Code           string     `json:"code" binding:"required"`
	Title          string     `json:"title" binding:"required"`
	Description    string     `json:"description"`
	BrandName      string     `json:"brand_name"`
	BrandID        *uint      `json:"brand_id"`
	CategoryName   string     `json:"category_name"`
	CategoryID     *uint      `json:"category_id"`
	DiscountAmount string     `json:"discount_amount"`
	ExpiryDate     *time.Time `json:"expiry_date"`
	AffiliateLink  string     `json:"affiliate_link"`
	IsActive       *bool      `json:"is_active"`
}

// Create handles POST /api/coupons. Brand and category may be given by ID
// or by name; names are resolved get-or-create.
func (ctrl *CouponController) Create(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req createCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request body: "+err.Error())
		return
	}

	coupon := model.Coupon{
		Code:           req.Code,
		Title:          req.Title,
		Description:    req.Description,
		BrandID:        req.BrandID,
		CategoryID:     req.CategoryID,
		DiscountAmount: req.DiscountAmount,
		ExpiryDate:     req.ExpiryDate,
		AffiliateLink:  req.AffiliateLink,
		IsActive:       true,
	}
	if req.IsActive != nil {
		coupon.IsActive = *req.IsActive
	}

	if coupon.BrandID == nil && req.BrandName != "" {
		brand, err := ctrl.brandService.GetOrCreate(req.BrandName)
		if err != nil {
			log.Error("Failed to resolve brand", err, map[string]interface{}{"name": req.BrandName})
			apperrors.InternalError(c, "")
			return
		}
		coupon.BrandID = &brand.ID
	}
	if coupon.CategoryID == nil && req.CategoryName != "" {
		category, err := ctrl.categoryService.GetOrCreate(req.CategoryName, nil)
		if err != nil {
			log.Error("Failed to resolve category", err, map[string]interface{}{"name": req.CategoryName})
			apperrors.InternalError(c, "")
			return
		}
		coupon.CategoryID = &category.ID
	}

	if userID, ok := middleware.GetUserID(c); ok {
		coupon.UserID = &userID
	}

	if err := ctrl.couponService.Create(&coupon); err != nil {
		info := apperrors.ParseError(err, "coupon")
		apperrors.BadRequest(c, info.Code, info.Message)
		return
	}

	created, err := ctrl.couponService.Get(coupon.ID)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusCreated, created)
}

type updateCouponRequest struct {
	Code           *string    `json:"code"`
	Title          *string    `json:"title"`
	Description    *string    `json:"description"`
	BrandID        *uint      `json:"brand_id"`
	CategoryID     *uint      `json:"category_id"`
	DiscountAmount *string    `json:"discount_amount"`
	ExpiryDate     *time.Time `json:"expiry_date"`
	AffiliateLink  *string    `json:"affiliate_link"`
	IsActive       *bool      `json:"is_active"`
}

// Update handles PATCH /api/coupons/:id. Only fields present in the body
// change.
func (ctrl *CouponController) Update(c *gin.Context) {
	id, ok := couponIDParam(c)
	if !ok {
		return
	}

	var req updateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request body: "+err.Error())
		return
	}

	fields := map[string]interface{}{}
	if req.Code != nil {
		fields["code"] = *req.Code
	}
	if req.Title != nil {
		fields["title"] = *req.Title
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.BrandID != nil {
		fields["brand_id"] = *req.BrandID
	}
	if req.CategoryID != nil {
		fields["category_id"] = *req.CategoryID
	}
	if req.DiscountAmount != nil {
		fields["discount_amount"] = *req.DiscountAmount
	}
	if req.ExpiryDate != nil {
		fields["expiry_date"] = *req.ExpiryDate
	}
	if req.AffiliateLink != nil {
		fields["affiliate_link"] = *req.AffiliateLink
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}

	coupon, err := ctrl.couponService.Update(id, fields)
	if err != nil {
		respondCouponError(c, err)
		return
	}

	c.JSON(http.StatusOK, coupon)
}

// Delete handles DELETE /api/coupons/:id
func (ctrl *CouponController) Delete(c *gin.Context) {
	id, ok := couponIDParam(c)
	if !ok {
		return
	}

	if err := ctrl.couponService.Delete(id); err != nil {
		respondCouponError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

type updateStatusRequest struct {
	IsActive     *bool `json:"is_active"`
	SuccessScore *int  `json:"success_score"`
}

// UpdateStatus handles PATCH /api/coupons/:id/status. Admins can toggle
// activation and manually override the success score.
func (ctrl *CouponController) UpdateStatus(c *gin.Context) {
	id, ok := couponIDParam(c)
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request body: "+err.Error())
		return
	}
	if req.IsActive == nil && req.SuccessScore == nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "is_active or success_score is required")
		return
	}

	fields := map[string]interface{}{}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}
	if req.SuccessScore != nil {
		if *req.SuccessScore < 0 || *req.SuccessScore > 100 {
			apperrors.BadRequest(c, apperrors.CouponInvalidScore, "success_score must be between 0 and 100")
			return
		}
		fields["success_score"] = *req.SuccessScore
	}

	coupon, err := ctrl.couponService.Update(id, fields)
	if err != nil {
		respondCouponError(c, err)
		return
	}

	c.JSON(http.StatusOK, coupon)
}

// Click handles POST /api/coupons/:id/click
func (ctrl *CouponController) Click(c *gin.Context) {
	id, ok := couponIDParam(c)
	if !ok {
		return
	}

	var userID *uint
	if uid, ok := middleware.GetUserID(c); ok {
		userID = &uid
	}

	coupon, err := ctrl.couponService.RecordClick(id, userID)
	if err != nil {
		respondCouponError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"coupon_id":   coupon.ID,
		"click_count": coupon.ClickCount,
	})
}

// Convert handles POST /api/coupons/:id/convert
func (ctrl *CouponController) Convert(c *gin.Context) {
	id, ok := couponIDParam(c)
	if !ok {
		return
	}

	coupon, err := ctrl.couponService.RecordConversion(id)
	if err != nil {
		respondCouponError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"coupon_id":        coupon.ID,
		"conversion_count": coupon.ConversionCount,
	})
}

type voteRequest struct {
	Worked *bool `json:"worked" binding:"required"`
}

// Vote handles POST /api/coupons/:id/vote
func (ctrl *CouponController) Vote(c *gin.Context) {
	id, ok := couponIDParam(c)
	if !ok {
		return
	}

	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "worked is required")
		return
	}

	var userID *uint
	if uid, ok := middleware.GetUserID(c); ok {
		userID = &uid
	}

	result, err := ctrl.feedbackService.RecordVote(id, userID, *req.Worked)
	if err != nil {
		respondCouponError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Validate handles POST /api/coupons/:id/validate. It runs an automated
// verification and returns the verdict alongside the refreshed score.
func (ctrl *CouponController) Validate(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := couponIDParam(c)
	if !ok {
		return
	}

	verdict, coupon, err := ctrl.adjudicator.Verify(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCouponNotFound):
			apperrors.NotFound(c, apperrors.CouponNotFound, "Coupon not found")
		case errors.Is(err, service.ErrInvalidVerdict):
			apperrors.BadRequest(c, apperrors.AdjudicationBadVerdict, "Verification produced an invalid verdict")
		case errors.Is(err, service.ErrAdjudicationFailed):
			apperrors.RespondWithError(c, http.StatusInternalServerError,
				apperrors.AdjudicationFailed, "Coupon verification is unavailable. Please try again later")
		default:
			log.Error("Coupon verification failed", err, map[string]interface{}{"coupon_id": id})
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success_score": coupon.SuccessScore,
		"confidence":    verdict.Confidence,
		"analysis":      verdict.Analysis,
		"last_verified": coupon.LastVerified,
	})
}

func couponIDParam(c *gin.Context) (uint, bool) {
	id, err := parseUintParam(c.Param("id"))
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "id must be a positive integer")
		return 0, false
	}
	return id, true
}

func parseUintParam(s string) (uint, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(n), nil
}

func respondCouponError(c *gin.Context, err error) {
	log := middleware.GetLoggerFromContext(c)

	switch {
	case errors.Is(err, service.ErrCouponNotFound):
		apperrors.NotFound(c, apperrors.CouponNotFound, "Coupon not found")
	default:
		log.Error("Coupon operation failed", err, nil)
		info := apperrors.ParseError(err, "coupon")
		if info.Code == apperrors.ResourceNotFound {
			apperrors.NotFound(c, apperrors.CouponNotFound, info.Message)
			return
		}
		apperrors.InternalError(c, info.Message)
	}
}
