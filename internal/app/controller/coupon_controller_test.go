package controller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dealradar/dealradar-backend/config"
	"github.com/dealradar/dealradar-backend/internal/app/model"
	"github.com/dealradar/dealradar-backend/internal/app/repository"
	"github.com/dealradar/dealradar-backend/internal/app/service"
	"github.com/dealradar/dealradar-backend/internal/db"
)

func setupCouponControllerTest(t *testing.T) (*gorm.DB, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	couponRepo := repository.NewCouponRepository(testDB)
	feedbackRepo := repository.NewFeedbackRepository(testDB)
	brandRepo := repository.NewBrandRepository(testDB)
	categoryRepo := repository.NewCategoryRepository(testDB)

	scoring := service.NewScoringService(couponRepo, feedbackRepo)
	couponService := service.NewCouponService(couponRepo, nil, nil)
	feedbackService := service.NewFeedbackService(couponRepo, feedbackRepo, scoring, nil)
	adjudicator := service.NewAdjudicatorService(config.OpenAIConfig{Timeout: time.Second}, couponRepo, feedbackRepo, scoring)
	brandService := service.NewBrandService(brandRepo)
	categoryService := service.NewCategoryService(categoryRepo)

	ctrl := NewCouponController(couponService, feedbackService, adjudicator, brandService, categoryService)

	r := gin.New()
	r.GET("/api/coupons", ctrl.List)
	r.GET("/api/coupons/:id", ctrl.Get)
	r.POST("/api/coupons", ctrl.Create)
	r.PATCH("/api/coupons/:id", ctrl.Update)
	r.DELETE("/api/coupons/:id", ctrl.Delete)
	r.PATCH("/api/coupons/:id/status", ctrl.UpdateStatus)
	r.POST("/api/coupons/:id/click", ctrl.Click)
	r.POST("/api/coupons/:id/convert", ctrl.Convert)
	r.POST("/api/coupons/:id/vote", ctrl.Vote)

	return testDB, r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCouponController_List(t *testing.T) {
	gdb, r := setupCouponControllerTest(t)

	require.NoError(t, gdb.Create(&model.Coupon{
		Code: "FLY50", Title: "50% off flights", SuccessScore: 80, IsActive: true,
	}).Error)
	require.NoError(t, gdb.Create(&model.Coupon{
		Code: "EAT30", Title: "30% off food", SuccessScore: 40, IsActive: true,
	}).Error)
	require.NoError(t, gdb.Create(&model.Coupon{
		Code: "OFF", Title: "Disabled", IsActive: false,
	}).Error)

	w := doJSON(t, r, http.MethodGet, "/api/coupons", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Coupons []model.Coupon `json:"coupons"`
		Total   int64          `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(2), resp.Total)
	require.Len(t, resp.Coupons, 2)
	assert.Equal(t, "FLY50", resp.Coupons[0].Code)

	w = doJSON(t, r, http.MethodGet, "/api/coupons?search=FLY", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Coupons, 1)
	assert.Equal(t, "FLY50", resp.Coupons[0].Code)

	w = doJSON(t, r, http.MethodGet, "/api/coupons?includeInactive=true", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(3), resp.Total)
}

func TestCouponController_List_BadQuery(t *testing.T) {
	_, r := setupCouponControllerTest(t)

	w := doJSON(t, r, http.MethodGet, "/api/coupons?categoryId=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/coupons?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCouponController_Get(t *testing.T) {
	gdb, r := setupCouponControllerTest(t)

	coupon := &model.Coupon{Code: "GETME", Title: "Fetched", IsActive: true}
	require.NoError(t, gdb.Create(coupon).Error)

	w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/coupons/%d", coupon.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got model.Coupon
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "GETME", got.Code)

	w = doJSON(t, r, http.MethodGet, "/api/coupons/9999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/coupons/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCouponController_Create(t *testing.T) {
	_, r := setupCouponControllerTest(t)

	w := doJSON(t, r, http.MethodPost, "/api/coupons", gin.H{
		"code":          "NEW10",
		"title":         "10% off",
		"brand_name":    "Amazon",
		"category_name": "Shopping",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var got model.Coupon
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "NEW10", got.Code)
	assert.True(t, got.IsActive)
	require.NotNil(t, got.Brand)
	assert.Equal(t, "Amazon", got.Brand.Name)
	require.NotNil(t, got.Category)
	assert.Equal(t, "Shopping", got.Category.Name)
}

func TestCouponController_Create_MissingFields(t *testing.T) {
	_, r := setupCouponControllerTest(t)

	w := doJSON(t, r, http.MethodPost, "/api/coupons", gin.H{"title": "No code"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCouponController_Update(t *testing.T) {
	gdb, r := setupCouponControllerTest(t)

	coupon := &model.Coupon{Code: "PATCHME", Title: "Before", IsActive: true}
	require.NoError(t, gdb.Create(coupon).Error)

	w := doJSON(t, r, http.MethodPatch, fmt.Sprintf("/api/coupons/%d", coupon.ID), gin.H{
		"title": "After",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var got model.Coupon
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "After", got.Title)
	assert.Equal(t, "PATCHME", got.Code)

	w = doJSON(t, r, http.MethodPatch, "/api/coupons/9999", gin.H{"title": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCouponController_UpdateStatus(t *testing.T) {
	gdb, r := setupCouponControllerTest(t)

	coupon := &model.Coupon{Code: "STATUS", Title: "Pending", IsActive: false}
	require.NoError(t, gdb.Create(coupon).Error)

	w := doJSON(t, r, http.MethodPatch, fmt.Sprintf("/api/coupons/%d/status", coupon.ID), gin.H{
		"is_active": true,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var got model.Coupon
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.True(t, got.IsActive)

	w = doJSON(t, r, http.MethodPatch, fmt.Sprintf("/api/coupons/%d/status", coupon.ID), gin.H{
		"success_score": 70,
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 70, got.SuccessScore)

	w = doJSON(t, r, http.MethodPatch, fmt.Sprintf("/api/coupons/%d/status", coupon.ID), gin.H{
		"success_score": 140,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPatch, fmt.Sprintf("/api/coupons/%d/status", coupon.ID), gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCouponController_Delete(t *testing.T) {
	gdb, r := setupCouponControllerTest(t)

	coupon := &model.Coupon{Code: "DELETEME", Title: "Doomed", IsActive: true}
	require.NoError(t, gdb.Create(coupon).Error)

	w := doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/coupons/%d", coupon.ID), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/coupons/%d", coupon.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCouponController_Click(t *testing.T) {
	gdb, r := setupCouponControllerTest(t)

	coupon := &model.Coupon{Code: "CLICKED", Title: "Clicked", IsActive: true}
	require.NoError(t, gdb.Create(coupon).Error)

	w := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/coupons/%d/click", coupon.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		ClickCount int `json:"click_count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.ClickCount)

	w = doJSON(t, r, http.MethodPost, "/api/coupons/9999/click", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCouponController_Convert(t *testing.T) {
	gdb, r := setupCouponControllerTest(t)

	coupon := &model.Coupon{Code: "CONVERTED", Title: "Converted", IsActive: true}
	require.NoError(t, gdb.Create(coupon).Error)

	w := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/coupons/%d/convert", coupon.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		ConversionCount int `json:"conversion_count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.ConversionCount)
}

func TestCouponController_Vote(t *testing.T) {
	gdb, r := setupCouponControllerTest(t)

	coupon := &model.Coupon{Code: "VOTED", Title: "Voted on", IsActive: true}
	require.NoError(t, gdb.Create(coupon).Error)

	path := fmt.Sprintf("/api/coupons/%d/vote", coupon.ID)

	for _, worked := range []bool{true, true, false} {
		w := doJSON(t, r, http.MethodPost, path, gin.H{"worked": worked})
		require.Equal(t, http.StatusOK, w.Code)
	}

	var stored model.Coupon
	require.NoError(t, gdb.First(&stored, coupon.ID).Error)
	assert.Equal(t, 67, stored.SuccessScore)

	w := doJSON(t, r, http.MethodPost, path, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/coupons/9999/vote", gin.H{"worked": true})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
