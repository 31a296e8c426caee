package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dealradar/dealradar-backend/config"
	"github.com/dealradar/dealradar-backend/internal/app/model"
	"github.com/dealradar/dealradar-backend/internal/app/repository"
	"github.com/dealradar/dealradar-backend/internal/db"
)

// fakeOpenAI serves canned chat-completion responses.
func fakeOpenAI(t *testing.T, verdictJSON string, status int) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]interface{}{"content": verdictJSON}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func setupAdjudicatorTest(t *testing.T, baseURL string) (*gorm.DB, AdjudicatorService) {
	t.Helper()

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	couponRepo := repository.NewCouponRepository(testDB)
	feedbackRepo := repository.NewFeedbackRepository(testDB)
	scoring := NewScoringService(couponRepo, feedbackRepo)

	cfg := config.OpenAIConfig{
		APIKey:  "test-key",
		Model:   "gpt-4o-mini",
		BaseURL: baseURL,
		Timeout: 5 * time.Second,
	}
	return testDB, NewAdjudicatorService(cfg, couponRepo, feedbackRepo, scoring)
}

func TestAdjudicatorVerify(t *testing.T) {
	srv := fakeOpenAI(t, `{"score": 85, "confidence": "high", "analysis": "Recent votes are positive."}`, http.StatusOK)
	gdb, svc := setupAdjudicatorTest(t, srv.URL)

	coupon := &model.Coupon{Code: "VERIFY", Title: "Verifiable", SuccessScore: 20, IsActive: true}
	require.NoError(t, gdb.Create(coupon).Error)

	verdict, updated, err := svc.Verify(context.Background(), coupon.ID)
	require.NoError(t, err)
	assert.Equal(t, 85, verdict.Score)
	assert.Equal(t, "high", verdict.Confidence)
	assert.Equal(t, 85, updated.SuccessScore)
	assert.NotNil(t, updated.LastVerified)
}

func TestAdjudicatorVerify_InvalidVerdictWritesNothing(t *testing.T) {
	srv := fakeOpenAI(t, `{"score": 140, "confidence": "high", "analysis": "Overconfident."}`, http.StatusOK)
	gdb, svc := setupAdjudicatorTest(t, srv.URL)

	coupon := &model.Coupon{Code: "OVERSHOOT", Title: "Bad verdict", SuccessScore: 55, IsActive: true}
	require.NoError(t, gdb.Create(coupon).Error)

	_, _, err := svc.Verify(context.Background(), coupon.ID)
	assert.ErrorIs(t, err, ErrInvalidVerdict)

	var stored model.Coupon
	require.NoError(t, gdb.First(&stored, coupon.ID).Error)
	assert.Equal(t, 55, stored.SuccessScore)
	assert.Nil(t, stored.LastVerified)
}

func TestAdjudicatorVerify_MissingFieldsWriteNothing(t *testing.T) {
	tests := []struct {
		name    string
		verdict string
	}{
		{"missing score", `{"confidence": "high", "analysis": "Looks fine."}`},
		{"missing confidence", `{"score": 90, "analysis": "Looks fine."}`},
		{"empty object", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := fakeOpenAI(t, tt.verdict, http.StatusOK)
			gdb, svc := setupAdjudicatorTest(t, srv.URL)

			coupon := &model.Coupon{Code: "PARTIAL", Title: "Partial verdict", SuccessScore: 70, IsActive: true}
			require.NoError(t, gdb.Create(coupon).Error)

			_, _, err := svc.Verify(context.Background(), coupon.ID)
			assert.ErrorIs(t, err, ErrAdjudicationFailed)

			var stored model.Coupon
			require.NoError(t, gdb.First(&stored, coupon.ID).Error)
			assert.Equal(t, 70, stored.SuccessScore)
			assert.Nil(t, stored.LastVerified)
		})
	}
}

func TestAdjudicatorVerify_CouponNotFound(t *testing.T) {
	srv := fakeOpenAI(t, `{"score": 50, "confidence": "medium", "analysis": ""}`, http.StatusOK)
	_, svc := setupAdjudicatorTest(t, srv.URL)

	_, _, err := svc.Verify(context.Background(), 9999)
	assert.ErrorIs(t, err, ErrCouponNotFound)
}

func TestAdjudicatorVerify_BackendError(t *testing.T) {
	srv := fakeOpenAI(t, ``, http.StatusInternalServerError)
	gdb, svc := setupAdjudicatorTest(t, srv.URL)

	coupon := &model.Coupon{Code: "DOWN", Title: "Backend down", SuccessScore: 30, IsActive: true}
	require.NoError(t, gdb.Create(coupon).Error)

	_, _, err := svc.Verify(context.Background(), coupon.ID)
	assert.ErrorIs(t, err, ErrAdjudicationFailed)

	var stored model.Coupon
	require.NoError(t, gdb.First(&stored, coupon.ID).Error)
	assert.Equal(t, 30, stored.SuccessScore)
}

func TestAdjudicatorVerify_MalformedResponse(t *testing.T) {
	srv := fakeOpenAI(t, `this is not json`, http.StatusOK)
	gdb, svc := setupAdjudicatorTest(t, srv.URL)

	coupon := &model.Coupon{Code: "GARBAGE", Title: "Garbage response", IsActive: true}
	require.NoError(t, gdb.Create(coupon).Error)

	_, _, err := svc.Verify(context.Background(), coupon.ID)
	assert.ErrorIs(t, err, ErrAdjudicationFailed)
}

func TestAdjudicator_NoAPIKey(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	couponRepo := repository.NewCouponRepository(testDB)
	feedbackRepo := repository.NewFeedbackRepository(testDB)
	scoring := NewScoringService(couponRepo, feedbackRepo)

	svc := NewAdjudicatorService(config.OpenAIConfig{Timeout: time.Second}, couponRepo, feedbackRepo, scoring)

	coupon := &model.Coupon{Code: "NOKEY", Title: "No key", IsActive: true}
	require.NoError(t, testDB.Create(coupon).Error)

	_, _, err = svc.Verify(context.Background(), coupon.ID)
	assert.ErrorIs(t, err, ErrAdjudicationFailed)
}

func TestBuildAdjudicationPrompt_Deterministic(t *testing.T) {
	expiry := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	coupon := &model.Coupon{Code: "FLY50", Title: "50% off flights", ExpiryDate: &expiry}
	stats := &model.FeedbackStats{Positive: 2, Total: 3}

	first := buildAdjudicationPrompt(coupon, stats)
	second := buildAdjudicationPrompt(coupon, stats)
	assert.Equal(t, first, second)
	assert.Contains(t, first, "FLY50")
	assert.Contains(t, first, "2 of 3")
}
