package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dealradar/dealradar-backend/internal/app/model"
	"github.com/dealradar/dealradar-backend/internal/app/repository"
	"github.com/dealradar/dealradar-backend/internal/db"
)

func setupFeedbackServiceTest(t *testing.T) (*gorm.DB, FeedbackService) {
	t.Helper()

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	couponRepo := repository.NewCouponRepository(testDB)
	feedbackRepo := repository.NewFeedbackRepository(testDB)
	scoring := NewScoringService(couponRepo, feedbackRepo)

	return testDB, NewFeedbackService(couponRepo, feedbackRepo, scoring, nil)
}

func TestRecordVote(t *testing.T) {
	gdb, svc := setupFeedbackServiceTest(t)

	coupon := &model.Coupon{Code: "VOTE", Title: "Votable", IsActive: true}
	require.NoError(t, gdb.Create(coupon).Error)

	result, err := svc.RecordVote(coupon.ID, nil, true)
	require.NoError(t, err)
	assert.Equal(t, 100, result.SuccessScore)
	assert.Equal(t, int64(1), result.Positive)
	assert.Equal(t, int64(1), result.Total)

	result, err = svc.RecordVote(coupon.ID, nil, false)
	require.NoError(t, err)
	assert.Equal(t, 50, result.SuccessScore)
	assert.Equal(t, int64(2), result.Total)
}

func TestRecordVote_ScoreSequence(t *testing.T) {
	gdb, svc := setupFeedbackServiceTest(t)

	coupon := &model.Coupon{Code: "SEQ", Title: "Sequenced", IsActive: true}
	require.NoError(t, gdb.Create(coupon).Error)

	// Three positive votes then one negative: 3/4 = 75.
	var result *VoteResult
	var err error
	for _, worked := range []bool{true, true, true, false} {
		result, err = svc.RecordVote(coupon.ID, nil, worked)
		require.NoError(t, err)
	}
	assert.Equal(t, 75, result.SuccessScore)

	var stored model.Coupon
	require.NoError(t, gdb.First(&stored, coupon.ID).Error)
	assert.Equal(t, 75, stored.SuccessScore)
	assert.Nil(t, stored.LastVerified)
}

func TestRecordVote_CouponNotFound(t *testing.T) {
	_, svc := setupFeedbackServiceTest(t)

	_, err := svc.RecordVote(9999, nil, true)
	assert.ErrorIs(t, err, ErrCouponNotFound)
}

func TestRecordVote_AttributesUser(t *testing.T) {
	gdb, svc := setupFeedbackServiceTest(t)

	user := &model.User{Email: "voter@example.com", PasswordHash: "x", Name: "Voter"}
	require.NoError(t, gdb.Create(user).Error)

	coupon := &model.Coupon{Code: "USERVOTE", Title: "Attributed", IsActive: true}
	require.NoError(t, gdb.Create(coupon).Error)

	_, err := svc.RecordVote(coupon.ID, &user.ID, true)
	require.NoError(t, err)

	var feedback model.Feedback
	require.NoError(t, gdb.Where("coupon_id = ?", coupon.ID).First(&feedback).Error)
	require.NotNil(t, feedback.UserID)
	assert.Equal(t, user.ID, *feedback.UserID)
}
