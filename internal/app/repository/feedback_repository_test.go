package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dealradar/dealradar-backend/internal/app/model"
	"github.com/dealradar/dealradar-backend/internal/db"
)

func setupFeedbackRepoTest(t *testing.T) (*gorm.DB, FeedbackRepository) {
	t.Helper()

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	return testDB, NewFeedbackRepository(testDB)
}

func TestFeedbackRepository_Stats(t *testing.T) {
	gdb, repo := setupFeedbackRepoTest(t)

	coupon := createTestCoupon(t, gdb, &model.Coupon{
		Code: "VOTED", Title: "Voted on", IsActive: true,
	})

	for _, worked := range []bool{true, true, false} {
		require.NoError(t, repo.Create(&model.Feedback{
			CouponID: coupon.ID,
			Worked:   worked,
		}))
	}

	stats, err := repo.Stats(coupon.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Positive)
	assert.Equal(t, int64(3), stats.Total)
}

func TestFeedbackRepository_Stats_NoVotes(t *testing.T) {
	gdb, repo := setupFeedbackRepoTest(t)

	coupon := createTestCoupon(t, gdb, &model.Coupon{
		Code: "SILENT", Title: "No votes", IsActive: true,
	})

	stats, err := repo.Stats(coupon.ID)
	require.NoError(t, err)
	assert.Zero(t, stats.Positive)
	assert.Zero(t, stats.Total)
}

func TestFeedbackRepository_FindByCoupon(t *testing.T) {
	gdb, repo := setupFeedbackRepoTest(t)

	coupon := createTestCoupon(t, gdb, &model.Coupon{
		Code: "LISTED", Title: "Listed", IsActive: true,
	})
	other := createTestCoupon(t, gdb, &model.Coupon{
		Code: "OTHER", Title: "Other", IsActive: true,
	})

	require.NoError(t, repo.Create(&model.Feedback{CouponID: coupon.ID, Worked: true}))
	require.NoError(t, repo.Create(&model.Feedback{CouponID: coupon.ID, Worked: false}))
	require.NoError(t, repo.Create(&model.Feedback{CouponID: other.ID, Worked: true}))

	feedback, err := repo.FindByCoupon(coupon.ID, 10)
	require.NoError(t, err)
	assert.Len(t, feedback, 2)

	feedback, err = repo.FindByCoupon(coupon.ID, 1)
	require.NoError(t, err)
	assert.Len(t, feedback, 1)
}
