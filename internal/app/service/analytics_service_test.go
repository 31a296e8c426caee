package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dealradar/dealradar-backend/internal/app/model"
	"github.com/dealradar/dealradar-backend/internal/app/repository"
	"github.com/dealradar/dealradar-backend/internal/db"
)

func setupAnalyticsTest(t *testing.T) (*gorm.DB, AnalyticsService) {
	t.Helper()

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	analyticsRepo := repository.NewAnalyticsRepository(testDB)
	couponRepo := repository.NewCouponRepository(testDB)
	return testDB, NewAnalyticsService(analyticsRepo, couponRepo, nil, 0)
}

func TestDashboard(t *testing.T) {
	gdb, svc := setupAnalyticsTest(t)

	require.NoError(t, gdb.Create(&model.Coupon{
		Code: "A", Title: "A", ClickCount: 10, ConversionCount: 2, IsActive: true,
	}).Error)
	require.NoError(t, gdb.Create(&model.Coupon{
		Code: "B", Title: "B", ClickCount: 30, ConversionCount: 5, IsActive: true,
	}).Error)
	require.NoError(t, gdb.Create(&model.Coupon{
		Code: "C", Title: "C", ClickCount: 20, ConversionCount: 1, IsActive: false,
	}).Error)

	dashboard, err := svc.Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(60), dashboard.TotalClicks)
	assert.Equal(t, int64(8), dashboard.TotalConversions)
	assert.Equal(t, int64(3), dashboard.TotalCoupons)
	assert.Equal(t, int64(1), dashboard.PendingCoupons)

	// Top coupons include inactive ones, ordered by clicks.
	require.Len(t, dashboard.TopCoupons, 3)
	assert.Equal(t, "B", dashboard.TopCoupons[0].Code)
	assert.Equal(t, "C", dashboard.TopCoupons[1].Code)
	assert.Equal(t, "A", dashboard.TopCoupons[2].Code)
}

func TestDashboard_Empty(t *testing.T) {
	_, svc := setupAnalyticsTest(t)

	dashboard, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Zero(t, dashboard.TotalClicks)
	assert.Zero(t, dashboard.TotalCoupons)
	assert.Empty(t, dashboard.TopCoupons)
}

func TestDashboard_TopCouponsCappedAtFive(t *testing.T) {
	gdb, svc := setupAnalyticsTest(t)

	for i := 0; i < 7; i++ {
		require.NoError(t, gdb.Create(&model.Coupon{
			Code: "N", Title: "N", ClickCount: i, IsActive: true,
		}).Error)
	}

	dashboard, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Len(t, dashboard.TopCoupons, 5)
	assert.Equal(t, 6, dashboard.TopCoupons[0].ClickCount)
}
