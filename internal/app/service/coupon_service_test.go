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

func setupCouponServiceTest(t *testing.T) (*gorm.DB, CouponService) {
	t.Helper()

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	couponRepo := repository.NewCouponRepository(testDB)
	return testDB, NewCouponService(couponRepo, nil, nil)
}

// dashboardCacheSpy counts cache invalidations.
type dashboardCacheSpy struct {
	invalidations int
}

func (s *dashboardCacheSpy) Dashboard(ctx context.Context) (*Dashboard, error) {
	return &Dashboard{}, nil
}

func (s *dashboardCacheSpy) InvalidateCache(ctx context.Context) {
	s.invalidations++
}

func TestCouponService_GetNotFound(t *testing.T) {
	_, svc := setupCouponServiceTest(t)

	_, err := svc.Get(9999)
	assert.ErrorIs(t, err, ErrCouponNotFound)
}

func TestCouponService_Update(t *testing.T) {
	gdb, svc := setupCouponServiceTest(t)

	coupon := &model.Coupon{Code: "EDIT", Title: "Before", IsActive: true}
	require.NoError(t, gdb.Create(coupon).Error)

	updated, err := svc.Update(coupon.ID, map[string]interface{}{"title": "After"})
	require.NoError(t, err)
	assert.Equal(t, "After", updated.Title)
	assert.Equal(t, "EDIT", updated.Code)

	// Empty update is a no-op read.
	same, err := svc.Update(coupon.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "After", same.Title)

	_, err = svc.Update(9999, map[string]interface{}{"title": "x"})
	assert.ErrorIs(t, err, ErrCouponNotFound)
}

func TestCouponService_UpdateStatus(t *testing.T) {
	gdb, svc := setupCouponServiceTest(t)

	coupon := &model.Coupon{Code: "TOGGLE", Title: "Toggled", IsActive: false}
	require.NoError(t, gdb.Create(coupon).Error)

	updated, err := svc.UpdateStatus(coupon.ID, true)
	require.NoError(t, err)
	assert.True(t, updated.IsActive)

	updated, err = svc.UpdateStatus(coupon.ID, false)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
}

func TestCouponService_RecordClick(t *testing.T) {
	gdb, svc := setupCouponServiceTest(t)

	coupon := &model.Coupon{Code: "CLICK", Title: "Clicked", IsActive: true}
	require.NoError(t, gdb.Create(coupon).Error)

	updated, err := svc.RecordClick(coupon.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.ClickCount)

	_, err = svc.RecordClick(9999, nil)
	assert.ErrorIs(t, err, ErrCouponNotFound)
}

func TestCouponService_RecordConversion(t *testing.T) {
	gdb, svc := setupCouponServiceTest(t)

	coupon := &model.Coupon{Code: "CONV", Title: "Converted", IsActive: true}
	require.NoError(t, gdb.Create(coupon).Error)

	updated, err := svc.RecordConversion(coupon.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.ConversionCount)

	_, err = svc.RecordConversion(9999)
	assert.ErrorIs(t, err, ErrCouponNotFound)
}

func TestCouponService_MutationsInvalidateDashboardCache(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	spy := &dashboardCacheSpy{}
	svc := NewCouponService(repository.NewCouponRepository(testDB), nil, spy)

	coupon := &model.Coupon{Code: "CACHED", Title: "Cached", IsActive: true}
	require.NoError(t, svc.Create(coupon))
	assert.Equal(t, 1, spy.invalidations)

	_, err = svc.RecordClick(coupon.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, spy.invalidations)

	_, err = svc.RecordConversion(coupon.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, spy.invalidations)

	_, err = svc.UpdateStatus(coupon.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 4, spy.invalidations)

	require.NoError(t, svc.Delete(coupon.ID))
	assert.Equal(t, 5, spy.invalidations)

	// Reads leave the cache alone.
	_, _, err = svc.List(repository.CouponFilter{})
	require.NoError(t, err)
	assert.Equal(t, 5, spy.invalidations)
}

func TestCouponService_Delete(t *testing.T) {
	gdb, svc := setupCouponServiceTest(t)

	coupon := &model.Coupon{Code: "GONE", Title: "Deleted", IsActive: true}
	require.NoError(t, gdb.Create(coupon).Error)

	require.NoError(t, svc.Delete(coupon.ID))
	assert.ErrorIs(t, svc.Delete(coupon.ID), ErrCouponNotFound)
}
