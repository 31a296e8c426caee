package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/dealradar/dealradar-backend/internal/app/model"
	"github.com/dealradar/dealradar-backend/internal/app/repository"
	"github.com/dealradar/dealradar-backend/internal/websocket"
	"github.com/dealradar/dealradar-backend/pkg/logger"
)

var (
	ErrCouponNotFound = errors.New("coupon not found")
)

// CouponService handles coupon business logic.
type CouponService interface {
	List(filter repository.CouponFilter) ([]model.Coupon, int64, error)
	Get(id uint) (*model.Coupon, error)
	Create(coupon *model.Coupon) error
	Update(id uint, fields map[string]interface{}) (*model.Coupon, error)
	Delete(id uint) error
	UpdateStatus(id uint, isActive bool) (*model.Coupon, error)
	RecordClick(id uint, userID *uint) (*model.Coupon, error)
	RecordConversion(id uint) (*model.Coupon, error)
}

type couponService struct {
	couponRepo repository.CouponRepository
	hub        *websocket.Hub
	analytics  AnalyticsService
}

// NewCouponService creates a coupon service. hub and analytics may be
// nil; updates are then not broadcast and the dashboard cache is left
// alone.
func NewCouponService(couponRepo repository.CouponRepository, hub *websocket.Hub, analytics AnalyticsService) CouponService {
	return &couponService{
		couponRepo: couponRepo,
		hub:        hub,
		analytics:  analytics,
	}
}

func (s *couponService) List(filter repository.CouponFilter) ([]model.Coupon, int64, error) {
	return s.couponRepo.FindWithFilter(filter)
}

func (s *couponService) Get(id uint) (*model.Coupon, error) {
	coupon, err := s.couponRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCouponNotFound
		}
		return nil, err
	}
	return coupon, nil
}

func (s *couponService) Create(coupon *model.Coupon) error {
	if err := s.couponRepo.Create(coupon); err != nil {
		return err
	}
	s.invalidateDashboard()
	return nil
}

// Update applies a partial update and returns the refreshed coupon.
func (s *couponService) Update(id uint, fields map[string]interface{}) (*model.Coupon, error) {
	if len(fields) == 0 {
		return s.Get(id)
	}

	if err := s.couponRepo.UpdateFields(id, fields); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCouponNotFound
		}
		return nil, err
	}
	s.invalidateDashboard()
	return s.Get(id)
}

func (s *couponService) Delete(id uint) error {
	if err := s.couponRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCouponNotFound
		}
		return err
	}
	s.invalidateDashboard()
	return nil
}

func (s *couponService) UpdateStatus(id uint, isActive bool) (*model.Coupon, error) {
	return s.Update(id, map[string]interface{}{"is_active": isActive})
}

// RecordClick bumps the click counter, keeps the audit trail, and
// broadcasts the new count to live subscribers.
func (s *couponService) RecordClick(id uint, userID *uint) (*model.Coupon, error) {
	coupon, err := s.couponRepo.IncrementClickCount(id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCouponNotFound
		}
		return nil, err
	}

	s.broadcastCounters(coupon)
	s.invalidateDashboard()
	return coupon, nil
}

func (s *couponService) RecordConversion(id uint) (*model.Coupon, error) {
	coupon, err := s.couponRepo.IncrementConversionCount(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCouponNotFound
		}
		return nil, err
	}

	s.broadcastCounters(coupon)
	s.invalidateDashboard()
	return coupon, nil
}

// invalidateDashboard drops the cached admin dashboard after any mutation
// that changes its inputs.
func (s *couponService) invalidateDashboard() {
	if s.analytics == nil {
		return
	}
	s.analytics.InvalidateCache(context.Background())
}

func (s *couponService) broadcastCounters(coupon *model.Coupon) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastCouponUpdate(websocket.CouponUpdate{
		CouponID:        coupon.ID,
		SuccessScore:    coupon.SuccessScore,
		ClickCount:      coupon.ClickCount,
		ConversionCount: coupon.ConversionCount,
	})
	logger.Get().Debug("Broadcast coupon counters", map[string]interface{}{
		"coupon_id": coupon.ID,
	})
}
