package service

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dealradar/dealradar-backend/internal/app/model"
	"github.com/dealradar/dealradar-backend/internal/app/repository"
	"github.com/dealradar/dealradar-backend/pkg/logger"
	"github.com/dealradar/dealradar-backend/pkg/redis"
)

const (
	dashboardCacheKey = "analytics:dashboard"
	topCouponsLimit   = 5
)

// Dashboard is the admin analytics payload.
type Dashboard struct {
	TotalClicks      int64          `json:"total_clicks"`
	TotalConversions int64          `json:"total_conversions"`
	TotalCoupons     int64          `json:"total_coupons"`
	PendingCoupons   int64          `json:"pending_coupons"`
	TopCoupons       []model.Coupon `json:"top_coupons"`
}

// AnalyticsService assembles the admin dashboard.
type AnalyticsService interface {
	Dashboard(ctx context.Context) (*Dashboard, error)
	InvalidateCache(ctx context.Context)
}

type analyticsService struct {
	analyticsRepo repository.AnalyticsRepository
	couponRepo    repository.CouponRepository
	cache         *goredis.Client
	cacheTTL      time.Duration
}

// NewAnalyticsService creates an analytics service. cache may be nil;
// every call then hits the database.
func NewAnalyticsService(
	analyticsRepo repository.AnalyticsRepository,
	couponRepo repository.CouponRepository,
	cache *goredis.Client,
	cacheTTL time.Duration,
) AnalyticsService {
	return &analyticsService{
		analyticsRepo: analyticsRepo,
		couponRepo:    couponRepo,
		cache:         cache,
		cacheTTL:      cacheTTL,
	}
}

// Dashboard returns the aggregate counters plus the five most clicked
// coupons, active or not. Results are cached briefly since the admin UI
// polls this endpoint.
func (s *analyticsService) Dashboard(ctx context.Context) (*Dashboard, error) {
	log := logger.Get()

	if s.cache != nil {
		var cached Dashboard
		hit, err := redis.GetJSON(ctx, s.cache, dashboardCacheKey, &cached)
		if err != nil {
			log.Warn("Dashboard cache read failed", map[string]interface{}{
				"error": err.Error(),
			})
		} else if hit {
			return &cached, nil
		}
	}

	totals, err := s.analyticsRepo.Totals()
	if err != nil {
		return nil, err
	}

	topCoupons, _, err := s.couponRepo.FindWithFilter(repository.CouponFilter{
		Sort:            repository.SortPopular,
		IncludeInactive: true,
		Limit:           topCouponsLimit,
	})
	if err != nil {
		return nil, err
	}

	dashboard := &Dashboard{
		TotalClicks:      totals.TotalClicks,
		TotalConversions: totals.TotalConversions,
		TotalCoupons:     totals.TotalCoupons,
		PendingCoupons:   totals.PendingCoupons,
		TopCoupons:       topCoupons,
	}

	if s.cache != nil {
		if err := redis.SetJSON(ctx, s.cache, dashboardCacheKey, dashboard, s.cacheTTL); err != nil {
			log.Warn("Dashboard cache write failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	return dashboard, nil
}

// InvalidateCache drops the cached dashboard so the next read is fresh.
func (s *analyticsService) InvalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := redis.Delete(ctx, s.cache, dashboardCacheKey); err != nil {
		logger.Get().Warn("Dashboard cache invalidation failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
