package repository

import (
	"gorm.io/gorm"

	"github.com/dealradar/dealradar-backend/internal/app/model"
	"github.com/dealradar/dealradar-backend/pkg/logger"
)

// DashboardTotals holds the site-wide aggregate counters.
type DashboardTotals struct {
	TotalClicks      int64 `json:"total_clicks"`
	TotalConversions int64 `json:"total_conversions"`
	TotalCoupons     int64 `json:"total_coupons"`
	PendingCoupons   int64 `json:"pending_coupons"`
}

// AnalyticsRepository runs the aggregate queries behind the admin dashboard.
type AnalyticsRepository interface {
	Totals() (*DashboardTotals, error)
}

type analyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository creates an analytics repository.
func NewAnalyticsRepository(db *gorm.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

// Totals computes all dashboard counters in one query over the coupons
// table. Pending means not yet activated.
func (r *analyticsRepository) Totals() (*DashboardTotals, error) {
	log := logger.Get()

	var totals DashboardTotals
	err := r.db.Model(&model.Coupon{}).
		Select(`COALESCE(SUM(click_count), 0) AS total_clicks,
			COALESCE(SUM(conversion_count), 0) AS total_conversions,
			COUNT(*) AS total_coupons,
			COALESCE(SUM(CASE WHEN is_active THEN 0 ELSE 1 END), 0) AS pending_coupons`).
		Scan(&totals).Error
	if err != nil {
		log.Error("Failed to compute dashboard totals", err, nil)
		return nil, err
	}

	return &totals, nil
}
