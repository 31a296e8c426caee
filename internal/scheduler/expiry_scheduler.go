package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dealradar/dealradar-backend/internal/app/repository"
	"github.com/dealradar/dealradar-backend/pkg/logger"
)

// ExpiryScheduler deactivates coupons whose expiry date has passed.
type ExpiryScheduler struct {
	couponRepo repository.CouponRepository
	cron       *cron.Cron
}

// NewExpiryScheduler creates the scheduler.
func NewExpiryScheduler(couponRepo repository.CouponRepository) *ExpiryScheduler {
	return &ExpiryScheduler{
		couponRepo: couponRepo,
		cron:       cron.New(),
	}
}

// Start runs the sweep once immediately, then every hour.
func (s *ExpiryScheduler) Start() error {
	log := logger.Get()

	if _, err := s.cron.AddFunc("@hourly", s.sweep); err != nil {
		return err
	}

	s.cron.Start()
	log.Info("Expiry scheduler started", map[string]interface{}{
		"schedule": "@hourly",
	})

	go s.sweep()
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (s *ExpiryScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Get().Info("Expiry scheduler stopped", nil)
}

func (s *ExpiryScheduler) sweep() {
	log := logger.Get()

	count, err := s.couponRepo.DeactivateExpired(time.Now())
	if err != nil {
		log.Error("Expiry sweep failed", err, nil)
		return
	}

	log.Debug("Expiry sweep completed", map[string]interface{}{
		"deactivated": count,
	})
}
