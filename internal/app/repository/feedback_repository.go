package repository

import (
	"gorm.io/gorm"

	"github.com/dealradar/dealradar-backend/internal/app/model"
	"github.com/dealradar/dealradar-backend/pkg/logger"
)

// FeedbackRepository handles coupon feedback persistence.
type FeedbackRepository interface {
	Create(feedback *model.Feedback) error
	Stats(couponID uint) (*model.FeedbackStats, error)
	FindByCoupon(couponID uint, limit int) ([]model.Feedback, error)
}

type feedbackRepository struct {
	db *gorm.DB
}

// NewFeedbackRepository creates a feedback repository.
func NewFeedbackRepository(db *gorm.DB) FeedbackRepository {
	return &feedbackRepository{db: db}
}

func (r *feedbackRepository) Create(feedback *model.Feedback) error {
	log := logger.Get()

	if err := r.db.Create(feedback).Error; err != nil {
		log.Error("Failed to create feedback", err, map[string]interface{}{
			"coupon_id": feedback.CouponID,
		})
		return err
	}
	return nil
}

// Stats returns the positive and total vote counts for a coupon in a
// single aggregate query.
func (r *feedbackRepository) Stats(couponID uint) (*model.FeedbackStats, error) {
	log := logger.Get()

	var stats model.FeedbackStats
	err := r.db.Model(&model.Feedback{}).
		Select("COALESCE(SUM(CASE WHEN worked THEN 1 ELSE 0 END), 0) AS positive, COUNT(*) AS total").
		Where("coupon_id = ?", couponID).
		Scan(&stats).Error
	if err != nil {
		log.Error("Failed to aggregate feedback stats", err, map[string]interface{}{
			"coupon_id": couponID,
		})
		return nil, err
	}

	return &stats, nil
}

func (r *feedbackRepository) FindByCoupon(couponID uint, limit int) ([]model.Feedback, error) {
	query := r.db.Where("coupon_id = ?", couponID).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var feedback []model.Feedback
	if err := query.Find(&feedback).Error; err != nil {
		logger.Get().Error("Failed to list feedback", err, map[string]interface{}{
			"coupon_id": couponID,
		})
		return nil, err
	}
	return feedback, nil
}
