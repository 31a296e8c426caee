package service

import (
	"errors"

	"gorm.io/gorm"

	"github.com/dealradar/dealradar-backend/internal/app/model"
	"github.com/dealradar/dealradar-backend/internal/app/repository"
	"github.com/dealradar/dealradar-backend/internal/websocket"
	"github.com/dealradar/dealradar-backend/pkg/logger"
)

// VoteResult is what a recorded vote produced.
type VoteResult struct {
	CouponID     uint  `json:"coupon_id"`
	SuccessScore int   `json:"success_score"`
	Positive     int64 `json:"positive"`
	Total        int64 `json:"total"`
}

// FeedbackService records coupon votes and keeps scores in sync.
type FeedbackService interface {
	RecordVote(couponID uint, userID *uint, worked bool) (*VoteResult, error)
	Stats(couponID uint) (*model.FeedbackStats, error)
}

type feedbackService struct {
	couponRepo   repository.CouponRepository
	feedbackRepo repository.FeedbackRepository
	scoring      ScoringService
	hub          *websocket.Hub
}

// NewFeedbackService creates a feedback service. hub may be nil.
func NewFeedbackService(
	couponRepo repository.CouponRepository,
	feedbackRepo repository.FeedbackRepository,
	scoring ScoringService,
	hub *websocket.Hub,
) FeedbackService {
	return &feedbackService{
		couponRepo:   couponRepo,
		feedbackRepo: feedbackRepo,
		scoring:      scoring,
		hub:          hub,
	}
}

// RecordVote stores one vote and recomputes the coupon's success score
// from all votes so far.
func (s *feedbackService) RecordVote(couponID uint, userID *uint, worked bool) (*VoteResult, error) {
	log := logger.Get()

	coupon, err := s.couponRepo.FindByID(couponID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCouponNotFound
		}
		return nil, err
	}

	feedback := &model.Feedback{
		CouponID: coupon.ID,
		UserID:   userID,
		Worked:   worked,
	}
	if err := s.feedbackRepo.Create(feedback); err != nil {
		return nil, err
	}

	score, err := s.scoring.ApplyHeuristicScore(coupon.ID)
	if err != nil {
		return nil, err
	}

	stats, err := s.feedbackRepo.Stats(coupon.ID)
	if err != nil {
		return nil, err
	}

	if s.hub != nil {
		s.hub.BroadcastCouponUpdate(websocket.CouponUpdate{
			CouponID:        coupon.ID,
			SuccessScore:    score,
			ClickCount:      coupon.ClickCount,
			ConversionCount: coupon.ConversionCount,
		})
	}

	log.Info("Recorded coupon vote", map[string]interface{}{
		"coupon_id": coupon.ID,
		"worked":    worked,
		"score":     score,
	})

	return &VoteResult{
		CouponID:     coupon.ID,
		SuccessScore: score,
		Positive:     stats.Positive,
		Total:        stats.Total,
	}, nil
}

func (s *feedbackService) Stats(couponID uint) (*model.FeedbackStats, error) {
	return s.feedbackRepo.Stats(couponID)
}
