package service

import (
	"errors"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/dealradar/dealradar-backend/internal/app/model"
	"github.com/dealradar/dealradar-backend/internal/app/repository"
	"github.com/dealradar/dealradar-backend/pkg/logger"
)

var (
	// ErrInvalidVerdict means an adjudication verdict failed validation
	// and nothing was written.
	ErrInvalidVerdict = errors.New("invalid adjudication verdict")
)

// Verdict is the outcome of an automated coupon verification.
type Verdict struct {
	Score      int    `json:"score"`      // 0-100
	Confidence string `json:"confidence"` // high | medium | low
	Analysis   string `json:"analysis"`
}

var validConfidences = map[string]bool{
	"high":   true,
	"medium": true,
	"low":    true,
}

// Valid reports whether the verdict can be applied to a coupon.
func (v *Verdict) Valid() bool {
	return v != nil && v.Score >= 0 && v.Score <= 100 && validConfidences[v.Confidence]
}

// ScoringService recomputes coupon success scores.
type ScoringService interface {
	ApplyHeuristicScore(couponID uint) (int, error)
	ApplyAdjudicatedScore(couponID uint, verdict *Verdict) error
	HeuristicScore(stats *model.FeedbackStats) (int, bool)
}

type scoringService struct {
	couponRepo   repository.CouponRepository
	feedbackRepo repository.FeedbackRepository
}

// NewScoringService creates a scoring service.
func NewScoringService(couponRepo repository.CouponRepository, feedbackRepo repository.FeedbackRepository) ScoringService {
	return &scoringService{
		couponRepo:   couponRepo,
		feedbackRepo: feedbackRepo,
	}
}

// HeuristicScore derives a score from vote counts: the rounded percentage
// of positive votes, clamped to 0-100. The second return is false when
// there are no votes, in which case the score must not be applied.
func (s *scoringService) HeuristicScore(stats *model.FeedbackStats) (int, bool) {
	if stats == nil || stats.Total == 0 {
		return 0, false
	}

	score := int(math.Round(float64(stats.Positive) * 100 / float64(stats.Total)))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score, true
}

// ApplyHeuristicScore recomputes the coupon's score from its feedback and
// stores it. With no votes the stored score is left unchanged and the
// current value is returned. The verification timestamp is never touched
// on this path.
func (s *scoringService) ApplyHeuristicScore(couponID uint) (int, error) {
	log := logger.Get()

	stats, err := s.feedbackRepo.Stats(couponID)
	if err != nil {
		return 0, err
	}

	score, ok := s.HeuristicScore(stats)
	if !ok {
		coupon, err := s.couponRepo.FindByID(couponID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, ErrCouponNotFound
			}
			return 0, err
		}
		return coupon.SuccessScore, nil
	}

	if err := s.couponRepo.UpdateScore(couponID, score); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrCouponNotFound
		}
		return 0, err
	}

	log.Debug("Applied heuristic score", map[string]interface{}{
		"coupon_id": couponID,
		"score":     score,
		"positive":  stats.Positive,
		"total":     stats.Total,
	})
	return score, nil
}

// ApplyAdjudicatedScore validates the verdict and stores its score with a
// fresh verification timestamp. An invalid verdict is rejected before any
// write happens.
func (s *scoringService) ApplyAdjudicatedScore(couponID uint, verdict *Verdict) error {
	log := logger.Get()

	if !verdict.Valid() {
		log.Warn("Rejected adjudication verdict", map[string]interface{}{
			"coupon_id":  couponID,
			"score":      verdictScore(verdict),
			"confidence": verdictConfidence(verdict),
		})
		return ErrInvalidVerdict
	}

	if err := s.couponRepo.UpdateScoreVerified(couponID, verdict.Score, time.Now()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCouponNotFound
		}
		return err
	}

	log.Info("Applied adjudicated score", map[string]interface{}{
		"coupon_id":  couponID,
		"score":      verdict.Score,
		"confidence": verdict.Confidence,
	})
	return nil
}

func verdictScore(v *Verdict) interface{} {
	if v == nil {
		return nil
	}
	return v.Score
}

func verdictConfidence(v *Verdict) interface{} {
	if v == nil {
		return nil
	}
	return v.Confidence
}
