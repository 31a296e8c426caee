package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/dealradar/dealradar-backend/config"
	"github.com/dealradar/dealradar-backend/internal/app/model"
	"github.com/dealradar/dealradar-backend/internal/app/repository"
	"github.com/dealradar/dealradar-backend/pkg/logger"
)

var (
	// ErrAdjudicationFailed means the verification backend could not
	// produce a verdict. The coupon is left untouched.
	ErrAdjudicationFailed = errors.New("coupon adjudication failed")
)

// AdjudicatorService verifies coupons through an LLM and applies the
// resulting verdict.
type AdjudicatorService interface {
	Verify(ctx context.Context, couponID uint) (*Verdict, *model.Coupon, error)
	Adjudicate(ctx context.Context, coupon *model.Coupon, stats *model.FeedbackStats) (*Verdict, error)
}

type adjudicatorService struct {
	cfg          config.OpenAIConfig
	httpClient   *http.Client
	couponRepo   repository.CouponRepository
	feedbackRepo repository.FeedbackRepository
	scoring      ScoringService
}

// NewAdjudicatorService creates an adjudicator service.
func NewAdjudicatorService(
	cfg config.OpenAIConfig,
	couponRepo repository.CouponRepository,
	feedbackRepo repository.FeedbackRepository,
	scoring ScoringService,
) AdjudicatorService {
	return &adjudicatorService{
		cfg:          cfg,
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		couponRepo:   couponRepo,
		feedbackRepo: feedbackRepo,
		scoring:      scoring,
	}
}

// Verify runs the full verification flow: fetch the coupon and its vote
// counts, ask the model for a verdict, validate it, and store the score
// with a fresh verification timestamp. On any failure nothing is written.
func (s *adjudicatorService) Verify(ctx context.Context, couponID uint) (*Verdict, *model.Coupon, error) {
	coupon, err := s.couponRepo.FindByID(couponID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrCouponNotFound
		}
		return nil, nil, err
	}

	stats, err := s.feedbackRepo.Stats(coupon.ID)
	if err != nil {
		return nil, nil, err
	}

	verdict, err := s.Adjudicate(ctx, coupon, stats)
	if err != nil {
		return nil, nil, err
	}

	if err := s.scoring.ApplyAdjudicatedScore(coupon.ID, verdict); err != nil {
		return nil, nil, err
	}

	updated, err := s.couponRepo.FindByID(coupon.ID)
	if err != nil {
		return nil, nil, err
	}
	return verdict, updated, nil
}

// Adjudicate asks the model whether the coupon is still likely to work.
// The prompt is deterministic for a given coupon and vote counts.
func (s *adjudicatorService) Adjudicate(ctx context.Context, coupon *model.Coupon, stats *model.FeedbackStats) (*Verdict, error) {
	log := logger.Get()

	if s.cfg.APIKey == "" {
		log.Warn("Adjudication requested without API key", map[string]interface{}{
			"coupon_id": coupon.ID,
		})
		return nil, ErrAdjudicationFailed
	}

	prompt := buildAdjudicationPrompt(coupon, stats)

	content, err := s.callOpenAI(ctx, prompt)
	if err != nil {
		log.Error("Adjudication call failed", err, map[string]interface{}{
			"coupon_id": coupon.ID,
			"model":     s.cfg.Model,
		})
		return nil, fmt.Errorf("%w: %v", ErrAdjudicationFailed, err)
	}

	// Score and confidence are decoded through pointers so an absent
	// field is distinguishable from a zero value.
	var wire struct {
		Score      *int    `json:"score"`
		Confidence *string `json:"confidence"`
		Analysis   string  `json:"analysis"`
	}
	if err := json.Unmarshal([]byte(content), &wire); err != nil {
		log.Error("Adjudication response was not valid JSON", err, map[string]interface{}{
			"coupon_id": coupon.ID,
		})
		return nil, fmt.Errorf("%w: malformed response", ErrAdjudicationFailed)
	}
	if wire.Score == nil || wire.Confidence == nil {
		log.Error("Adjudication response missing required fields", nil, map[string]interface{}{
			"coupon_id": coupon.ID,
		})
		return nil, fmt.Errorf("%w: response missing score or confidence", ErrAdjudicationFailed)
	}

	return &Verdict{
		Score:      *wire.Score,
		Confidence: *wire.Confidence,
		Analysis:   wire.Analysis,
	}, nil
}

func buildAdjudicationPrompt(coupon *model.Coupon, stats *model.FeedbackStats) string {
	expiry := "none"
	if coupon.ExpiryDate != nil {
		expiry = coupon.ExpiryDate.UTC().Format(time.RFC3339)
	}
	lastVerified := "never"
	if coupon.LastVerified != nil {
		lastVerified = coupon.LastVerified.UTC().Format(time.RFC3339)
	}

	return fmt.Sprintf(`You assess whether a discount coupon is still likely to work.

Coupon:
- Title: %s
- Code: %s
- Expiry date: %s
- Last verified: %s
- User votes: %d of %d reported it worked

Respond with a JSON object with exactly these keys:
- "score": integer 0-100, likelihood the code currently works
- "confidence": one of "high", "medium", "low"
- "analysis": one or two sentences explaining the score`,
		coupon.Title, coupon.Code, expiry, lastVerified, stats.Positive, stats.Total)
}

type openAIRequest struct {
	Model          string          `json:"model"`
	Messages       []openAIMessage `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
	Temperature    float64         `json:"temperature"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (s *adjudicatorService) callOpenAI(ctx context.Context, prompt string) (string, error) {
	reqBody := openAIRequest{
		Model: s.cfg.Model,
		Messages: []openAIMessage{
			{Role: "user", Content: prompt},
		},
		ResponseFormat: &responseFormat{Type: "json_object"},
		Temperature:    0,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.cfg.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var apiResp openAIResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		if apiResp.Error != nil {
			return "", fmt.Errorf("api error (status %d): %s", resp.StatusCode, apiResp.Error.Message)
		}
		return "", fmt.Errorf("api error: status %d", resp.StatusCode)
	}

	if len(apiResp.Choices) == 0 {
		return "", errors.New("empty response from model")
	}
	return apiResp.Choices[0].Message.Content, nil
}
