package model

import (
	"time"
)

// Feedback is one user vote on whether a coupon code worked.
type Feedback struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CouponID  uint      `gorm:"not null;index" json:"coupon_id"`
	UserID    *uint     `gorm:"index" json:"user_id,omitempty"` // nil for anonymous votes
	Worked    bool      `gorm:"not null" json:"worked"`
	CreatedAt time.Time `json:"created_at"`

	Coupon *Coupon `gorm:"foreignKey:CouponID" json:"-"`
}

func (Feedback) TableName() string {
	return "feedback"
}

// FeedbackStats aggregates votes for one coupon.
type FeedbackStats struct {
	Positive int64 `json:"positive"`
	Total    int64 `json:"total"`
}
