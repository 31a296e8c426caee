package model

import (
	"time"
)

// Coupon is the core entity: a discount code for a brand, optionally tied
// to a category and the user who submitted it.
//
// SuccessScore is the community-derived likelihood (0-100) that the code
// still works. It is recomputed from feedback votes and overwritten when
// an automated verification runs; LastVerified records only verification
// runs, never plain vote recomputation.
type Coupon struct {
	ID              uint       `gorm:"primarykey" json:"id"`
	Code            string     `gorm:"not null;index" json:"code"`
	Title           string     `gorm:"not null" json:"title"`
	Description     string     `json:"description,omitempty"`
	CategoryID      *uint      `gorm:"index" json:"category_id,omitempty"`
	BrandID         *uint      `gorm:"index" json:"brand_id,omitempty"`
	DiscountAmount  string     `json:"discount_amount,omitempty"` // display text, e.g. "50% OFF", "Flat Rs.100"
	ExpiryDate      *time.Time `json:"expiry_date,omitempty"`
	SuccessScore    int        `gorm:"not null;default:0" json:"success_score"`
	LastVerified    *time.Time `json:"last_verified,omitempty"`
	AffiliateLink   string     `json:"affiliate_link,omitempty"`
	IsActive        bool       `gorm:"not null;default:true" json:"is_active"`
	UserID          *uint      `gorm:"index" json:"user_id,omitempty"`
	ClickCount      int        `gorm:"not null;default:0" json:"click_count"`
	ConversionCount int        `gorm:"not null;default:0" json:"conversion_count"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	// Relationships
	Brand    *Brand     `gorm:"foreignKey:BrandID" json:"brand,omitempty"`
	Category *Category  `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	User     *User      `gorm:"foreignKey:UserID" json:"-"`
	Feedback []Feedback `gorm:"foreignKey:CouponID" json:"-"`
	Clicks   []Click    `gorm:"foreignKey:CouponID" json:"-"`
}

func (Coupon) TableName() string {
	return "coupons"
}

// IsExpired reports whether the coupon's expiry date has passed.
// Coupons without an expiry date never expire.
func (c *Coupon) IsExpired(now time.Time) bool {
	return c.ExpiryDate != nil && c.ExpiryDate.Before(now)
}
