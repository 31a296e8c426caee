package model

import (
	"time"
)

// Click is one outbound click on a coupon, kept as an audit row alongside
// the denormalized counter on the coupon itself.
type Click struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CouponID  uint      `gorm:"not null;index" json:"coupon_id"`
	UserID    *uint     `gorm:"index" json:"user_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	Coupon *Coupon `gorm:"foreignKey:CouponID" json:"-"`
}

func (Click) TableName() string {
	return "clicks"
}
