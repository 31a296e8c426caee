package model

type Brand struct {
	ID               uint   `gorm:"primarykey" json:"id"`
	Name             string `gorm:"not null" json:"name"`
	Slug             string `gorm:"uniqueIndex;not null" json:"slug"`
	LogoURL          string `json:"logo_url,omitempty"`
	AffiliateBaseURL string `json:"affiliate_base_url,omitempty"`

	Coupons []Coupon `gorm:"foreignKey:BrandID" json:"-"`
}

func (Brand) TableName() string {
	return "brands"
}
