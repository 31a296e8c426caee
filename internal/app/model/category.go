package model

// Category groups coupons by spending area (flights, food, shopping, ...).
// A category may nest one level below a parent.
type Category struct {
	ID       uint   `gorm:"primarykey" json:"id"`
	Name     string `gorm:"not null" json:"name"`
	Slug     string `gorm:"uniqueIndex;not null" json:"slug"`
	Icon     string `gorm:"not null;default:'Tag'" json:"icon"` // Lucide icon name
	ParentID *uint  `gorm:"index" json:"parent_id,omitempty"`

	Parent   *Category  `gorm:"foreignKey:ParentID" json:"-"`
	Children []Category `gorm:"foreignKey:ParentID" json:"-"`
}

func (Category) TableName() string {
	return "categories"
}
