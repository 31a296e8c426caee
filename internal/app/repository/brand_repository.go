package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dealradar/dealradar-backend/internal/app/model"
	"github.com/dealradar/dealradar-backend/pkg/logger"
)

// BrandRepository handles brand persistence.
type BrandRepository interface {
	FindAll() ([]model.Brand, error)
	FindByID(id uint) (*model.Brand, error)
	FindBySlug(slug string) (*model.Brand, error)
	GetOrCreate(brand *model.Brand) (*model.Brand, error)
	Update(brand *model.Brand) error
}

type brandRepository struct {
	db *gorm.DB
}

// NewBrandRepository creates a brand repository.
func NewBrandRepository(db *gorm.DB) BrandRepository {
	return &brandRepository{db: db}
}

func (r *brandRepository) FindAll() ([]model.Brand, error) {
	var brands []model.Brand
	if err := r.db.Order("name ASC").Find(&brands).Error; err != nil {
		logger.Get().Error("Failed to list brands", err, nil)
		return nil, err
	}
	return brands, nil
}

func (r *brandRepository) FindByID(id uint) (*model.Brand, error) {
	var brand model.Brand
	if err := r.db.First(&brand, id).Error; err != nil {
		return nil, err
	}
	return &brand, nil
}

func (r *brandRepository) FindBySlug(slug string) (*model.Brand, error) {
	var brand model.Brand
	if err := r.db.Where("slug = ?", slug).First(&brand).Error; err != nil {
		return nil, err
	}
	return &brand, nil
}

// GetOrCreate inserts the brand unless its slug already exists, then
// returns the stored row. Safe under concurrent callers: the insert is
// ON CONFLICT DO NOTHING and the reselect always finds the winner.
func (r *brandRepository) GetOrCreate(brand *model.Brand) (*model.Brand, error) {
	log := logger.Get()

	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoNothing: true,
	}).Create(brand).Error
	if err != nil {
		log.Error("Failed to upsert brand", err, map[string]interface{}{
			"slug": brand.Slug,
		})
		return nil, err
	}

	var stored model.Brand
	if err := r.db.Where("slug = ?", brand.Slug).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *brandRepository) Update(brand *model.Brand) error {
	if err := r.db.Save(brand).Error; err != nil {
		logger.Get().Error("Failed to update brand", err, map[string]interface{}{
			"brand_id": brand.ID,
		})
		return err
	}
	return nil
}
