package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dealradar/dealradar-backend/internal/app/model"
	"github.com/dealradar/dealradar-backend/pkg/logger"
)

// CategoryRepository handles category persistence.
type CategoryRepository interface {
	FindAll() ([]model.Category, error)
	FindByID(id uint) (*model.Category, error)
	FindBySlug(slug string) (*model.Category, error)
	GetOrCreate(category *model.Category) (*model.Category, error)
}

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a category repository.
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) FindAll() ([]model.Category, error) {
	var categories []model.Category
	if err := r.db.Order("name ASC").Find(&categories).Error; err != nil {
		logger.Get().Error("Failed to list categories", err, nil)
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) FindByID(id uint) (*model.Category, error) {
	var category model.Category
	if err := r.db.First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) FindBySlug(slug string) (*model.Category, error) {
	var category model.Category
	if err := r.db.Where("slug = ?", slug).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// GetOrCreate inserts the category unless its slug already exists, then
// returns the stored row.
func (r *categoryRepository) GetOrCreate(category *model.Category) (*model.Category, error) {
	log := logger.Get()

	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoNothing: true,
	}).Create(category).Error
	if err != nil {
		log.Error("Failed to upsert category", err, map[string]interface{}{
			"slug": category.Slug,
		})
		return nil, err
	}

	var stored model.Category
	if err := r.db.Where("slug = ?", category.Slug).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}
