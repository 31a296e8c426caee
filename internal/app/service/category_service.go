package service

import (
	"errors"

	"gorm.io/gorm"

	"github.com/dealradar/dealradar-backend/internal/app/model"
	"github.com/dealradar/dealradar-backend/internal/app/repository"
	"github.com/dealradar/dealradar-backend/pkg/util"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
)

// CategoryService handles category business logic.
type CategoryService interface {
	List() ([]model.Category, error)
	Get(id uint) (*model.Category, error)
	GetOrCreate(name string, parentID *uint) (*model.Category, error)
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
}

// NewCategoryService creates a category service.
func NewCategoryService(categoryRepo repository.CategoryRepository) CategoryService {
	return &categoryService{categoryRepo: categoryRepo}
}

func (s *categoryService) List() ([]model.Category, error) {
	return s.categoryRepo.FindAll()
}

func (s *categoryService) Get(id uint) (*model.Category, error) {
	category, err := s.categoryRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return category, nil
}

// GetOrCreate resolves a category by name, creating it when new. A parent
// must already exist.
func (s *categoryService) GetOrCreate(name string, parentID *uint) (*model.Category, error) {
	if parentID != nil {
		if _, err := s.Get(*parentID); err != nil {
			return nil, err
		}
	}

	category := &model.Category{
		Name:     name,
		Slug:     util.Slugify(name),
		ParentID: parentID,
	}
	return s.categoryRepo.GetOrCreate(category)
}
