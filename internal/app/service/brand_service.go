package service

import (
	"errors"

	"gorm.io/gorm"

	"github.com/dealradar/dealradar-backend/internal/app/model"
	"github.com/dealradar/dealradar-backend/internal/app/repository"
	"github.com/dealradar/dealradar-backend/pkg/util"
)

var (
	ErrBrandNotFound = errors.New("brand not found")
)

// BrandService handles brand business logic.
type BrandService interface {
	List() ([]model.Brand, error)
	Get(id uint) (*model.Brand, error)
	GetOrCreate(name string) (*model.Brand, error)
	SetLogo(id uint, logoURL string) (*model.Brand, error)
}

type brandService struct {
	brandRepo repository.BrandRepository
}

// NewBrandService creates a brand service.
func NewBrandService(brandRepo repository.BrandRepository) BrandService {
	return &brandService{brandRepo: brandRepo}
}

func (s *brandService) List() ([]model.Brand, error) {
	return s.brandRepo.FindAll()
}

func (s *brandService) Get(id uint) (*model.Brand, error) {
	brand, err := s.brandRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBrandNotFound
		}
		return nil, err
	}
	return brand, nil
}

// GetOrCreate resolves a brand by name, creating it when new. The slug is
// derived from the name, so the same name always maps to the same brand.
func (s *brandService) GetOrCreate(name string) (*model.Brand, error) {
	brand := &model.Brand{
		Name: name,
		Slug: util.Slugify(name),
	}
	return s.brandRepo.GetOrCreate(brand)
}

func (s *brandService) SetLogo(id uint, logoURL string) (*model.Brand, error) {
	brand, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	brand.LogoURL = logoURL
	if err := s.brandRepo.Update(brand); err != nil {
		return nil, err
	}
	return brand, nil
}
