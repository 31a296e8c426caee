package repository

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/dealradar/dealradar-backend/internal/app/model"
	"github.com/dealradar/dealradar-backend/pkg/logger"
)

// CouponSort selects the ordering of coupon listings.
type CouponSort string

const (
	SortDefault  CouponSort = ""         // success score first
	SortNewest   CouponSort = "newest"   // creation time, newest first
	SortPopular  CouponSort = "popular"  // click count, highest first
	SortExpiring CouponSort = "expiring" // expiry date, farthest first
)

// CouponFilter narrows and orders a coupon listing. Filters combine with
// AND; zero values are ignored.
type CouponFilter struct {
	CategoryID      *uint
	BrandID         *uint
	Search          string // case-insensitive substring match on title or code
	Sort            CouponSort
	IncludeInactive bool
	Limit           int
	Offset          int
}

// CouponRepository handles coupon persistence.
type CouponRepository interface {
	Create(coupon *model.Coupon) error
	FindByID(id uint) (*model.Coupon, error)
	FindWithFilter(filter CouponFilter) ([]model.Coupon, int64, error)
	Update(coupon *model.Coupon) error
	UpdateFields(id uint, fields map[string]interface{}) error
	Delete(id uint) error
	IncrementClickCount(id uint, userID *uint) (*model.Coupon, error)
	IncrementConversionCount(id uint) (*model.Coupon, error)
	UpdateScore(id uint, score int) error
	UpdateScoreVerified(id uint, score int, verifiedAt time.Time) error
	DeactivateExpired(now time.Time) (int64, error)
}

type couponRepository struct {
	db *gorm.DB
}

// NewCouponRepository creates a coupon repository.
func NewCouponRepository(db *gorm.DB) CouponRepository {
	return &couponRepository{db: db}
}

func (r *couponRepository) Create(coupon *model.Coupon) error {
	log := logger.Get()

	if err := r.db.Create(coupon).Error; err != nil {
		log.Error("Failed to create coupon", err, map[string]interface{}{
			"code": coupon.Code,
		})
		return err
	}

	log.Info("Coupon created", map[string]interface{}{
		"coupon_id": coupon.ID,
		"code":      coupon.Code,
	})
	return nil
}

func (r *couponRepository) FindByID(id uint) (*model.Coupon, error) {
	log := logger.Get()

	var coupon model.Coupon
	err := r.db.
		Preload("Brand").
		Preload("Category").
		First(&coupon, id).Error
	if err != nil {
		log.Debug("Coupon not found", map[string]interface{}{
			"coupon_id": id,
			"error":     err.Error(),
		})
		return nil, err
	}

	return &coupon, nil
}

// FindWithFilter lists coupons matching the filter and returns the total
// count before pagination.
func (r *couponRepository) FindWithFilter(filter CouponFilter) ([]model.Coupon, int64, error) {
	log := logger.Get()

	query := r.db.Model(&model.Coupon{})

	if !filter.IncludeInactive {
		query = query.Where("is_active = ?", true)
	}
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.BrandID != nil {
		query = query.Where("brand_id = ?", *filter.BrandID)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(code) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		log.Error("Failed to count coupons", err, nil)
		return nil, 0, err
	}

	switch filter.Sort {
	case SortNewest:
		query = query.Order("created_at DESC")
	case SortPopular:
		query = query.Order("click_count DESC").Order("created_at DESC")
	case SortExpiring:
		query = query.Order("expiry_date DESC")
	default:
		query = query.Order("success_score DESC").Order("created_at DESC")
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var coupons []model.Coupon
	err := query.
		Preload("Brand").
		Preload("Category").
		Find(&coupons).Error
	if err != nil {
		log.Error("Failed to list coupons", err, map[string]interface{}{
			"sort":   string(filter.Sort),
			"search": filter.Search,
		})
		return nil, 0, err
	}

	return coupons, total, nil
}

func (r *couponRepository) Update(coupon *model.Coupon) error {
	log := logger.Get()

	if err := r.db.Save(coupon).Error; err != nil {
		log.Error("Failed to update coupon", err, map[string]interface{}{
			"coupon_id": coupon.ID,
		})
		return err
	}
	return nil
}

// UpdateFields applies a partial update. Only the given columns change.
func (r *couponRepository) UpdateFields(id uint, fields map[string]interface{}) error {
	log := logger.Get()

	result := r.db.Model(&model.Coupon{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		log.Error("Failed to update coupon fields", result.Error, map[string]interface{}{
			"coupon_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *couponRepository) Delete(id uint) error {
	log := logger.Get()

	result := r.db.Delete(&model.Coupon{}, id)
	if result.Error != nil {
		log.Error("Failed to delete coupon", result.Error, map[string]interface{}{
			"coupon_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	log.Info("Coupon deleted", map[string]interface{}{"coupon_id": id})
	return nil
}

// IncrementClickCount bumps the click counter atomically, records an audit
// row, and returns the updated coupon. The counter update is a single
// conditional UPDATE so concurrent clicks never lose increments.
func (r *couponRepository) IncrementClickCount(id uint, userID *uint) (*model.Coupon, error) {
	log := logger.Get()

	var coupon model.Coupon
	err := r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Coupon{}).
			Where("id = ?", id).
			UpdateColumn("click_count", gorm.Expr("click_count + ?", 1))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		click := model.Click{CouponID: id, UserID: userID}
		if err := tx.Create(&click).Error; err != nil {
			return err
		}

		return tx.First(&coupon, id).Error
	})
	if err != nil {
		log.Error("Failed to record coupon click", err, map[string]interface{}{
			"coupon_id": id,
		})
		return nil, err
	}

	return &coupon, nil
}

// IncrementConversionCount bumps the conversion counter atomically and
// returns the updated coupon.
func (r *couponRepository) IncrementConversionCount(id uint) (*model.Coupon, error) {
	log := logger.Get()

	var coupon model.Coupon
	err := r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Coupon{}).
			Where("id = ?", id).
			UpdateColumn("conversion_count", gorm.Expr("conversion_count + ?", 1))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return tx.First(&coupon, id).Error
	})
	if err != nil {
		log.Error("Failed to record coupon conversion", err, map[string]interface{}{
			"coupon_id": id,
		})
		return nil, err
	}

	return &coupon, nil
}

// UpdateScore writes only the success score. LastVerified is untouched.
func (r *couponRepository) UpdateScore(id uint, score int) error {
	result := r.db.Model(&model.Coupon{}).
		Where("id = ?", id).
		UpdateColumn("success_score", score)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateScoreVerified writes the success score together with the
// verification timestamp.
func (r *couponRepository) UpdateScoreVerified(id uint, score int, verifiedAt time.Time) error {
	result := r.db.Model(&model.Coupon{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"success_score": score,
			"last_verified": verifiedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeactivateExpired flips is_active off for coupons whose expiry date has
// passed. Returns the number of coupons deactivated.
func (r *couponRepository) DeactivateExpired(now time.Time) (int64, error) {
	log := logger.Get()

	result := r.db.Model(&model.Coupon{}).
		Where("is_active = ? AND expiry_date IS NOT NULL AND expiry_date < ?", true, now).
		UpdateColumn("is_active", false)
	if result.Error != nil {
		log.Error("Failed to deactivate expired coupons", result.Error, nil)
		return 0, result.Error
	}

	if result.RowsAffected > 0 {
		log.Info("Deactivated expired coupons", map[string]interface{}{
			"count": result.RowsAffected,
		})
	}
	return result.RowsAffected, nil
}
