package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/dealradar/dealradar-backend/internal/app/model"
	"github.com/dealradar/dealradar-backend/pkg/logger"
	"github.com/dealradar/dealradar-backend/pkg/util"
)

// Migrate runs schema migration and seeds baseline catalog data.
func Migrate(db *gorm.DB) error {
	log := logger.Get()

	log.Info("Running database migrations", nil)

	if err := db.AutoMigrate(
		&model.User{},
		&model.Category{},
		&model.Brand{},
		&model.Coupon{},
		&model.Feedback{},
		&model.Click{},
	); err != nil {
		return fmt.Errorf("auto migration failed: %w", err)
	}

	if err := seedInitialData(db); err != nil {
		return fmt.Errorf("seeding initial data failed: %w", err)
	}

	log.Info("Database migrations completed", nil)
	return nil
}

// seedInitialData inserts the baseline categories and brands on first boot.
// It is a no-op once any category exists.
func seedInitialData(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Category{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	categories := []model.Category{
		{Name: "Flights", Icon: "Plane"},
		{Name: "Trains", Icon: "TrainFront"},
		{Name: "Hotels", Icon: "Hotel"},
		{Name: "Shopping", Icon: "ShoppingBag"},
		{Name: "Food", Icon: "UtensilsCrossed"},
		{Name: "Recharge", Icon: "Smartphone"},
		{Name: "Education", Icon: "GraduationCap"},
		{Name: "Kids", Icon: "Baby"},
		{Name: "Sports", Icon: "Dumbbell"},
	}
	for i := range categories {
		categories[i].Slug = util.Slugify(categories[i].Name)
	}
	if err := db.Create(&categories).Error; err != nil {
		return err
	}

	brands := []model.Brand{
		{Name: "Amazon"},
		{Name: "Flipkart"},
		{Name: "MakeMyTrip"},
		{Name: "Swiggy"},
		{Name: "Zomato"},
	}
	for i := range brands {
		brands[i].Slug = util.Slugify(brands[i].Name)
	}
	if err := db.Create(&brands).Error; err != nil {
		return err
	}

	logger.Get().Info("Seeded initial catalog data", map[string]interface{}{
		"categories": len(categories),
		"brands":     len(brands),
	})
	return nil
}
