package main

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/dealradar/dealradar-backend/config"
	"github.com/dealradar/dealradar-backend/internal/app/model"
	"github.com/dealradar/dealradar-backend/internal/app/repository"
	"github.com/dealradar/dealradar-backend/internal/db"
	"github.com/dealradar/dealradar-backend/pkg/logger"
	"github.com/dealradar/dealradar-backend/pkg/util"
)

// Seeds coupons from an xlsx export. Expected columns:
// Code | Title | Description | Brand | Category | Discount | ExpiryDate | AffiliateLink
//
// Usage: seed -file coupons.xlsx [-sheet Sheet1]

func main() {
	filePath := flag.String("file", "", "path to the xlsx file")
	sheetName := flag.String("sheet", "", "sheet name (default: first sheet)")
	flag.Parse()

	logger.Initialize(logger.Config{Level: "info", Format: "console", EnableColor: true})
	log := logger.Get()

	if *filePath == "" {
		log.Error("Missing -file argument", nil)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", err)
	}

	if err := db.Initialize(cfg); err != nil {
		log.Fatal("Failed to initialize database", err)
	}
	defer db.Close()

	if err := db.Migrate(db.GetDB()); err != nil {
		log.Fatal("Failed to run migrations", err)
	}

	f, err := excelize.OpenFile(*filePath)
	if err != nil {
		log.Fatal("Failed to open xlsx file", err, map[string]interface{}{"file": *filePath})
	}
	defer f.Close()

	sheet := *sheetName
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		log.Fatal("Failed to read sheet", err, map[string]interface{}{"sheet": sheet})
	}
	if len(rows) < 2 {
		log.Info("No data rows found", map[string]interface{}{"sheet": sheet})
		return
	}

	couponRepo := repository.NewCouponRepository(db.GetDB())
	brandRepo := repository.NewBrandRepository(db.GetDB())
	categoryRepo := repository.NewCategoryRepository(db.GetDB())

	imported := 0
	skipped := 0

	// Row 0 is the header.
	for i, row := range rows[1:] {
		coupon, err := parseRow(row, brandRepo, categoryRepo)
		if err != nil {
			log.Warn("Skipping row", map[string]interface{}{
				"row":   i + 2,
				"error": err.Error(),
			})
			skipped++
			continue
		}

		if err := couponRepo.Create(coupon); err != nil {
			log.Warn("Failed to insert coupon", map[string]interface{}{
				"row":  i + 2,
				"code": coupon.Code,
			})
			skipped++
			continue
		}
		imported++
	}

	log.Info("Seed completed", map[string]interface{}{
		"imported": imported,
		"skipped":  skipped,
	})
}

func parseRow(row []string, brandRepo repository.BrandRepository, categoryRepo repository.CategoryRepository) (*model.Coupon, error) {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	code := cell(0)
	title := cell(1)
	if code == "" || title == "" {
		return nil, errMissingRequired
	}

	coupon := &model.Coupon{
		Code:           code,
		Title:          title,
		Description:    cell(2),
		DiscountAmount: cell(5),
		AffiliateLink:  cell(7),
		IsActive:       true,
	}

	if name := cell(3); name != "" {
		brand, err := brandRepo.GetOrCreate(&model.Brand{Name: name, Slug: util.Slugify(name)})
		if err != nil {
			return nil, err
		}
		coupon.BrandID = &brand.ID
	}

	if name := cell(4); name != "" {
		category, err := categoryRepo.GetOrCreate(&model.Category{Name: name, Slug: util.Slugify(name)})
		if err != nil {
			return nil, err
		}
		coupon.CategoryID = &category.ID
	}

	if raw := cell(6); raw != "" {
		expiry, err := parseDate(raw)
		if err != nil {
			return nil, err
		}
		coupon.ExpiryDate = &expiry
	}

	return coupon, nil
}

var errMissingRequired = &parseError{"code and title are required"}

type parseError struct{ msg string }

func (e *parseError) Error() string { return e.msg }

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", "02/01/2006", "01-02-06", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &parseError{"unrecognized date format: " + s}
}
