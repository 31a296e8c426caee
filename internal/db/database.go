package db

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/dealradar/dealradar-backend/config"
	"github.com/dealradar/dealradar-backend/pkg/logger"
)

var database *gorm.DB

// Initialize opens the PostgreSQL connection pool and stores the handle
// for GetDB.
func Initialize(cfg *config.Config) error {
	log := logger.Get()

	gormCfg := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	}

	var err error
	database, err = gorm.Open(postgres.Open(cfg.Database.DSN()), gormCfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := database.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("Database connection established", map[string]interface{}{
		"host": cfg.Database.Host,
		"port": cfg.Database.Port,
		"name": cfg.Database.DBName,
	})

	return nil
}

// GetDB returns the shared database handle. Initialize must have been
// called first.
func GetDB() *gorm.DB {
	return database
}

// Close shuts down the connection pool.
func Close() error {
	if database == nil {
		return nil
	}
	sqlDB, err := database.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
