package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dealradar/dealradar-backend/config"
	"github.com/dealradar/dealradar-backend/internal/app/controller"
	"github.com/dealradar/dealradar-backend/internal/app/repository"
	"github.com/dealradar/dealradar-backend/internal/app/service"
	"github.com/dealradar/dealradar-backend/internal/db"
	"github.com/dealradar/dealradar-backend/internal/router"
	"github.com/dealradar/dealradar-backend/internal/scheduler"
	"github.com/dealradar/dealradar-backend/internal/storage"
	"github.com/dealradar/dealradar-backend/internal/websocket"
	"github.com/dealradar/dealradar-backend/pkg/logger"
	"github.com/dealradar/dealradar-backend/pkg/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	logFormat := "json"
	if cfg.Server.Environment == "development" {
		logFormat = "console"
	}
	logger.Initialize(logger.Config{
		Level:       "info",
		Format:      logFormat,
		EnableColor: cfg.Server.Environment == "development",
	})
	log := logger.Get()

	if err := db.Initialize(cfg); err != nil {
		log.Fatal("Failed to initialize database", err)
	}
	defer db.Close()

	if err := db.Migrate(db.GetDB()); err != nil {
		log.Fatal("Failed to run migrations", err)
	}

	if err := redis.Init(cfg); err != nil {
		log.Warn("Redis unavailable, caching disabled", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer redis.Close()

	// Live update hub
	hub := websocket.NewHub()
	go hub.Run()

	// Repositories
	couponRepo := repository.NewCouponRepository(db.GetDB())
	feedbackRepo := repository.NewFeedbackRepository(db.GetDB())
	brandRepo := repository.NewBrandRepository(db.GetDB())
	categoryRepo := repository.NewCategoryRepository(db.GetDB())
	userRepo := repository.NewUserRepository(db.GetDB())
	analyticsRepo := repository.NewAnalyticsRepository(db.GetDB())

	// Services
	scoringService := service.NewScoringService(couponRepo, feedbackRepo)
	analyticsService := service.NewAnalyticsService(analyticsRepo, couponRepo, redis.GetClient(), cfg.Redis.DashboardTTL)
	couponService := service.NewCouponService(couponRepo, hub, analyticsService)
	feedbackService := service.NewFeedbackService(couponRepo, feedbackRepo, scoringService, hub)
	adjudicatorService := service.NewAdjudicatorService(cfg.OpenAI, couponRepo, feedbackRepo, scoringService)
	brandService := service.NewBrandService(brandRepo)
	categoryService := service.NewCategoryService(categoryRepo)
	authService := service.NewAuthService(userRepo, cfg.JWT)

	// Optional S3 storage for brand logos
	var s3Storage *storage.S3Storage
	if cfg.S3.AccessKeyID != "" {
		s3Storage, err = storage.NewS3Storage(context.Background(), cfg.S3)
		if err != nil {
			log.Warn("S3 unavailable, uploads disabled", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	// Controllers
	ctrls := router.Controllers{
		Auth:     controller.NewAuthController(authService),
		Coupon:   controller.NewCouponController(couponService, feedbackService, adjudicatorService, brandService, categoryService),
		Brand:    controller.NewBrandController(brandService),
		Category: controller.NewCategoryController(categoryService),
		Admin:    controller.NewAdminController(analyticsService),
		Upload:   controller.NewUploadController(s3Storage),
	}

	expiryScheduler := scheduler.NewExpiryScheduler(couponRepo)
	if err := expiryScheduler.Start(); err != nil {
		log.Fatal("Failed to start expiry scheduler", err)
	}

	engine := router.Setup(cfg, ctrls, hub)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: engine,
	}

	go func() {
		log.Info("Server starting", map[string]interface{}{
			"port":        cfg.Server.Port,
			"environment": cfg.Server.Environment,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server", nil)
	expiryScheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", err, nil)
	}

	log.Info("Server stopped", nil)
}
