package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dealradar/dealradar-backend/config"
	"github.com/dealradar/dealradar-backend/internal/app/controller"
	"github.com/dealradar/dealradar-backend/internal/app/model"
	"github.com/dealradar/dealradar-backend/internal/middleware"
	"github.com/dealradar/dealradar-backend/internal/websocket"
)

// Controllers bundles everything the router mounts.
type Controllers struct {
	Auth     *controller.AuthController
	Coupon   *controller.CouponController
	Brand    *controller.BrandController
	Category *controller.CategoryController
	Admin    *controller.AdminController
	Upload   *controller.UploadController
}

// Setup builds the gin engine with all routes and middleware.
func Setup(cfg *config.Config, ctrls Controllers, hub *websocket.Hub) *gin.Engine {
	gin.SetMode(cfg.Server.GinMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(corsMiddleware(cfg.CORS.AllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	})

	if hub != nil {
		r.GET("/live", websocket.ServeWS(hub))
	}

	secret := cfg.JWT.Secret
	admin := middleware.RequireRole(string(model.RoleAdmin))

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", ctrls.Auth.Register)
			auth.POST("/login", ctrls.Auth.Login)
			auth.GET("/me", middleware.Authenticate(secret), ctrls.Auth.Me)
		}

		coupons := api.Group("/coupons")
		{
			coupons.GET("", ctrls.Coupon.List)
			coupons.GET("/:id", ctrls.Coupon.Get)
			coupons.POST("", middleware.OptionalAuthenticate(secret), ctrls.Coupon.Create)
			coupons.PATCH("/:id", middleware.Authenticate(secret), admin, ctrls.Coupon.Update)
			coupons.DELETE("/:id", middleware.Authenticate(secret), admin, ctrls.Coupon.Delete)
			coupons.PATCH("/:id/status", middleware.Authenticate(secret), admin, ctrls.Coupon.UpdateStatus)

			coupons.POST("/:id/click", middleware.OptionalAuthenticate(secret), ctrls.Coupon.Click)
			coupons.POST("/:id/convert", ctrls.Coupon.Convert)
			coupons.POST("/:id/vote", middleware.OptionalAuthenticate(secret), ctrls.Coupon.Vote)
			coupons.POST("/:id/validate", ctrls.Coupon.Validate)
		}

		// Brand/category creation is an idempotent get-or-create, so it
		// stays public like coupon submission.
		brands := api.Group("/brands")
		{
			brands.GET("", ctrls.Brand.List)
			brands.GET("/:id", ctrls.Brand.Get)
			brands.POST("", ctrls.Brand.Create)
		}

		categories := api.Group("/categories")
		{
			categories.GET("", ctrls.Category.List)
			categories.GET("/:id", ctrls.Category.Get)
			categories.POST("", ctrls.Category.Create)
		}

		adminGroup := api.Group("/admin", middleware.Authenticate(secret), admin)
		{
			adminGroup.GET("/stats", ctrls.Admin.Stats)
		}

		upload := api.Group("/upload", middleware.Authenticate(secret), admin)
		{
			upload.POST("/logo", ctrls.Upload.PresignLogo)
		}
	}

	return r
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		origins[origin] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && (origins[origin] || origins["*"]) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization, X-Request-ID")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
