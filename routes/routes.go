package routes

import (
	"time"

	"tipjar-backend/handlers"
	"tipjar-backend/middleware"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func SetupRoutes(r *gin.Engine, db *gorm.DB) {
	authHandler := &handlers.AuthHandler{DB: db}
	meHandler := &handlers.MeHandler{DB: db}
	userHandler := &handlers.UserHandler{DB: db}
	restaurantHandler := &handlers.RestaurantHandler{DB: db}
	staffHandler := &handlers.StaffHandler{DB: db}
	tipHandler := &handlers.TipHandler{DB: db}
	reviewHandler := &handlers.ReviewHandler{DB: db}
	toggleHandler := &handlers.FeatureToggleHandler{DB: db}
	qrHandler := &handlers.QrHandler{DB: db}

	// Public tip and review submission is rate limited per IP since it
	// takes no credentials.
	publicWriteLimiter := middleware.NewRateLimiter(30, time.Minute)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/refresh", authHandler.RefreshTokenHandler)

		api.GET("/qr/:key", qrHandler.ResolveQr)
		api.POST("/tips", publicWriteLimiter.Middleware(), tipHandler.CreateTip)
		api.POST("/reviews", publicWriteLimiter.Middleware(), reviewHandler.CreateReview)

		api.GET("/feature-toggles", toggleHandler.ListToggles)
		api.GET("/feature-toggles/key/:key", toggleHandler.GetToggleByKey)
	}

	protected := r.Group("/api")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.GET("/auth/profile", authHandler.GetProfile)
		protected.PATCH("/me/role", meHandler.UpdateMyRole)

		protected.GET("/restaurants", restaurantHandler.ListRestaurants)
		protected.POST("/restaurants", restaurantHandler.CreateRestaurant)
		protected.GET("/restaurants/:id", restaurantHandler.GetRestaurant)
		protected.PATCH("/restaurants/:id", restaurantHandler.UpdateRestaurant)
		protected.DELETE("/restaurants/:id", restaurantHandler.DeleteRestaurant)

		protected.GET("/staff", staffHandler.ListStaff)
		protected.POST("/staff", staffHandler.CreateStaff)
		protected.GET("/staff/:id", staffHandler.GetStaff)
		protected.PATCH("/staff/:id", staffHandler.UpdateStaff)
		protected.DELETE("/staff/:id", staffHandler.DeleteStaff)
		protected.GET("/staff/:id/tips", staffHandler.GetStaffTips)

		protected.GET("/tips", tipHandler.ListTips)

		protected.GET("/reviews", reviewHandler.ListReviews)
		protected.PATCH("/reviews/:id", reviewHandler.ModerateReview)
	}

	admin := r.Group("/api")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.GET("/admin/users", userHandler.ListUsers)
		admin.PATCH("/admin/users/:id/role", userHandler.UpdateUserRole)

		admin.POST("/feature-toggles", toggleHandler.CreateToggle)
		admin.PATCH("/feature-toggles/:id", toggleHandler.UpdateToggle)
		admin.PATCH("/feature-toggles/key/:key", toggleHandler.UpdateToggleByKey)
		admin.DELETE("/feature-toggles/:id", toggleHandler.DeleteToggle)
	}
}
