// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/workbridge/workbridge-backend/internal/config"
	"github.com/workbridge/workbridge-backend/internal/handlers"
	"github.com/workbridge/workbridge-backend/internal/lifecycle"
	"github.com/workbridge/workbridge-backend/internal/middleware"
	"github.com/workbridge/workbridge-backend/internal/repository"
	"github.com/workbridge/workbridge-backend/internal/services"
	"github.com/workbridge/workbridge-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	notificationService := services.NewNotificationService(db, cfg)
	storageService, _ := services.NewStorageService(cfg)

	authService := services.NewAuthService(db, cfg)
	projectService := services.NewProjectService(db)
	paymentService := services.NewPaymentService(db, cfg)
	coordinator := lifecycle.NewCoordinator(repository.NewGormRepository(db), notificationService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	projectHandler := handlers.NewProjectHandler(projectService, paymentService)
	applicationHandler := handlers.NewApplicationHandler(coordinator, storageService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.Frontend.BaseURL))
	r.Use(middleware.GeneralRateLimit())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.GET("/me", middleware.AuthRequired(), authHandler.Me)
		}

		// Project routes
		projects := v1.Group("/projects")
		{
			projects.GET("", projectHandler.List)
			projects.GET("/:id", projectHandler.Get)

			protected := projects.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("", projectHandler.Create)
				protected.POST("/:id/publish", projectHandler.Publish)
				protected.POST("/:id/complete", projectHandler.Complete)
				protected.POST("/:id/fund", projectHandler.FundEscrow)
				protected.POST("/:id/applications", middleware.SubmissionRateLimit(), applicationHandler.Submit)
			}
		}

		// Application routes
		applications := v1.Group("/applications")
		applications.Use(middleware.AuthRequired())
		{
			applications.GET("", applicationHandler.List)
			applications.GET("/:id", applicationHandler.Get)
			applications.POST("/:id/evaluate", applicationHandler.Evaluate)
			applications.POST("/:id/approve", applicationHandler.Approve)
			applications.POST("/:id/reject", applicationHandler.Reject)
			applications.POST("/:id/withdraw", applicationHandler.Withdraw)
			applications.POST("/:id/recompute-score", applicationHandler.RecomputeScore)
			applications.POST("/:id/attachments", middleware.UploadRateLimit(), applicationHandler.UploadAttachment)
		}
	}

	return r
}
