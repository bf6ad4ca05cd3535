package router

import (
	"time"

	"github.com/ezcal-dev/ezcal/internal/auth"
	"github.com/ezcal-dev/ezcal/internal/config"
	"github.com/ezcal-dev/ezcal/internal/handlers"
	"github.com/ezcal-dev/ezcal/internal/middleware"
	"github.com/ezcal-dev/ezcal/internal/services"
	"github.com/ezcal-dev/ezcal/internal/storage"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func NewRouter(cfg *config.Config, database *gorm.DB, store storage.BlobStore) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	users := services.NewUserService(database)

	authHandler := handlers.NewAuthHandler(users, tokens)
	userHandler := handlers.NewUserHandler(users)
	scheduleHandler := handlers.NewScheduleHandler(cfg, services.NewScheduleService(database), store)

	authRequired := middleware.AuthMiddleware(cfg, tokens, users)

	r.GET("/health", handlers.HealthCheck)

	// Uploaded images are served straight from disk in development; in
	// production the blob store hands out S3 URLs instead.
	if cfg.Debug {
		r.Static("/uploads", cfg.UploadDir)
	}

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
		}

		usersGroup := api.Group("/users", authRequired)
		{
			usersGroup.GET("/me", userHandler.Me)
			usersGroup.PUT("/me", userHandler.UpdateMe)
			usersGroup.DELETE("/me", userHandler.DeleteMe)
		}

		schedules := api.Group("/schedules", authRequired)
		{
			schedules.GET("", scheduleHandler.List)
			schedules.GET("/range", scheduleHandler.Range)
			schedules.GET("/:schedule_id", scheduleHandler.Get)
			schedules.POST("", scheduleHandler.Create)
			schedules.POST("/upload", scheduleHandler.CreateWithImage)
			schedules.PUT("/:schedule_id", scheduleHandler.Update)
			schedules.DELETE("/:schedule_id", scheduleHandler.Delete)
		}

		system := api.Group("/system")
		{
			system.GET("/time", handlers.ServerTime)
			system.GET("/health", handlers.SystemHealth)
		}
	}

	return r
}
