package http

import (
	"github.com/gin-gonic/gin"

	"github.com/anyvolt/assistant-backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(RequestIDMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		assistant := v1.Group("/assistant")
		{
			assistant.POST("/chat", handler.Chat)
		}

		search := v1.Group("/search")
		{
			search.GET("", handler.Search)
			search.POST("/refresh", handler.Refresh)
		}
	}

	return router
}
