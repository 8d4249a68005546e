package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/nikhilmurali32/SafeBites/internal/handlers"
	"github.com/nikhilmurali32/SafeBites/internal/logger"
	"github.com/nikhilmurali32/SafeBites/internal/middleware"
)

type RouterConfig struct {
	Log             *logger.Logger
	AuthMiddleware  *middleware.AuthMiddleware
	UserHandler     *handlers.UserHandler
	ScanHandler     *handlers.ScanHandler
	AnalysisHandler *handlers.AnalysisHandler
	CORSOrigins     []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(cfg.Log))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// Public
	router.GET("/healthcheck", handlers.HealthCheck)

	// Protected
	api := router.Group("/api")
	api.Use(cfg.AuthMiddleware.RequireAuth())
	{
		api.GET("/user", cfg.UserHandler.GetMe)
		api.POST("/user/preferences", cfg.UserHandler.UpdatePreferences)
		api.GET("/user/stats", cfg.UserHandler.GetStats)
		api.GET("/user/scans", cfg.ScanHandler.List)
		api.POST("/user/scans", cfg.ScanHandler.Add)

		api.POST("/analyze", cfg.AnalysisHandler.Analyze)
		// Route spelling matches the analysis backend for client compatibility.
		api.GET("/reccomendations/:product/:score", cfg.AnalysisHandler.Recommendations)
	}

	return router
}
