package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/nikhilmurali32/SafeBites/internal/clients/rediscache"
	"github.com/nikhilmurali32/SafeBites/internal/handlers"
	"github.com/nikhilmurali32/SafeBites/internal/logger"
	"github.com/nikhilmurali32/SafeBites/internal/middleware"
	"github.com/nikhilmurali32/SafeBites/internal/server"
	"github.com/nikhilmurali32/SafeBites/internal/services"
	"github.com/nikhilmurali32/SafeBites/internal/store"
	"github.com/nikhilmurali32/SafeBites/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecret := utils.GetEnv("AUTH_JWT_SECRET", "defaultsecret", log)
	dataFile := utils.GetEnv("SAFEBITES_DATA_FILE", "data/users.json", log)
	corsOrigins := strings.Split(utils.GetEnv("CORS_ORIGINS", "http://localhost:3000", log), ",")

	// Store
	log.Info("Setting up user store from main...")
	userStore := store.NewFileStore(dataFile, log)

	// Recommendation cache (optional)
	var recoCache rediscache.Cache
	if cache, err := rediscache.New(log); err != nil {
		log.Warn("Running without recommendation cache", "error", err)
	} else {
		recoCache = cache
		defer recoCache.Close()
	}

	// Services
	log.Info("Setting up services from main...")
	userService := services.NewUserService(log, userStore)
	analysisClient := services.NewAnalysisClient(log)
	recommendationService := services.NewRecommendationService(log, analysisClient, recoCache)

	// Handlers
	log.Info("Setting up handlers from main...")
	userHandler := handlers.NewUserHandler(userService)
	scanHandler := handlers.NewScanHandler(userService)
	analysisHandler := handlers.NewAnalysisHandler(log, analysisClient, recommendationService)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(log, jwtSecret)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		Log:             log,
		AuthMiddleware:  authMiddleware,
		UserHandler:     userHandler,
		ScanHandler:     scanHandler,
		AnalysisHandler: analysisHandler,
		CORSOrigins:     corsOrigins,
	})

	port := utils.GetEnv("PORT", "8080", log)
	log.Info("Server listening", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
	}
}
