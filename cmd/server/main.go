package main

import (
	"log"
	"time"
	"vip-order-api/internal/api"
	"vip-order-api/internal/config"
	"vip-order-api/internal/database"
	"vip-order-api/pkg/logging"

	"github.com/gin-gonic/gin"
)

func main() {
	// Initialize configuration
	if err := config.InitConfig(); err != nil {
		log.Fatal("Failed to initialize config:", err)
	}
	if err := config.Validate(config.AppConfig); err != nil {
		log.Fatal("Invalid config:", err)
	}

	// Initialize logging
	logging.InitLogging()

	// Initialize database
	if err := database.InitDatabase(); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}

	// Clean up sessions that expired while the service was down
	if n, err := database.DeleteExpiredSessions(time.Now()); err != nil {
		logging.Warnf("Failed to clean expired sessions: %v", err)
	} else if n > 0 {
		logging.Infof("Removed %d expired sessions", n)
	}

	// Set Gin mode
	gin.SetMode(config.AppConfig.Mode)

	// Create Gin engine
	r := gin.Default()

	// Setup routes
	api.SetupRoutes(r)

	// Start server
	port := config.AppConfig.Port
	logging.Infof("Starting server on port %s", port)

	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
