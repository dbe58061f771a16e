package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"parkhub/internal/adapters/http/middleware"
	"parkhub/internal/adapters/http/routes"
	"parkhub/internal/adapters/persistence/models"
	"parkhub/internal/adapters/persistence/repositories"
	"parkhub/internal/config"
	"parkhub/internal/core/services"

	"github.com/gofiber/fiber/v2"

	_ "parkhub/docs" // Swagger docs
)

// @title ParkHub API
// @version 1.0
// @description Parking lot reservation backend API
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@parkhub.local

// @license.name MIT

// @host localhost:3000
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase(db)

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to auto migrate: %v", err)
	}
	log.Println("✅ Database migration completed")

	// Seed the admin account
	if err := config.SeedAdmin(db, cfg); err != nil {
		log.Printf("⚠️ Warning: Failed to seed admin user: %v", err)
	}

	// Connect read-side cache (falls back to no-op when Redis is absent)
	cacheStore := config.ConnectCache(cfg)

	// Start cron service for daily reminders (18:00) and monthly reports
	userRepo := repositories.NewUserRepository(db)
	lotRepo := repositories.NewLotRepository(db)
	reservationRepo := repositories.NewReservationRepository(db)
	notifyService := services.NewNotificationService()
	reportService := services.NewReportService(userRepo, reservationRepo, lotRepo, notifyService)
	cronService := services.NewCronService(reportService)
	cronService.Start()
	defer cronService.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "ParkHub API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes (pass db, cache store and cfg for dependency injection)
	routes.Setup(app, db, cacheStore, cfg)

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
