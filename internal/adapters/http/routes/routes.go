package routes

import (
	"parkhub/internal/adapters/http/handlers"
	"parkhub/internal/adapters/http/middleware"
	"parkhub/internal/adapters/persistence/repositories"
	"parkhub/internal/config"
	"parkhub/internal/core/services"
	"parkhub/internal/pkg/cache"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cacheStore cache.Store, cfg *config.Config) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	lotRepo := repositories.NewLotRepository(db)
	reservationRepo := repositories.NewReservationRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo, refreshTokenRepo, reservationRepo, cfg)
	userService := services.NewUserService(userRepo)
	lotService := services.NewLotService(db, lotRepo, cacheStore)
	bookingService := services.NewBookingService(db, reservationRepo, cacheStore)
	dashboardService := services.NewDashboardService(db, cacheStore)
	exportService := services.NewExportService(reservationRepo)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db)
	authHandler := handlers.NewAuthHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(userService)
	lotHandler := handlers.NewLotHandler(lotService)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	exportHandler := handlers.NewExportHandler(exportService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	apiV1.Get("/", healthHandler.APIInfo)

	// Auth routes (public, rate-limited)
	authRoutes := apiV1.Group("/auth")
	authRoutes.Post("/register", middleware.AuthRateLimiter(), authHandler.Register)
	authRoutes.Post("/login", middleware.AuthRateLimiter(), authHandler.Login)
	authRoutes.Post("/refresh", authHandler.RefreshToken)
	authRoutes.Post("/logout", middleware.AuthMiddleware(cfg), authHandler.Logout)

	// Profile routes (authenticated users)
	profileRoutes := apiV1.Group("/profile")
	profileRoutes.Use(middleware.AuthMiddleware(cfg))
	profileRoutes.Get("/", userHandler.Profile)

	// Lot routes (authenticated users)
	lotRoutes := apiV1.Group("/lots")
	lotRoutes.Use(middleware.AuthMiddleware(cfg))
	lotRoutes.Get("/", lotHandler.ListAvailableLots)
	lotRoutes.Get("/:id", lotHandler.GetLot)

	// Reservation routes (authenticated users)
	reservationRoutes := apiV1.Group("/reservations")
	reservationRoutes.Use(middleware.AuthMiddleware(cfg))
	reservationRoutes.Post("/", bookingHandler.BookSpot)
	reservationRoutes.Get("/", bookingHandler.ListMyReservations)
	reservationRoutes.Get("/active", bookingHandler.GetActiveReservation)
	reservationRoutes.Post("/:id/release", bookingHandler.ReleaseSpot)

	// Dashboard routes (authenticated users)
	dashboardRoutes := apiV1.Group("/dashboard")
	dashboardRoutes.Use(middleware.AuthMiddleware(cfg))
	dashboardRoutes.Get("/stats", dashboardHandler.UserStats)

	// Export routes (authenticated users)
	exportRoutes := apiV1.Group("/export")
	exportRoutes.Use(middleware.AuthMiddleware(cfg))
	exportRoutes.Get("/reservations", exportHandler.ExportCSV)

	// Admin routes
	adminRoutes := apiV1.Group("/admin")
	adminRoutes.Use(middleware.AuthMiddleware(cfg))
	adminRoutes.Use(middleware.AdminOnly())
	adminRoutes.Get("/users", userHandler.ListUsers)
	adminRoutes.Get("/lots", lotHandler.ListLots)
	adminRoutes.Post("/lots", lotHandler.CreateLot)
	adminRoutes.Put("/lots/:id", lotHandler.UpdateLot)
	adminRoutes.Delete("/lots/:id", lotHandler.DeleteLot)
	adminRoutes.Get("/lots/:id/spots", lotHandler.ListSpots)
	adminRoutes.Get("/reservations", bookingHandler.ListAllReservations)
	adminRoutes.Get("/dashboard/stats", dashboardHandler.AdminStats)
	adminRoutes.Get("/dashboard/charts", dashboardHandler.AdminCharts)
}
