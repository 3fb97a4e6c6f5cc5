package main

import (
	"leasing-portal/internal/handler"
	"leasing-portal/internal/mailer"
	"leasing-portal/internal/middleware"
	"leasing-portal/internal/repository"
	"leasing-portal/internal/service"
	"leasing-portal/pkg/config"
	"leasing-portal/pkg/database"
	"leasing-portal/pkg/jwtutil"
	"leasing-portal/pkg/logger"
	"leasing-portal/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	if err := logger.InitLogger(cfg); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	log.Info("Starting leasing portal...", cfg.LogConfig()...)

	// Initialize database and probe schema capabilities
	if err := database.InitDB(cfg); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Initialize JWT utility
	jwtutil.Initialize(&cfg.JWT)

	db := database.GetDB()

	// Repositories
	callRepo := repository.NewCallRecordRepository(db)
	propertyRepo := repository.NewPropertyRepository(db)
	profileRepo := repository.NewProfileRepository(db)

	// Services
	dashboards := service.NewDashboardService(callRepo, propertyRepo, log)
	admins := service.NewAdminService(db, log)
	bookings := service.NewBookingClient(&cfg.Booking, log)
	waitlist := service.NewWaitlistService(&cfg.Waitlist, log)
	mail := mailer.New(&cfg.SMTP, log)

	// Handlers
	authHandler := handler.NewAuthHandler(db, profileRepo, admins, mail)
	dashboardHandler := handler.NewDashboardHandler(dashboards, profileRepo)
	adminHandler := handler.NewAdminHandler(admins, dashboards)
	bookingHandler := handler.NewBookingHandler(bookings)
	waitlistHandler := handler.NewWaitlistHandler(waitlist)

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		Skipper: handler.BookingCORSSkipper,
	}))
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no authentication required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", handler.MetricsHandler)

	// Authentication routes
	auth := e.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/register", authHandler.Register)

	// The voice-agent orchestrator and the landing page call these without
	// a session
	e.Any("/api/book-with-cal", bookingHandler.BookWithCal)
	e.POST("/api/waitlist", waitlistHandler.Submit)
	e.POST("/api/roi/calculate", handler.CalculateROI)

	// API routes - all require authentication
	api := e.Group("/api")
	api.Use(middleware.AuthMiddleware)

	api.GET("/me", authHandler.Me)

	// Customer dashboard
	dashboard := api.Group("/dashboard")
	dashboard.GET("/stats", dashboardHandler.GetStats)
	dashboard.GET("/activity", dashboardHandler.GetActivity)
	dashboard.GET("/calls", dashboardHandler.GetRecentCalls)
	dashboard.GET("/properties", dashboardHandler.GetProperties)
	dashboard.GET("/call-volume", dashboardHandler.GetCallVolume)

	// Admin panel - requires an active admin grant
	admin := api.Group("/admin")
	admin.Use(middleware.RequireAdmin(admins))

	admin.GET("/organizations", adminHandler.ListOrganizations)
	admin.POST("/organizations", adminHandler.CreateOrganization)
	admin.PATCH("/organizations/:id", adminHandler.UpdateOrganization)
	admin.DELETE("/organizations/:id", adminHandler.DeleteOrganization)

	admin.GET("/properties", adminHandler.ListProperties)
	admin.POST("/properties", adminHandler.CreateProperty)
	admin.PATCH("/properties/:id", adminHandler.UpdateProperty)
	admin.DELETE("/properties/:id", adminHandler.DeleteProperty)

	admin.GET("/users", adminHandler.ListUserProfiles)
	admin.POST("/users", adminHandler.CreateUserProfile)
	admin.PATCH("/users/:id", adminHandler.UpdateUserProfile)
	admin.DELETE("/users/:id", adminHandler.DeleteUserProfile)

	admin.GET("/admin-users", adminHandler.ListAdminUsers)
	admin.POST("/admin-users", adminHandler.CreateAdminUser)
	admin.PATCH("/admin-users/:id", adminHandler.UpdateAdminUser)
	admin.DELETE("/admin-users/:id", adminHandler.DeleteAdminUser)

	admin.GET("/call-counts", adminHandler.CallCounts)

	// Start server
	log.Info("Starting server", zap.String("port", cfg.Server.Port))
	if err := e.Start(":" + cfg.Server.Port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
