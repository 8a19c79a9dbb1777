package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskmaster/internal/config"
	"taskmaster/internal/database"
	"taskmaster/internal/handlers"
	"taskmaster/internal/jobs"
	"taskmaster/internal/logging"
	"taskmaster/internal/middleware"
	"taskmaster/internal/services"
	"taskmaster/pkg/auth"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
)

func main() {
	// Load .env file if present
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	logging.Init()
	cfg := config.Load()

	// Initialize database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Initialize(); err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	// Initialize JWT auth
	jwtAuth, err := auth.NewJWTAuth(cfg.JWTSecret, cfg.TokenExpiry)
	if err != nil {
		log.Fatalf("❌ Failed to initialize JWT auth: %v", err)
	}

	// Initialize metrics
	services.InitMetrics()

	// Initialize services
	clock := clockwork.NewRealClock()
	activityService := services.NewActivityService(db, clock)
	userService := services.NewUserService(db, clock)
	taskService := services.NewTaskService(db, clock, activityService)
	projectService := services.NewProjectService(db, clock)
	focusService := services.NewFocusService(db, clock, activityService)
	notificationService := services.NewNotificationService(db, clock)

	// Start the deadline sweeper unless disabled
	var sweeper *jobs.DeadlineSweeper
	if cfg.SweepEnabled {
		sweeper, err = jobs.NewDeadlineSweeper(db, clock, notificationService, cfg.NotificationCron, cfg.DueSoonDays)
		if err != nil {
			log.Fatalf("❌ Failed to create deadline sweeper: %v", err)
		}
		if err := sweeper.Start(); err != nil {
			log.Fatalf("❌ Failed to start deadline sweeper: %v", err)
		}
		log.Printf("⏰ Deadline sweeper enabled (cron: %s)", cfg.NotificationCron)
	} else {
		log.Println("⚠️  Deadline sweeper disabled")
	}

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "TaskMaster v1.0",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		BodyLimit:    1 * 1024 * 1024, // 1MB is plenty for JSON payloads
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())

	// Prometheus metrics middleware
	prometheus := fiberprometheus.New("taskmaster")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)
	log.Println("📊 Prometheus metrics endpoint enabled at /metrics")

	// Load rate limiting configuration
	rateLimitConfig := middleware.LoadRateLimitConfig()
	log.Printf("🛡️  [RATE-LIMIT] Loaded config: Global=%d/min, Auth=%d/15min",
		rateLimitConfig.GlobalAPIMax,
		rateLimitConfig.AuthAttemptMax,
	)

	// CORS configuration with environment-based origins
	allowedOrigins := cfg.AllowedOrigins
	if allowedOrigins == "" {
		// Default to localhost for development
		allowedOrigins = "http://localhost:5173,http://localhost:3000"
		log.Println("⚠️  ALLOWED_ORIGINS not set, using development defaults")
	}

	// Fiber's CORS middleware does not allow AllowCredentials with wildcard
	// origins.
	allowCredentials := allowedOrigins != "*"

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization",
		AllowCredentials: allowCredentials,
	}))
	log.Printf("🔒 [SECURITY] CORS allowed origins: %s", allowedOrigins)

	// Global API rate limiter
	app.Use("/api", middleware.GlobalAPIRateLimiter(rateLimitConfig))

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db)
	userHandler := handlers.NewUserHandler(jwtAuth, userService, activityService)
	taskHandler := handlers.NewTaskHandler(taskService)
	projectHandler := handlers.NewProjectHandler(projectService, taskService)
	activityHandler := handlers.NewActivityHandler(activityService)
	focusHandler := handlers.NewFocusHandler(focusService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	// Public routes
	app.Get("/health", healthHandler.Handle)

	authLimiter := middleware.AuthAttemptRateLimiter(rateLimitConfig)
	app.Post("/api/users", authLimiter, userHandler.Register)
	app.Post("/api/users/login", authLimiter, userHandler.Login)

	// Authenticated routes
	api := app.Group("/api", middleware.AuthMiddleware(jwtAuth))

	api.Get("/users/profile", userHandler.GetProfile)
	api.Put("/users/profile", userHandler.UpdateProfile)

	api.Post("/tasks", taskHandler.Create)
	api.Get("/tasks", taskHandler.List)
	api.Get("/tasks/project/:projectId", taskHandler.ListByProject)
	api.Get("/tasks/:id", taskHandler.GetByID)
	api.Put("/tasks/:id", taskHandler.Update)
	api.Delete("/tasks/:id", taskHandler.Delete)

	api.Post("/projects", projectHandler.Create)
	api.Get("/projects", projectHandler.List)
	api.Get("/projects/:id", projectHandler.GetByID)
	api.Put("/projects/:id", projectHandler.Update)
	api.Delete("/projects/:id", projectHandler.Delete)

	api.Get("/activities/calendar", activityHandler.GetCalendar)

	api.Post("/focus/start", focusHandler.Start)
	api.Get("/focus", focusHandler.List)
	api.Get("/focus/wallet", focusHandler.Wallet)
	api.Put("/focus/:id/complete", focusHandler.Complete)
	api.Put("/focus/:id/cancel", focusHandler.Cancel)

	api.Get("/notifications", notificationHandler.List)
	api.Put("/notifications/read-all", notificationHandler.MarkAllRead)
	api.Put("/notifications/:id/read", notificationHandler.MarkRead)
	api.Delete("/notifications/:id", notificationHandler.Delete)

	log.Printf("🚀 Server starting on port %s", cfg.Port)
	log.Printf("📡 Health check: http://localhost:%s/health", cfg.Port)

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("\n🛑 Shutting down server...")

		if sweeper != nil {
			if err := sweeper.Stop(); err != nil {
				log.Printf("⚠️ Error stopping deadline sweeper: %v", err)
			}
		}

		if err := app.Shutdown(); err != nil {
			log.Printf("⚠️ Error shutting down server: %v", err)
		}
	}()

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}
