package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-restaurant-authz/internal/authz"
	"go-restaurant-authz/internal/handler"
	"go-restaurant-authz/internal/metrics"
	"go-restaurant-authz/internal/repository"
	"go-restaurant-authz/internal/service"
	"go-restaurant-authz/internal/ws"
	"go-restaurant-authz/pkg/config"
	"go-restaurant-authz/pkg/database"
	"go-restaurant-authz/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	log.SetLevel(logLevel(cfg.LogLevel))

	// 2. Setup Database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	// 3. Metrics and WebSocket Hub
	m := metrics.NewMetrics(prometheus.DefaultRegisterer)
	wsHub := ws.NewHub(m)
	go wsHub.Run()
	defer wsHub.Stop()

	// 4. Dependency Injection (Wiring Layers)
	adminRepo := repository.NewAdminRepo(db)
	pageRepo := repository.NewPageRepo(db)
	auditRepo := repository.NewAuditRepo(db)

	auditService, err := service.NewAuditService(auditRepo, m)
	if err != nil {
		log.Fatalf("audit: %v", err)
	}
	registryService := service.NewRegistryService(db, pageRepo, adminRepo, auditService, wsHub, m)
	adminService := service.NewAdminService(db, adminRepo, registryService, auditService, wsHub, m)
	evaluator := authz.New()
	issuer := jwt.NewIssuer(cfg.JWTSecret, time.Duration(cfg.JWTTTLHours)*time.Hour)
	authService := service.NewAuthService(adminRepo, adminService, registryService, evaluator, issuer, m)

	// 5. Seed registry and bootstrap account
	if err := registryService.Init(); err != nil {
		log.Fatalf("seed pages: %v", err)
	}
	created, err := adminService.EnsureSuperAdmin(cfg.SuperAdminEmail, cfg.SuperAdminPassword)
	if err != nil {
		log.Fatalf("bootstrap super admin: %v", err)
	}
	if created {
		log.Infof("Super admin created: %s", cfg.SuperAdminEmail)
	}

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "Restaurant Authz v1.0",
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	// 7. Routes
	app.Get("/health", func(c *fiber.Ctx) error {
		sqlDB, err := db.DB()
		if err != nil || sqlDB.Ping() != nil {
			return c.Status(503).JSON(fiber.Map{"status": "unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ok", "ws_clients": wsHub.ClientCount()})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	services := handler.Services{
		Auth:      authService,
		Admins:    adminService,
		Registry:  registryService,
		Audit:     auditService,
		Evaluator: evaluator,
		Metrics:   m,
	}
	handler.RegisterRoutes(app, services)

	// WebSocket Route; the token rides in the query
	handler.RegisterSocket(app, services, wsHub)

	// 8. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Panic(err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}

func logLevel(level string) log.Level {
	switch level {
	case "trace":
		return log.LevelTrace
	case "debug":
		return log.LevelDebug
	case "warn":
		return log.LevelWarn
	case "error":
		return log.LevelError
	default:
		return log.LevelInfo
	}
}
