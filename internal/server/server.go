// Package server assembles the Fiber application from its repositories,
// services and handlers.
package server

import (
	"context"
	"time"

	"sembako/internal/config"
	"sembako/internal/database"
	"sembako/internal/handlers"
	"sembako/internal/metrics"
	"sembako/internal/middleware"
	"sembako/internal/repositories"
	"sembako/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"gorm.io/gorm"
)

const appName = "Sembako Store API"

// Server is the wired HTTP application.
type Server struct {
	App         *fiber.App
	AuthService *services.AuthService
	repos       repositories.Repositories
}

// New wires repositories, services and handlers onto a Fiber app.
// publisher and m may be nil.
func New(cfg *config.Config, db *gorm.DB, publisher services.EventPublisher, m *metrics.Metrics) *Server {
	// --- Initialize Repositories ---
	repos := repositories.NewGORMRepositories(db)
	uow := repositories.NewGORMUnitOfWork(db)

	// --- Initialize Services ---
	authService := services.NewAuthService(repos.Users, cfg.JWTSecret, cfg.TokenTTL)
	productService := services.NewProductService(repos.Products)
	cartService := services.NewCartService(repos.Carts, uow)
	transactionService := services.NewTransactionService(repos.Transactions, uow, publisher, m)

	// --- Initialize Handlers ---
	authHandler := handlers.NewAuthHandler(authService)
	productHandler := handlers.NewProductHandler(productService)
	cartHandler := handlers.NewCartHandler(cartService)
	transactionHandler := handlers.NewTransactionHandler(transactionService)

	// --- Initialize Fiber App ---
	app := fiber.New(fiber.Config{
		AppName:      appName,
		ErrorHandler: handlers.ErrorHandler(cfg.IsDevelopment()),
	})

	// --- Middleware ---
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(middleware.Metrics(m))
	app.Use(middleware.RequestTimeout(cfg.RequestTimeout))
	app.Use(cors.New())

	// --- API Routes ---
	api := app.Group("/api")
	auth := middleware.AuthRequired(authService)

	authHandler.RegisterRoutes(api)
	productHandler.RegisterRoutes(api)
	cartHandler.RegisterRoutes(api, auth)
	transactionHandler.RegisterRoutes(api, auth)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Welcome to " + appName,
			"version": "1.0.0",
		})
	})

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		status, dbStatus := fiber.StatusOK, "connected"
		if err := ping(c.UserContext(), db); err != nil {
			status, dbStatus = fiber.StatusServiceUnavailable, "unreachable"
		}
		healthy := "healthy"
		if status != fiber.StatusOK {
			healthy = "unhealthy"
		}
		return c.Status(status).JSON(fiber.Map{
			"status":    healthy,
			"database":  dbStatus,
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	if m != nil {
		app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))
	}

	return &Server{App: app, AuthService: authService, repos: repos}
}

// Seed loads the demo users and catalog through the server's own services.
func (s *Server) Seed(ctx context.Context) error {
	return database.Seed(ctx, s.repos, s.AuthService)
}

func ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}
