// Package server contains the HTTP surface for the mentor request API.
package server

import (
	"context"
	"fmt"
	"log"
	"time"

	"mentordesk/internal/cache"
	"mentordesk/internal/config"
	"mentordesk/internal/database"
	"mentordesk/internal/discord"
	"mentordesk/internal/middleware"
	"mentordesk/internal/models"
	"mentordesk/internal/notify"
	"mentordesk/internal/resolver"
	"mentordesk/internal/service"
	"mentordesk/internal/store"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	redis          *redis.Client
	db             *gorm.DB
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	gateway        *discord.Gateway
	dispatcher     *notify.Dispatcher
	requests       store.RequestStore
	requestService *service.RequestService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	// Initialize Redis (rate limiting only; the server runs without it)
	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	// Request table backend
	var (
		requests store.RequestStore
		db       *gorm.DB
	)
	if cfg.StoreBackend == "database" {
		var err error
		db, err = database.Connect(cfg)
		if err != nil {
			return nil, fmt.Errorf("database connection failed: %w", err)
		}
		requests = store.NewGormStore(db)
	} else {
		requests = store.NewMemoryStore()
	}

	// Discord session; nil token leaves the gateway unready so creation
	// calls get DEPENDENCY_UNAVAILABLE instead of a panic.
	var gateway *discord.Gateway
	if cfg.DiscordBotToken != "" {
		var err error
		gateway, err = discord.New(cfg.DiscordBotToken, middleware.Logger)
		if err != nil {
			return nil, err
		}
	}

	server := build(cfg, requests, chatGatewayOrNil(gateway), redisClient)
	server.db = db
	server.gateway = gateway

	if gateway != nil {
		gateway.BindInteractions(server.requestService)
	}

	return server, nil
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Used by tests to substitute a fake chat gateway and a fresh store.
func NewServerWithDeps(cfg *config.Config, requests store.RequestStore, gateway notify.ChatGateway, redisClient *redis.Client) *Server {
	return build(cfg, requests, gateway, redisClient)
}

func build(cfg *config.Config, requests store.RequestStore, gateway notify.ChatGateway, redisClient *redis.Client) *Server {
	prom := fiberprometheus.New("mentordesk-api")

	dispatcher := notify.NewDispatcher(gateway, cfg.DiscordChannelID, middleware.Logger)
	claims := resolver.New(requests, dispatcher, middleware.Logger)

	return &Server{
		config:         cfg,
		redis:          redisClient,
		promMiddleware: prom,
		dispatcher:     dispatcher,
		requests:       requests,
		requestService: service.NewRequestService(requests, dispatcher, claims, middleware.Logger),
	}
}

// chatGatewayOrNil avoids storing a typed nil inside the interface.
func chatGatewayOrNil(g *discord.Gateway) notify.ChatGateway {
	if g == nil {
		return nil
	}
	return g
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit
	// (e.g. limiter) so browser clients still receive CORS headers on
	// error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     "GET, POST, OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/", s.Root)

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	// Backwards-compatible legacy route: map /health to readiness (keeps existing scripts working)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")

	requests := api.Group("/mentor-requests")
	requests.Post("/", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "mentor_request"), s.CreateMentorRequest)
	requests.Get("/:id", s.GetMentorRequest)
}

// Root lists the service endpoints.
func (s *Server) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"ok":             true,
		"message":        "MentorDesk backend running",
		"health":         "/health",
		"mentorRequests": "/api/mentor-requests",
	})
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. The Discord session gates
// request creation, so its state decides overall readiness.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	discordStatus := "ready"
	if !s.dispatcher.Ready() {
		discordStatus = "unavailable"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	dbStatus := "unused"
	if s.db != nil {
		dbStatus = "healthy"
		sqlDB, err := s.db.DB()
		if err != nil {
			dbStatus = "unhealthy"
		} else if err := sqlDB.PingContext(ctx); err != nil {
			dbStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if discordStatus != "ready" || dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"ok":       status == fiber.StatusOK,
		"botReady": discordStatus == "ready",
		"status":   overallStatus,
		"checks": fiber.Map{
			"discord":  discordStatus,
			"redis":    redisStatus,
			"database": dbStatus,
		},
		"time": time.Now(),
	})
}

// Start starts the server
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName: "MentorDesk API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Custom error handler
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	if s.gateway != nil {
		if err := s.gateway.Open(); err != nil {
			// Keep serving: creation calls return DEPENDENCY_UNAVAILABLE
			// until the session comes up on a restart.
			log.Printf("Failed to open Discord session: %v", err)
		}
	}

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	// Shutdown the HTTP server
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	// Close the Discord session
	if s.gateway != nil {
		if err := s.gateway.Close(); err != nil {
			log.Printf("error closing discord session: %v", err)
		}
	}

	// Close database connection
	if s.db != nil {
		if sqlDB, err := s.db.DB(); err == nil {
			if cerr := sqlDB.Close(); cerr != nil {
				log.Printf("error closing sql DB: %v", cerr)
			}
		}
	}

	// Close Redis connection
	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
