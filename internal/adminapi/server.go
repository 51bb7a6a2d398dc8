// Package adminapi is the token-authenticated HTTP management API: login
// (with optional TOTP 2FA), CRUD over users/NAS/profiles, session and
// accounting reads, and dashboard stats. Built on Fiber exactly as the
// teacher's cmd/api does, generalized from its ~30 ISP-billing route
// groups down to spec.md's §6 surface.
package adminapi

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"

	"github.com/proisp/radiusd/internal/cache"
	"github.com/proisp/radiusd/internal/config"
	"github.com/proisp/radiusd/internal/store"
)

// Server wraps the Fiber app and every dependency its handlers close over.
type Server struct {
	app       *fiber.App
	cfg       *config.Config
	store     *store.Store
	cache     *cache.Cache
	log       *logrus.Logger
	startedAt time.Time
}

// New builds the Fiber app and registers every route in spec.md §6.
func New(cfg *config.Config, st *store.Store, ch *cache.Cache, log *logrus.Logger) *Server {
	s := &Server{
		cfg:       cfg,
		store:     st,
		cache:     ch,
		log:       log,
		startedAt: time.Now(),
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          s.errorHandler,
	})

	app.Use(recover.New())
	app.Use(compress.New())
	app.Use(requestLogger(log))
	app.Use(corsMiddleware())

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/login", loginRateLimiter(), s.handleLogin)
	auth.Get("/me", s.authRequired(), s.handleMe)
	auth.Post("/2fa/enroll", s.authRequired(), s.handleEnroll2FA)
	auth.Post("/2fa/verify", s.authRequired(), s.handleVerify2FA)

	api.Get("/health", s.handleHealth)

	protected := api.Group("", s.authRequired())
	protected.Get("/dashboard/stats", s.handleDashboardStats)

	protected.Get("/users", s.handleListUsers)
	protected.Post("/users", s.handleCreateUser)
	protected.Get("/users/:username", s.handleGetUser)
	protected.Put("/users/:username", s.handleUpdateUser)
	protected.Delete("/users/:username", s.handleDeleteUser)

	protected.Get("/nas", s.handleListNAS)
	protected.Post("/nas", s.handleCreateNAS)
	protected.Put("/nas/:id", s.handleUpdateNAS)
	protected.Delete("/nas/:id", s.handleDeleteNAS)

	protected.Get("/sessions", s.handleListActiveSessions)
	protected.Get("/accounting", s.handleListAccounting)

	protected.Get("/profiles", s.handleListProfiles)
	protected.Post("/profiles", s.handleCreateProfile)

	s.app = app
	return s
}

// Start begins listening on addr. It blocks until the server is shut down
// or fails to bind.
func (s *Server) Start(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown stops accepting new connections and waits for in-flight
// requests to finish, bounded by ctx's deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if fe, ok := err.(*fiber.Error); ok {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
