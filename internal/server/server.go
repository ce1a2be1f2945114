// Package server contains the HTTP handlers and route wiring for the API.
package server

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"amplify/internal/cache"
	"amplify/internal/config"
	"amplify/internal/database"
	"amplify/internal/generation"
	"amplify/internal/middleware"
	"amplify/internal/notifications"
	"amplify/internal/publish"
	"amplify/internal/repository"
	"amplify/internal/service"
	"amplify/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	promMiddleware *fiberprometheus.FiberPrometheus

	userRepo         repository.UserRepository
	campaignRepo     repository.CampaignRepository
	postRepo         repository.PostRepository
	draftRepo        repository.DraftRepository
	notificationRepo repository.NotificationRepository
	snapshotRepo     repository.SnapshotRepository

	notifier *notifications.Notifier
	store    storage.ObjectStore

	draftService      *service.DraftService
	postService       *service.PostService
	generationService *service.GenerationService
	analyticsService  *service.AnalyticsService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	var store storage.ObjectStore
	if cfg.StorageEndpoint != "" {
		store, err = storage.NewMinioStore(
			cfg.StorageEndpoint, cfg.StorageAccessKey, cfg.StorageSecretKey,
			cfg.StorageBucket, cfg.StoragePublicURL, cfg.StorageUseSSL)
		if err != nil {
			return nil, fmt.Errorf("object store init failed: %w", err)
		}
	}

	return NewServerWithDeps(cfg, db, redisClient, store)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis and the
// object store.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, store storage.ObjectStore) (*Server, error) {
	prom := middleware.InitMetrics("amplify-api")

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: prom,
		store:          store,

		userRepo:         repository.NewUserRepository(db),
		campaignRepo:     repository.NewCampaignRepository(db),
		postRepo:         repository.NewPostRepository(db),
		draftRepo:        repository.NewDraftRepository(db),
		notificationRepo: repository.NewNotificationRepository(db),
		snapshotRepo:     repository.NewSnapshotRepository(db),
	}

	s.notifier = notifications.NewNotifier(s.notificationRepo, redisClient)

	registry := publish.NewRegistry(
		publish.NewLinkedInPublisher(cfg.LinkedInAPIBaseURL, s.snapshotRepo),
		publish.NewXPublisher(cfg.XAPIBaseURL, cfg.XBearer),
	)

	generator := generation.NewOpenAICompatGenerator(
		cfg.LLMAPIBaseURL, cfg.LLMAPIKey, councilModels(cfg.LLMModel)...)

	s.draftService = service.NewDraftService(s.draftRepo, registry, s.notifier)
	s.postService = service.NewPostService(s.postRepo, s.campaignRepo, s.userRepo)
	s.generationService = service.NewGenerationService(
		s.campaignRepo, s.postRepo, s.draftRepo, generator, s.notifier)
	s.analyticsService = service.NewAnalyticsService(s.snapshotRepo, s.postRepo)

	return s, nil
}

// councilModels splits the configured model list. Multiple comma-separated
// models form a council; the last one doubles as the judge.
func councilModels(models string) []string {
	parts := strings.Split(models, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Distributed tracing spans
	app.Use(middleware.TracingMiddleware())

	// Context middleware to propagate request ID and user identity
	app.Use(middleware.ContextMiddleware())

	// Prometheus metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS must run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they are handled by CORS.
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

	// Page navigation session guard
	app.Use(middleware.SessionGuard)
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Amplify Backend Metrics Dashboard",
	}))

	// Auth routes
	auth := api.Group("/auth")
	auth.Get("/login", s.GoogleLogin)
	auth.Get("/callback", s.GoogleCallback)
	auth.Get("/linkedin", middleware.AuthRequired, s.LinkedInConnect)
	auth.Get("/linkedin/callback", s.LinkedInCallback)
	auth.Post("/linkedin/disconnect", middleware.AuthRequired, s.LinkedInDisconnect)
	auth.Post("/logout", s.Logout)
	auth.Get("/me", middleware.AuthRequired, s.Me)

	// Cron routes, gated by the shared machine secret
	cron := api.Group("/cron", middleware.CronAuthRequired)
	cron.Get("/generate-random", s.CronHealth)
	cron.Post("/generate-random", s.CronGenerateRandom)
	cron.Post("/publish-scheduled", s.CronPublishScheduled)

	// Protected API routes
	protected := api.Group("", middleware.AuthRequired)

	// Draft routes
	drafts := protected.Group("/drafts")
	drafts.Post("/", middleware.RateLimit(s.redis, 30, time.Minute, "create_draft"), s.CreateDraft)
	drafts.Get("/", s.ListDrafts)
	drafts.Post("/:id/approve", s.ApproveDraft)
	drafts.Post("/:id/reject", s.RejectDraft)
	drafts.Post("/:id/schedule", s.ScheduleDraft)
	drafts.Post("/:id/publish", s.PublishDraft)
	drafts.Patch("/:id", s.UpdateDraft)
	drafts.Get("/:id", s.GetDraft)
	drafts.Delete("/:id", s.DeleteDraft)

	// Campaign routes
	campaigns := protected.Group("/campaigns")
	campaigns.Get("/", s.ListCampaigns)
	campaigns.Post("/", s.CreateCampaign)
	campaigns.Put("/:id", s.UpdateCampaign)

	// Employee-composed campaign posts
	campaignPosts := protected.Group("/campaign/posts")
	campaignPosts.Post("/", s.ComposeCampaignPost)
	campaignPosts.Delete("/:postId", s.DeleteCampaignPost)

	// Automated pipeline routes
	random := protected.Group("/random")
	random.Get("/posts", s.RandomFeed)
	random.Post("/posts/candidate", s.PromoteCandidate)
	random.Post("/posts/:id/action", s.ActOnRandomPost)

	// Notification feed
	notificationsGroup := protected.Group("/notifications")
	notificationsGroup.Get("/", s.ListNotifications)
	notificationsGroup.Post("/", s.UpdateNotifications)

	// Upload presigning
	protected.Post("/upload/presign",
		middleware.RateLimit(s.redis, 20, time.Minute, "presign"), s.PresignUpload)

	// Analytics. The snapshot writer also serves the follower cron, so it
	// sits outside the session-only group.
	analytics := protected.Group("/analytics")
	analytics.Get("/followers/history", s.FollowerHistory)
	analytics.Get("/summary", s.AnalyticsSummary)
	api.Post("/analytics/followers/snapshot", middleware.CronOrAuthRequired, s.SnapshotFollowers)

	// Admin routes
	admin := protected.Group("", middleware.AdminRequired)
	admin.Delete("/post/delete", s.AdminDeleteArchivedPost)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Shutdown releases server-held resources after the HTTP listener stops.
func (s *Server) Shutdown(context.Context) error {
	var errs []error
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		}
	}
	if s.db != nil {
		if sqlDB, err := s.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				errs = append(errs, fmt.Errorf("database close: %w", err))
			}
		}
	}
	return errors.Join(errs...)
}
