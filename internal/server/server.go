package server

import (
	"context"
	"fmt"
	"time"

	"strive/internal/cache"
	"strive/internal/config"
	"strive/internal/database"
	"strive/internal/middleware"
	"strive/internal/models"
	"strive/internal/notifications"
	"strive/internal/repository"
	"strive/internal/service"
	"strive/internal/storage"

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
	db             *gorm.DB
	redis          *redis.Client
	promMiddleware *fiberprometheus.FiberPrometheus

	userRepo         repository.UserRepository
	friendRepo       repository.FriendRepository
	goalRepo         repository.GoalRepository
	milestoneRepo    repository.MilestoneRepository
	proofRepo        repository.ProofRepository
	changeRepo       repository.ChangeRequestRepository
	notificationRepo repository.NotificationRepository

	notifier *notifications.Notifier
	hub      *notifications.Hub
	store    storage.EvidenceStore

	friendService    *service.FriendService
	goalService      *service.GoalService
	milestoneService *service.MilestoneService
	proofService     *service.ProofService
	intervalService  *service.IntervalService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	store, err := storage.New(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("evidence storage init failed: %w", err)
	}

	return NewServerWithDeps(cfg, db, redisClient, store)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, store storage.EvidenceStore) (*Server, error) {
	userRepo := repository.NewUserRepository(db)
	friendRepo := repository.NewFriendRepository(db)
	goalRepo := repository.NewGoalRepository(db)
	milestoneRepo := repository.NewMilestoneRepository(db)
	proofRepo := repository.NewProofRepository(db)
	changeRepo := repository.NewChangeRequestRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	prom := middleware.InitMetrics("strive-api")

	server := &Server{
		config:           cfg,
		db:               db,
		redis:            redisClient,
		promMiddleware:   prom,
		userRepo:         userRepo,
		friendRepo:       friendRepo,
		goalRepo:         goalRepo,
		milestoneRepo:    milestoneRepo,
		proofRepo:        proofRepo,
		changeRepo:       changeRepo,
		notificationRepo: notificationRepo,
		store:            store,
	}

	server.notifier = notifications.NewNotifier(redisClient)
	server.hub = notifications.NewHub()
	emitter := notifications.NewEmitter(notificationRepo, server.notifier)

	scope := service.NewScopeService(friendRepo, goalRepo)
	engine := service.NewApprovalEngine(db, goalRepo, scope)

	server.friendService = service.NewFriendService(friendRepo, userRepo, emitter)
	server.goalService = service.NewGoalService(goalRepo, milestoneRepo, friendRepo, userRepo, scope)
	server.milestoneService = service.NewMilestoneService(milestoneRepo, goalRepo)
	server.proofService = service.NewProofService(proofRepo, goalRepo, milestoneRepo, userRepo, scope, engine, emitter)
	server.intervalService = service.NewIntervalService(changeRepo, goalRepo, userRepo, scope, engine, emitter)

	return server, nil
}

// StartWiring subscribes the WebSocket hub to Redis pub/sub so published
// notifications reach connected clients.
func (s *Server) StartWiring(ctx context.Context) error {
	return s.hub.StartWiring(ctx, s.notifier)
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Distributed tracing
	app.Use(middleware.TracingMiddleware())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400,
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

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)

	// Protected routes
	protected := api.Group("", middleware.AuthRequired)

	// User routes
	users := protected.Group("/users")
	users.Get("/me", s.GetMyProfile)
	users.Get("/search", s.SearchUsers)
	users.Get("/:id/goals", s.GetUserGoals)
	users.Get("/:id", s.GetUserProfile)

	// Friend routes
	friends := protected.Group("/friends")
	friends.Get("/", s.GetFriends)
	// Specific /requests routes before generic /:userId
	friends.Post("/requests/:userId", middleware.RateLimit(
		s.redis, 5, 5*time.Minute, "friend_request"), s.SendFriendRequest)
	friends.Get("/requests", s.GetPendingRequests)
	friends.Get("/requests/sent", s.GetSentRequests)
	friends.Post("/requests/:requestId/accept", s.AcceptFriendRequest)
	friends.Post("/requests/:requestId/reject", s.RejectFriendRequest)
	friends.Delete("/requests/:requestId", s.CancelFriendRequest)
	friends.Get("/status/:userId", s.GetRelationshipStatus)
	// Generic /:userId route must be last
	friends.Delete("/:userId", s.RemoveFriend)

	// Goal routes
	goals := protected.Group("/goals")
	goals.Post("/", s.CreateGoal)
	goals.Get("/", s.GetMyGoals)
	goals.Get("/:id/milestones", s.GetGoalMilestones)
	goals.Get("/:id/proof-requirements", s.GetProofRequirements)
	goals.Get("/:id/viewers", s.GetAllowedViewers)
	goals.Post("/:id/viewers", s.AddAllowedViewer)
	goals.Delete("/:id/viewers/:userId", s.RemoveAllowedViewer)
	goals.Get("/:id/proofs", s.GetGoalProofs)
	goals.Post("/:id/proofs/upload-url", s.CreateProofUploadURL)
	goals.Post("/:id/proofs", middleware.RateLimit(
		s.redis, 10, time.Minute, "submit_proof"), s.CreateProof)
	goals.Get("/:id/interval-changes", s.GetIntervalChanges)
	goals.Post("/:id/interval-changes", s.RequestIntervalChange)
	goals.Post("/:id/archive", s.ArchiveGoal)
	goals.Put("/:id", s.UpdateGoal)
	goals.Get("/:id", s.GetGoal)

	// Proof routes
	proofs := protected.Group("/proofs")
	proofs.Get("/:id/evidence-url", s.GetProofEvidenceURL)
	proofs.Post("/:id/votes", s.CastProofVote)
	proofs.Get("/:id", s.GetProof)

	// Interval change routes
	intervalChanges := protected.Group("/interval-changes")
	intervalChanges.Post("/:id/votes", s.CastIntervalVote)
	intervalChanges.Get("/:id", s.GetIntervalChange)

	// Notification routes
	notifs := protected.Group("/notifications")
	notifs.Get("/", s.GetNotifications)
	notifs.Get("/unread-count", s.GetUnreadCount)
	notifs.Post("/read-all", s.MarkAllNotificationsRead)
	notifs.Post("/:id/read", s.MarkNotificationRead)

	// Websocket endpoint for the notification stream
	api.Get("/ws", middleware.WebSocketAuthRequired, s.WebsocketHandler())

	// Admin routes
	admin := protected.Group("/admin", s.AdminRequired())
	admin.Post("/sweep", s.RunSweep)
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
		// Real-time delivery degrades without Redis; the API still serves.
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

// AdminRequired returns middleware that rejects non-admin users with 403.
// Must be placed after AuthRequired so that userID is available in locals.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := currentUserID(c)

		admin, err := s.isAdminByUserID(c.Context(), userID)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
		if !admin {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Admin access required"))
		}

		return c.Next()
	}
}

// Shutdown releases server resources.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.hub != nil {
		if err := s.hub.Shutdown(ctx); err != nil {
			return err
		}
	}
	if s.redis != nil {
		return s.redis.Close()
	}
	return nil
}
