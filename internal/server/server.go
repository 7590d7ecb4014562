// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"hackarena/internal/bootstrap"
	"hackarena/internal/config"
	"hackarena/internal/featureflags"
	"hackarena/internal/middleware"
	"hackarena/internal/models"
	"hackarena/internal/repository"
	"hackarena/internal/scoring"
	"hackarena/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc
	tiers          *scoring.TierTable
	featureFlags   *featureflags.Manager

	userRepo       repository.UserRepository
	rankingRepo    repository.RankingRepository
	historyRepo    repository.ScoreHistoryRepository
	seasonRepo     repository.SeasonRepository
	sanctionRepo   repository.SanctionRepository
	postRepo       repository.PostRepository
	commentRepo    repository.CommentRepository
	contestRepo    repository.ContestRepository
	curriculumRepo repository.CurriculumRepository
	bannerRepo     repository.BannerRepository

	userService       *service.UserService
	scoreService      *service.ScoreService
	rankingService    *service.RankingService
	seasonService     *service.SeasonService
	sanctionService   *service.SanctionService
	communityService  *service.CommunityService
	contestService    *service.ContestService
	curriculumService *service.CurriculumService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, redisClient, err := bootstrap.InitRuntime(cfg)
	if err != nil {
		return nil, err
	}

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis first.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	tiers := scoring.DefaultTierTable()
	if cfg.TierTablePath != "" {
		loaded, err := scoring.LoadTierTable(cfg.TierTablePath)
		if err != nil {
			return nil, fmt.Errorf("loading tier table: %w", err)
		}
		tiers = loaded
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	rankingRepo := repository.NewRankingRepository(db)
	historyRepo := repository.NewScoreHistoryRepository(db)
	seasonRepo := repository.NewSeasonRepository(db)
	sanctionRepo := repository.NewSanctionRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	contestRepo := repository.NewContestRepository(db)
	curriculumRepo := repository.NewCurriculumRepository(db)
	bannerRepo := repository.NewBannerRepository(db)

	// Initialize Prometheus metrics
	prom := middleware.InitMetrics("hackarena-api")

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: prom,
		tiers:          tiers,
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
		userRepo:       userRepo,
		rankingRepo:    rankingRepo,
		historyRepo:    historyRepo,
		seasonRepo:     seasonRepo,
		sanctionRepo:   sanctionRepo,
		postRepo:       postRepo,
		commentRepo:    commentRepo,
		contestRepo:    contestRepo,
		curriculumRepo: curriculumRepo,
		bannerRepo:     bannerRepo,
	}

	server.userService = service.NewUserService(userRepo)
	server.scoreService = service.NewScoreService(db, historyRepo, tiers)
	server.rankingService = service.NewRankingService(rankingRepo)
	server.seasonService = service.NewSeasonService(db, seasonRepo, rankingRepo, tiers, cfg.SeasonResetBatchSize)
	server.sanctionService = service.NewSanctionService(sanctionRepo, userRepo)
	server.communityService = service.NewCommunityService(postRepo, commentRepo, server.isAdminByUserID)
	server.contestService = service.NewContestService(contestRepo, server.scoreService)
	server.curriculumService = service.NewCurriculumService(curriculumRepo, server.scoreService)

	return server, nil
}

// SanctionService exposes the sanction service for scheduled jobs.
func (s *Server) SanctionService() *service.SanctionService {
	return s.sanctionService
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	// OpenTelemetry spans per request
	app.Use(middleware.TracingMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit (e.g. limiter)
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
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	// Backwards-compatible legacy route: map /health to readiness (keeps existing scripts working)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "HackArena Backend Metrics Dashboard",
	}))

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/refresh", s.Refresh)
	auth.Post("/logout", s.Logout)

	// Public ranking routes
	rankings := api.Group("/rankings")
	rankings.Get("/", s.GetRankings)
	rankings.Get("/search", middleware.RateLimit(
		s.redis, 10, time.Minute, "ranking_search"), s.SearchRankings)
	rankings.Get("/:username", s.GetRankedUser)

	// Public season routes
	seasons := api.Group("/seasons")
	seasons.Get("/", s.GetSeasons)
	seasons.Get("/active", s.GetActiveSeason)
	seasons.Get("/:id/leaderboard", s.GetSeasonLeaderboard)
	seasons.Get("/:id", s.GetSeason)

	// Public post routes (browse/search)
	publicPosts := api.Group("/posts")
	publicPosts.Get("/", s.GetPosts)
	publicPosts.Get("/search", middleware.RateLimit(
		s.redis, 10, time.Minute, "post_search"), s.SearchPosts)
	publicPosts.Get("/:id/comments", s.GetComments)
	publicPosts.Get("/:id", s.GetPost)

	// Public contest routes
	publicContests := api.Group("/contests")
	publicContests.Get("/", s.GetContests)
	publicContests.Get("/:id/challenges", s.GetContestChallenges)
	publicContests.Get("/:id", s.GetContest)

	// Public curriculum routes
	publicCurricula := api.Group("/curricula")
	publicCurricula.Get("/", s.GetCurricula)
	publicCurricula.Get("/:id", s.GetCurriculum)

	// Public banner carousel
	api.Get("/banners", s.GetActiveBanners)

	// Protected routes
	protected := api.Group("", s.AuthRequired())

	// User routes
	users := protected.Group("/users")
	users.Get("/me", s.GetMyProfile)
	users.Put("/me", s.UpdateMyProfile)
	users.Get("/me/history", s.GetMyScoreHistory)
	users.Get("/me/sanctions", s.GetMySanctions)
	users.Get("/me/solves", s.GetMySolves)
	users.Get("/me/progress", s.GetMyProgress)
	users.Get("/", s.GetAllUsers)
	// Define specific /:id/:resource routes BEFORE generic /:id route
	users.Get("/:id/history", s.GetScoreHistory)
	users.Get("/:id", s.GetUserProfile)

	// Season participation
	protected.Post("/seasons/:id/join", s.JoinSeason)

	// Protected post routes
	posts := protected.Group("/posts")
	posts.Post("/", middleware.RateLimit(
		s.redis, 1, 5*time.Minute, "create_post"), s.CreatePost)
	// Define specific /:id/:resource routes BEFORE generic /:id route
	posts.Post("/:id/like", s.LikePost)
	posts.Delete("/:id/like", s.UnlikePost)
	posts.Post("/:id/comments", middleware.RateLimit(
		s.redis, 1, time.Minute, "create_comment"), s.CreateComment)
	posts.Delete("/:id/comments/:commentId", s.DeleteComment)
	posts.Post("/:id/report", middleware.RateLimit(
		s.redis, 5, 10*time.Minute, "report_post"), s.ReportPost)
	// Generic /:id routes (for item update, delete)
	posts.Put("/:id", s.UpdatePost)
	posts.Delete("/:id", s.DeletePost)

	// Contest participation
	contests := protected.Group("/contests")
	contests.Post("/:id/join", s.JoinContest)
	protected.Post("/challenges/:id/submit", middleware.RateLimit(
		s.redis, 20, time.Minute, "submit_flag"), s.SubmitFlag)

	// Curriculum progress
	protected.Post("/curricula/:id/complete-unit", s.CompleteCurriculumUnit)

	// Admin routes
	admin := protected.Group("/admin", s.AdminRequired())

	admin.Get("/feature-flags", s.GetFeatureFlags)

	admin.Post("/users/:id/score", s.AdjustScore)
	admin.Post("/users/:id/role", s.SetUserRole)
	admin.Get("/users/:id/sanctions", s.GetUserSanctions)

	admin.Post("/sanctions", s.ApplySanction)
	admin.Post("/sanctions/:id/revoke", s.RevokeSanction)

	adminSeasons := admin.Group("/seasons")
	adminSeasons.Post("/", s.CreateSeason)
	adminSeasons.Get("/resets/:runId", s.GetResetStatus)
	adminSeasons.Post("/resets/:runId/resume", s.ResumeSeasonReset)
	adminSeasons.Post("/:id/activate", s.ActivateSeason)
	adminSeasons.Post("/:id/end", s.EndSeason)
	adminSeasons.Post("/:id/recalculate", s.RecalculateSeasonRankings)
	adminSeasons.Post("/:id/reset", s.StartSeasonReset)

	adminReports := admin.Group("/reports")
	adminReports.Get("/", s.GetReports)
	adminReports.Post("/:id/resolve", s.ResolveReport)

	adminContests := admin.Group("/contests")
	adminContests.Post("/", s.CreateContest)
	adminContests.Post("/:id/challenges", s.CreateChallenge)

	admin.Post("/curricula", s.CreateCurriculum)

	adminBanners := admin.Group("/banners")
	adminBanners.Get("/", s.GetAllBanners)
	adminBanners.Post("/", s.CreateBanner)
	adminBanners.Put("/:id", s.UpdateBanner)
	adminBanners.Delete("/:id", s.DeleteBanner)
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
		// Redis is considered required for full readiness in this app
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"message": "HackArena",
		"version": "1.0.0",
		"status":  overallStatus,
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
		userID := c.Locals("userID").(uint)

		admin, err := s.isAdmin(c, userID)
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

// AuthRequired returns the authentication middleware
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		tokenString := ""
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		// Parse and validate token
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			// Validate signing method
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(s.config.JWTSecret), nil
		})

		if err != nil || !token.Valid {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		// Extract claims
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token claims"))
		}

		// Validate issuer and audience
		if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != "hackarena-api" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token issuer"))
		}
		if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != "hackarena-client" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token audience"))
		}

		// Extract user ID from subject claim
		sub, ok := claims["sub"].(string)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid subject claim"))
		}

		userID, err := strconv.ParseUint(sub, 10, 32)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid user ID in token"))
		}

		// Check JTI for revocation
		if jti, exists := claims["jti"].(string); exists && jti != "" {
			if s.redis != nil {
				isBlacklisted, err := s.redis.Exists(c.Context(), "blacklist:"+jti).Result()
				if err == nil && isBlacklisted > 0 {
					return models.RespondWithError(c, fiber.StatusUnauthorized,
						models.NewUnauthorizedError("Token has been revoked"))
				}
			}
		}

		// Banned and suspended accounts hold valid tokens but lose API access.
		status, err := s.statusByUserID(c.Context(), uint(userID))
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Unknown account"))
		}
		if status == models.StatusBanned || status == models.StatusSuspended {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Account is "+string(status)))
		}

		// Store user ID in context
		c.Locals("userID", uint(userID))
		// Sync to UserContext for logging and downstream services
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, uint(userID))
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// optionalUserID attempts to extract userID from Authorization header but does not enforce it.
func (s *Server) optionalUserID(c *fiber.Ctx) (uint, bool) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return 0, false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return 0, false
	}

	tokenString := parts[1]
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, false
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, false
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(userID), true
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := fiber.New(fiber.Config{
		AppName: "HackArena API",
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

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	// Cancel the server-scoped context
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	// Shutdown the HTTP server
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	// Close database connection
	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
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
