package router

import (
	"time"

	"github.com/certilearn/assess-backend/internal/config"
	"github.com/certilearn/assess-backend/internal/handler"
	"github.com/certilearn/assess-backend/internal/middleware"
	"github.com/certilearn/assess-backend/internal/response"
	"github.com/certilearn/assess-backend/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth    *handler.AuthHandler
	Attempt *handler.AttemptHandler
	Bank    *handler.BankHandler
	Spec    *handler.SpecHandler
	Review  *handler.ReviewHandler
	Monitor *handler.MonitorHandler
	Health  *handler.HealthHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", handlers.Health.Health)

	// Rate limiter for the violation ingestion endpoint: proctoring clients
	// emit at most a few events per second, anything beyond that is noise.
	violationLimiter := middleware.NewRateLimiter(120, time.Minute)

	// ─── 1. Auth Group (Public) ────────────────────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/reviewer/login", handlers.Auth.ReviewerLogin)
		auth.GET("/reviewer/me", middleware.RequireReviewerJWT(authService), handlers.Auth.GetReviewerProfile)
	}

	// ─── 2. Learner Group (JWT) ────────────────────────────────────────
	learnerAPI := router.Group("/api/v1/attempts")
	learnerAPI.Use(middleware.RequireLearnerJWT(authService))
	{
		learnerAPI.POST("", handlers.Attempt.Start)
		learnerAPI.GET("", handlers.Attempt.List)
		learnerAPI.GET("/:attempt_id", handlers.Attempt.Get)
		learnerAPI.POST("/:attempt_id/violations", violationLimiter.Middleware(), handlers.Attempt.RecordViolation)
		learnerAPI.PUT("/:attempt_id/answers/:index", handlers.Attempt.Answer)
		learnerAPI.POST("/:attempt_id/submit", handlers.Attempt.Submit)
	}

	// ─── 3. WebSocket Group (Reviewer WS Auth) ─────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireReviewerWSAuth(authService))
	{
		ws.GET("/admin/attempts/:attempt_id/monitor", handlers.Monitor.MonitorAttempt)
	}

	// ─── 4. Reviewer Group (JWT) ───────────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireReviewerJWT(authService))
	{
		// Attempt review
		adminAPI.GET("/attempts/:attempt_id", handlers.Review.GetAttempt)
		adminAPI.PUT("/attempts/:attempt_id/review", handlers.Review.Apply)
		adminAPI.GET("/attempts/:attempt_id/reviews", handlers.Review.List)

		// Question bank management
		adminAPI.GET("/banks", handlers.Bank.List)
		adminAPI.POST("/banks", handlers.Bank.Create)
		adminAPI.GET("/banks/:bank_id", handlers.Bank.Get)
		adminAPI.DELETE("/banks/:bank_id", handlers.Bank.Delete)
		adminAPI.GET("/banks/:bank_id/questions", handlers.Bank.ListQuestions)
		adminAPI.PUT("/banks/:bank_id/questions", handlers.Bank.ReplaceQuestions)

		// Test spec authoring
		adminAPI.GET("/specs", handlers.Spec.List)
		adminAPI.PUT("/specs", handlers.Spec.Upsert)
		adminAPI.GET("/specs/:cert_id/:difficulty", handlers.Spec.Get)
	}

	return router
}
