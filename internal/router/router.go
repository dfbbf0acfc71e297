package router

import (
	"net/http"
	"time"

	"github.com/examina/examina-backend/internal/config"
	"github.com/examina/examina-backend/internal/handler"
	"github.com/examina/examina-backend/internal/middleware"
	"github.com/examina/examina-backend/internal/response"
	"github.com/examina/examina-backend/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth      *handler.AuthHandler
	Subject   *handler.SubjectHandler
	Question  *handler.QuestionHandler
	Test      *handler.TestHandler
	Session   *handler.SessionHandler
	Dashboard *handler.DashboardHandler
	WS        *handler.WSHandler
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
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID", "Accept-Language"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/login", handlers.Auth.Login)
		auth.GET("/me", middleware.RequireAuth(authService), handlers.Auth.Me)
	}

	// ─── 2. Learner Group ──────────────────────────────────────────────
	learnerAPI := router.Group("/api/v1/learner")
	learnerAPI.Use(middleware.RequireLearner(authService))
	{
		learnerAPI.POST("/tests/:id/sessions", handlers.Session.Start)
		learnerAPI.GET("/sessions", handlers.Session.History)
		learnerAPI.GET("/sessions/:id", handlers.Session.Review)
		learnerAPI.GET("/sessions/:id/paper", handlers.Session.Paper)
		learnerAPI.GET("/sessions/:id/state", handlers.Session.State)
		learnerAPI.PUT("/sessions/:id/drafts", handlers.Session.SaveDrafts)
		learnerAPI.POST("/sessions/:id/submit", handlers.Session.Submit)
	}

	// ─── 3. Supervisor Group ───────────────────────────────────────────
	supervisorAPI := router.Group("/api/v1/supervisor")
	supervisorAPI.Use(middleware.RequireSupervisor(authService))
	{
		supervisorAPI.GET("/dashboard", handlers.Dashboard.Counts)

		supervisorAPI.GET("/subjects", handlers.Subject.List)
		supervisorAPI.POST("/subjects", handlers.Subject.Create)
		supervisorAPI.GET("/subjects/:id", handlers.Subject.Get)
		supervisorAPI.PUT("/subjects/:id", handlers.Subject.Update)
		supervisorAPI.DELETE("/subjects/:id", handlers.Subject.Delete)
		supervisorAPI.GET("/subjects/:id/questions", handlers.Question.ListBySubject)
		supervisorAPI.GET("/subjects/:id/tests", handlers.Test.ListBySubject)

		supervisorAPI.POST("/questions", handlers.Question.Create)
		supervisorAPI.GET("/questions/:id", handlers.Question.Get)
		supervisorAPI.PUT("/questions/:id", handlers.Question.Update)
		supervisorAPI.DELETE("/questions/:id", handlers.Question.Delete)
		supervisorAPI.POST("/questions/:id/answers", handlers.Question.AddAnswer)
		supervisorAPI.PUT("/questions/:id/answers/:answer_id", handlers.Question.UpdateAnswer)

		supervisorAPI.POST("/tests", handlers.Test.Create)
		supervisorAPI.GET("/tests/:id", handlers.Test.Get)
		supervisorAPI.PUT("/tests/:id", handlers.Test.Update)
		supervisorAPI.DELETE("/tests/:id", handlers.Test.Delete)
		supervisorAPI.GET("/tests/:id/sessions", handlers.Session.ListByTest)

		supervisorAPI.GET("/sessions/:id", handlers.Session.Detail)
		supervisorAPI.POST("/sessions/:id/grade", handlers.Session.Grade)
	}

	// ─── 4. WebSocket Group (Supervisor WS Auth) ───────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireSupervisorWS(authService))
	{
		ws.GET("/supervisor/tests/:id/monitor", handlers.WS.MonitorTest)
	}

	return router
}
