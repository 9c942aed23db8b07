package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lingvoclub/placement-backend/internal/config"
	"github.com/lingvoclub/placement-backend/internal/handler"
	"github.com/lingvoclub/placement-backend/internal/middleware"
	"github.com/lingvoclub/placement-backend/internal/response"
	"github.com/lingvoclub/placement-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Quiz      *handler.QuizHandler
	Results   *handler.ResultsHandler
	Media     *handler.MediaHandler
	Admin     *handler.AdminHandler
	Analytics *handler.AnalyticsHandler
	Monitor   *handler.MonitorHandler
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
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.AllowCredentials = true // Session token rides in a cookie.
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for session creation (10 new tests per minute per IP).
	startLimiter := middleware.NewRateLimiter(10, time.Minute)

	api := router.Group("/api")
	api.Use(middleware.ResolveSession(authService))
	{
		// ─── Test-taker flow ───────────────────────────────────────────
		api.POST("/start", startLimiter.Middleware(), handlers.Quiz.Start)
		api.GET("/status", handlers.Quiz.Status)
		api.POST("/next-step", middleware.RequireSession(), handlers.Quiz.NextStep)

		// ─── Results (result UUID is the credential) ───────────────────
		api.GET("/results/:uuid/summarized", handlers.Results.Summarized)
		api.GET("/results/:uuid/detailed", handlers.Results.Detailed)

		// ─── Question attachments ──────────────────────────────────────
		media := api.Group("/media")
		media.Use(middleware.CacheControl(24 * time.Hour))
		{
			media.GET("/*filepath", handlers.Media.Serve)
		}

		// ─── Funnel beacon ─────────────────────────────────────────────
		api.POST("/analytics/page-opened", handlers.Analytics.PageOpened)

		// ─── Admin (shared password per request) ───────────────────────
		admin := api.Group("/admin")
		{
			admin.POST("/validate-password", handlers.Admin.ValidatePassword)
			admin.POST("/export-results", handlers.Admin.ExportResults)
			admin.POST("/analytics", handlers.Admin.Analytics)
			admin.GET("/monitor", handlers.Monitor.Monitor)
		}
	}

	return router
}
