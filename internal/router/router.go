package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Dhrubajit-says/FormForge/internal/config"
	"github.com/Dhrubajit-says/FormForge/internal/handler"
	"github.com/Dhrubajit-says/FormForge/internal/logger"
	"github.com/Dhrubajit-says/FormForge/internal/middleware"
	"github.com/Dhrubajit-says/FormForge/internal/response"
	"github.com/Dhrubajit-says/FormForge/internal/service"
)

// sharedViewMaxAge lets browsers and proxies reuse a shared template view.
const sharedViewMaxAge = 60

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth         *handler.AuthHandler
	Template     *handler.TemplateHandler
	Public       *handler.PublicHandler
	AnswerScript *handler.AnswerScriptHandler
	Dashboard    *handler.DashboardHandler
	Admin        *handler.AdminHandler
	Feed         *handler.FeedHandler
	System       *handler.SystemHandler
}

// Limiters are the per-IP rate limiters of the public write routes.
type Limiters struct {
	Auth   *middleware.RateLimiter
	Submit *middleware.RateLimiter
}

// NewLimiters builds the limiters from config. Stop them on shutdown.
func NewLimiters(cfg *config.Config) *Limiters {
	return &Limiters{
		Auth:   middleware.NewRateLimiter(cfg.AuthRateLimitPerMin, time.Minute),
		Submit: middleware.NewRateLimiter(cfg.SubmitRateLimitPerMin, time.Minute),
	}
}

// Stop ends the limiters' cleanup loops.
func (l *Limiters) Stop() {
	l.Auth.Stop()
	l.Submit.Stop()
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	limiters *Limiters,
	cfg *config.Config,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", middleware.HeaderAuthToken, response.HeaderRequestID}
	corsConfig.ExposeHeaders = []string{response.HeaderRequestID}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())
	router.Use(logger.RequestLogger(log))
	router.Use(middleware.Brotli())

	router.GET("/health", handlers.System.Health)

	requireUser := []gin.HandlerFunc{
		middleware.RequireJWT(authService),
		middleware.CheckSession(authService),
	}

	// ─── 1. Auth Group ─────────────────────────────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(middleware.NoStore())
	{
		auth.POST("/register", limiters.Auth.Middleware(), handlers.Auth.Register)
		auth.POST("/login", limiters.Auth.Middleware(), handlers.Auth.Login)

		authed := auth.Group("", requireUser...)
		authed.GET("/me", handlers.Auth.Me)
		authed.PUT("/change-password", handlers.Auth.ChangePassword)
		authed.POST("/logout", handlers.Auth.Logout)
	}

	// ─── 2. Public Group (No Auth) ─────────────────────────────────────
	public := router.Group("/api/v1/public")
	{
		public.GET("/templates/:id", middleware.CacheControl(sharedViewMaxAge), handlers.Public.GetTemplate)
		public.POST("/templates/:id/start", limiters.Submit.Middleware(), handlers.Public.StartAttempt)
		public.POST("/templates/:id/answer-scripts", limiters.Submit.Middleware(), handlers.Public.Submit)
		public.GET("/answer-scripts/:id/result", middleware.NoStore(), handlers.Public.GetResult)
	}

	// ─── 3. Owner Group (JWT + Session) ────────────────────────────────
	api := router.Group("/api/v1", requireUser...)
	{
		templates := api.Group("/templates")
		templates.GET("", handlers.Template.List)
		templates.GET("/search", handlers.Template.Search)
		templates.POST("", handlers.Template.Create)
		templates.GET("/:id", handlers.Template.Get)
		templates.PUT("/:id", handlers.Template.Update)
		templates.DELETE("/:id", handlers.Template.Delete)
		templates.GET("/:id/stats", handlers.Template.Stats)
		templates.POST("/:id/preview", handlers.Template.Preview)

		scripts := api.Group("/answer-scripts")
		scripts.GET("", handlers.AnswerScript.List)
		scripts.GET("/:id", handlers.AnswerScript.Get)
		scripts.GET("/:id/summary", handlers.AnswerScript.Summary)
		scripts.PUT("/:id/manual-scores", handlers.AnswerScript.UpdateManualScores)
		scripts.PUT("/:id/manual-scores/:index", handlers.AnswerScript.UpdateManualScore)
		scripts.DELETE("/:id", handlers.AnswerScript.Delete)

		api.GET("/stats/dashboard", handlers.Dashboard.GetDashboardData)
	}

	// ─── 4. Admin Group (JWT + Session + ADMIN) ────────────────────────
	admin := router.Group("/api/v1/admin", requireUser...)
	admin.Use(middleware.RequireAdmin())
	{
		admin.GET("/users", handlers.Admin.ListUsers)
		admin.DELETE("/users/:id", handlers.Admin.DeleteUser)
		admin.PUT("/users/:id/block", handlers.Admin.ToggleBlock)
		admin.PUT("/users/:id/role", handlers.Admin.ToggleRole)
		admin.GET("/users/:id/templates", handlers.Admin.UserTemplates)

		admin.GET("/templates/:id", handlers.Admin.GetTemplate)
		admin.PUT("/templates/:id", handlers.Admin.UpdateTemplate)
		admin.DELETE("/templates/:id", handlers.Admin.DeleteTemplate)
	}

	// ─── 5. WebSocket Group (token via ?token=) ────────────────────────
	ws := router.Group("/ws/v1", requireUser...)
	{
		ws.GET("/templates/:id/feed", handlers.Feed.TemplateFeed)
	}

	return router
}
