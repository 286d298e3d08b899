package api

import (
	"github.com/Conceptual-Machines/qrious/internal/api/handlers"
	apimiddleware "github.com/Conceptual-Machines/qrious/internal/api/middleware"
	"github.com/Conceptual-Machines/qrious/internal/config"
	"github.com/Conceptual-Machines/qrious/internal/generation"
	"github.com/Conceptual-Machines/qrious/internal/notify"
	webhandlers "github.com/Conceptual-Machines/qrious/internal/web/handlers"
	"github.com/Conceptual-Machines/qrious/pkg/embedded"
	"github.com/gin-gonic/gin"
)

func SetupRouter(ctrl *generation.Controller, feed *notify.Feed, cfg *config.Config, version string) *gin.Engine {
	router := gin.New()

	// Recovery middleware (must be first)
	router.Use(apimiddleware.RecoverWithSentry())

	// Sentry middleware for error tracking
	router.Use(apimiddleware.SentryMiddleware())

	// Request tracking and structured logging
	router.Use(apimiddleware.RequestTracking())

	// Page assets (css, js)
	router.StaticFS("/static", embedded.Static())

	// Generation, export and copy share one per-client budget
	limiter := apimiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).Middleware()

	// Health check
	healthHandler := handlers.NewHealthHandler(ctrl, cfg.QRBackend)
	router.GET("/health", healthHandler.HealthCheck)

	// Metrics endpoint
	metricsHandler := handlers.NewMetricsHandler(version, ctrl)
	router.GET("/api/metrics", metricsHandler.GetMetrics)

	// Web pages
	webHandler := webhandlers.NewWebHandler(ctrl, feed, version)
	router.GET("/", webHandler.Home)

	// HTMX endpoints
	htmx := router.Group("/htmx")
	{
		htmx.GET("/form", webHandler.Form)              // Switch content kind
		htmx.POST("/request", webHandler.UpdateRequest) // Sync edited fields
		htmx.POST("/generate", limiter, webHandler.Generate)
		htmx.GET("/state", webHandler.State) // Polled while pending
		htmx.POST("/copy", limiter, webHandler.Copy)
		htmx.GET("/toasts", webHandler.Toasts)
	}

	// JSON API v1
	v1 := router.Group("/api/v1")
	{
		generationHandler := handlers.NewGenerationHandler(ctrl)
		v1.POST("/payload", generationHandler.Preview)
		v1.POST("/generations", limiter, generationHandler.Generate)
		v1.GET("/generations/current", generationHandler.Current) // ?wait= long-polls while pending
		v1.GET("/exports/:format", limiter, generationHandler.Export)
		v1.POST("/clipboard", limiter, generationHandler.Copy)
	}

	return router
}
