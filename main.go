package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Conceptual-Machines/qrious/internal/api"
	"github.com/Conceptual-Machines/qrious/internal/config"
	"github.com/Conceptual-Machines/qrious/internal/encoder"
	"github.com/Conceptual-Machines/qrious/internal/generation"
	"github.com/Conceptual-Machines/qrious/internal/metrics"
	"github.com/Conceptual-Machines/qrious/internal/notify"
	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

const (
	sentryFlushTimeout = 2 * time.Second
	shutdownTimeout    = 10 * time.Second
	readHeaderTimeout  = 5 * time.Second
)

// releaseVersion is set via ldflags during build
var releaseVersion = "dev"

// GetVersion returns the current release version
func GetVersion() string {
	return releaseVersion
}

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration:", err)
	}

	// Initialize Sentry
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			Release:          "qrious@" + releaseVersion, // Use embedded release version
			EnableTracing:    true,                       // Enable tracing for spans
			TracesSampleRate: 1.0,
			EnableLogs:       true,
			Debug:            !cfg.IsProduction(),
			BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
				// Filter out sensitive data
				if event.Request != nil {
					event.Request.Headers = filterSensitiveHeaders(event.Request.Headers)
				}
				return event
			},
		}); err != nil {
			log.Printf("Failed to initialize Sentry: %v", err)
		} else {
			log.Printf("✅ Sentry initialized (environment: %s, release: %s)", cfg.Environment, releaseVersion)
			// Flush on shutdown
			defer sentry.Flush(sentryFlushTimeout)
		}
	} else {
		log.Println("⚠️  Sentry not configured (SENTRY_DSN not set)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// QR encoder
	source, err := encoder.NewBackend(cfg.QRBackend)
	if err != nil {
		log.Fatal("Failed to select QR backend:", err)
	}
	enc := encoder.New(source)

	// Metrics
	cloudwatchClient, err := metrics.NewClient(ctx, cfg.Environment, cfg.CloudWatchEnabled)
	if err != nil {
		log.Fatal("Failed to create CloudWatch client:", err)
	}
	recorder := metrics.Multi{metrics.NewSentryMetrics(), cloudwatchClient}

	// Generation controller
	feed := notify.NewFeed(notify.DefaultFeedSize)
	ctrl := generation.New(enc,
		generation.WithOptions(cfg.EncoderOptions()),
		generation.WithMinDisplay(cfg.MinDisplayDuration),
		generation.WithExportPrefix(cfg.ExportPrefix),
		generation.WithNotifier(feed),
		generation.WithRecorder(recorder),
	)

	// Set Gin mode
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize router
	router := api.SetupRouter(ctrl, feed, cfg, GetVersion())

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Start server
	serverErr := make(chan error, 1)
	go func() {
		log.Printf("🚀 Starting server on port %s (backend: %s)", cfg.Port, enc.Backend())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			sentry.CaptureException(err)
			log.Fatal("Failed to start server:", err)
		}
	case <-ctx.Done():
	}

	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
	if err := ctrl.Wait(shutdownCtx); err != nil {
		log.Printf("Generation still running at shutdown: %v", err)
	}
}

func filterSensitiveHeaders(headers map[string]string) map[string]string {
	filtered := make(map[string]string)
	sensitiveKeys := map[string]bool{
		"authorization": true,
		"cookie":        true,
		"x-api-key":     true,
	}

	for k, v := range headers {
		if sensitiveKeys[k] {
			filtered[k] = "[REDACTED]"
		} else {
			filtered[k] = v
		}
	}
	return filtered
}
