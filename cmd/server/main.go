package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	invoiceapp "github.com/billforge/invoicegen/internal/application/invoice"
	"github.com/billforge/invoicegen/internal/infrastructure/config"
	"github.com/billforge/invoicegen/internal/infrastructure/logger"
	"github.com/billforge/invoicegen/internal/infrastructure/render"
	"github.com/billforge/invoicegen/internal/infrastructure/storage"
	"github.com/billforge/invoicegen/internal/interfaces/http/handler"
	"github.com/billforge/invoicegen/internal/interfaces/http/middleware"
	"github.com/billforge/invoicegen/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting invoice generator",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize the PDF renderer
	renderer, err := render.NewChromedpRenderer(&render.ChromedpConfig{
		DefaultTimeout: cfg.Render.Timeout,
		ExecPath:       cfg.Render.ChromePath,
		MaxConcurrent:  cfg.Render.MaxConcurrent,
		Headless:       cfg.Render.Headless,
		NoSandbox:      true, // containers run Chrome as root
		Logger:         logger.Named(log, "render"),
	})
	if err != nil {
		log.Fatal("Failed to initialize PDF renderer", zap.Error(err))
	}
	defer func() {
		if err := renderer.Close(); err != nil {
			log.Error("Error closing renderer", zap.Error(err))
		}
	}()

	// Initialize artifact storage
	pdfStorage, err := buildStorage(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize PDF storage", zap.Error(err))
	}
	log.Info("PDF storage ready", zap.String("backend", cfg.Storage.Backend))

	// Load the template variants
	registry, err := render.NewRegistry(render.NewTemplateEngine())
	if err != nil {
		log.Fatal("Failed to load template variants", zap.Error(err))
	}

	// Application service
	invoiceService := invoiceapp.NewService(registry, renderer, pdfStorage,
		logger.Named(log, "invoice"))

	// HTTP handlers
	invoiceHandler := handler.NewInvoiceHandler(invoiceService, pdfStorage)
	healthHandler := handler.NewHealthHandler(cfg.App.Name, version)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Custom binding validators
	handler.RegisterValidators()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware stack, in order:
	// 1. RequestID - generate/propagate request ID
	// 2. Recovery - catch panics
	// 3. Logger - log requests
	// 4. Security - add security headers
	// 5. CORS - handle cross-origin requests
	// 6. BodyLimit - limit request body size
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Probes live outside the versioned API
	healthHandler.Register(engine)

	// API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(handler.InvoiceRoutes(invoiceHandler)).
		Register(handler.TemplateRoutes(invoiceHandler))
	r.Setup()

	// Periodic artifact cleanup
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()
	if cfg.Storage.RetentionDays > 0 {
		go runCleanupLoop(cleanupCtx, invoiceService, cfg.Storage.RetentionDays, log)
	}

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// buildStorage selects the artifact storage backend from configuration
func buildStorage(cfg *config.Config, log *zap.Logger) (render.PDFStorage, error) {
	switch cfg.Storage.Backend {
	case "s3":
		s3Storage, err := storage.NewS3PDFStorage(&cfg.Storage,
			storage.WithLogger(logger.Named(log, "storage")),
			storage.WithPresignExpiration(cfg.Storage.PresignExpiration),
		)
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s3Storage.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return s3Storage, nil
	default:
		return render.NewFileSystemStorage(&render.FileSystemStorageConfig{
			BasePath:      cfg.Storage.BasePath,
			BaseURL:       cfg.Storage.BaseURL,
			RetentionDays: cfg.Storage.RetentionDays,
			Logger:        logger.Named(log, "storage"),
		})
	}
}

// runCleanupLoop deletes stored artifacts past the retention window once a
// day until ctx is cancelled
func runCleanupLoop(ctx context.Context, svc *invoiceapp.Service, retentionDays int, log *zap.Logger) {
	age := time.Duration(retentionDays) * 24 * time.Hour
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := svc.CleanupArtifacts(ctx, age)
			if err != nil {
				log.Error("Artifact cleanup failed", zap.Error(err))
				continue
			}
			if deleted > 0 {
				log.Info("Artifact cleanup completed", zap.Int("deleted", deleted))
			}
		}
	}
}
