package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nurseryhub/nursery-api/config"
	"github.com/nurseryhub/nursery-api/internal/cache"
	"github.com/nurseryhub/nursery-api/internal/database/postgres"
	"github.com/nurseryhub/nursery-api/internal/handlers"
	"github.com/nurseryhub/nursery-api/internal/middleware"
	"github.com/nurseryhub/nursery-api/internal/repository"
	"github.com/nurseryhub/nursery-api/internal/services"
	"github.com/nurseryhub/nursery-api/pkg/db"
	"github.com/nurseryhub/nursery-api/pkg/httpclient"
	"github.com/nurseryhub/nursery-api/pkg/jwt"
	"github.com/nurseryhub/nursery-api/pkg/logger"
	"github.com/nurseryhub/nursery-api/pkg/metrics"
	"github.com/nurseryhub/nursery-api/pkg/profiling"
	"github.com/nurseryhub/nursery-api/pkg/recaptcha"
	"github.com/nurseryhub/nursery-api/pkg/storage"
	"github.com/nurseryhub/nursery-api/pkg/tracing"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

const (
	// multipart overhead on top of the 5 MiB document limit
	documentUploadBodyLimit = 12 * 1024 * 1024
	jsonBodyLimit           = 256 * 1024
	staffTokenTTLHours      = 12
)

// backends groups the persistence and object storage chosen for this run
type backends struct {
	dataSource repository.EnrollmentDataSource
	storage    services.DocumentStorage
	close      func()
}

// openBackends connects to PostgreSQL and the document bucket, or uses in-memory
// replacements when DB_WORK_OFFLINE is set.
func openBackends(ctx context.Context, cfg *config.Config) (*backends, error) {
	if cfg.Database.WorkOffline {
		logger.Warn("Working offline: enrollments and documents are kept in memory only")
		return &backends{
			dataSource: repository.NewMemoryStore(),
			storage:    storage.NewMemoryBucket(),
			close:      func() {},
		}, nil
	}

	client, err := postgres.NewClient(ctx, db.PoolConfig{
		URL:        cfg.Database.URL,
		MaxConns:   cfg.Database.MaxConns,
		MinConns:   cfg.Database.MinConns,
		CACertPath: cfg.Database.CACertPath,
		ServerName: cfg.Database.TLSServerName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	bucket, err := storage.NewClient(storage.Config{
		AccessKeyID:     cfg.Storage.AccessKeyID,
		SecretAccessKey: cfg.Storage.SecretAccessKey,
		BucketName:      cfg.Storage.BucketName,
		Endpoint:        cfg.Storage.Endpoint,
		Region:          cfg.Storage.Region,
		UsePathStyle:    cfg.Storage.UsePathStyle,
	})
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to initialize document storage: %w", err)
	}

	return &backends{dataSource: client, storage: bucket, close: client.Close}, nil
}

// registerEnrollmentRoutes registers the public wizard routes
func registerEnrollmentRoutes(group *gin.RouterGroup, limiter, uploadLimiter *middleware.RateLimiter, h *handlers.EnrollmentHandler) {
	group.GET("/regulation", limiter.Middleware(), h.RegulationDocument)

	wizard := group.Group("/wizard", limiter.Middleware())
	wizard.POST("", h.StartSession)
	wizard.GET("/:id", h.GetView)
	wizard.DELETE("/:id", h.Abandon)
	wizard.PATCH("/:id/fields", middleware.BodySizeLimitMiddleware(jsonBodyLimit), h.UpdateFields)
	wizard.POST("/:id/next", h.Next)
	wizard.POST("/:id/previous", h.Previous)
	wizard.PUT("/:id/documents/:type", uploadLimiter.Middleware(), middleware.BodySizeLimitMiddleware(documentUploadBodyLimit), h.AttachDocument)
	wizard.DELETE("/:id/documents/:type", h.RemoveDocument)
	wizard.POST("/:id/regulation/scroll", middleware.BodySizeLimitMiddleware(jsonBodyLimit), h.RegulationScroll)
	wizard.POST("/:id/regulation/accept", middleware.BodySizeLimitMiddleware(jsonBodyLimit), h.AcceptRegulation)
	wizard.POST("/:id/submit", middleware.BodySizeLimitMiddleware(jsonBodyLimit), h.Submit)
}

// registerAdminRoutes registers the staff review routes behind bearer auth
func registerAdminRoutes(group *gin.RouterGroup, tokenManager *jwt.TokenManager, limiter *middleware.RateLimiter, h *handlers.AdminEnrollmentsHandler) {
	admin := group.Group("/admin/enrollments", limiter.Middleware(), middleware.StaffAuthMiddleware(tokenManager))
	admin.GET("", h.ListEnrollments)
	admin.GET("/:id", h.GetEnrollment)
	admin.POST("/:id/status", middleware.BodySizeLimitMiddleware(jsonBodyLimit), h.UpdateStatus)
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		Environment: cfg.Server.AppEnv,
		ServiceName: cfg.Observability.ServiceName,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Nursery API",
		zap.String("version", cfg.Observability.ServiceVersion),
		zap.String("environment", cfg.Server.AppEnv),
	)

	// Initialize distributed tracing
	tracerShutdown, err := tracing.InitTracer(tracing.Config{
		ServiceName:       cfg.Observability.ServiceName,
		ServiceNamespace:  cfg.Observability.ServiceNamespace,
		ServiceVersion:    cfg.Observability.ServiceVersion,
		ServiceInstanceID: cfg.Observability.ServiceInstanceID,
		Environment:       cfg.Server.AppEnv,
		Endpoint:          cfg.Observability.AlloyEndpoint,
	})
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tracerShutdown(ctx); shutdownErr != nil {
			logger.Error("Failed to shutdown tracer", zap.Error(shutdownErr))
		}
	}()

	stopProfiler, err := profiling.Start(cfg.Profiling, cfg.Observability, cfg.Server.AppEnv)
	if err != nil {
		logger.Fatal("Failed to start profiler", zap.Error(err))
	}
	defer stopProfiler()

	// Start infrastructure metrics collection
	metrics.RecordInfrastructureMetrics()

	appCtx, cancelApp := context.WithCancel(context.Background())
	defer cancelApp()

	// NOTE: migrations run separately via cmd/migrate
	be, err := openBackends(appCtx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize backends", zap.Error(err))
	}
	defer be.close()

	// Repositories
	childRepo := repository.NewChildRepository(be.dataSource)
	enrollmentRepo := repository.NewEnrollmentRepository(be.dataSource)
	documentRepo := repository.NewDocumentRepository(be.dataSource)
	parentRepo := repository.NewParentRepository(be.dataSource)

	// HTTP client for external API calls
	httpClient := httpclient.NewStandardClient(10 * time.Second)
	captcha := recaptcha.NewVerifier(cfg.ReCAPTCHA.SecretKey, httpClient)
	if !captcha.Enabled() {
		logger.Warn("ReCAPTCHA disabled: RECAPTCHA_V2_SECRET_KEY not set")
	}

	sessions := cache.NewWizardSessionCache(time.Duration(cfg.Enrollment.SessionTTLMinutes) * time.Minute)

	// Services
	uploadService := services.NewDocumentUploadService(be.storage, childRepo, documentRepo)
	parentService := services.NewParentAccountService(parentRepo)
	wizardService := services.NewEnrollmentWizardService(
		sessions, childRepo, enrollmentRepo, uploadService, parentService, captcha, cfg, httpClient)
	adminService := services.NewEnrollmentAdminService(
		enrollmentRepo, childRepo, documentRepo, be.storage, cfg, httpClient)
	regulationService := services.NewRegulationService(cfg.Enrollment.RegulationDocumentPath)

	if _, regErr := regulationService.DocumentPath(); regErr != nil {
		logger.Warn("Regulation document not found, download endpoint will answer 404",
			zap.String("path", cfg.Enrollment.RegulationDocumentPath))
	}

	// Handlers
	enrollmentHandler := handlers.NewEnrollmentHandler(wizardService, regulationService)
	adminHandler := handlers.NewAdminEnrollmentsHandler(adminService)
	healthHandler := handlers.NewHealthHandler(be.dataSource, sessions.Count)
	tokenManager := jwt.NewTokenManager(cfg.Auth.StaffJWTSecret, cfg.Auth.JWTIssuer, staffTokenTTLHours)

	// Set up Gin router
	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.Observability.ServiceName))
	router.Use(middleware.ObservabilityMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	allowedOrigins := cfg.Server.AllowedOrigins
	if cfg.IsDevelopment() {
		allowedOrigins = append(allowedOrigins, "http://localhost:3000", "http://127.0.0.1:3000")
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "traceparent", "tracestate"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// Rate limiters per endpoint type
	generalRateLimiter := middleware.NewRateLimiter(appCtx, 50, 100) // 50 req/sec, burst of 100
	uploadRateLimiter := middleware.NewRateLimiter(appCtx, 1, 5)     // 1 upload/sec, burst of 5
	staffRateLimiter := middleware.NewRateLimiter(appCtx, 20, 40)

	// Operational endpoints (not versioned)
	api := router.Group("/api")
	api.GET("/healthcheck", generalRateLimiter.Middleware(), healthHandler.Healthcheck)
	api.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	registerEnrollmentRoutes(v1.Group("/enrollments"), generalRateLimiter, uploadRateLimiter, enrollmentHandler)
	registerAdminRoutes(v1, tokenManager, staffRateLimiter, adminHandler)

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Info("Server started", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
