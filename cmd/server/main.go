package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"

	"github.com/lgramweb/lgram-web/internal/audit"
	"github.com/lgramweb/lgram-web/internal/config"
	"github.com/lgramweb/lgram-web/internal/database"
	"github.com/lgramweb/lgram-web/internal/export"
	"github.com/lgramweb/lgram-web/internal/handlers"
	"github.com/lgramweb/lgram-web/internal/logger"
	"github.com/lgramweb/lgram-web/internal/middleware"
	"github.com/lgramweb/lgram-web/internal/services/lgram"
	"github.com/lgramweb/lgram-web/internal/session"
	"github.com/lgramweb/lgram-web/internal/stats"
	"github.com/lgramweb/lgram-web/internal/telemetry"
)

func main() {
	// Parse command-line flags
	debugFlag := flag.Bool("debug", false, "Enable debug mode for engine API logging")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Override debug mode if flag is set
	debugMode := cfg.ServerDebugMode || *debugFlag

	// Initialize logger
	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Sync(zapLogger)
	}()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("frontend_url", cfg.FrontendURL),
		zap.String("engine_model", cfg.EngineModel),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	// Initialize OpenTelemetry if enabled
	var tracerProvider interface{ Shutdown(context.Context) error }
	if cfg.OTELEnabled {
		if cfg.OTELEndpoint == "" {
			zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		} else {
			tp, err := telemetry.InitTracer(context.Background(), "lgram-web", cfg.OTELEndpoint)
			if err != nil {
				zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
			} else {
				tracerProvider = tp
				zapLogger.Info("otel_tracer_initialized",
					zap.String("endpoint", cfg.OTELEndpoint),
				)
				defer func() {
					shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer shutdownCancel()
					if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
						zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
					}
				}()
			}
		}
	}

	// Connect to database
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}()

	migrateCtx, migrateCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.Migrate(migrateCtx); err != nil {
		migrateCancel()
		zapLogger.Fatal("failed_to_run_migrations", zap.Error(err))
	}
	migrateCancel()
	zapLogger.Info("connected_to_database")

	// Connect to Redis: one client shared by the session store and rate limiter
	sessionStore, err := session.NewStore(cfg.RedisURL, cfg.SessionTTL, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_redis", zap.Error(err))
	}
	defer func() {
		if err := sessionStore.Close(); err != nil {
			zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_redis")

	// Initialize repositories
	userRepo := database.NewUserRepository(db)
	loginLogRepo := database.NewLoginLogRepository(db)
	activityLogRepo := database.NewActivityLogRepository(db)
	textRepo := database.NewGeneratedTextRepository(db)

	// Initialize services
	auditLog := audit.NewLog(loginLogRepo, activityLogRepo, textRepo, zapLogger)
	aggregator := stats.NewAggregator(userRepo, loginLogRepo, activityLogRepo, textRepo, sessionStore)
	exporter := export.NewExporter(loginLogRepo, activityLogRepo, textRepo)

	var engine lgram.Generator
	if cfg.OpenAIKey == "" {
		zapLogger.Warn("engine_api_key_not_configured_generation_disabled")
	} else {
		engine = lgram.NewOpenAIEngine(cfg.OpenAIKey, cfg.EngineBaseURL, cfg.EngineModel, zapLogger, debugMode)
	}

	// Secure cookies ride with HSTS: both are on only behind TLS
	secureCookies := cfg.EnableHSTS

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userRepo, sessionStore, auditLog, cfg.SessionTTL, secureCookies, zapLogger)
	historyHandler := handlers.NewHistoryHandler(textRepo, auditLog, zapLogger)
	sessionHandler := handlers.NewSessionHandler(sessionStore, zapLogger)
	statsHandler := handlers.NewStatsHandler(aggregator, zapLogger)
	exportHandler := handlers.NewExportHandler(exporter, zapLogger)
	healthChecker := handlers.NewHealthChecker(db, sessionStore)

	// Setup router
	r := mux.NewRouter()

	zapLogger.Info("setting_up_middleware")

	if cfg.OTELEnabled && tracerProvider != nil {
		r.Use(otelmux.Middleware("lgram-web"))
		zapLogger.Info("otel_middleware_enabled")
	}
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	r.Use(middleware.CORSFromFrontendURL(cfg.FrontendURL))
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	r.Use(middleware.ContentType)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.SecurityAudit(zapLogger))
	r.Use(middleware.Auth(sessionStore, userRepo, zapLogger))
	r.Use(middleware.Identity(sessionStore, cfg.SessionTTL, secureCookies, zapLogger))
	r.Use(middleware.Logging(zapLogger))
	r.Use(middleware.TrackPageViews(sessionStore, zapLogger, "/healthz", "/version", "/api/v1/session"))

	// Rate limit middleware, applied selectively to specific routes
	rateLimitMW, err := middleware.RateLimit(sessionStore.Client(), cfg.RateLimit)
	if err != nil {
		zapLogger.Fatal("failed_to_create_rate_limiter", zap.Error(err))
	}

	// Public routes (no rate limiting for health checks)
	r.HandleFunc("/healthz", healthChecker.HealthCheck).Methods("GET")
	r.HandleFunc("/version", versionInfo).Methods("GET")

	// API v1 routes
	apiRouter := r.PathPrefix("/api/v1").Subrouter()

	// Auth routes: rate-limited, since login and register face credential abuse
	authRouter := apiRouter.PathPrefix("/auth").Subrouter()
	authRouter.Use(rateLimitMW)
	authHandler.RegisterRoutes(authRouter, middleware.RequireUser)

	// Generation routes: rate-limited, each request costs an engine call
	if engine != nil {
		generateHandler := handlers.NewGenerateHandler(engine, sessionStore, auditLog, textRepo, zapLogger)
		generateRouter := apiRouter.PathPrefix("/generate").Subrouter()
		generateRouter.Use(rateLimitMW)
		generateHandler.RegisterRoutes(generateRouter)
	}

	historyHandler.RegisterRoutes(apiRouter.PathPrefix("/history").Subrouter())
	sessionHandler.RegisterRoutes(apiRouter.PathPrefix("/session").Subrouter())
	statsHandler.RegisterRoutes(apiRouter.PathPrefix("/stats").Subrouter(), middleware.RequireUser)
	exportHandler.RegisterRoutes(apiRouter.PathPrefix("/export").Subrouter(), middleware.RequireUser)

	// Catch-all OPTIONS handler so preflight requests succeed on every route
	r.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// Setup server
	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        r,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1MB max header size
	}

	// Start server in a goroutine
	go func() {
		zapLogger.Info("server_starting",
			zap.String("port", cfg.ServerPort),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}

func versionInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	// Only expose minimal version info
	if _, err := fmt.Fprintf(w, `{"version":"1.0.0","timestamp":"%s"}`, time.Now().UTC().Format(time.RFC3339)); err != nil {
		_ = err
	}
}
