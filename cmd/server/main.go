package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yourorg/estatehub/internal/handler"
	"github.com/yourorg/estatehub/internal/infrastructure/logger"
	"github.com/yourorg/estatehub/internal/infrastructure/redis"
	"github.com/yourorg/estatehub/internal/notify"
	"github.com/yourorg/estatehub/internal/observability/metrics"
	"github.com/yourorg/estatehub/internal/observability/tracing"
	"github.com/yourorg/estatehub/internal/repository"
	"github.com/yourorg/estatehub/internal/security/audit"
	"github.com/yourorg/estatehub/internal/security/auth"
	"github.com/yourorg/estatehub/internal/security/middleware"
	"github.com/yourorg/estatehub/internal/security/ratelimit"
	"github.com/yourorg/estatehub/internal/service"
	"github.com/yourorg/estatehub/internal/worker"
	"github.com/yourorg/estatehub/pkg/config"
	"github.com/yourorg/estatehub/pkg/database"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize structured logger
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("starting EstateHub server", slog.String("environment", cfg.Environment))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Initialize tracing (no-op unless an OTLP endpoint is configured)
	shutdownTracing, err := tracing.Init(ctx, log, "estatehub", cfg.Environment)
	if err != nil {
		log.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Initialize Redis client
	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Error("failed to connect to Redis", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer redisClient.Close()

	// 5. Initialize database pool and apply migrations
	dbCfg := database.DefaultConfig()
	dbCfg.Host = cfg.DatabaseHost
	dbCfg.Port = cfg.DatabasePort
	dbCfg.User = cfg.DatabaseUser
	dbCfg.Password = cfg.DatabasePassword
	dbCfg.Database = cfg.DatabaseName
	dbCfg.SSLMode = cfg.DatabaseSSLMode

	pool, err := database.NewConnectionPool(ctx, dbCfg, log)
	if err != nil {
		log.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Migrate(ctx, cfg.MigrationsDir); err != nil {
		log.Error("failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 6. Initialize repositories
	userRepo := repository.NewPostgresUserRepository(pool.GetDB(), log)
	propertyRepo := repository.NewCachedPropertyRepository(
		repository.NewPostgresPropertyRepository(pool.GetDB(), log),
		redisClient,
		cfg.PropertyCacheTTL,
		log,
	)
	offerRepo := repository.NewPostgresOfferRepository(pool.GetDB(), log)

	// 7. Initialize services
	tokenManager := auth.NewTokenManager(cfg.JWTSecret, "estatehub", cfg.TokenTTL)
	broker := notify.NewBroker(log)
	authService := service.NewAuthService(userRepo, tokenManager, log)
	propertyService := service.NewPropertyService(propertyRepo, cfg.ListingCacheTTL, log)
	offerService := service.NewOfferService(offerRepo, userRepo, propertyService, broker, log)

	// 8. Initialize handlers and security components
	auditLogger := audit.NewLogger(log)
	rateLimiter := ratelimit.NewLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)

	authHandler := handler.NewAuthHandler(authService, log, cfg.IsDevelopment())
	propertiesHandler := handler.NewPropertiesHandler(propertyService, log, cfg.IsDevelopment())
	offersHandler := handler.NewOffersHandler(offerService, auditLogger, log, cfg.IsDevelopment())
	eventsHandler := handler.NewEventsHandler(broker, propertyService, log, cfg.CORSAllowedOrigins)
	healthHandler := handler.NewHealthHandler(pool, redisClient, log)

	// 9. Setup HTTP routes
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("GET /api/auth/profile", authHandler.Profile)
	mux.HandleFunc("POST /api/auth/change-password", authHandler.ChangePassword)
	mux.HandleFunc("GET /api/properties", propertiesHandler.List)
	mux.HandleFunc("GET /api/properties/search", propertiesHandler.Search)
	mux.HandleFunc("GET /api/properties/{id}", propertiesHandler.Get)
	mux.HandleFunc("POST /api/properties", propertiesHandler.Create)
	mux.HandleFunc("POST /api/offers", offersHandler.Create)
	mux.HandleFunc("GET /api/offers/my", offersHandler.ListMine)
	mux.HandleFunc("GET /api/offers/{propertyId}", offersHandler.ListByProperty)
	mux.HandleFunc("PATCH /api/offers/{offerId}/status", offersHandler.UpdateStatus)
	mux.Handle("GET /ws/offers/{propertyId}", eventsHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", healthHandler.Health)
	mux.HandleFunc("GET /readyz", healthHandler.Ready)

	// CORS middleware honoring configured origins. Runs before auth so
	// preflight requests never need a credential.
	withCORS := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if originAllowed(cfg.CORSAllowedOrigins, origin) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
			} else if len(cfg.CORSAllowedOrigins) > 0 {
				w.Header().Set("Access-Control-Allow-Origin", cfg.CORSAllowedOrigins[0])
			}
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Authorization")
			w.Header().Set("Access-Control-Allow-Credentials", "true")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}

	// Chain middleware: request ID -> tracing -> metrics -> CORS -> JWT ->
	// rate limit -> audit -> content-type validation
	rootHandler := withRequestID(
		otelhttp.NewHandler(
			metrics.HTTPMetricsMiddleware(
				withCORS(
					middleware.JWTMiddleware(tokenManager, log)(
						middleware.RateLimitMiddleware(rateLimiter, log)(
							middleware.AuditMiddleware(auditLogger)(
								middleware.ValidateJSONContentType(log)(mux),
							),
						),
					),
				),
			),
			"estatehub",
		),
		log,
	)

	// 10. Start stats worker in background
	statsWorker := worker.NewStatsWorker(propertyRepo, offerRepo, log, cfg.StatsInterval)
	go statsWorker.Start(ctx)

	// 11. Start HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      rootHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
		slog.String("auth", "jwt"),
		slog.Int("rate_limit", cfg.RateLimitRequests),
		slog.Duration("rate_limit_window", cfg.RateLimitWindow),
	)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.String("error", err.Error()))
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Info("shutdown signal received")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}

	cancel() // Stop stats worker
	rateLimiter.Stop()
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing shutdown error", slog.String("error", err.Error()))
	}
	log.Info("server stopped")
}

type requestIDKey struct{}

// withRequestID attaches a request ID to the context and response headers for traceability
func withRequestID(next http.Handler, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := generateRequestID()
		w.Header().Set("X-Request-ID", reqID)

		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		start := time.Now()

		next.ServeHTTP(w, r.WithContext(ctx))

		log.Info("request completed",
			slog.String("request_id", reqID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("duration_ms", time.Since(start)),
		)
	})
}

func originAllowed(allowed []string, origin string) bool {
	if origin == "" {
		return false
	}
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}

func generateRequestID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err == nil {
		return hex.EncodeToString(buf)
	}
	return fmt.Sprintf("req-%d", time.Now().UnixNano())
}
