package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/gosgconsulting/new-cms-sub013/internal/application"
	"github.com/gosgconsulting/new-cms-sub013/internal/domain"
	"github.com/gosgconsulting/new-cms-sub013/internal/infrastructure/cache"
	"github.com/gosgconsulting/new-cms-sub013/internal/infrastructure/metrics"
	"github.com/gosgconsulting/new-cms-sub013/internal/infrastructure/repository"
	"github.com/gosgconsulting/new-cms-sub013/internal/infrastructure/woocommerce"
	"github.com/gosgconsulting/new-cms-sub013/internal/pkg/config"
	"github.com/gosgconsulting/new-cms-sub013/internal/ports"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	db, err := sql.Open("postgres", cfg.PostgresURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open Postgres")
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Postgres")
	}

	var reports ports.ReportCache
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer redisClient.Close()
		reports = cache.NewReportCache(redisClient, cfg.ReportCacheTTL)
	} else {
		logger.Warn().Msg("REDIS_ADDR not set, report caching disabled")
	}

	// Repositories
	integrationRepo := repository.NewIntegrationRepository(db)
	productRepo := repository.NewProductRepository(db)
	variantRepo := repository.NewVariantRepository(db)
	mirrorRepo := repository.NewLegacyMirrorRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	// One client per run, built from the tenant's stored credentials.
	clientFactory := func(integration *domain.Integration) (ports.CommerceClient, error) {
		return woocommerce.NewClient(woocommerce.ClientConfig{
			StoreURL:          integration.StoreURL,
			ConsumerKey:       integration.ConsumerKey,
			ConsumerSecret:    integration.ConsumerSecret,
			APIVersion:        integration.APIVersion,
			Timeout:           cfg.UpstreamTimeout,
			RequestsPerSecond: cfg.UpstreamRPS,
		}, logger)
	}

	syncMetrics := metrics.New()
	resolver := application.NewConfigResolver(integrationRepo, logger)

	opts := application.DefaultSyncOptions()
	opts.PerPage = cfg.SyncPerPage
	opts.MaxPages = cfg.SyncMaxPages
	opts.PageDelay = cfg.SyncPageDelay

	syncService := application.NewSyncService(
		resolver,
		clientFactory,
		productRepo,
		variantRepo,
		mirrorRepo,
		orderRepo,
		reports,
		syncMetrics,
		logger,
		opts,
	)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.CORSAllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))
	r.Use(tenantIDMiddleware())

	// Public routes (no tenant ID required)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	r.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		http.ServeFile(w, r, "./docs/swagger.json")
	})

	// Sync API (tenant-scoped)
	r.Post("/api/v1/sync/products", syncProductsHandler(syncService, logger))
	r.Post("/api/v1/sync/orders", syncOrdersHandler(syncService, logger))
	r.Get("/api/v1/sync/report", reportHandler(syncService, logger))
	r.Post("/api/v1/sync/test-connection", testConnectionHandler(syncService))

	logger.Info().Str("addr", cfg.ServerAddr).Msg("Starting catalog sync API")
	if err := http.ListenAndServe(cfg.ServerAddr, r); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start server")
	}
}

// tenantIDMiddleware extracts the tenant scope from the X-Tenant-ID header.
// Public routes (health, metrics, swagger) are skipped.
func tenantIDMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			if path == "/health" || path == "/metrics" ||
				(len(path) >= 9 && path[:9] == "/swagger/") {
				next.ServeHTTP(w, r)
				return
			}

			tenantID := r.Header.Get("X-Tenant-ID")
			if tenantID == "" {
				http.Error(w, "X-Tenant-ID header is required", http.StatusBadRequest)
				return
			}

			ctx := domain.WithTenantID(r.Context(), tenantID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// syncProductsHandler runs a product sync for the request's tenant. The run
// honors the request context: a disconnecting caller cancels between pages.
func syncProductsHandler(syncService *application.SyncService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID := domain.TenantIDFromContext(r.Context())

		report, err := syncService.SyncProducts(r.Context(), tenantID)
		if err != nil {
			logger.Error().Err(err).Str("tenant_id", tenantID).Msg("Product sync aborted")
			writeJSON(w, fatalStatusCode(err), report)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

func syncOrdersHandler(syncService *application.SyncService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID := domain.TenantIDFromContext(r.Context())

		report, err := syncService.SyncOrders(r.Context(), tenantID)
		if err != nil {
			logger.Error().Err(err).Str("tenant_id", tenantID).Msg("Order sync aborted")
			writeJSON(w, fatalStatusCode(err), report)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

// reportHandler returns the cached report of the tenant's last run.
func reportHandler(syncService *application.SyncService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID := domain.TenantIDFromContext(r.Context())
		entity := r.URL.Query().Get("entity")
		if entity == "" {
			entity = "products"
		}

		report, err := syncService.LastReport(r.Context(), tenantID, entity)
		if err != nil {
			logger.Error().Err(err).Str("tenant_id", tenantID).Msg("Failed to load cached report")
			http.Error(w, "failed to load report", http.StatusInternalServerError)
			return
		}
		if report == nil {
			http.Error(w, "no report available", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

func testConnectionHandler(syncService *application.SyncService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID := domain.TenantIDFromContext(r.Context())
		status, _ := syncService.TestConnection(r.Context(), tenantID)
		writeJSON(w, http.StatusOK, status)
	}
}

func fatalStatusCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrIntegrationNotConfigured):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrIntegrationInactive):
		return http.StatusConflict
	default:
		var authErr *domain.AuthError
		if errors.As(err, &authErr) {
			return http.StatusBadGateway
		}
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
