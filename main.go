package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/seo-optimizer/seoforge/analyzer"
	"github.com/seo-optimizer/seoforge/api"
	"github.com/seo-optimizer/seoforge/config"
	"github.com/seo-optimizer/seoforge/keywords"
	"github.com/seo-optimizer/seoforge/llm"
	"github.com/seo-optimizer/seoforge/logging"
	"github.com/seo-optimizer/seoforge/metrics"
	"github.com/seo-optimizer/seoforge/middleware"
	"github.com/seo-optimizer/seoforge/stats"
)

const (
	maintenanceInterval = time.Hour
	statsRetainMonths   = 12
	shutdownTimeout     = 15 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	gin.SetMode(cfg.GinMode)

	logger, err := logging.New(logging.Config{Level: cfg.LogLevel, Development: cfg.DevMode})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Error("Server exited with error", logging.Err(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger logging.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New("seoforge", reg)

	storage, err := stats.NewStorage(cfg.DataDir)
	if err != nil {
		return err
	}
	defer func() {
		if err := storage.Shutdown(); err != nil {
			logger.Error("Failed to save statistics", logging.Err(err))
		}
	}()
	requestStats := stats.NewRequestStats(cfg.DevMode)

	suggester, closeSuggester := buildSuggester(ctx, cfg, logger, m, storage)
	defer closeSuggester()

	expander := keywords.New(suggester,
		keywords.WithLogger(logger.With(logging.String("component", "keywords"))),
		keywords.WithMetrics(m),
		keywords.WithStats(storage),
		keywords.WithModelTimeout(cfg.AI.Timeout),
	)

	seo := analyzer.New(analyzer.NewHTTPFetcher(cfg.Fetch.Timeout, cfg.Fetch.UserAgent),
		analyzer.WithLogger(logger.With(logging.String("component", "analyzer"))),
		analyzer.WithMetrics(m),
		analyzer.WithStats(storage),
	)

	if err := api.InitializeAll(expander, seo); err != nil {
		return err
	}

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.ErrorHandler(logger),
		middleware.Logger(logger),
		middleware.Metrics(m),
		middleware.CORS(),
	)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	r.Use(
		rateLimiter.RateLimit(),
		middleware.Stats(requestStats, api.AnalysisPaths...),
	)
	api.NewHandler(expander, seo, requestStats, storage, logger).Register(r)

	go maintenance(ctx, rateLimiter, requestStats, storage)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", logging.String("addr", "http://localhost:"+cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// buildSuggester selects the model provider and wraps it with the suggestion
// cache. It returns a nil Suggester when no provider is configured.
func buildSuggester(ctx context.Context, cfg *config.Config, logger logging.Logger, m *metrics.Metrics, storage *stats.Storage) (llm.Suggester, func()) {
	if !cfg.AI.HasModel() {
		logger.Warn("No AI model configured, keyword research will use dictionaries only")
		return nil, func() {}
	}
	provider, err := llm.Select(cfg.AI, llm.Options{Metrics: m})
	if err != nil {
		logger.Warn("AI model unavailable, keyword research will use dictionaries only", logging.Err(err))
		return nil, func() {}
	}
	logger.Info("AI model selected", logging.String("provider", provider.Name()))

	opts := llm.CacheOptions{
		TTL:     cfg.Cache.TTL,
		Logger:  logger.With(logging.String("component", "suggestion_cache")),
		Metrics: m,
		Stats:   storage,
	}

	if cfg.Cache.RedisAddress != "" {
		client, err := llm.NewRedisClient(ctx, cfg.Cache.RedisAddress, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
		if err == nil {
			logger.Info("Using Redis suggestion cache", logging.String("address", cfg.Cache.RedisAddress))
			cache := llm.NewRedisCache(client, "seoforge:suggestions:")
			return llm.NewCachedSuggester(provider, cache, opts), func() { _ = client.Close() }
		}
		logger.Warn("Redis unavailable, falling back to in-memory suggestion cache", logging.Err(err))
	}

	cache := llm.NewMemoryCache(cfg.Cache.MaxEntries)
	return llm.NewCachedSuggester(provider, cache, opts), cache.Close
}

// maintenance prunes idle rate-limit buckets, stale visitors and old monthly stats
func maintenance(ctx context.Context, rl *middleware.RateLimiter, requestStats *stats.RequestStats, storage *stats.Storage) {
	ticker := time.NewTicker(maintenanceInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.Cleanup(maintenanceInterval)
			requestStats.PruneVisitors()
			storage.Cleanup(statsRetainMonths)
		case <-ctx.Done():
			return
		}
	}
}
