package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/indexer/shard"
	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/searcher/reload"
	"github.com/Adithya-Monish-Kumar-K/diskindex/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/diskindex/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/diskindex/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/diskindex/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/diskindex/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/diskindex/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/diskindex/pkg/postgres"
	pkgredis "github.com/Adithya-Monish-Kumar-K/diskindex/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging)
	slog.Info("starting search service", "port", cfg.Server.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	if cfg.Metrics.Enabled {
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer shutdownMetrics(context.Background())
	}

	paths, err := indexPaths(cfg.Search)
	if err != nil {
		slog.Error("failed to list index files", "error", err)
		os.Exit(1)
	}
	processor, err := executor.Open(paths, cfg.Search.Validate)
	if err != nil {
		m.ShardOpenErrors.Inc()
		slog.Error("failed to open index files", "error", err)
		os.Exit(1)
	}
	defer processor.Close()

	var db *postgres.Client
	if cfg.Postgres.Enabled {
		db, err = postgres.New(ctx, cfg.Postgres)
		if err != nil {
			slog.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := loadCatalog(ctx, catalog.New(db), processor, cfg.Search.Validate); err != nil {
			m.ShardOpenErrors.Inc()
			slog.Error("failed to load cataloged index files", "error", err)
			os.Exit(1)
		}
	}
	m.ActiveShards.Set(float64(processor.NumShards()))
	slog.Info("index files loaded", "shards", processor.NumShards(), "validated", cfg.Search.Validate)

	var queryCache *cache.QueryCache
	var redisClient *pkgredis.Client
	if cfg.Redis.Enabled {
		redisClient, err = pkgredis.NewClient(cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, search caching disabled", "error", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
			queryCache = cache.New(redisClient, cfg.Redis, m)
			slog.Info("search cache enabled",
				"addr", cfg.Redis.Addr,
				"ttl", cfg.Redis.CacheTTL,
			)
		}
	}

	if cfg.Kafka.Enabled {
		var inv reload.Invalidator
		if queryCache != nil {
			inv = queryCache
		}
		consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.IndexComplete,
			reload.HandleMessage(processor, cfg.Search.Validate, inv, m))
		reloader := reload.New(consumer)
		go func() {
			if err := reloader.Start(ctx); err != nil {
				slog.Error("shard reload consumer error", "error", err)
			}
		}()
		slog.Info("shard reload enabled", "topic", cfg.Kafka.Topics.IndexComplete)
	}

	checker := health.NewChecker()
	checker.Register("index", health.ShardCheck(processor.NumShards))
	if redisClient != nil {
		checker.Register("redis", health.PingCheck(redisClient.Ping))
	}
	if db != nil {
		checker.Register("postgres", health.PingCheck(db.Ping))
	}

	h := handler.New(executor.New(processor, m), queryCache, m, cfg.Search)

	mux := http.NewServeMux()
	h.Register(mux)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var limiter *middleware.RateLimiter
	if cfg.Search.RateLimit > 0 {
		limiter = middleware.NewRateLimiter(cfg.Search.RateLimit, cfg.Search.RateBurst)
	}

	var chain http.Handler = mux
	chain = middleware.Timeout(cfg.Server.RequestTimeout)(chain)
	chain = middleware.RateLimit(limiter)(chain)
	chain = middleware.Metrics(m)(chain)
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("search service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("search service stopped")
}

// indexPaths returns the configured index files, or every index file in the
// index directory when none are listed.
func indexPaths(cfg config.SearchConfig) ([]string, error) {
	if len(cfg.IndexFiles) > 0 {
		return cfg.IndexFiles, nil
	}
	if cfg.IndexDir == "" {
		return nil, nil
	}
	if _, err := os.Stat(cfg.IndexDir); os.IsNotExist(err) {
		slog.Warn("index directory does not exist yet", "dir", cfg.IndexDir)
		return nil, nil
	}
	return shard.Discover(cfg.IndexDir)
}

func loadCatalog(ctx context.Context, cat *catalog.Catalog, p *executor.Processor, validate bool) error {
	if err := cat.EnsureSchema(ctx); err != nil {
		return err
	}
	paths, err := cat.Paths(ctx)
	if err != nil {
		return err
	}
	for _, path := range paths {
		if p.HasShard(path) {
			continue
		}
		if err := p.OpenShard(path, validate); err != nil {
			return err
		}
	}
	return nil
}
