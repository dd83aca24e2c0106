package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/diskindex/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/diskindex/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/diskindex/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/diskindex/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/diskindex/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/diskindex/pkg/postgres"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	root := flag.String("root", "", "directory to index (default: indexer.root)")
	out := flag.String("out", "", "index file to write (default: <indexer.dataDir>/<root name>.idx)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *root == "" {
		*root = cfg.Indexer.Root
	}

	logger.Setup(cfg.Logging)
	slog.Info("starting indexer", "root", *root, "data_dir", cfg.Indexer.DataDir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	if cfg.Metrics.Enabled {
		shutdown := metrics.StartServer(cfg.Metrics.Port)
		defer shutdown(context.Background())
	}

	var registrar indexer.Registrar
	if cfg.Postgres.Enabled {
		db, err := postgres.New(ctx, cfg.Postgres)
		if err != nil {
			slog.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		cat := catalog.New(db)
		if err := cat.EnsureSchema(ctx); err != nil {
			slog.Error("failed to prepare catalog", "error", err)
			os.Exit(1)
		}
		registrar = cat
		slog.Info("index catalog enabled", "host", cfg.Postgres.Host, "database", cfg.Postgres.Database)
	}

	var publisher indexer.Publisher
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.IndexComplete)
		defer producer.Close()
		publisher = producer
		slog.Info("index-complete events enabled", "topic", cfg.Kafka.Topics.IndexComplete)
	}

	engine := indexer.NewEngine(cfg.Indexer, m, registrar, publisher)
	report, err := engine.IndexDirectory(ctx, *root, *out)
	if err != nil {
		slog.Error("indexing failed", "error", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s: %d bytes, %d documents (%d skipped), %d words in %s\n",
		report.Path, report.Bytes, report.Docs, report.Skipped, report.Words, report.Duration.Round(time.Millisecond))
}
