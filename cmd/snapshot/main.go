// Package main runs the snapshot recorder daemon: on a cron schedule it
// re-analyzes every tracked wallet and appends the scores to the history
// store.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"degenscore-lab/internal/activity"
	"degenscore-lab/internal/config"
	"degenscore-lab/internal/engine"
	"degenscore-lab/internal/observability"
	"degenscore-lab/internal/snapshot"
	"degenscore-lab/internal/storage"
	chstore "degenscore-lab/internal/storage/clickhouse"
	"degenscore-lab/internal/storage/memory"
	"degenscore-lab/internal/storage/migrations"
	pgstore "degenscore-lab/internal/storage/postgres"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "config.yaml", "Path to YAML config file")
	once := flag.Bool("once", false, "Record one snapshot run and exit")
	verbose := flag.Bool("verbose", false, "Verbose pipeline logging")

	flag.Parse()

	logger := log.New(os.Stdout, "[snapshot] ", log.LstdFlags)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("Load config: %v", err)
	}
	if *verbose {
		cfg.Verbose = true
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("Invalid config: %v", err)
	}
	if cfg.Provider.BaseURL == "" {
		logger.Fatal("provider.base_url is required")
	}
	if len(cfg.Snapshot.Wallets) == 0 {
		logger.Fatal("snapshot.wallets is empty; nothing to record")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metricsStore, historyStore, cleanup, err := createStores(ctx, cfg)
	if err != nil {
		logger.Fatalf("Create stores: %v", err)
	}
	defer cleanup()

	eng, err := engine.New(engine.Options{
		Analysis: cfg.AnalysisConfig(),
		Profile:  cfg.Analysis.ScoreProfile,
		Logger:   logger,
		Verbose:  cfg.Verbose,
	})
	if err != nil {
		logger.Fatalf("Create engine: %v", err)
	}

	source := activity.NewClient(cfg.Provider.BaseURL,
		activity.WithAPIKey(cfg.Provider.APIKey),
		activity.WithPageSize(cfg.Provider.PageSize),
		activity.WithTimeout(cfg.Provider.Timeout),
		activity.WithExecutor(activity.NewRetryExecutor(
			activity.WithMaxRetries(cfg.Provider.MaxRetries),
		)),
	)

	recorder := snapshot.New(snapshot.Options{
		Source:   source,
		Analyzer: eng,
		Metrics:  metricsStore,
		History:  historyStore,
		Wallets:  cfg.Snapshot.Wallets,
		Schedule: cfg.Snapshot.Schedule,
		Logger:   logger,
	})

	if *once {
		if err := recorder.RecordAll(ctx); err != nil {
			logger.Fatalf("Snapshot run: %v", err)
		}
		return
	}

	go startMetricsServer(cfg.Server.MetricsAddr, logger)

	if err := recorder.Start(ctx); err != nil {
		logger.Fatalf("Start recorder: %v", err)
	}

	logger.Printf("Tracking %d wallets on schedule %q", len(cfg.Snapshot.Wallets), cfg.Snapshot.Schedule)
	<-ctx.Done()

	recorder.Stop()
	logger.Println("Shutdown complete")
}

// createStores builds the metrics and history stores for the configured
// backend. The clickhouse backend keeps wallet metrics in Postgres and
// only moves the append-only history to ClickHouse.
func createStores(ctx context.Context, cfg *config.Config) (storage.WalletMetricsStore, storage.ScoreSnapshotStore, func(), error) {
	switch cfg.Storage.Backend {
	case "memory":
		return memory.NewWalletMetricsStore(), memory.NewScoreSnapshotStore(), func() {}, nil

	case "postgres":
		pool, err := pgstore.NewPool(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, nil, fmt.Errorf("postgres migrations: %w", err)
		}
		return pgstore.NewWalletMetricsStore(pool), pgstore.NewScoreSnapshotStore(pool), pool.Close, nil

	case "clickhouse":
		pool, err := pgstore.NewPool(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, nil, fmt.Errorf("postgres migrations: %w", err)
		}
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.Storage.ClickhouseDSN)
		if err != nil {
			pool.Close()
			return nil, nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
		}
		cleanup := func() {
			conn.Close()
			pool.Close()
		}
		return pgstore.NewWalletMetricsStore(pool), chstore.NewScoreSnapshotStore(conn), cleanup, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func startMetricsServer(addr string, logger *log.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())

	logger.Printf("Metrics server on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Printf("Metrics server error: %v", err)
	}
}
