// Package main generates the wallet leaderboard from stored metrics and
// score history, as Markdown and CSV files.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"degenscore-lab/internal/config"
	"degenscore-lab/internal/report"
	"degenscore-lab/internal/storage"
	chstore "degenscore-lab/internal/storage/clickhouse"
	"degenscore-lab/internal/storage/memory"
	"degenscore-lab/internal/storage/migrations"
	pgstore "degenscore-lab/internal/storage/postgres"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "config.yaml", "Path to YAML config file")
	outputDir := flag.String("output-dir", "output", "Output directory for generated files")
	toStdout := flag.Bool("stdout", false, "Print the Markdown leaderboard instead of writing files")

	flag.Parse()

	logger := log.New(os.Stderr, "[report] ", log.LstdFlags)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("Load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("Invalid config: %v", err)
	}
	if cfg.Storage.Backend == "memory" {
		logger.Fatal("the memory backend holds no data between runs; configure postgres or clickhouse")
	}

	ctx := context.Background()

	metricsStore, historyStore, cleanup, err := createStores(ctx, cfg)
	if err != nil {
		logger.Fatalf("Create stores: %v", err)
	}
	defer cleanup()

	r, err := report.NewGenerator(metricsStore, historyStore).Generate(ctx)
	if err != nil {
		logger.Fatalf("Generate report: %v", err)
	}

	if *toStdout {
		fmt.Print(report.RenderMarkdown(r))
		return
	}

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		logger.Fatalf("Create output directory: %v", err)
	}

	mdPath := filepath.Join(*outputDir, "LEADERBOARD.md")
	if err := os.WriteFile(mdPath, []byte(report.RenderMarkdown(r)), 0o644); err != nil {
		logger.Fatalf("Write %s: %v", mdPath, err)
	}

	csvPath := filepath.Join(*outputDir, "leaderboard.csv")
	if err := os.WriteFile(csvPath, []byte(report.RenderCSV(r.Rows)), 0o644); err != nil {
		logger.Fatalf("Write %s: %v", csvPath, err)
	}

	fmt.Println("Leaderboard generated:")
	fmt.Printf("  - %s\n", mdPath)
	fmt.Printf("  - %s\n", csvPath)
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
