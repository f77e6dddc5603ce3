// Package main streams a wallet's live swap activity over WebSocket and
// re-scores the wallet as each new activity arrives.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"degenscore-lab/internal/activity"
	"degenscore-lab/internal/config"
	"degenscore-lab/internal/domain"
	"degenscore-lab/internal/engine"
	"degenscore-lab/internal/walletid"
)

func main() {
	_ = godotenv.Load()

	wallet := flag.String("wallet", "", "Wallet address to watch (required)")
	configPath := flag.String("config", "config.yaml", "Path to YAML config file")
	noBackfill := flag.Bool("no-backfill", false, "Skip the initial history fetch")
	verbose := flag.Bool("verbose", false, "Verbose pipeline logging")

	flag.Parse()

	logger := log.New(os.Stderr, "[watch] ", log.LstdFlags)

	if *wallet == "" {
		logger.Fatal("--wallet is required")
	}
	if err := walletid.Validate(*wallet); err != nil {
		logger.Fatalf("Invalid wallet address: %v", err)
	}

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
	if cfg.Provider.WSEndpoint == "" {
		logger.Fatal("provider.ws_endpoint is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	eng, err := engine.New(engine.Options{
		Analysis: cfg.AnalysisConfig(),
		Profile:  cfg.Analysis.ScoreProfile,
		Logger:   logger,
		Verbose:  cfg.Verbose,
	})
	if err != nil {
		logger.Fatalf("Create engine: %v", err)
	}

	var history []domain.RawActivity
	if !*noBackfill {
		if cfg.Provider.BaseURL == "" {
			logger.Fatal("provider.base_url is required for backfill (or pass --no-backfill)")
		}
		client := activity.NewClient(cfg.Provider.BaseURL,
			activity.WithAPIKey(cfg.Provider.APIKey),
			activity.WithPageSize(cfg.Provider.PageSize),
			activity.WithTimeout(cfg.Provider.Timeout),
		)
		history, err = client.WalletActivities(ctx, *wallet)
		if err != nil {
			logger.Fatalf("Backfill: %v", err)
		}
		logger.Printf("Backfilled %d activities", len(history))
	}

	feed, err := activity.NewFeed(ctx, cfg.Provider.WSEndpoint, *wallet, nil)
	if err != nil {
		logger.Fatalf("Connect feed: %v", err)
	}
	defer feed.Close()

	rescore(ctx, eng, *wallet, history, logger)

	logger.Printf("Watching %s", walletid.Short(*wallet))
	for {
		select {
		case <-ctx.Done():
			logger.Println("Shutdown complete")
			return
		case act, ok := <-feed.Activities():
			if !ok {
				logger.Println("Feed closed")
				return
			}
			history = append(history, act)
			rescore(ctx, eng, *wallet, history, logger)
		}
	}
}

func rescore(ctx context.Context, eng *engine.Engine, wallet string, history []domain.RawActivity, logger *log.Logger) {
	res, err := eng.Analyze(ctx, wallet, history)
	if err != nil {
		logger.Printf("Analyze: %v", err)
		return
	}
	m := res.Metrics
	logger.Printf("%s score %.1f | %d trades | pnl %+.4f | win %.1f%% | rugs %d | moons %d",
		time.Now().Format(time.TimeOnly), m.DegenScore, m.TotalTrades, m.RealizedPnL, m.WinRate, m.RugsCaught, m.Moonshots)
}
