// Package main provides a one-shot wallet analysis CLI: it fetches (or
// reads) a wallet's swap activity, runs the scoring pipeline and prints
// the resulting metrics.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
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

	wallet := flag.String("wallet", "", "Wallet address to analyze (required)")
	input := flag.String("input", "", "JSON file with raw activities (skips the provider fetch)")
	configPath := flag.String("config", "config.yaml", "Path to YAML config file")
	profile := flag.String("profile", "", "Score profile override (neutral, strict)")
	asJSON := flag.Bool("json", false, "Emit the full result as JSON")
	verbose := flag.Bool("verbose", false, "Verbose pipeline logging")

	flag.Parse()

	logger := log.New(os.Stderr, "[analyze] ", log.LstdFlags)

	if *wallet == "" {
		logger.Fatal("--wallet is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("Load config: %v", err)
	}
	if *profile != "" {
		cfg.Analysis.ScoreProfile = *profile
	}
	if *verbose {
		cfg.Verbose = true
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("Invalid config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	activities, err := loadActivities(ctx, cfg, *input, *wallet)
	if err != nil {
		logger.Fatalf("Load activities: %v", err)
	}

	eng, err := engine.New(engine.Options{
		Analysis: cfg.AnalysisConfig(),
		Profile:  cfg.Analysis.ScoreProfile,
		Logger:   logger,
		Verbose:  cfg.Verbose,
	})
	if err != nil {
		logger.Fatalf("Create engine: %v", err)
	}

	res, err := eng.Analyze(ctx, *wallet, activities)
	if err != nil {
		logger.Fatalf("Analyze %s: %v", walletid.Short(*wallet), err)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			logger.Fatalf("Encode result: %v", err)
		}
		return
	}

	printReport(res)
}

// loadActivities reads activities from a file when --input is given,
// otherwise pages them from the provider API.
func loadActivities(ctx context.Context, cfg *config.Config, input, wallet string) ([]domain.RawActivity, error) {
	if input != "" {
		data, err := os.ReadFile(input)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", input, err)
		}
		var activities []domain.RawActivity
		if err := json.Unmarshal(data, &activities); err != nil {
			return nil, fmt.Errorf("parse %s: %w", input, err)
		}
		return activities, nil
	}

	if cfg.Provider.BaseURL == "" {
		return nil, fmt.Errorf("provider.base_url is required without --input")
	}

	client := activity.NewClient(cfg.Provider.BaseURL,
		activity.WithAPIKey(cfg.Provider.APIKey),
		activity.WithPageSize(cfg.Provider.PageSize),
		activity.WithTimeout(cfg.Provider.Timeout),
		activity.WithExecutor(activity.NewRetryExecutor(
			activity.WithMaxRetries(cfg.Provider.MaxRetries),
		)),
	)
	return client.WalletActivities(ctx, wallet)
}

func printReport(res *engine.Result) {
	m := res.Metrics

	fmt.Printf("Wallet %s\n", res.Wallet)
	fmt.Printf("Degen score:      %.1f / 100\n", m.DegenScore)
	fmt.Println()

	fmt.Printf("Trades:           %d (%.2f SOL volume, avg %.4f)\n", m.TotalTrades, m.TotalVolume, m.AvgTradeSize)
	fmt.Printf("Positions:        %d closed, %d open\n", m.ClosedPositions, m.OpenPositions)
	fmt.Printf("Realized PnL:     %+.4f SOL\n", m.RealizedPnL)
	fmt.Printf("Win rate:         %.1f%%\n", m.WinRate)
	fmt.Printf("Best / worst:     %+.4f / %+.4f SOL\n", m.BestTrade, m.WorstTrade)
	fmt.Printf("Streaks:          %d wins, %d losses\n", m.LongestWinStreak, m.LongestLossStreak)
	fmt.Printf("Volatility:       %.1f\n", m.VolatilityScore)
	fmt.Println()

	fmt.Printf("Rugs caught:      %d (%.4f SOL lost)\n", m.RugsCaught, m.TotalRugValue)
	fmt.Printf("Moonshots:        %d\n", m.Moonshots)
	fmt.Printf("Avg hold time:    %s\n", (time.Duration(m.AvgHoldTime) * time.Second).Round(time.Second))
	fmt.Printf("Quick flips:      %d\n", m.QuickFlips)
	fmt.Printf("Diamond hands:    %d\n", m.DiamondHands)
	fmt.Printf("Trading days:     %d\n", m.TradingDays)
	if m.FirstTradeTime > 0 {
		fmt.Printf("First trade:      %s\n", time.Unix(m.FirstTradeTime, 0).UTC().Format(time.RFC3339))
	}

	if len(m.FavoriteTokens) > 0 {
		fmt.Println()
		fmt.Println("Favorite tokens:")
		for _, tok := range m.FavoriteTokens {
			fmt.Printf("  %-44s %d trades\n", tok.Mint, tok.Count)
		}
	}

	d := res.Diagnostics
	if rejects := d.Rejects(); len(rejects) > 0 {
		fmt.Println()
		fmt.Printf("Filtered activities (%d seen):\n", d.ActivitiesSeen)
		for reason, n := range rejects {
			fmt.Printf("  %-20s %d\n", reason, n)
		}
	}
}
