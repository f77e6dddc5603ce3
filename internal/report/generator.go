package report

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"degenscore-lab/internal/storage"
)

// Generator produces leaderboard reports from stored data.
type Generator struct {
	metrics storage.WalletMetricsStore
	history storage.ScoreSnapshotStore
	now     func() time.Time // injectable clock for deterministic output
}

// NewGenerator creates a report generator.
func NewGenerator(metrics storage.WalletMetricsStore, history storage.ScoreSnapshotStore) *Generator {
	return &Generator{
		metrics: metrics,
		history: history,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate builds the leaderboard over every stored wallet, ranked by
// score descending with address as the tiebreaker.
func (g *Generator) Generate(ctx context.Context) (*Report, error) {
	wallets, err := g.metrics.Wallets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}

	rows := make([]LeaderboardRow, 0, len(wallets))
	for _, wallet := range wallets {
		m, err := g.metrics.Get(ctx, wallet)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load metrics for %s: %w", wallet, err)
		}

		row := LeaderboardRow{
			Wallet:      wallet,
			DegenScore:  m.DegenScore,
			TotalTrades: m.TotalTrades,
			TotalVolume: m.TotalVolume,
			RealizedPnL: m.RealizedPnL,
			WinRate:     m.WinRate,
			RugsCaught:  m.RugsCaught,
			Moonshots:   m.Moonshots,
		}

		snaps, err := g.history.GetByWallet(ctx, wallet)
		if err != nil {
			return nil, fmt.Errorf("load history for %s: %w", wallet, err)
		}
		if n := len(snaps); n > 0 {
			row.LastRecorded = snaps[n-1].RecordedAt
			if n > 1 {
				row.ScoreDelta = snaps[n-1].DegenScore - snaps[n-2].DegenScore
			}
		}

		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].DegenScore != rows[j].DegenScore {
			return rows[i].DegenScore > rows[j].DegenScore
		}
		return rows[i].Wallet < rows[j].Wallet
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}

	return &Report{
		GeneratedAt: g.now(),
		WalletCount: len(rows),
		Rows:        rows,
	}, nil
}
