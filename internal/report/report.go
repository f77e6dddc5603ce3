// Package report renders a leaderboard of analyzed wallets from the
// metrics and snapshot stores.
package report

import "time"

// Report is the full leaderboard document.
type Report struct {
	GeneratedAt time.Time
	WalletCount int
	Rows        []LeaderboardRow
}

// LeaderboardRow is one wallet's line on the leaderboard, ordered by
// score descending.
type LeaderboardRow struct {
	Rank       int
	Wallet     string
	DegenScore float64

	TotalTrades int
	TotalVolume float64
	RealizedPnL float64
	WinRate     float64
	RugsCaught  int
	Moonshots   int

	// ScoreDelta is the change since the previous recorded snapshot;
	// zero when fewer than two snapshots exist.
	ScoreDelta   float64
	LastRecorded int64 // unix seconds, 0 when no snapshot exists
}
