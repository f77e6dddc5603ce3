// Package storage defines the persistence contracts for analysis results.
package storage

import (
	"context"

	"degenscore-lab/internal/domain"
)

// WalletMetricsStore provides access to the latest analysis result per
// wallet. One row per wallet; re-analysis replaces it.
type WalletMetricsStore interface {
	// Upsert stores the metrics for a wallet, replacing any previous row.
	Upsert(ctx context.Context, wallet string, m *domain.WalletMetrics) error

	// Get retrieves the latest metrics for a wallet. Returns ErrNotFound
	// if the wallet was never analyzed.
	Get(ctx context.Context, wallet string) (*domain.WalletMetrics, error)

	// Wallets lists all analyzed wallets, sorted ascending.
	Wallets(ctx context.Context) ([]string, error)
}

// ScoreSnapshotStore provides access to the append-only score history.
type ScoreSnapshotStore interface {
	// Append adds one snapshot. Returns ErrDuplicateKey if a snapshot for
	// (wallet, recorded_at) already exists.
	Append(ctx context.Context, s *domain.ScoreSnapshot) error

	// GetByWallet retrieves all snapshots for a wallet, ordered by
	// recorded_at ASC.
	GetByWallet(ctx context.Context, wallet string) ([]*domain.ScoreSnapshot, error)

	// GetByTimeRange retrieves a wallet's snapshots within [start, end]
	// (inclusive), ordered by recorded_at ASC.
	GetByTimeRange(ctx context.Context, wallet string, start, end int64) ([]*domain.ScoreSnapshot, error)
}
