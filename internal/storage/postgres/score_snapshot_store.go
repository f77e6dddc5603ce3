package postgres

import (
	"context"
	"fmt"

	"degenscore-lab/internal/domain"
	"degenscore-lab/internal/storage"
)

// ScoreSnapshotStore implements storage.ScoreSnapshotStore using PostgreSQL.
type ScoreSnapshotStore struct {
	pool *Pool
}

// NewScoreSnapshotStore creates a new ScoreSnapshotStore.
func NewScoreSnapshotStore(pool *Pool) *ScoreSnapshotStore {
	return &ScoreSnapshotStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ScoreSnapshotStore = (*ScoreSnapshotStore)(nil)

// Append adds one snapshot. Returns ErrDuplicateKey if (wallet, recorded_at)
// already exists.
func (s *ScoreSnapshotStore) Append(ctx context.Context, snap *domain.ScoreSnapshot) error {
	if snap == nil || snap.Wallet == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO score_snapshots (
			wallet, recorded_at, degen_score, total_trades, total_volume,
			realized_pnl, win_rate
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.pool.Exec(ctx, query,
		snap.Wallet, snap.RecordedAt, snap.DegenScore, snap.TotalTrades,
		snap.TotalVolume, snap.RealizedPnL, snap.WinRate,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert score snapshot: %w", err)
	}
	return nil
}

// GetByWallet retrieves all snapshots for a wallet, ordered by recorded_at ASC.
func (s *ScoreSnapshotStore) GetByWallet(ctx context.Context, wallet string) ([]*domain.ScoreSnapshot, error) {
	query := `
		SELECT wallet, recorded_at, degen_score, total_trades, total_volume,
		       realized_pnl, win_rate
		FROM score_snapshots
		WHERE wallet = $1
		ORDER BY recorded_at ASC
	`
	return s.querySnapshots(ctx, query, wallet)
}

// GetByTimeRange retrieves a wallet's snapshots within [start, end] inclusive.
func (s *ScoreSnapshotStore) GetByTimeRange(ctx context.Context, wallet string, start, end int64) ([]*domain.ScoreSnapshot, error) {
	query := `
		SELECT wallet, recorded_at, degen_score, total_trades, total_volume,
		       realized_pnl, win_rate
		FROM score_snapshots
		WHERE wallet = $1 AND recorded_at >= $2 AND recorded_at <= $3
		ORDER BY recorded_at ASC
	`
	return s.querySnapshots(ctx, query, wallet, start, end)
}

func (s *ScoreSnapshotStore) querySnapshots(ctx context.Context, query string, args ...interface{}) ([]*domain.ScoreSnapshot, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query score snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []*domain.ScoreSnapshot
	for rows.Next() {
		var snap domain.ScoreSnapshot
		err := rows.Scan(
			&snap.Wallet, &snap.RecordedAt, &snap.DegenScore, &snap.TotalTrades,
			&snap.TotalVolume, &snap.RealizedPnL, &snap.WinRate,
		)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		snaps = append(snaps, &snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot rows: %w", err)
	}
	return snaps, nil
}
