package clickhouse

import (
	"context"
	"fmt"

	"degenscore-lab/internal/domain"
	"degenscore-lab/internal/storage"
)

// ScoreSnapshotStore implements storage.ScoreSnapshotStore using ClickHouse.
type ScoreSnapshotStore struct {
	conn *Conn
}

// NewScoreSnapshotStore creates a new ScoreSnapshotStore.
func NewScoreSnapshotStore(conn *Conn) *ScoreSnapshotStore {
	return &ScoreSnapshotStore{conn: conn}
}

// Compile-time interface check.
var _ storage.ScoreSnapshotStore = (*ScoreSnapshotStore)(nil)

// Append adds one snapshot. MergeTree does not enforce uniqueness, so the
// append-only contract is checked explicitly before insert.
func (s *ScoreSnapshotStore) Append(ctx context.Context, snap *domain.ScoreSnapshot) error {
	if snap == nil || snap.Wallet == "" {
		return storage.ErrInvalidInput
	}

	exists, err := s.exists(ctx, snap.Wallet, snap.RecordedAt)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	query := `
		INSERT INTO score_snapshots (
			wallet, recorded_at, degen_score, total_trades, total_volume,
			realized_pnl, win_rate
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	err = s.conn.Exec(ctx, query,
		snap.Wallet, snap.RecordedAt, snap.DegenScore, int32(snap.TotalTrades),
		snap.TotalVolume, snap.RealizedPnL, snap.WinRate,
	)
	if err != nil {
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
		WHERE wallet = ?
		ORDER BY recorded_at ASC
	`

	rows, err := s.conn.Query(ctx, query, wallet)
	if err != nil {
		return nil, fmt.Errorf("query by wallet: %w", err)
	}
	defer rows.Close()

	return scanSnapshots(rows)
}

// GetByTimeRange retrieves a wallet's snapshots within [start, end] inclusive.
func (s *ScoreSnapshotStore) GetByTimeRange(ctx context.Context, wallet string, start, end int64) ([]*domain.ScoreSnapshot, error) {
	query := `
		SELECT wallet, recorded_at, degen_score, total_trades, total_volume,
		       realized_pnl, win_rate
		FROM score_snapshots
		WHERE wallet = ? AND recorded_at >= ? AND recorded_at <= ?
		ORDER BY recorded_at ASC
	`

	rows, err := s.conn.Query(ctx, query, wallet, start, end)
	if err != nil {
		return nil, fmt.Errorf("query by time range: %w", err)
	}
	defer rows.Close()

	return scanSnapshots(rows)
}

// exists checks if a snapshot with the given key exists.
func (s *ScoreSnapshotStore) exists(ctx context.Context, wallet string, recordedAt int64) (bool, error) {
	query := `
		SELECT count(*) FROM score_snapshots
		WHERE wallet = ? AND recorded_at = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, wallet, recordedAt).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// chRows is the row subset needed for scanning.
type chRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// scanSnapshots scans multiple rows into a slice.
func scanSnapshots(rows chRows) ([]*domain.ScoreSnapshot, error) {
	var snaps []*domain.ScoreSnapshot

	for rows.Next() {
		var snap domain.ScoreSnapshot
		var totalTrades int32
		err := rows.Scan(
			&snap.Wallet, &snap.RecordedAt, &snap.DegenScore, &totalTrades,
			&snap.TotalVolume, &snap.RealizedPnL, &snap.WinRate,
		)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		snap.TotalTrades = int(totalTrades)
		snaps = append(snaps, &snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot rows: %w", err)
	}

	return snaps, nil
}
