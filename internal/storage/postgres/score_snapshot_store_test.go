package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"degenscore-lab/internal/domain"
	"degenscore-lab/internal/storage"
)

func snapshot(wallet string, at int64, score float64) *domain.ScoreSnapshot {
	return &domain.ScoreSnapshot{
		Wallet:      wallet,
		RecordedAt:  at,
		DegenScore:  score,
		TotalTrades: 7,
		TotalVolume: 42.5,
		RealizedPnL: 1.5,
		WinRate:     60,
	}
}

func TestScoreSnapshotStore_AppendAndGetByWallet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewScoreSnapshotStore(pool)

	require.NoError(t, store.Append(ctx, snapshot("wallet-1", 2_000, 55)))
	require.NoError(t, store.Append(ctx, snapshot("wallet-1", 1_000, 50)))
	require.NoError(t, store.Append(ctx, snapshot("wallet-2", 1_500, 70)))

	got, err := store.GetByWallet(ctx, "wallet-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1_000), got[0].RecordedAt)
	assert.Equal(t, 50.0, got[0].DegenScore)
	assert.Equal(t, int64(2_000), got[1].RecordedAt)
}

func TestScoreSnapshotStore_DuplicateKey(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewScoreSnapshotStore(pool)

	require.NoError(t, store.Append(ctx, snapshot("wallet-1", 1_000, 50)))
	err := store.Append(ctx, snapshot("wallet-1", 1_000, 60))
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestScoreSnapshotStore_GetByTimeRange(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewScoreSnapshotStore(pool)

	for i := int64(1); i <= 5; i++ {
		require.NoError(t, store.Append(ctx, snapshot("wallet-1", i*1_000, 50)))
	}

	got, err := store.GetByTimeRange(ctx, "wallet-1", 2_000, 4_000)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, int64(2_000), got[0].RecordedAt)
	assert.Equal(t, int64(4_000), got[2].RecordedAt)
}
