package memory

import (
	"context"
	"sort"
	"sync"

	"degenscore-lab/internal/domain"
	"degenscore-lab/internal/storage"
)

// ScoreSnapshotStore is an in-memory implementation of storage.ScoreSnapshotStore.
type ScoreSnapshotStore struct {
	mu       sync.RWMutex
	byWallet map[string][]*domain.ScoreSnapshot
	seen     map[snapshotKey]struct{}
}

type snapshotKey struct {
	wallet     string
	recordedAt int64
}

// NewScoreSnapshotStore creates a new in-memory score snapshot store.
func NewScoreSnapshotStore() *ScoreSnapshotStore {
	return &ScoreSnapshotStore{
		byWallet: make(map[string][]*domain.ScoreSnapshot),
		seen:     make(map[snapshotKey]struct{}),
	}
}

// Compile-time interface check.
var _ storage.ScoreSnapshotStore = (*ScoreSnapshotStore)(nil)

// Append adds one snapshot. Returns ErrDuplicateKey if (wallet, recorded_at)
// already exists.
func (s *ScoreSnapshotStore) Append(_ context.Context, snap *domain.ScoreSnapshot) error {
	if snap == nil || snap.Wallet == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := snapshotKey{wallet: snap.Wallet, recordedAt: snap.RecordedAt}
	if _, exists := s.seen[key]; exists {
		return storage.ErrDuplicateKey
	}
	s.seen[key] = struct{}{}

	snapCopy := *snap
	s.byWallet[snap.Wallet] = append(s.byWallet[snap.Wallet], &snapCopy)
	return nil
}

// GetByWallet retrieves all snapshots for a wallet, ordered by recorded_at ASC.
func (s *ScoreSnapshotStore) GetByWallet(_ context.Context, wallet string) ([]*domain.ScoreSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snaps := s.byWallet[wallet]
	out := make([]*domain.ScoreSnapshot, 0, len(snaps))
	for _, snap := range snaps {
		snapCopy := *snap
		out = append(out, &snapCopy)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].RecordedAt < out[j].RecordedAt
	})
	return out, nil
}

// GetByTimeRange retrieves a wallet's snapshots within [start, end] inclusive.
func (s *ScoreSnapshotStore) GetByTimeRange(ctx context.Context, wallet string, start, end int64) ([]*domain.ScoreSnapshot, error) {
	all, err := s.GetByWallet(ctx, wallet)
	if err != nil {
		return nil, err
	}

	out := make([]*domain.ScoreSnapshot, 0, len(all))
	for _, snap := range all {
		if snap.RecordedAt >= start && snap.RecordedAt <= end {
			out = append(out, snap)
		}
	}
	return out, nil
}
