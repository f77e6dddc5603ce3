// Package memory provides in-memory store implementations for tests and
// single-process runs.
package memory

import (
	"context"
	"sort"
	"sync"

	"degenscore-lab/internal/domain"
	"degenscore-lab/internal/storage"
)

// WalletMetricsStore is an in-memory implementation of storage.WalletMetricsStore.
type WalletMetricsStore struct {
	mu       sync.RWMutex
	byWallet map[string]*domain.WalletMetrics
}

// NewWalletMetricsStore creates a new in-memory wallet metrics store.
func NewWalletMetricsStore() *WalletMetricsStore {
	return &WalletMetricsStore{
		byWallet: make(map[string]*domain.WalletMetrics),
	}
}

// Compile-time interface check.
var _ storage.WalletMetricsStore = (*WalletMetricsStore)(nil)

// Upsert stores the metrics for a wallet, replacing any previous row.
func (s *WalletMetricsStore) Upsert(_ context.Context, wallet string, m *domain.WalletMetrics) error {
	if wallet == "" || m == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.byWallet[wallet] = copyMetrics(m)
	return nil
}

// Get retrieves the latest metrics for a wallet.
func (s *WalletMetricsStore) Get(_ context.Context, wallet string) (*domain.WalletMetrics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, exists := s.byWallet[wallet]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return copyMetrics(m), nil
}

// Wallets lists all analyzed wallets, sorted ascending.
func (s *WalletMetricsStore) Wallets(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wallets := make([]string, 0, len(s.byWallet))
	for w := range s.byWallet {
		wallets = append(wallets, w)
	}
	sort.Strings(wallets)
	return wallets, nil
}

// copyMetrics deep-copies so callers cannot mutate stored state.
func copyMetrics(m *domain.WalletMetrics) *domain.WalletMetrics {
	out := *m
	out.FavoriteTokens = append([]domain.TokenActivity(nil), m.FavoriteTokens...)
	return &out
}
