package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"degenscore-lab/internal/domain"
	"degenscore-lab/internal/storage"
)

// WalletMetricsStore implements storage.WalletMetricsStore using PostgreSQL.
type WalletMetricsStore struct {
	pool *Pool
}

// NewWalletMetricsStore creates a new WalletMetricsStore.
func NewWalletMetricsStore(pool *Pool) *WalletMetricsStore {
	return &WalletMetricsStore{pool: pool}
}

// Compile-time interface check.
var _ storage.WalletMetricsStore = (*WalletMetricsStore)(nil)

// Upsert stores the metrics for a wallet, replacing any previous row.
func (s *WalletMetricsStore) Upsert(ctx context.Context, wallet string, m *domain.WalletMetrics) error {
	if wallet == "" || m == nil {
		return storage.ErrInvalidInput
	}

	favorites, err := json.Marshal(m.FavoriteTokens)
	if err != nil {
		return fmt.Errorf("marshal favorite tokens: %w", err)
	}

	query := `
		INSERT INTO wallet_metrics (
			wallet, degen_score,
			total_trades, total_volume, avg_trade_size,
			profit_loss, realized_pnl, unrealized_pnl,
			win_rate, best_trade, worst_trade,
			trading_days, first_trade_time,
			rugs_caught, rugs_survived, total_rug_value,
			moonshots, avg_hold_time, quick_flips, diamond_hands,
			longest_win_streak, longest_loss_streak, volatility_score,
			open_positions, closed_positions, favorite_tokens,
			updated_at
		) VALUES (
			$1, $2,
			$3, $4, $5,
			$6, $7, $8,
			$9, $10, $11,
			$12, $13,
			$14, $15, $16,
			$17, $18, $19, $20,
			$21, $22, $23,
			$24, $25, $26,
			now()
		)
		ON CONFLICT (wallet) DO UPDATE SET
			degen_score = EXCLUDED.degen_score,
			total_trades = EXCLUDED.total_trades,
			total_volume = EXCLUDED.total_volume,
			avg_trade_size = EXCLUDED.avg_trade_size,
			profit_loss = EXCLUDED.profit_loss,
			realized_pnl = EXCLUDED.realized_pnl,
			unrealized_pnl = EXCLUDED.unrealized_pnl,
			win_rate = EXCLUDED.win_rate,
			best_trade = EXCLUDED.best_trade,
			worst_trade = EXCLUDED.worst_trade,
			trading_days = EXCLUDED.trading_days,
			first_trade_time = EXCLUDED.first_trade_time,
			rugs_caught = EXCLUDED.rugs_caught,
			rugs_survived = EXCLUDED.rugs_survived,
			total_rug_value = EXCLUDED.total_rug_value,
			moonshots = EXCLUDED.moonshots,
			avg_hold_time = EXCLUDED.avg_hold_time,
			quick_flips = EXCLUDED.quick_flips,
			diamond_hands = EXCLUDED.diamond_hands,
			longest_win_streak = EXCLUDED.longest_win_streak,
			longest_loss_streak = EXCLUDED.longest_loss_streak,
			volatility_score = EXCLUDED.volatility_score,
			open_positions = EXCLUDED.open_positions,
			closed_positions = EXCLUDED.closed_positions,
			favorite_tokens = EXCLUDED.favorite_tokens,
			updated_at = now()
	`

	_, err = s.pool.Exec(ctx, query,
		wallet, m.DegenScore,
		m.TotalTrades, m.TotalVolume, m.AvgTradeSize,
		m.ProfitLoss, m.RealizedPnL, m.UnrealizedPnL,
		m.WinRate, m.BestTrade, m.WorstTrade,
		m.TradingDays, m.FirstTradeTime,
		m.RugsCaught, m.RugsSurvived, m.TotalRugValue,
		m.Moonshots, m.AvgHoldTime, m.QuickFlips, m.DiamondHands,
		m.LongestWinStreak, m.LongestLossStreak, m.VolatilityScore,
		m.OpenPositions, m.ClosedPositions, favorites,
	)
	if err != nil {
		return fmt.Errorf("upsert wallet metrics: %w", err)
	}
	return nil
}

// Get retrieves the latest metrics for a wallet. Returns ErrNotFound if
// the wallet was never analyzed.
func (s *WalletMetricsStore) Get(ctx context.Context, wallet string) (*domain.WalletMetrics, error) {
	query := `
		SELECT
			degen_score,
			total_trades, total_volume, avg_trade_size,
			profit_loss, realized_pnl, unrealized_pnl,
			win_rate, best_trade, worst_trade,
			trading_days, first_trade_time,
			rugs_caught, rugs_survived, total_rug_value,
			moonshots, avg_hold_time, quick_flips, diamond_hands,
			longest_win_streak, longest_loss_streak, volatility_score,
			open_positions, closed_positions, favorite_tokens
		FROM wallet_metrics
		WHERE wallet = $1
	`

	var m domain.WalletMetrics
	var favorites []byte
	err := s.pool.QueryRow(ctx, query, wallet).Scan(
		&m.DegenScore,
		&m.TotalTrades, &m.TotalVolume, &m.AvgTradeSize,
		&m.ProfitLoss, &m.RealizedPnL, &m.UnrealizedPnL,
		&m.WinRate, &m.BestTrade, &m.WorstTrade,
		&m.TradingDays, &m.FirstTradeTime,
		&m.RugsCaught, &m.RugsSurvived, &m.TotalRugValue,
		&m.Moonshots, &m.AvgHoldTime, &m.QuickFlips, &m.DiamondHands,
		&m.LongestWinStreak, &m.LongestLossStreak, &m.VolatilityScore,
		&m.OpenPositions, &m.ClosedPositions, &favorites,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get wallet metrics: %w", err)
	}

	if len(favorites) > 0 {
		if err := json.Unmarshal(favorites, &m.FavoriteTokens); err != nil {
			return nil, fmt.Errorf("unmarshal favorite tokens: %w", err)
		}
	}

	return &m, nil
}

// Wallets lists all analyzed wallets, sorted ascending.
func (s *WalletMetricsStore) Wallets(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT wallet FROM wallet_metrics ORDER BY wallet ASC`)
	if err != nil {
		return nil, fmt.Errorf("query wallets: %w", err)
	}
	defer rows.Close()

	var wallets []string
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, fmt.Errorf("scan wallet row: %w", err)
		}
		wallets = append(wallets, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallet rows: %w", err)
	}
	return wallets, nil
}
