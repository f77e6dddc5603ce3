// Package metrics aggregates trades and positions into a WalletMetrics
// bundle. Every computation is deterministic and free of hidden state:
// identical inputs always produce identical output.
package metrics

import (
	"math"
	"sort"

	"degenscore-lab/internal/domain"
)

// Hold-time bucket boundaries, in seconds.
const (
	quickFlipMax    = 3600         // under an hour
	diamondHandsMin = 7 * 86400    // over seven days
	secondsPerDay   = int64(86400) // calendar-day bucket size
)

// Compute aggregates the full trade sequence and position set into a
// WalletMetrics value. The score field is left zero; composition is the
// score package's concern.
func Compute(trades []domain.Trade, positions []*domain.Position) *domain.WalletMetrics {
	m := &domain.WalletMetrics{
		TotalTrades: len(trades),
	}

	for _, t := range trades {
		m.TotalVolume += t.BaseAmount
	}
	if m.TotalTrades > 0 {
		m.AvgTradeSize = m.TotalVolume / float64(m.TotalTrades)
		m.FirstTradeTime = trades[0].Timestamp
		for _, t := range trades {
			if t.Timestamp < m.FirstTradeTime {
				m.FirstTradeTime = t.Timestamp
			}
		}
	}
	m.TradingDays = countTradingDays(trades)
	m.FavoriteTokens = topTokens(trades, 5)

	closed := make([]*domain.Position, 0, len(positions))
	for _, p := range positions {
		if p.IsOpen {
			m.OpenPositions++
			continue
		}
		closed = append(closed, p)
	}
	m.ClosedPositions = len(closed)

	for _, p := range closed {
		m.RealizedPnL += p.ProfitLoss
	}
	// Open positions are not marked to market: no live pricing feed.
	m.UnrealizedPnL = 0
	m.ProfitLoss = m.RealizedPnL + m.UnrealizedPnL

	if len(closed) > 0 {
		wins := 0
		m.BestTrade = closed[0].ProfitLoss
		m.WorstTrade = closed[0].ProfitLoss
		var holdTotal float64
		for _, p := range closed {
			// Strictly positive: a breakeven close is not a win.
			if p.ProfitLoss > 0 {
				wins++
			}
			if p.ProfitLoss > m.BestTrade {
				m.BestTrade = p.ProfitLoss
			}
			if p.ProfitLoss < m.WorstTrade {
				m.WorstTrade = p.ProfitLoss
			}
			holdTotal += float64(p.HoldTime)

			if p.IsRug {
				m.RugsCaught++
				m.TotalRugValue += math.Abs(p.ProfitLoss)
			}
			if p.IsMoonshot {
				m.Moonshots++
			}
			if p.HoldTime < quickFlipMax {
				m.QuickFlips++
			}
			if p.HoldTime > diamondHandsMin {
				m.DiamondHands++
			}
		}
		m.WinRate = float64(wins) / float64(len(closed)) * 100
		m.RugsSurvived = len(closed) - m.RugsCaught
		m.AvgHoldTime = holdTotal / float64(len(closed))
	}

	m.LongestWinStreak, m.LongestLossStreak = computeStreaks(closed)
	m.VolatilityScore = computeVolatility(closed)

	return m
}

// countTradingDays counts distinct unix-day buckets touched by any trade.
func countTradingDays(trades []domain.Trade) int {
	days := make(map[int64]struct{}, len(trades))
	for _, t := range trades {
		days[t.Timestamp/secondsPerDay] = struct{}{}
	}
	return len(days)
}

// computeStreaks walks closed positions in exit order and tracks the longest
// win and loss runs. A breakeven close extends the loss streak.
func computeStreaks(closed []*domain.Position) (longestWin, longestLoss int) {
	ordered := make([]*domain.Position, len(closed))
	copy(ordered, closed)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].ExitTime != ordered[j].ExitTime {
			return ordered[i].ExitTime < ordered[j].ExitTime
		}
		return ordered[i].Mint < ordered[j].Mint
	})

	curWin, curLoss := 0, 0
	for _, p := range ordered {
		if p.ProfitLoss > 0 {
			curWin++
			curLoss = 0
			if curWin > longestWin {
				longestWin = curWin
			}
		} else {
			curLoss++
			curWin = 0
			if curLoss > longestLoss {
				longestLoss = curLoss
			}
		}
	}
	return longestWin, longestLoss
}

// computeVolatility is a bounded dispersion proxy: the population standard
// deviation of close returns, capped at 100.
func computeVolatility(closed []*domain.Position) float64 {
	n := len(closed)
	if n == 0 {
		return 0
	}

	mean := 0.0
	for _, p := range closed {
		mean += p.ProfitLossPct
	}
	mean /= float64(n)

	variance := 0.0
	for _, p := range closed {
		diff := p.ProfitLossPct - mean
		variance += diff * diff
	}
	variance /= float64(n)

	return math.Min(math.Sqrt(variance), 100)
}

// topTokens ranks mints by trade count, count DESC then mint ASC on ties so
// the ranking is stable across runs.
func topTokens(trades []domain.Trade, limit int) []domain.TokenActivity {
	counts := make(map[string]int)
	for _, t := range trades {
		counts[t.Mint]++
	}
	ranked := make([]domain.TokenActivity, 0, len(counts))
	for mint, count := range counts {
		ranked = append(ranked, domain.TokenActivity{
			Mint:   mint,
			Symbol: shortMint(mint),
			Count:  count,
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Mint < ranked[j].Mint
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// shortMint is the placeholder symbol until a metadata collaborator
// resolves the real one.
func shortMint(mint string) string {
	if len(mint) <= 8 {
		return mint
	}
	return mint[:8]
}
