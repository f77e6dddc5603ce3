package score

import (
	"math"

	"degenscore-lab/internal/domain"
)

// Compose applies the weighting profile to aggregated metrics and returns
// the final score, clamped to [0,100]. Pure and deterministic: identical
// metrics always yield an identical score regardless of wall-clock time or
// call order.
func Compose(m *domain.WalletMetrics, p Profile) float64 {
	s := p.Baseline

	s += math.Min(m.WinRate/100*p.WinWeight, p.WinCap)
	s += math.Min(m.TotalVolume/p.VolumeNormalizer, 1) * p.VolumeWeight
	s += math.Min(float64(m.Moonshots)*p.MoonshotUnit, p.MoonshotCap)
	s -= math.Min(float64(m.RugsCaught)*p.RugUnit, p.RugCap)

	switch {
	case m.TradingDays > p.ConsistencyLongDays:
		s += p.ConsistencyLong
	case m.TradingDays > p.ConsistencyShortDays:
		s += p.ConsistencyShort
	}

	profitability := m.RealizedPnL / math.Max(m.TotalVolume, 1) * 100
	s += clamp(profitability, -p.ProfitabilityCap, p.ProfitabilityCap)

	return clamp(s, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
