// Package position folds a trade sequence into per-asset holding lifecycles.
package position

import (
	"sort"

	"degenscore-lab/internal/domain"
)

// Config holds the position lifecycle thresholds.
type Config struct {
	CloseTolerance    float64 // fraction of AssetBought sold to count as closed
	RugThreshold      float64 // ProfitLossPct at or below flags a rug
	MoonshotThreshold float64 // ProfitLossPct at or above flags a moonshot
}

// ConfigFromAnalysis builds a builder Config from the shared analysis bundle.
func ConfigFromAnalysis(a domain.AnalysisConfig) Config {
	return Config{
		CloseTolerance:    a.CloseTolerance,
		RugThreshold:      a.RugThreshold,
		MoonshotThreshold: a.MoonshotThreshold,
	}
}

// Builder runs the per-mint holding state machine. Two distinct collections:
// the live map of currently open positions keyed by mint, and the
// append-only history of closed positions. A re-buy after a full close
// starts a brand-new position; the frozen record is never overwritten.
type Builder struct {
	cfg Config

	open    map[string]*domain.Position
	history []*domain.Position

	// sells arriving with no open position (incomplete history upstream)
	orphanSells int
}

// NewBuilder creates a Builder, substituting defaults for zero thresholds.
func NewBuilder(cfg Config) *Builder {
	if cfg.CloseTolerance == 0 {
		cfg.CloseTolerance = domain.DefaultCloseTolerance
	}
	if cfg.RugThreshold == 0 {
		cfg.RugThreshold = domain.DefaultRugThreshold
	}
	if cfg.MoonshotThreshold == 0 {
		cfg.MoonshotThreshold = domain.DefaultMoonshotThreshold
	}
	return &Builder{
		cfg:  cfg,
		open: make(map[string]*domain.Position),
	}
}

// Build applies every trade in order and returns all positions: the closed
// history in close order followed by still-open positions in entry order.
func (b *Builder) Build(trades []domain.Trade) []*domain.Position {
	for i := range trades {
		b.Apply(&trades[i])
	}
	return b.Positions()
}

// Apply advances the state machine for one trade.
func (b *Builder) Apply(t *domain.Trade) {
	switch t.Direction {
	case domain.TradeBuy:
		b.applyBuy(t)
	case domain.TradeSell:
		b.applySell(t)
	}
}

func (b *Builder) applyBuy(t *domain.Trade) {
	p, ok := b.open[t.Mint]
	if !ok {
		// None -> Open. A previously closed position for this mint is
		// already archived in history and stays untouched.
		b.open[t.Mint] = &domain.Position{
			Mint:         t.Mint,
			EntryTime:    t.Timestamp,
			BuyBaseTotal: t.BaseAmount,
			AssetBought:  t.AssetAmount,
			EntryPrice:   t.PricePerAsset,
			IsOpen:       true,
		}
		return
	}

	// Open -> Open: fold in as dollar-cost averaging.
	p.BuyBaseTotal += t.BaseAmount
	p.AssetBought += t.AssetAmount
	p.EntryPrice = p.BuyBaseTotal / p.AssetBought
}

func (b *Builder) applySell(t *domain.Trade) {
	p, ok := b.open[t.Mint]
	if !ok {
		// Sell without a tracked buy: upstream history was truncated.
		b.orphanSells++
		return
	}

	p.SellBaseTotal += t.BaseAmount
	p.AssetSold += t.AssetAmount
	p.ExitTime = t.Timestamp
	p.ExitPrice = p.SellBaseTotal / p.AssetSold
	p.ProfitLoss = p.SellBaseTotal - p.BuyBaseTotal
	p.ProfitLossPct = p.ProfitLoss / p.BuyBaseTotal * 100
	p.HoldTime = p.ExitTime - p.EntryTime

	// Remain open until nearly all bought units are gone; the tolerance
	// absorbs fee and rounding slippage.
	if p.AssetSold >= p.AssetBought*b.cfg.CloseTolerance {
		b.close(p)
	}
}

// close freezes a position: classify, archive, release the live slot.
func (b *Builder) close(p *domain.Position) {
	p.IsOpen = false
	if p.ProfitLossPct >= b.cfg.MoonshotThreshold {
		p.IsMoonshot = true
	}
	if p.ProfitLossPct <= b.cfg.RugThreshold {
		p.IsRug = true
	}
	b.history = append(b.history, p)
	delete(b.open, p.Mint)
}

// Positions returns closed history plus still-open positions. Open
// positions are ordered by entry time, mint ASC on ties, so repeated runs
// over identical input produce identical output.
func (b *Builder) Positions() []*domain.Position {
	stillOpen := make([]*domain.Position, 0, len(b.open))
	for _, p := range b.open {
		stillOpen = append(stillOpen, p)
	}
	sort.Slice(stillOpen, func(i, j int) bool {
		if stillOpen[i].EntryTime != stillOpen[j].EntryTime {
			return stillOpen[i].EntryTime < stillOpen[j].EntryTime
		}
		return stillOpen[i].Mint < stillOpen[j].Mint
	})

	out := make([]*domain.Position, 0, len(b.history)+len(stillOpen))
	out = append(out, b.history...)
	return append(out, stillOpen...)
}

// OrphanSells reports sells that arrived with no open position.
func (b *Builder) OrphanSells() int {
	return b.orphanSells
}
