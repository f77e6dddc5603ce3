package position

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"degenscore-lab/internal/domain"
)

const mint = "MemeMint111111111111111111111111111111111111"

func buy(ts int64, base, asset float64) domain.Trade {
	return domain.Trade{
		Timestamp: ts, Mint: mint, Direction: domain.TradeBuy,
		BaseAmount: base, AssetAmount: asset, PricePerAsset: base / asset,
	}
}

func sell(ts int64, base, asset float64) domain.Trade {
	return domain.Trade{
		Timestamp: ts, Mint: mint, Direction: domain.TradeSell,
		BaseAmount: base, AssetAmount: asset, PricePerAsset: base / asset,
	}
}

func TestBuild_SimpleRoundTrip(t *testing.T) {
	b := NewBuilder(Config{})
	positions := b.Build([]domain.Trade{
		buy(1000, 1.0, 1000),
		sell(5000, 2.0, 1000),
	})
	require.Len(t, positions, 1)

	p := positions[0]
	assert.False(t, p.IsOpen)
	assert.Equal(t, 1.0, p.ProfitLoss)
	assert.InDelta(t, 100, p.ProfitLossPct, 1e-9)
	assert.Equal(t, int64(4000), p.HoldTime)
	assert.False(t, p.IsRug)
	assert.False(t, p.IsMoonshot)
}

func TestBuild_DCAFoldsIntoOnePosition(t *testing.T) {
	b := NewBuilder(Config{})
	positions := b.Build([]domain.Trade{
		buy(1000, 1.0, 1000), // 0.001 per unit
		buy(2000, 3.0, 1000), // 0.003 per unit
	})
	require.Len(t, positions, 1)

	p := positions[0]
	assert.True(t, p.IsOpen)
	assert.Equal(t, 4.0, p.BuyBaseTotal)
	assert.Equal(t, 2000.0, p.AssetBought)
	assert.InDelta(t, 0.002, p.EntryPrice, 1e-12) // blended
	assert.Equal(t, int64(1000), p.EntryTime)     // first buy wins
}

func TestBuild_PartialSellStaysOpen(t *testing.T) {
	b := NewBuilder(Config{})
	positions := b.Build([]domain.Trade{
		buy(1000, 1.0, 1000),
		sell(2000, 0.5, 400), // 40% sold, below close tolerance
	})
	require.Len(t, positions, 1)

	p := positions[0]
	assert.True(t, p.IsOpen)
	assert.Equal(t, 400.0, p.AssetSold)
	assert.LessOrEqual(t, p.AssetSold, p.AssetBought)
}

func TestBuild_ClosesAtTolerance(t *testing.T) {
	b := NewBuilder(Config{})
	positions := b.Build([]domain.Trade{
		buy(1000, 1.0, 1000),
		sell(2000, 1.9, 960), // 96% sold, past the 95% tolerance
	})
	require.Len(t, positions, 1)
	assert.False(t, positions[0].IsOpen)
}

func TestBuild_RugClassification(t *testing.T) {
	b := NewBuilder(Config{})
	positions := b.Build([]domain.Trade{
		buy(1000, 1.0, 1000),
		sell(2000, 0.1, 1000), // -90%
	})
	require.Len(t, positions, 1)

	p := positions[0]
	assert.False(t, p.IsOpen)
	assert.InDelta(t, -90, p.ProfitLossPct, 1e-9)
	assert.True(t, p.IsRug)
	assert.False(t, p.IsMoonshot)
}

func TestBuild_MoonshotClassification(t *testing.T) {
	b := NewBuilder(Config{})
	positions := b.Build([]domain.Trade{
		buy(1000, 1.0, 100),
		sell(2000, 11.0, 100), // +1000%
	})
	require.Len(t, positions, 1)

	p := positions[0]
	assert.InDelta(t, 1000, p.ProfitLossPct, 1e-9)
	assert.True(t, p.IsMoonshot)
	assert.False(t, p.IsRug)
}

func TestBuild_ReEntryPreservesClosedHistory(t *testing.T) {
	b := NewBuilder(Config{})
	positions := b.Build([]domain.Trade{
		buy(1000, 1.0, 1000),
		sell(2000, 2.0, 1000), // closed, +100%
		buy(3000, 1.0, 500),   // fresh position on the same mint
	})
	require.Len(t, positions, 2)

	closed := positions[0]
	assert.False(t, closed.IsOpen)
	assert.Equal(t, 1.0, closed.ProfitLoss)

	reopened := positions[1]
	assert.True(t, reopened.IsOpen)
	assert.Equal(t, int64(3000), reopened.EntryTime)
	assert.Equal(t, 1.0, reopened.BuyBaseTotal)
	assert.Zero(t, reopened.AssetSold)
}

func TestBuild_SellWithoutBuyIsSkipped(t *testing.T) {
	b := NewBuilder(Config{})
	positions := b.Build([]domain.Trade{
		sell(1000, 1.0, 1000),
	})
	assert.Empty(t, positions)
	assert.Equal(t, 1, b.OrphanSells())
}

func TestBuild_OpenSoldNeverExceedsBought(t *testing.T) {
	b := NewBuilder(Config{})
	positions := b.Build([]domain.Trade{
		buy(1000, 1.0, 1000),
		sell(2000, 0.4, 300),
		sell(3000, 0.4, 300),
	})
	require.Len(t, positions, 1)

	p := positions[0]
	require.True(t, p.IsOpen)
	assert.LessOrEqual(t, p.AssetSold, p.AssetBought)
	assert.Equal(t, int64(3000), p.ExitTime) // latest sell
}
