package engine

import (
	"context"
	"fmt"
	"io"
	"log"
	"testing"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"degenscore-lab/internal/domain"
	"degenscore-lab/internal/score"
	"degenscore-lab/internal/walletid"
)

const memeMint = "MEMEcoinMintAddr11111111111111111111111111"

func testWallet() string {
	return base58.Encode(edwards25519.NewGeneratorPoint().Bytes())
}

func newTestEngine(t *testing.T, opts Options) *Engine {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	e, err := New(opts)
	require.NoError(t, err)
	return e
}

// swapActivity builds a structured swap record with zero-decimal amounts.
func swapActivity(ts int64, mintIn string, amountIn float64, mintOut string, amountOut float64) domain.RawActivity {
	return domain.RawActivity{
		Signature: fmt.Sprintf("sig-%d", ts),
		Timestamp: ts,
		Type:      domain.ActivityTypeSwap,
		Swap: &domain.SwapInfo{
			MintIn:    mintIn,
			AmountIn:  amountIn,
			MintOut:   mintOut,
			AmountOut: amountOut,
		},
	}
}

func buy(ts int64, base float64, mint string, asset float64) domain.RawActivity {
	return swapActivity(ts, domain.BaseMint, base, mint, asset)
}

func sell(ts int64, mint string, asset float64, base float64) domain.RawActivity {
	return swapActivity(ts, mint, asset, domain.BaseMint, base)
}

func TestNew_UnknownProfile(t *testing.T) {
	_, err := New(Options{Profile: "yolo"})
	assert.ErrorIs(t, err, score.ErrUnknownProfile)
}

func TestAnalyze_InvalidWallet(t *testing.T) {
	e := newTestEngine(t, Options{})
	_, err := e.Analyze(context.Background(), "not-a-wallet", nil)
	assert.ErrorIs(t, err, walletid.ErrInvalidAddress)

	_, err = e.Analyze(context.Background(), "", nil)
	assert.ErrorIs(t, err, walletid.ErrInvalidAddress)
}

func TestAnalyze_EmptyHistoryReturnsBaseline(t *testing.T) {
	e := newTestEngine(t, Options{})

	res, err := e.Analyze(context.Background(), testWallet(), nil)
	require.NoError(t, err)

	assert.Equal(t, 50.0, res.Metrics.DegenScore)
	assert.Zero(t, res.Metrics.TotalTrades)
	assert.Empty(t, res.Trades)
	assert.Empty(t, res.Positions)
}

func TestAnalyze_ProfitableRoundTrip(t *testing.T) {
	e := newTestEngine(t, Options{})

	// Buys 1000 units for 1 base, sells them all for 2 base.
	res, err := e.Analyze(context.Background(), testWallet(), []domain.RawActivity{
		buy(1_000, 1, memeMint, 1000),
		sell(2_000, memeMint, 1000, 2),
	})
	require.NoError(t, err)

	m := res.Metrics
	assert.Equal(t, 2, m.TotalTrades)
	assert.Equal(t, 1, m.ClosedPositions)
	assert.Zero(t, m.OpenPositions)
	assert.InDelta(t, 1.0, m.RealizedPnL, 1e-9)
	assert.Equal(t, 100.0, m.WinRate)

	require.Len(t, res.Positions, 1)
	assert.InDelta(t, 100.0, res.Positions[0].ProfitLossPct, 1e-9)
	assert.Greater(t, m.DegenScore, 50.0)
}

func TestAnalyze_RugDetected(t *testing.T) {
	e := newTestEngine(t, Options{})

	res, err := e.Analyze(context.Background(), testWallet(), []domain.RawActivity{
		buy(1_000, 1, memeMint, 1000),
		sell(2_000, memeMint, 1000, 0.1),
	})
	require.NoError(t, err)

	m := res.Metrics
	assert.Equal(t, 1, m.RugsCaught)
	assert.Zero(t, m.Moonshots)
	require.Len(t, res.Positions, 1)
	assert.True(t, res.Positions[0].IsRug)
	assert.InDelta(t, -90.0, res.Positions[0].ProfitLossPct, 1e-9)
}

func TestAnalyze_MoonshotDetected(t *testing.T) {
	e := newTestEngine(t, Options{})

	res, err := e.Analyze(context.Background(), testWallet(), []domain.RawActivity{
		buy(1_000, 1, memeMint, 100),
		sell(2_000, memeMint, 100, 11),
	})
	require.NoError(t, err)

	m := res.Metrics
	assert.Equal(t, 1, m.Moonshots)
	assert.Zero(t, m.RugsCaught)
	require.Len(t, res.Positions, 1)
	assert.True(t, res.Positions[0].IsMoonshot)
	assert.InDelta(t, 1000.0, res.Positions[0].ProfitLossPct, 1e-9)
}

func TestAnalyze_ZeroAmountNeverProducesNaN(t *testing.T) {
	e := newTestEngine(t, Options{})

	res, err := e.Analyze(context.Background(), testWallet(), []domain.RawActivity{
		buy(1_000, 1, memeMint, 0),
		sell(2_000, memeMint, 0, 1),
	})
	require.NoError(t, err)

	assert.Empty(t, res.Trades)
	assert.Equal(t, 2, res.Diagnostics.ZeroAmount)
	assert.Equal(t, 50.0, res.Metrics.DegenScore)
	assert.False(t, res.Metrics.WinRate != res.Metrics.WinRate, "win rate is NaN")
}

func TestAnalyze_ReentryKeepsClosedHistory(t *testing.T) {
	e := newTestEngine(t, Options{})

	res, err := e.Analyze(context.Background(), testWallet(), []domain.RawActivity{
		buy(1_000, 1, memeMint, 100),
		sell(2_000, memeMint, 100, 2),
		buy(3_000, 1, memeMint, 50),
		sell(4_000, memeMint, 50, 0.5),
	})
	require.NoError(t, err)

	m := res.Metrics
	assert.Equal(t, 4, m.TotalTrades)
	assert.Equal(t, 2, m.ClosedPositions)
	require.Len(t, res.Positions, 2)
	assert.InDelta(t, 1.0, res.Positions[0].ProfitLoss, 1e-9)
	assert.InDelta(t, -0.5, res.Positions[1].ProfitLoss, 1e-9)
}

func TestAnalyze_ProgressCheckpoints(t *testing.T) {
	var stages []string
	e := newTestEngine(t, Options{
		Progress: func(stage string) { stages = append(stages, stage) },
	})

	_, err := e.Analyze(context.Background(), testWallet(), []domain.RawActivity{
		buy(1_000, 1, memeMint, 100),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		StageValidated, StageExtracted, StagePositions, StageAggregated, StageScored,
	}, stages)
}

func TestAnalyze_ProgressPanicIsRecovered(t *testing.T) {
	e := newTestEngine(t, Options{
		Progress: func(stage string) { panic("observer bug") },
	})

	res, err := e.Analyze(context.Background(), testWallet(), []domain.RawActivity{
		buy(1_000, 1, memeMint, 100),
		sell(2_000, memeMint, 100, 2),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Metrics.TotalTrades)
}

func TestAnalyze_CanceledContext(t *testing.T) {
	e := newTestEngine(t, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Analyze(ctx, testWallet(), []domain.RawActivity{
		buy(1_000, 1, memeMint, 100),
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyze_Deterministic(t *testing.T) {
	e := newTestEngine(t, Options{})
	wallet := testWallet()
	activities := []domain.RawActivity{
		buy(1_000, 1, memeMint, 1000),
		sell(90_000, memeMint, 1000, 0.1),
		buy(100_000, 1, "AAAAmint", 100),
		sell(200_000, "AAAAmint", 100, 11),
		buy(300_000, 2, "BBBBmint", 500), // never sold, stays open
		sell(400_000, "CCCCmint", 10, 1), // sell without a buy
	}

	first, err := e.Analyze(context.Background(), wallet, activities)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := e.Analyze(context.Background(), wallet, activities)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestAnalyze_StrictProfileBaseline(t *testing.T) {
	e := newTestEngine(t, Options{Profile: score.ProfileStrict})

	res, err := e.Analyze(context.Background(), testWallet(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Metrics.DegenScore)
}
