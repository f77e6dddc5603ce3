package extract

import (
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"degenscore-lab/internal/domain"
)

const (
	testWallet = "WaLLet1111111111111111111111111111111111111"
	memeMint   = "MemeMint111111111111111111111111111111111111"
	otherMint  = "OtherMint11111111111111111111111111111111111"
)

func testConfig() Config {
	return ConfigFromAnalysis(testWallet, domain.DefaultAnalysisConfig())
}

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()
	e, err := New(testConfig(), WithLogger(log.New(io.Discard, "", 0)))
	require.NoError(t, err)
	return e
}

// swapActivity builds a structured swap where the wallet pays amountIn of
// mintIn and receives amountOut of mintOut, amounts already decimal-scaled.
func swapActivity(ts int64, mintIn string, amountIn float64, mintOut string, amountOut float64) domain.RawActivity {
	return domain.RawActivity{
		Signature: "sig",
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

func TestNew_MissingWallet(t *testing.T) {
	cfg := testConfig()
	cfg.Wallet = ""
	_, err := New(cfg)
	require.ErrorIs(t, err, ErrMissingWallet)
}

func TestExtract_BuyAndSellDirections(t *testing.T) {
	e := newTestExtractor(t)

	trades := e.Extract([]domain.RawActivity{
		swapActivity(100, domain.BaseMint, 1.0, memeMint, 1000),
		swapActivity(200, memeMint, 1000, domain.BaseMint, 2.0),
	})
	require.Len(t, trades, 2)

	buy := trades[0]
	assert.Equal(t, domain.TradeBuy, buy.Direction)
	assert.Equal(t, memeMint, buy.Mint)
	assert.Equal(t, 1.0, buy.BaseAmount)
	assert.Equal(t, 1000.0, buy.AssetAmount)
	assert.InDelta(t, 0.001, buy.PricePerAsset, 1e-12)

	sell := trades[1]
	assert.Equal(t, domain.TradeSell, sell.Direction)
	assert.Equal(t, 2.0, sell.BaseAmount)
}

func TestExtract_OutputNeverLongerThanInput(t *testing.T) {
	e := newTestExtractor(t)

	input := []domain.RawActivity{
		swapActivity(1, domain.BaseMint, 1.0, memeMint, 1000),
		{Signature: "transfer", Timestamp: 2, Type: "TRANSFER"},
		swapActivity(3, memeMint, 500, otherMint, 500), // token-to-token
	}
	trades := e.Extract(input)
	assert.LessOrEqual(t, len(trades), len(input))
	assert.Len(t, trades, 1)
}

func TestExtract_DropsTokenToToken(t *testing.T) {
	e := newTestExtractor(t)

	trades := e.Extract([]domain.RawActivity{
		swapActivity(1, memeMint, 100, otherMint, 200),
	})
	assert.Empty(t, trades)
	assert.Equal(t, 1, e.Diagnostics().TokenToToken)
}

func TestExtract_DropsExcludedMints(t *testing.T) {
	e := newTestExtractor(t)

	usdc := "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	trades := e.Extract([]domain.RawActivity{
		swapActivity(1, domain.BaseMint, 1.0, usdc, 150),
	})
	assert.Empty(t, trades)
	assert.Equal(t, 1, e.Diagnostics().ExcludedMint)
}

func TestExtract_ZeroAssetAmountNeverProducesTrade(t *testing.T) {
	e := newTestExtractor(t)

	// A zero-denominator leg must never survive into the trade sequence.
	trades := e.Extract([]domain.RawActivity{
		swapActivity(1, domain.BaseMint, 1.0, memeMint, 0),
	})
	assert.Empty(t, trades)
	assert.Equal(t, 1, e.Diagnostics().ZeroAmount)
}

func TestExtract_DustAndOversizeGuards(t *testing.T) {
	e := newTestExtractor(t)

	trades := e.Extract([]domain.RawActivity{
		swapActivity(1, domain.BaseMint, 0.0000001, memeMint, 10), // dust
		swapActivity(2, domain.BaseMint, 5000, memeMint, 5e9),    // whale guard
	})
	assert.Empty(t, trades)
	assert.Equal(t, 1, e.Diagnostics().Dust)
	assert.Equal(t, 1, e.Diagnostics().Oversize)
}

func TestExtract_PriceSanityBounds(t *testing.T) {
	e := newTestExtractor(t)

	trades := e.Extract([]domain.RawActivity{
		// Corrupt decimals: absurdly low price.
		swapActivity(1, domain.BaseMint, 0.001, memeMint, 1e15),
	})
	assert.Empty(t, trades)
	assert.Equal(t, 1, e.Diagnostics().PriceOutOfBounds)
}

func TestExtract_SortsByTimestamp(t *testing.T) {
	e := newTestExtractor(t)

	trades := e.Extract([]domain.RawActivity{
		swapActivity(300, domain.BaseMint, 1.0, memeMint, 1000),
		swapActivity(100, domain.BaseMint, 1.0, memeMint, 1000),
		swapActivity(200, domain.BaseMint, 1.0, memeMint, 1000),
	})
	require.Len(t, trades, 3)
	assert.True(t, trades[0].Timestamp <= trades[1].Timestamp)
	assert.True(t, trades[1].Timestamp <= trades[2].Timestamp)
}

func TestExtract_DerivesSwapFromTransferLegs(t *testing.T) {
	e := newTestExtractor(t)

	// Wallet spends 0.5 SOL natively and receives 2000 meme tokens.
	buy := domain.RawActivity{
		Signature: "legs-buy",
		Timestamp: 50,
		Source:    "RAYDIUM",
		NativeLegs: []domain.NativeLeg{
			{From: testWallet, To: "pool", Lamports: 500_000_000},
		},
		TokenLegs: []domain.TokenLeg{
			{Mint: memeMint, Amount: 2000e6, Decimals: 6, From: "pool", To: testWallet},
		},
	}
	trades := e.Extract([]domain.RawActivity{buy})
	require.Len(t, trades, 1)
	assert.Equal(t, domain.TradeBuy, trades[0].Direction)
	assert.InDelta(t, 0.5, trades[0].BaseAmount, 1e-12)
	assert.InDelta(t, 2000, trades[0].AssetAmount, 1e-9)
}

func TestExtract_IgnoresActivitiesNotTouchingWallet(t *testing.T) {
	e := newTestExtractor(t)

	other := domain.RawActivity{
		Signature: "unrelated",
		Timestamp: 10,
		Type:      domain.ActivityTypeSwap,
		NativeLegs: []domain.NativeLeg{
			{From: "someone", To: "pool", Lamports: 1_000_000_000},
		},
		TokenLegs: []domain.TokenLeg{
			{Mint: memeMint, Amount: 1000e6, Decimals: 6, From: "pool", To: "someone"},
		},
	}
	trades := e.Extract([]domain.RawActivity{other})
	assert.Empty(t, trades)
	assert.Equal(t, 1, e.Diagnostics().NoLegs)
}
