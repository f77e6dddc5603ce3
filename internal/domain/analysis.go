package domain

// BaseMint is the chain's native asset mint (wrapped SOL), used as the
// pricing denominator for every derived price.
const BaseMint = "So11111111111111111111111111111111111111112"

// Default noise-filter thresholds.
const (
	DefaultDustThreshold = 0.000001  // SOL; trades below are noise
	DefaultMinPrice      = 1e-9      // SOL per asset unit
	DefaultMaxPrice      = 1_000_000 // SOL per asset unit
	DefaultMaxTradeSize  = 1000      // SOL; whale/anomaly guard
)

// Default position lifecycle thresholds.
const (
	DefaultCloseTolerance    = 0.95 // fraction of bought units sold to count as closed
	DefaultRugThreshold      = -80  // ProfitLossPct at or below flags a rug
	DefaultMoonshotThreshold = 900  // ProfitLossPct at or above flags a moonshot (10x)
)

// DefaultExcludedMints lists assets that are not speculative trades:
// stablecoins, wrapped majors, and liquid-staking derivatives.
func DefaultExcludedMints() []string {
	return []string{
		// Stablecoins
		"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", // USDC
		"Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB", // USDT
		"Ea5SjE2Y6yvCeW5dYTn7PYMuW5ikXkvbGdcmSnXeaLjS", // PAI

		// Wrapped majors
		"7vfCXTUXx5WJV5JADk17DUJ4ksgau7utNKj4b963voxs", // WETH
		"9n4nbM75f5Ui33ZbPYXn59EwSgE8CGsHtAeTH5YFeJ9E", // WBTC
		"2FPyTwcZLUg1MDrwsyoP4D6s1tM7hAkHYRjkNb5w6Pxk", // WETH (Sollet)

		// Liquid staking derivatives
		"mSoLzYCxHdYgdzU16g5QSh3i5K3z3KZK7ytfqcJm7So",  // mSOL
		"7dHbWXmci3dT8UFYWYZweBLXgycu7Y3iL6trKn1Y7ARj", // stSOL
		"He3iAEV5rYjv6Xf7PxKro19eVrC3QAcdic5CF2D2obPt", // scnSOL
	}
}

// AnalysisConfig is the full configuration bundle for one analysis run.
type AnalysisConfig struct {
	BaseMint      string
	ExcludedMints []string

	// Extractor noise filters
	DustThreshold float64 // minimum BaseAmount in SOL
	MinPrice      float64 // price sanity lower bound
	MaxPrice      float64 // price sanity upper bound
	MaxTradeSize  float64 // maximum BaseAmount in SOL

	// Position lifecycle thresholds
	CloseTolerance    float64 // fraction of AssetBought sold to close
	RugThreshold      float64 // ProfitLossPct at or below
	MoonshotThreshold float64 // ProfitLossPct at or above

	// Score profile name ("neutral" | "strict"); "" selects neutral
	ScoreProfile string
}

// DefaultAnalysisConfig returns the configuration used in production.
func DefaultAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		BaseMint:          BaseMint,
		ExcludedMints:     DefaultExcludedMints(),
		DustThreshold:     DefaultDustThreshold,
		MinPrice:          DefaultMinPrice,
		MaxPrice:          DefaultMaxPrice,
		MaxTradeSize:      DefaultMaxTradeSize,
		CloseTolerance:    DefaultCloseTolerance,
		RugThreshold:      DefaultRugThreshold,
		MoonshotThreshold: DefaultMoonshotThreshold,
	}
}
