package domain

// Trade side constants.
const (
	TradeBuy  = "buy"
	TradeSell = "sell"
)

// Trade is one cleaned base-currency swap attributed to the subject wallet.
// Created once by the extractor, never mutated, ordered ascending by
// Timestamp in every trade sequence.
type Trade struct {
	Timestamp     int64   // unix seconds
	Mint          string  // asset mint address
	Direction     string  // "buy" | "sell"
	BaseAmount    float64 // base currency units (SOL)
	AssetAmount   float64 // asset units, decimal-scaled
	PricePerAsset float64 // BaseAmount / AssetAmount
}
