package domain

// TokenActivity is one entry of the favorite-token ranking.
type TokenActivity struct {
	Mint   string
	Symbol string // human-readable name resolution is a collaborator concern
	Count  int    // trades touching this mint
}

// WalletMetrics is the full statistics bundle computed for one wallet.
// A value object: fresh instance per analysis, no identity, no persistence
// concerns of its own.
type WalletMetrics struct {
	DegenScore float64 // composite score in [0,100]

	// Basic metrics
	TotalTrades    int
	TotalVolume    float64 // sum of BaseAmount over all trades
	AvgTradeSize   float64
	ProfitLoss     float64 // realized + unrealized
	RealizedPnL    float64
	UnrealizedPnL  float64 // always 0: open positions are not marked to market
	WinRate        float64 // percentage in [0,100]
	BestTrade      float64
	WorstTrade     float64
	TradingDays    int   // distinct unix-day buckets touched by any trade
	FirstTradeTime int64 // unix seconds, 0 if no trades

	// Degen metrics
	RugsCaught    int     // closed positions flagged as rugs
	RugsSurvived  int     // closed positions not flagged as rugs
	TotalRugValue float64 // absolute loss across rug positions
	Moonshots     int
	AvgHoldTime   float64 // seconds, over closed positions
	QuickFlips    int     // closed in under an hour
	DiamondHands  int     // held longer than seven days

	// Streaks and dispersion
	LongestWinStreak  int
	LongestLossStreak int
	VolatilityScore   float64 // bounded stddev of close returns, [0,100]

	// Position counts
	OpenPositions   int
	ClosedPositions int

	// Top-5 mints by trade count
	FavoriteTokens []TokenActivity
}
