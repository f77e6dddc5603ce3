package domain

// ScoreSnapshot is one periodic record of a wallet's score, appended by the
// snapshot recorder so score history can be charted over time.
type ScoreSnapshot struct {
	Wallet      string
	RecordedAt  int64 // unix seconds
	DegenScore  float64
	TotalTrades int
	TotalVolume float64
	RealizedPnL float64
	WinRate     float64
}
