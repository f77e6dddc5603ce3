package domain

// Position tracks the holding lifecycle of one asset: opened on first buy,
// folded on repeat buys (DCA), frozen once closed. The sell-side fields are
// running totals and only meaningful after at least one sell.
type Position struct {
	Mint          string
	EntryTime     int64   // unix seconds of first buy
	ExitTime      int64   // unix seconds of latest sell, 0 if never sold
	BuyBaseTotal  float64 // base currency spent across all buys
	AssetBought   float64 // asset units acquired across all buys
	EntryPrice    float64 // blended entry: BuyBaseTotal / AssetBought
	SellBaseTotal float64 // base currency received across all sells
	AssetSold     float64 // asset units disposed across all sells
	ExitPrice     float64 // blended exit: SellBaseTotal / AssetSold
	ProfitLoss    float64 // SellBaseTotal - BuyBaseTotal, updated on each sell
	ProfitLossPct float64 // ProfitLoss / BuyBaseTotal * 100
	HoldTime      int64   // seconds between entry and latest sell
	IsOpen        bool
	IsRug         bool // closed at catastrophic loss
	IsMoonshot    bool // closed at extreme gain
}
