package domain

// Activity type labels as reported by providers.
const (
	ActivityTypeSwap    = "SWAP"
	ActivityTypeAggSwap = "AGG_SWAP"
)

// TokenLeg is a single SPL token movement within an activity.
type TokenLeg struct {
	Mint     string  // token mint address
	Amount   float64 // raw on-chain amount, pre-decimal scaling
	Decimals int     // mint decimals
	From     string  // source account ("" if unknown)
	To       string  // destination account ("" if unknown)
}

// NativeLeg is a native SOL movement within an activity.
type NativeLeg struct {
	From     string // source account
	To       string // destination account
	Lamports int64  // amount in lamports
}

// SwapInfo is the pre-resolved two-sided swap form some providers emit
// directly: the subject account paid AmountIn of MintIn and received
// AmountOut of MintOut. Amounts are raw, pre-decimal scaling.
type SwapInfo struct {
	MintIn      string
	AmountIn    float64
	DecimalsIn  int
	MintOut     string
	AmountOut   float64
	DecimalsOut int
}

// RawActivity is one on-chain event handed over by the retrieval
// collaborator. Either Swap is set (structured providers) or the transfer
// legs are, in which case the extractor derives the swap shape from net
// flows touching the subject account.
type RawActivity struct {
	Signature  string // transaction signature
	Timestamp  int64  // unix seconds
	Type       string // activity type label
	Source     string // originating program/DEX label, "" if unknown
	Swap       *SwapInfo
	TokenLegs  []TokenLeg
	NativeLegs []NativeLeg
}
