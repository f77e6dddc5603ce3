package extract

import (
	"math"

	"degenscore-lab/internal/domain"
)

// knownDEXSources are programs whose activities are treated as swaps even
// when the provider did not label the record SWAP.
var knownDEXSources = map[string]struct{}{
	"PUMP_AMM": {},
	"PUMP_FUN": {},
	"JUPITER":  {},
	"RAYDIUM":  {},
	"ORCA":     {},
	"SERUM":    {},
	"OPENBOOK": {},
	"METEORA":  {},
	"LIFINITY": {},
	"PHOENIX":  {},
}

// swapLegs is the canonical two-party form of an activity: the wallet paid
// amountIn of mintIn and received amountOut of mintOut. Amounts are
// decimal-scaled.
type swapLegs struct {
	mintIn    string
	amountIn  float64
	mintOut   string
	amountOut float64
}

// normalize folds a provider activity into canonical swap legs. Structured
// providers hand over SwapInfo directly; for transfer-leg providers the
// swap shape is derived from the net flows touching the subject wallet.
func (e *Extractor) normalize(a *domain.RawActivity) (swapLegs, rejectReason) {
	if !e.isSwapActivity(a) {
		return swapLegs{}, rejectNotSwap
	}
	if a.Swap != nil {
		return swapLegs{
			mintIn:    a.Swap.MintIn,
			amountIn:  scale(a.Swap.AmountIn, a.Swap.DecimalsIn),
			mintOut:   a.Swap.MintOut,
			amountOut: scale(a.Swap.AmountOut, a.Swap.DecimalsOut),
		}, rejectNone
	}
	return e.legsFromTransfers(a)
}

func (e *Extractor) isSwapActivity(a *domain.RawActivity) bool {
	if a.Type == domain.ActivityTypeSwap || a.Type == domain.ActivityTypeAggSwap {
		return true
	}
	_, known := knownDEXSources[a.Source]
	return known
}

// legsFromTransfers derives swap legs from raw transfer legs. Wrapped SOL
// token movements and native lamport movements both count toward the base
// currency flow.
func (e *Extractor) legsFromTransfers(a *domain.RawActivity) (swapLegs, rejectReason) {
	if len(a.TokenLegs) == 0 && len(a.NativeLegs) == 0 {
		return swapLegs{}, rejectNoLegs
	}

	wallet := e.cfg.Wallet
	baseNet := 0.0
	tokenNet := make(map[string]float64)

	for _, nl := range a.NativeLegs {
		if nl.From == wallet {
			baseNet -= float64(nl.Lamports) / 1e9
		}
		if nl.To == wallet {
			baseNet += float64(nl.Lamports) / 1e9
		}
	}
	for _, tl := range a.TokenLegs {
		if tl.From != wallet && tl.To != wallet {
			continue
		}
		amount := scale(tl.Amount, tl.Decimals)
		if tl.From == wallet {
			amount = -amount
		}
		if tl.Mint == e.cfg.BaseMint {
			baseNet += amount
			continue
		}
		tokenNet[tl.Mint] += amount
	}

	// Collect mints with a non-zero net flow.
	var mints []string
	for mint, net := range tokenNet {
		if net != 0 {
			mints = append(mints, mint)
		}
	}

	switch len(mints) {
	case 0:
		return swapLegs{}, rejectNoLegs
	case 1:
		mint, net := mints[0], tokenNet[mints[0]]
		switch {
		case net > 0 && baseNet < 0:
			// Base left the wallet, the asset arrived: a buy.
			return swapLegs{mintIn: e.cfg.BaseMint, amountIn: -baseNet, mintOut: mint, amountOut: net}, rejectNone
		case net < 0 && baseNet > 0:
			return swapLegs{mintIn: mint, amountIn: -net, mintOut: e.cfg.BaseMint, amountOut: baseNet}, rejectNone
		default:
			return swapLegs{}, rejectAmbiguous
		}
	case 2:
		// Two token mints moving in opposite directions is a token-for-token
		// swap; surfaced as such so the reject counter is accurate.
		na, nb := tokenNet[mints[0]], tokenNet[mints[1]]
		if na*nb < 0 {
			return swapLegs{}, rejectTokenToToken
		}
		return swapLegs{}, rejectAmbiguous
	default:
		return swapLegs{}, rejectAmbiguous
	}
}

func scale(amount float64, decimals int) float64 {
	if decimals <= 0 {
		return amount
	}
	return amount / math.Pow10(decimals)
}
