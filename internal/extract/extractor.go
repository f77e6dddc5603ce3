// Package extract turns raw provider activities into a clean, time-ordered
// sequence of base-currency swaps attributed to one wallet.
package extract

import (
	"errors"
	"log"
	"sort"

	"degenscore-lab/internal/domain"
)

// ErrMissingWallet is returned when no subject account is configured.
// Trade direction cannot be attributed without it, so this fails fast
// instead of silently mis-classifying buys and sells.
var ErrMissingWallet = errors.New("extract: subject wallet address is required")

// Config holds the noise filters applied during extraction.
type Config struct {
	Wallet        string              // subject account (required)
	BaseMint      string              // pricing denominator mint
	ExcludedMints map[string]struct{} // stablecoins, wrapped majors, LSDs
	DustThreshold float64             // minimum BaseAmount
	MinPrice      float64             // price sanity lower bound
	MaxPrice      float64             // price sanity upper bound
	MaxTradeSize  float64             // maximum BaseAmount
}

// ConfigFromAnalysis builds an extractor Config from the shared analysis
// configuration bundle.
func ConfigFromAnalysis(wallet string, a domain.AnalysisConfig) Config {
	excluded := make(map[string]struct{}, len(a.ExcludedMints))
	for _, m := range a.ExcludedMints {
		excluded[m] = struct{}{}
	}
	return Config{
		Wallet:        wallet,
		BaseMint:      a.BaseMint,
		ExcludedMints: excluded,
		DustThreshold: a.DustThreshold,
		MinPrice:      a.MinPrice,
		MaxPrice:      a.MaxPrice,
		MaxTradeSize:  a.MaxTradeSize,
	}
}

// Diagnostics counts per-reason rejections for one extraction run. Emitted
// through the logger for observability; not part of the return contract.
type Diagnostics struct {
	ActivitiesSeen  int
	TradesExtracted int

	NotSwap          int // activity type is not a swap
	NoLegs           int // no legs touch the subject wallet
	Ambiguous        int // net flows do not resolve to one two-party swap
	TokenToToken     int // neither leg is the base currency
	ExcludedMint     int // asset mint is in the exclusion set
	ZeroAmount       int // a leg has zero amount
	Dust             int // BaseAmount below dust threshold
	PriceOutOfBounds int // PricePerAsset outside sanity bounds
	Oversize         int // BaseAmount above the whale guard
}

// Rejects returns the non-zero reject counters keyed by reason label.
func (d Diagnostics) Rejects() map[string]int {
	out := make(map[string]int)
	add := func(r rejectReason, n int) {
		if n > 0 {
			out[string(r)] = n
		}
	}
	add(rejectNotSwap, d.NotSwap)
	add(rejectNoLegs, d.NoLegs)
	add(rejectAmbiguous, d.Ambiguous)
	add(rejectTokenToToken, d.TokenToToken)
	add(rejectExcludedMint, d.ExcludedMint)
	add(rejectZeroAmount, d.ZeroAmount)
	add(rejectDust, d.Dust)
	add(rejectPriceOutOfBounds, d.PriceOutOfBounds)
	add(rejectOversize, d.Oversize)
	return out
}

// Extractor filters and normalizes raw activities into Trades. One code
// path; the verbose flag only controls per-record diagnostic logging.
type Extractor struct {
	cfg     Config
	verbose bool
	logger  *log.Logger
	diags   Diagnostics
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithVerbose enables per-record rejection logging.
func WithVerbose(v bool) Option {
	return func(e *Extractor) { e.verbose = v }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Extractor) { e.logger = l }
}

// New creates an Extractor. Returns ErrMissingWallet if cfg.Wallet is empty.
func New(cfg Config, opts ...Option) (*Extractor, error) {
	if cfg.Wallet == "" {
		return nil, ErrMissingWallet
	}
	if cfg.BaseMint == "" {
		cfg.BaseMint = domain.BaseMint
	}
	e := &Extractor{
		cfg:    cfg,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Extract runs the filter pipeline over a batch of activities and returns
// the surviving trades sorted ascending by timestamp. Pure with respect to
// its input: activities are never mutated and malformed records are skipped,
// never fatal. Output length is always <= input length.
func (e *Extractor) Extract(activities []domain.RawActivity) []domain.Trade {
	e.diags = Diagnostics{ActivitiesSeen: len(activities)}

	trades := make([]domain.Trade, 0, len(activities))
	for i := range activities {
		t, reason := e.extractOne(&activities[i])
		if reason != rejectNone {
			e.count(reason)
			if e.verbose {
				e.logger.Printf("[extract] skip %s: %s", activities[i].Signature, reason)
			}
			continue
		}
		trades = append(trades, t)
	}

	// Deterministic order: timestamp ASC, mint ASC on ties.
	sort.SliceStable(trades, func(i, j int) bool {
		if trades[i].Timestamp != trades[j].Timestamp {
			return trades[i].Timestamp < trades[j].Timestamp
		}
		return trades[i].Mint < trades[j].Mint
	})

	e.diags.TradesExtracted = len(trades)
	e.logStats()
	return trades
}

// Diagnostics returns the reject counters of the most recent Extract run.
func (e *Extractor) Diagnostics() Diagnostics {
	return e.diags
}

// extractOne applies the full filter chain to a single activity.
func (e *Extractor) extractOne(a *domain.RawActivity) (domain.Trade, rejectReason) {
	swap, reason := e.normalize(a)
	if reason != rejectNone {
		return domain.Trade{}, reason
	}

	inIsBase := swap.mintIn == e.cfg.BaseMint
	outIsBase := swap.mintOut == e.cfg.BaseMint

	// Exactly one leg must be the base currency. Token-for-token swaps are
	// dropped rather than priced through an implied rate.
	if inIsBase == outIsBase {
		return domain.Trade{}, rejectTokenToToken
	}

	var direction, mint string
	var baseAmount, assetAmount float64
	if inIsBase {
		// Base leaves the account: it spends base to acquire the asset.
		direction = domain.TradeBuy
		mint = swap.mintOut
		baseAmount = swap.amountIn
		assetAmount = swap.amountOut
	} else {
		direction = domain.TradeSell
		mint = swap.mintIn
		baseAmount = swap.amountOut
		assetAmount = swap.amountIn
	}

	if _, excluded := e.cfg.ExcludedMints[mint]; excluded {
		return domain.Trade{}, rejectExcludedMint
	}
	if baseAmount <= 0 || assetAmount <= 0 {
		return domain.Trade{}, rejectZeroAmount
	}
	if baseAmount < e.cfg.DustThreshold {
		return domain.Trade{}, rejectDust
	}

	price := baseAmount / assetAmount
	if price < e.cfg.MinPrice || price > e.cfg.MaxPrice {
		return domain.Trade{}, rejectPriceOutOfBounds
	}
	if e.cfg.MaxTradeSize > 0 && baseAmount > e.cfg.MaxTradeSize {
		return domain.Trade{}, rejectOversize
	}

	return domain.Trade{
		Timestamp:     a.Timestamp,
		Mint:          mint,
		Direction:     direction,
		BaseAmount:    baseAmount,
		AssetAmount:   assetAmount,
		PricePerAsset: price,
	}, rejectNone
}

func (e *Extractor) count(r rejectReason) {
	switch r {
	case rejectNotSwap:
		e.diags.NotSwap++
	case rejectNoLegs:
		e.diags.NoLegs++
	case rejectAmbiguous:
		e.diags.Ambiguous++
	case rejectTokenToToken:
		e.diags.TokenToToken++
	case rejectExcludedMint:
		e.diags.ExcludedMint++
	case rejectZeroAmount:
		e.diags.ZeroAmount++
	case rejectDust:
		e.diags.Dust++
	case rejectPriceOutOfBounds:
		e.diags.PriceOutOfBounds++
	case rejectOversize:
		e.diags.Oversize++
	}
}

func (e *Extractor) logStats() {
	d := e.diags
	e.logger.Printf("[extract] %d/%d trades extracted (notSwap=%d noLegs=%d ambiguous=%d tokenToToken=%d excluded=%d zero=%d dust=%d price=%d oversize=%d)",
		d.TradesExtracted, d.ActivitiesSeen,
		d.NotSwap, d.NoLegs, d.Ambiguous, d.TokenToToken,
		d.ExcludedMint, d.ZeroAmount, d.Dust, d.PriceOutOfBounds, d.Oversize)
}

// rejectReason labels why an activity was dropped.
type rejectReason string

const (
	rejectNone             rejectReason = ""
	rejectNotSwap          rejectReason = "not a swap"
	rejectNoLegs           rejectReason = "no legs touch wallet"
	rejectAmbiguous        rejectReason = "ambiguous flows"
	rejectTokenToToken     rejectReason = "token-to-token"
	rejectExcludedMint     rejectReason = "excluded mint"
	rejectZeroAmount       rejectReason = "zero amount"
	rejectDust             rejectReason = "dust"
	rejectPriceOutOfBounds rejectReason = "price out of bounds"
	rejectOversize         rejectReason = "oversize trade"
)
