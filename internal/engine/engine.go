// Package engine coordinates the full wallet analysis pipeline.
// Flow: validate wallet → extract trades → build positions → aggregate → score
package engine

import (
	"context"
	"fmt"
	"log"
	"time"

	"degenscore-lab/internal/domain"
	"degenscore-lab/internal/extract"
	"degenscore-lab/internal/metrics"
	"degenscore-lab/internal/observability"
	"degenscore-lab/internal/position"
	"degenscore-lab/internal/score"
	"degenscore-lab/internal/walletid"
)

// Progress checkpoints reported during a run, in order.
const (
	StageValidated  = "validated"
	StageExtracted  = "extracted"
	StagePositions  = "positions"
	StageAggregated = "aggregated"
	StageScored     = "scored"
)

// ProgressFunc receives the checkpoint just completed. A panicking callback
// is recovered and logged; it never aborts the analysis.
type ProgressFunc func(stage string)

// Options for creating an Engine.
type Options struct {
	Analysis domain.AnalysisConfig // zero value selects the defaults
	Profile  string                // score profile name, empty selects neutral
	Progress ProgressFunc
	Logger   *log.Logger
	Verbose  bool
}

// Engine runs analyses with a fixed configuration. Safe for sequential
// reuse across wallets; each Analyze call is self-contained.
type Engine struct {
	analysis domain.AnalysisConfig
	profile  score.Profile
	progress ProgressFunc
	logger   *log.Logger
	verbose  bool
}

// New creates an Engine. Fails on an unknown profile name.
func New(opts Options) (*Engine, error) {
	profile, err := score.FromName(opts.Profile)
	if err != nil {
		return nil, err
	}
	analysis := opts.Analysis
	if analysis.BaseMint == "" {
		analysis = domain.DefaultAnalysisConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{
		analysis: analysis,
		profile:  profile,
		progress: opts.Progress,
		logger:   logger,
		verbose:  opts.Verbose,
	}, nil
}

// Result is the full output of one analysis run.
type Result struct {
	Wallet      string
	Metrics     *domain.WalletMetrics
	Trades      []domain.Trade
	Positions   []*domain.Position
	Diagnostics extract.Diagnostics
}

// Analyze runs the pipeline over a wallet's activity history. Empty or
// fully filtered input is not an error: the result carries baseline metrics
// with the profile's starting score. Identical input always produces an
// identical result.
func (e *Engine) Analyze(ctx context.Context, wallet string, activities []domain.RawActivity) (*Result, error) {
	start := time.Now()

	if err := walletid.Validate(wallet); err != nil {
		observability.RecordAnalysis("error", time.Since(start).Seconds())
		return nil, fmt.Errorf("analyze %s: %w", wallet, err)
	}
	e.step(StageValidated)

	ex, err := extract.New(
		extract.ConfigFromAnalysis(wallet, e.analysis),
		extract.WithLogger(e.logger),
		extract.WithVerbose(e.verbose),
	)
	if err != nil {
		observability.RecordAnalysis("error", time.Since(start).Seconds())
		return nil, fmt.Errorf("analyze %s: %w", wallet, err)
	}

	trades := ex.Extract(activities)
	diags := ex.Diagnostics()
	observability.RecordExtraction(diags.ActivitiesSeen, diags.TradesExtracted, diags.Rejects())
	e.step(StageExtracted)

	if err := ctx.Err(); err != nil {
		observability.RecordAnalysis("canceled", time.Since(start).Seconds())
		return nil, err
	}

	builder := position.NewBuilder(position.ConfigFromAnalysis(e.analysis))
	positions := builder.Build(trades)
	if n := builder.OrphanSells(); n > 0 && e.verbose {
		e.logger.Printf("[engine] %s: %d sells without a tracked buy", walletid.Short(wallet), n)
	}
	e.step(StagePositions)

	m := metrics.Compute(trades, positions)
	e.step(StageAggregated)

	m.DegenScore = score.Compose(m, e.profile)
	e.step(StageScored)

	observability.RecordAnalysis("success", time.Since(start).Seconds())
	observability.RecordScore(wallet, m.DegenScore)
	e.log("analyzed %s: %d activities -> %d trades, %d positions, score %.1f",
		walletid.Short(wallet), len(activities), len(trades), len(positions), m.DegenScore)

	return &Result{
		Wallet:      wallet,
		Metrics:     m,
		Trades:      trades,
		Positions:   positions,
		Diagnostics: diags,
	}, nil
}

// Profile reports the weighting profile this engine scores with.
func (e *Engine) Profile() score.Profile {
	return e.profile
}

func (e *Engine) step(stage string) {
	if e.progress == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			e.logger.Printf("[engine] progress callback panicked at %s: %v", stage, r)
		}
	}()
	e.progress(stage)
}

func (e *Engine) log(format string, args ...interface{}) {
	if e.verbose {
		e.logger.Printf("[engine] "+format, args...)
	}
}
