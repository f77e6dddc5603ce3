// Package snapshot periodically re-analyzes tracked wallets and appends
// their scores to the history store.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"degenscore-lab/internal/activity"
	"degenscore-lab/internal/domain"
	"degenscore-lab/internal/engine"
	"degenscore-lab/internal/observability"
	"degenscore-lab/internal/storage"
	"degenscore-lab/internal/walletid"
)

// DefaultSchedule records snapshots hourly.
const DefaultSchedule = "0 * * * *"

// Analyzer runs the scoring pipeline for one wallet.
type Analyzer interface {
	Analyze(ctx context.Context, wallet string, activities []domain.RawActivity) (*engine.Result, error)
}

// Recorder drives periodic score snapshots for a fixed set of wallets.
type Recorder struct {
	source   activity.Source
	analyzer Analyzer
	metrics  storage.WalletMetricsStore
	history  storage.ScoreSnapshotStore

	wallets  []string
	schedule string
	logger   *log.Logger
	now      func() time.Time

	cron *cron.Cron
}

// Options for creating a Recorder.
type Options struct {
	Source   activity.Source
	Analyzer Analyzer
	Metrics  storage.WalletMetricsStore
	History  storage.ScoreSnapshotStore

	Wallets  []string
	Schedule string // cron spec, empty selects DefaultSchedule
	Logger   *log.Logger
	Now      func() time.Time // test clock
}

// New creates a Recorder.
func New(opts Options) *Recorder {
	schedule := opts.Schedule
	if schedule == "" {
		schedule = DefaultSchedule
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Recorder{
		source:   opts.Source,
		analyzer: opts.Analyzer,
		metrics:  opts.Metrics,
		history:  opts.History,
		wallets:  opts.Wallets,
		schedule: schedule,
		logger:   logger,
		now:      now,
		cron:     cron.New(),
	}
}

// Start registers the cron task and begins scheduling.
func (r *Recorder) Start(ctx context.Context) error {
	_, err := r.cron.AddFunc(r.schedule, func() {
		if err := r.RecordAll(ctx); err != nil {
			r.logger.Printf("[snapshot] run failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("register snapshot task: %w", err)
	}
	r.cron.Start()
	r.logger.Printf("[snapshot] recorder started (%s, %d wallets)", r.schedule, len(r.wallets))
	return nil
}

// Stop stops the scheduler gracefully.
func (r *Recorder) Stop() {
	r.cron.Stop()
	r.logger.Printf("[snapshot] recorder stopped")
}

// RecordAll analyzes every tracked wallet once and appends one snapshot
// per wallet. A failing wallet is logged and skipped; the run continues.
func (r *Recorder) RecordAll(ctx context.Context) error {
	recordedAt := r.now().Unix()
	recorded := 0
	var failed int

	for _, wallet := range r.wallets {
		if err := r.recordOne(ctx, wallet, recordedAt); err != nil {
			if errors.Is(err, storage.ErrDuplicateKey) {
				continue
			}
			failed++
			r.logger.Printf("[snapshot] %s: %v", walletid.Short(wallet), err)
			continue
		}
		recorded++
	}

	status := "success"
	if failed > 0 {
		status = "partial"
	}
	observability.RecordSnapshotRun(status, recorded)
	r.logger.Printf("[snapshot] recorded %d/%d wallets", recorded, len(r.wallets))

	if recorded == 0 && failed > 0 {
		return fmt.Errorf("all %d wallets failed", failed)
	}
	return nil
}

func (r *Recorder) recordOne(ctx context.Context, wallet string, recordedAt int64) error {
	activities, err := r.source.WalletActivities(ctx, wallet)
	if err != nil {
		return fmt.Errorf("fetch activities: %w", err)
	}

	res, err := r.analyzer.Analyze(ctx, wallet, activities)
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	if err := r.metrics.Upsert(ctx, wallet, res.Metrics); err != nil {
		return fmt.Errorf("store metrics: %w", err)
	}

	snap := &domain.ScoreSnapshot{
		Wallet:      wallet,
		RecordedAt:  recordedAt,
		DegenScore:  res.Metrics.DegenScore,
		TotalTrades: res.Metrics.TotalTrades,
		TotalVolume: res.Metrics.TotalVolume,
		RealizedPnL: res.Metrics.RealizedPnL,
		WinRate:     res.Metrics.WinRate,
	}
	if err := r.history.Append(ctx, snap); err != nil {
		return fmt.Errorf("append snapshot: %w", err)
	}
	return nil
}
