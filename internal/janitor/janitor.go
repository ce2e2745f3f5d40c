// Package janitor implements the background reconciliation loop between
// blob storage and the gallery manifest. It runs independently from the
// request path so drift repair never competes with admin traffic.
package janitor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/mstreet/easel/internal/app"
)

// Reconciler is the single store-facing operation the Janitor needs.
// The application service implements it over the object store and manifest.
type Reconciler interface {
	Reconcile(ctx context.Context, prune bool) (app.ReconcileReport, error)
}

// Recorder receives counter and summary observations from cycles.
type Recorder interface {
	Inc(name string, delta int64)
	Observe(name string, value int64)
}

// Metric names emitted per cycle.
const (
	MetricCycles           = "reconcile_cycles_total"
	MetricOrphansPerCycle  = "reconcile_orphans_per_cycle"
	MetricDanglingPerCycle = "reconcile_dangling_per_cycle"
)

// Config holds tunables for the Janitor.
type Config struct {
	Interval time.Duration // how often a cycle begins
	Prune    bool          // remove dangling manifest entries instead of just reporting
	Logger   *slog.Logger  // optional logger (defaults to slog.Default())
}

// Stats accumulates in-memory counters for operational insight.
type Stats struct {
	mu                  sync.Mutex
	Cycles              uint64
	Orphans             uint64
	Dangling            uint64
	Pruned              uint64
	CycleLastDurationMS int64
}

// StatsView is a read-only snapshot safe to copy.
type StatsView struct {
	Cycles              uint64
	Orphans             uint64
	Dangling            uint64
	Pruned              uint64
	CycleLastDurationMS int64
}

func (s *Stats) record(rep app.ReconcileReport, d time.Duration) {
	s.mu.Lock()
	s.Cycles++
	s.Orphans += uint64(rep.Orphans)
	s.Dangling += uint64(rep.Dangling)
	s.Pruned += uint64(rep.Pruned)
	s.CycleLastDurationMS = d.Milliseconds()
	s.mu.Unlock()
}

// Janitor encapsulates the background reconciliation loop.
type Janitor struct {
	store    Reconciler
	recorder Recorder
	cfg      Config
	stats    *Stats

	ticker *time.Ticker
	stopCh chan struct{}
	doneCh chan struct{}
	once   sync.Once
}

// New constructs but does not start a Janitor. recorder may be nil.
func New(store Reconciler, recorder Recorder, cfg Config) *Janitor {
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Janitor{
		store:    store,
		recorder: recorder,
		cfg:      cfg,
		stats:    &Stats{},
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start launches the janitor loop in a new goroutine.
func (j *Janitor) Start(ctx context.Context) {
	if j.ticker != nil {
		return
	} // already started
	j.ticker = time.NewTicker(j.cfg.Interval)
	go j.loop(ctx)
}

// Stop signals the loop to exit and waits for completion.
func (j *Janitor) Stop() {
	j.once.Do(func() { close(j.stopCh) })
	<-j.doneCh
}

// StatsSnapshot returns a copy of current stats.
func (j *Janitor) StatsSnapshot() StatsView {
	j.stats.mu.Lock()
	defer j.stats.mu.Unlock()
	return StatsView{
		Cycles:              j.stats.Cycles,
		Orphans:             j.stats.Orphans,
		Dangling:            j.stats.Dangling,
		Pruned:              j.stats.Pruned,
		CycleLastDurationMS: j.stats.CycleLastDurationMS,
	}
}

func (j *Janitor) loop(ctx context.Context) {
	log := j.cfg.Logger.With("domain", "janitor")
	defer func() {
		if j.ticker != nil {
			j.ticker.Stop()
		}
		close(j.doneCh)
	}()
	for {
		select {
		case <-ctx.Done():
			log.Info("janitor stop", "reason", "context_cancel")
			return
		case <-j.stopCh:
			log.Info("janitor stop", "reason", "stop_signal")
			return
		case <-j.ticker.C:
			j.runCycle(ctx)
		}
	}
}

// runCycle performs one reconciliation pass and records its outcome.
func (j *Janitor) runCycle(ctx context.Context) {
	start := time.Now()
	log := j.cfg.Logger.With("domain", "janitor", "action", "cycle")
	rep, err := j.store.Reconcile(ctx, j.cfg.Prune)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Error("reconcile", "error", err)
		}
		return
	}
	j.stats.record(rep, time.Since(start))
	if j.recorder != nil {
		j.recorder.Inc(MetricCycles, 1)
		j.recorder.Observe(MetricOrphansPerCycle, int64(rep.Orphans))
		j.recorder.Observe(MetricDanglingPerCycle, int64(rep.Dangling))
	}
	log.Info("cycle complete",
		"objects", rep.Objects,
		"entries", rep.Entries,
		"orphans", rep.Orphans,
		"dangling", rep.Dangling,
		"pruned", rep.Pruned,
		"ms", time.Since(start).Milliseconds(),
	)
}
