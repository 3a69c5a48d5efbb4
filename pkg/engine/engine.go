// Package engine fans probes out over a bounded worker pool and waits for
// every one of them before returning.
package engine

import (
	"context"
	"fmt"
	"time"

	"fleetcheck/pkg/monitor"
	"fleetcheck/pkg/store"
	"fleetcheck/pkg/target"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Engine runs one probe per target, or one batch probe per host. At most
// Concurrency probes are in flight; zero or less means no limit.
type Engine struct {
	Concurrency int
	Logger      *zap.Logger
}

func New(concurrency int, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{Concurrency: concurrency, Logger: logger}
}

func (e *Engine) group() *errgroup.Group {
	g := new(errgroup.Group)
	if e.Concurrency > 0 {
		g.SetLimit(e.Concurrency)
	} else {
		g.SetLimit(-1)
	}
	return g
}

func (e *Engine) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

// RunTargets checks every target with probe and records one outcome each in
// results. It returns once all checks have finished.
func (e *Engine) RunTargets(ctx context.Context, probe monitor.Probe, targets []target.Target, results *store.Results) error {
	g := e.group()
	for _, t := range targets {
		g.Go(func() error {
			o := e.checkOne(ctx, probe, t)
			o.TargetID = t.ID
			return e.record(results, o)
		})
	}
	return g.Wait()
}

// RunBatches checks each host batch with a single call. A member the probe
// did not answer for is recorded as an error.
func (e *Engine) RunBatches(ctx context.Context, probe monitor.BatchProbe, batches []target.HostBatch, results *store.Results) error {
	g := e.group()
	for _, b := range batches {
		g.Go(func() error {
			outcomes := e.checkBatch(ctx, probe, b)
			seen := make(map[target.ID]bool, len(outcomes))
			var firstErr error
			for _, o := range outcomes {
				if !isMember(b, o.TargetID) {
					e.logger().Warn("dropping outcome for unknown target",
						zap.String("host", b.Address), zap.String("target", string(o.TargetID)))
					continue
				}
				seen[o.TargetID] = true
				if err := e.record(results, o); err != nil && firstErr == nil {
					firstErr = err
				}
			}
			for _, m := range b.Members {
				if seen[m.ID] {
					continue
				}
				if err := e.record(results, monitor.Outcome{
					TargetID:  m.ID,
					Status:    monitor.StatusError,
					RawInfo:   "no result from host",
					CheckedAt: time.Now(),
				}); err != nil && firstErr == nil {
					firstErr = err
				}
			}
			return firstErr
		})
	}
	return g.Wait()
}

func (e *Engine) checkOne(ctx context.Context, probe monitor.Probe, t target.Target) (o monitor.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			e.logger().Error("probe panicked", zap.String("target", t.DisplayName), zap.Any("panic", r))
			o = monitor.Outcome{TargetID: t.ID, Status: monitor.StatusError, RawInfo: fmt.Sprintf("probe panic: %v", r), CheckedAt: time.Now()}
		}
	}()
	o = probe.Check(ctx, t)
	e.logger().Debug("checked target",
		zap.String("probe", probe.Name()),
		zap.String("target", t.DisplayName),
		zap.Stringer("status", o.Status))
	return o
}

func (e *Engine) checkBatch(ctx context.Context, probe monitor.BatchProbe, b target.HostBatch) (outcomes []monitor.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			e.logger().Error("batch probe panicked", zap.String("host", b.Address), zap.Any("panic", r))
			outcomes = nil
		}
	}()
	outcomes = probe.CheckBatch(ctx, b)
	e.logger().Debug("checked host",
		zap.String("probe", probe.Name()),
		zap.String("host", b.Address),
		zap.Int("targets", len(b.Members)))
	return outcomes
}

func (e *Engine) record(results *store.Results, o monitor.Outcome) error {
	if err := results.Put(o); err != nil {
		e.logger().Error("recording outcome", zap.Error(err))
		return err
	}
	return nil
}

func isMember(b target.HostBatch, id target.ID) bool {
	for _, m := range b.Members {
		if m.ID == id {
			return true
		}
	}
	return false
}
