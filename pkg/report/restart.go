package report

import (
	"context"
	"errors"
	"fmt"

	"fleetcheck/pkg/remote"
	"fleetcheck/pkg/target"

	"go.uber.org/zap"
)

// Restarter restarts the service behind a target.
type Restarter interface {
	Restart(ctx context.Context, t target.Target) error
}

// RestartResult reports one restart attempt. Err is nil on success.
type RestartResult struct {
	Target target.Target
	Err    error
}

// RestartDown tries to restart every service target that is not Up, in
// report order. A failed restart is recorded and the next one still runs.
// Once a host cannot be reached, its remaining targets are skipped.
func RestartDown(ctx context.Context, r Restarter, rep Report, logger *zap.Logger) []RestartResult {
	if logger == nil {
		logger = zap.NewNop()
	}
	var results []RestartResult
	unreachable := make(map[string]error)
	for _, row := range rep.DownRows() {
		if row.Target.Kind != target.KindService {
			continue
		}
		if hostErr, ok := unreachable[row.Target.Address]; ok {
			results = append(results, RestartResult{
				Target: row.Target,
				Err:    fmt.Errorf("skipped, host %s unreachable: %w", row.Target.Address, hostErr),
			})
			continue
		}
		err := r.Restart(ctx, row.Target)
		if errors.Is(err, remote.ErrConnection) {
			unreachable[row.Target.Address] = err
		}
		if err != nil {
			logger.Warn("restart failed", zap.String("target", row.Target.DisplayName), zap.Error(err))
		} else {
			logger.Info("restarted", zap.String("target", row.Target.DisplayName))
		}
		results = append(results, RestartResult{Target: row.Target, Err: err})
	}
	return results
}

// RestartOne restarts the service registered under name without probing
// anything. Lookup errors are returned as is; a restart failure is
// reported in the result.
func RestartOne(ctx context.Context, r Restarter, reg *target.Registry, name string) (RestartResult, error) {
	t, err := reg.Lookup(name)
	if err != nil {
		return RestartResult{}, err
	}
	if t.Kind != target.KindService {
		return RestartResult{}, fmt.Errorf("%s is not a service and cannot be restarted", t.DisplayName)
	}
	return RestartResult{Target: t, Err: r.Restart(ctx, t)}, nil
}
