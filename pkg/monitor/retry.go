package monitor

import (
	"context"
	"fmt"
	"time"

	"fleetcheck/pkg/target"
)

// RetryProbe gives Inner up to Attempts tries, each bounded by Timeout,
// sleeping Backoff between them. The first Up outcome wins.
type RetryProbe struct {
	Inner    Probe
	Attempts int
	Backoff  time.Duration
	Timeout  time.Duration
}

func (r *RetryProbe) Name() string {
	return r.Inner.Name()
}

func (r *RetryProbe) Check(ctx context.Context, t target.Target) Outcome {
	attempts := r.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var last Outcome
	for i := 0; i < attempts; i++ {
		last = r.attempt(ctx, t)
		if last.Up() {
			return last
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			last.RawInfo = fmt.Sprintf("%s (cancelled after %d attempts)", last.RawInfo, i+1)
			last.Status = StatusDown
			return last
		case <-time.After(r.Backoff):
		}
	}

	last.Status = StatusDown
	last.RawInfo = fmt.Sprintf("%s (after %d attempts)", last.RawInfo, attempts)
	return last
}

func (r *RetryProbe) attempt(ctx context.Context, t target.Target) Outcome {
	if r.Timeout <= 0 {
		return r.Inner.Check(ctx, t)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()
	return r.Inner.Check(attemptCtx, t)
}
