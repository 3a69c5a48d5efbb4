package monitor

import (
	"context"
	"runtime"
	"time"

	"fleetcheck/pkg/target"

	probing "github.com/prometheus-community/pro-bing"
)

// ICMPProbe sends the echo request from this process instead of running
// the ping binary.
type ICMPProbe struct {
	Timeout    time.Duration
	Privileged bool
}

func (p *ICMPProbe) Name() string {
	return MonitorTypeICMP
}

func (p *ICMPProbe) Check(ctx context.Context, t target.Target) Outcome {
	start := time.Now()
	pinger, err := probing.NewPinger(t.Address)
	if err != nil {
		return Outcome{TargetID: t.ID, Status: StatusDown, RawInfo: err.Error(), CheckedAt: start}
	}

	pinger.Count = 1
	pinger.Timeout = echoTimeout(ctx, p.Timeout, time.Now())
	pinger.SetPrivileged(p.Privileged || runtime.GOOS == "windows")

	done := make(chan error, 1)
	go func() {
		done <- pinger.Run()
	}()

	select {
	case err = <-done:
	case <-ctx.Done():
		pinger.Stop()
		<-done
		return Outcome{TargetID: t.ID, Status: StatusDown, RawInfo: "timeout", CheckedAt: start}
	}
	if err != nil {
		return Outcome{TargetID: t.ID, Status: StatusDown, RawInfo: err.Error(), CheckedAt: start}
	}

	stats := pinger.Statistics()
	if stats.PacketsRecv == 0 {
		return Outcome{TargetID: t.ID, Status: StatusDown, RawInfo: "no reply", CheckedAt: start}
	}
	return Outcome{
		TargetID:      t.ID,
		Status:        StatusUp,
		LatencyMillis: Millis(stats.AvgRtt),
		RawInfo:       "OK",
		CheckedAt:     start,
	}
}

// echoTimeout is the configured timeout, shortened to the context deadline
// when that comes first. Without either it is one second.
func echoTimeout(ctx context.Context, configured time.Duration, now time.Time) time.Duration {
	timeout := configured
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := deadline.Sub(now); timeout <= 0 || remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return time.Second
	}
	return timeout
}
