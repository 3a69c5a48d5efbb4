package monitor

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"time"

	"fleetcheck/pkg/target"
)

// execCommand is a variable to allow mocking in tests
var execCommand = exec.CommandContext

var pingTimeRe = regexp.MustCompile(`time[=<]([0-9.]+)\s*ms`)

// PingProbe shells out to the system ping binary, one echo per Check.
type PingProbe struct {
	Timeout time.Duration
}

func (p *PingProbe) Name() string {
	return MonitorTypePing
}

// Check succeeds only when ping exits zero and reports a round trip time.
func (p *PingProbe) Check(ctx context.Context, t target.Target) Outcome {
	start := time.Now()
	name, args := getPingArgs(runtime.GOOS, strings.TrimSpace(t.Address), p.Timeout)
	cmd := execCommand(ctx, name, args...)

	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return Outcome{TargetID: t.ID, Status: StatusDown, RawInfo: "timeout", CheckedAt: start}
		}
		return Outcome{TargetID: t.ID, Status: StatusDown, RawInfo: err.Error(), CheckedAt: start}
	}

	rtt, err := parsePingTime(string(output))
	if err != nil {
		return Outcome{TargetID: t.ID, Status: StatusDown, RawInfo: err.Error(), CheckedAt: start}
	}
	return Outcome{
		TargetID:      t.ID,
		Status:        StatusUp,
		LatencyMillis: Millis(rtt),
		RawInfo:       "OK",
		CheckedAt:     start,
	}
}

func getPingArgs(goos, address string, timeout time.Duration) (string, []string) {
	if goos == "windows" {
		args := []string{"-n", "1"}
		if timeout > 0 {
			args = append(args, "-w", strconv.FormatInt(timeout.Milliseconds(), 10))
		}
		return "ping", append(args, address)
	}
	args := []string{"-c", "1"}
	if timeout > 0 {
		args = append(args, "-W", strconv.FormatFloat(timeout.Seconds(), 'f', -1, 64))
	}
	return "ping", append(args, address)
}

func parsePingTime(output string) (time.Duration, error) {
	// standard ping output: time=12.3 ms
	matches := pingTimeRe.FindStringSubmatch(output)
	if len(matches) > 1 {
		ms, err := strconv.ParseFloat(matches[1], 64)
		if err != nil {
			return 0, err
		}
		return time.Duration(ms * float64(time.Millisecond)), nil
	}
	return 0, fmt.Errorf("could not find time= in output")
}
