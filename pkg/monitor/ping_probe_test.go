package monitor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"

	"fleetcheck/pkg/target"
)

// Helper to mock exec.CommandContext
func fakeExecCommand(ctx context.Context, command string, args ...string) *exec.Cmd {
	cs := []string{"-test.run=TestHelperProcess", "--", command}
	cs = append(cs, args...)
	cmd := exec.CommandContext(ctx, os.Args[0], cs...) //nolint:gosec // G204: Helper process requiring variable path
	cmd.Env = []string{"GO_WANT_HELPER_PROCESS=1"}
	return cmd
}

// TestHelperProcess isn't a real test. It's used as a mock process.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	defer os.Exit(0)

	args := os.Args
	for len(args) > 0 {
		if args[0] == "--" {
			args = args[1:]
			break
		}
		args = args[1:]
	}

	if len(args) == 0 {
		fmt.Fprintf(os.Stderr, "No command\n")
		os.Exit(2)
	}

	cmd, cmdArgs := args[0], args[1:]
	if cmd != "ping" {
		fmt.Fprintf(os.Stderr, "Unknown command %q\n", cmd)
		os.Exit(2)
	}

	switch cmdArgs[len(cmdArgs)-1] {
	case "up.test":
		fmt.Printf("64 bytes from up.test: icmp_seq=1 ttl=64 time=10.5 ms\n")
		os.Exit(0)
	case "notime.test":
		fmt.Printf("PING notime.test\n")
		os.Exit(0)
	case "slow.test":
		time.Sleep(5 * time.Second)
		os.Exit(0)
	default:
		os.Exit(1)
	}
}

func swapExec(t *testing.T) {
	t.Helper()
	oldExec := execCommand
	execCommand = fakeExecCommand
	t.Cleanup(func() { execCommand = oldExec })
}

func TestPingProbe_Check(t *testing.T) {
	swapExec(t)
	probe := &PingProbe{Timeout: time.Second}
	ctx := context.Background()

	t.Run("Ping Success", func(t *testing.T) {
		out := probe.Check(ctx, target.Target{ID: "a", Address: "up.test"})
		if out.Status != StatusUp {
			t.Fatalf("expected Up, got %s (%s)", out.Status, out.RawInfo)
		}
		if out.TargetID != "a" {
			t.Errorf("expected outcome for target a, got %s", out.TargetID)
		}
		if out.LatencyMillis == nil || *out.LatencyMillis != 10.5 {
			t.Errorf("expected latency 10.5ms, got %v", out.LatencyMillis)
		}
	})

	t.Run("Ping Failure", func(t *testing.T) {
		out := probe.Check(ctx, target.Target{ID: "b", Address: "unreachable.test"})
		if out.Status != StatusDown {
			t.Errorf("expected Down, got %s", out.Status)
		}
		if out.LatencyMillis != nil {
			t.Error("expected no latency for a failed ping")
		}
	})

	t.Run("Exit zero without time", func(t *testing.T) {
		out := probe.Check(ctx, target.Target{ID: "c", Address: "notime.test"})
		if out.Status != StatusDown {
			t.Errorf("expected Down when no time is reported, got %s", out.Status)
		}
	})

	t.Run("Deadline", func(t *testing.T) {
		dctx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
		defer cancel()
		start := time.Now()
		out := probe.Check(dctx, target.Target{ID: "d", Address: "slow.test"})
		if out.Status != StatusDown {
			t.Errorf("expected Down on deadline, got %s", out.Status)
		}
		if time.Since(start) > 3*time.Second {
			t.Error("expected the ping process to be killed at the deadline")
		}
	})
}

func TestGetPingArgs(t *testing.T) {
	name, args := getPingArgs("linux", "10.0.0.1", 200*time.Millisecond)
	if name != "ping" {
		t.Errorf("expected ping, got %s", name)
	}
	want := []string{"-c", "1", "-W", "0.2", "10.0.0.1"}
	if fmt.Sprint(args) != fmt.Sprint(want) {
		t.Errorf("expected %v, got %v", want, args)
	}

	_, args = getPingArgs("windows", "10.0.0.1", 200*time.Millisecond)
	want = []string{"-n", "1", "-w", "200", "10.0.0.1"}
	if fmt.Sprint(args) != fmt.Sprint(want) {
		t.Errorf("expected %v, got %v", want, args)
	}

	_, args = getPingArgs("linux", "10.0.0.1", 0)
	if fmt.Sprint(args) != fmt.Sprint([]string{"-c", "1", "10.0.0.1"}) {
		t.Errorf("unexpected args without timeout: %v", args)
	}
}

func TestParsePingTime(t *testing.T) {
	tests := []struct {
		output  string
		want    time.Duration
		wantErr bool
	}{
		{"64 bytes: icmp_seq=1 ttl=64 time=0.523 ms", 523 * time.Microsecond, false},
		{"Reply from 10.0.0.1: bytes=32 time<1ms TTL=128", time.Millisecond, false},
		{"time=12 ms", 12 * time.Millisecond, false},
		{"no reply", 0, true},
	}
	for _, tt := range tests {
		got, err := parsePingTime(tt.output)
		if (err != nil) != tt.wantErr {
			t.Errorf("parsePingTime(%q) error = %v", tt.output, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parsePingTime(%q) = %v, want %v", tt.output, got, tt.want)
		}
	}
}

func TestGetProbe(t *testing.T) {
	tests := []struct {
		method  string
		want    string
		wantErr bool
	}{
		{"", MonitorTypePing, false},
		{"exec", MonitorTypePing, false},
		{"icmp", MonitorTypeICMP, false},
		{"arp", "", true},
	}
	for _, tt := range tests {
		p, err := GetProbe(tt.method)
		if (err != nil) != tt.wantErr {
			t.Errorf("GetProbe(%q) error = %v", tt.method, err)
			continue
		}
		if err == nil && p.Name() != tt.want {
			t.Errorf("GetProbe(%q) = %s, want %s", tt.method, p.Name(), tt.want)
		}
	}
}

func TestStatusString(t *testing.T) {
	tests := map[Status]string{
		StatusUp:       "Up",
		StatusDown:     "Down",
		StatusNotFound: "Not Found",
		StatusError:    "Error",
		Status(42):     "Status(42)",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("Status(%d).String() = %q, want %q", int(s), got, want)
		}
	}
}
