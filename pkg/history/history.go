// Package history appends one record per target per run and computes
// windowed uptime from those records.
package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fleetcheck/pkg/report"
	"fleetcheck/pkg/target"
)

// Record is one line of a target's history.
type Record struct {
	At time.Time
	Up bool
}

func (r Record) Status() string {
	if r.Up {
		return "Up"
	}
	return "Down"
}

func (r Record) String() string {
	return r.At.UTC().Format(time.RFC3339Nano) + " " + r.Status()
}

// ParseRecord reads a "<timestamp> <Up|Down>" line.
func ParseRecord(line string) (Record, error) {
	ts, status, ok := strings.Cut(strings.TrimSpace(line), " ")
	if !ok {
		return Record{}, fmt.Errorf("malformed history line %q", line)
	}
	at, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return Record{}, fmt.Errorf("malformed history timestamp %q: %w", ts, err)
	}
	switch strings.TrimSpace(status) {
	case "Up":
		return Record{At: at, Up: true}, nil
	case "Down":
		return Record{At: at}, nil
	default:
		return Record{}, fmt.Errorf("malformed history status %q", status)
	}
}

// Store is append-only per target. Records come back in the order they
// were appended.
type Store interface {
	Append(ctx context.Context, t target.Target, rec Record) error
	Records(ctx context.Context, t target.Target) ([]Record, error)
	Close() error
}

// LogRun appends one record per row of rep, stamped with now. It keeps
// going after a failed append and returns the first error.
func LogRun(ctx context.Context, s Store, rep report.Report, now time.Time) error {
	var firstErr error
	for _, row := range rep.Rows {
		rec := Record{At: now.UTC(), Up: row.Outcome.Up()}
		if err := s.Append(ctx, row.Target, rec); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("history for %s: %w", row.Target.DisplayName, err)
		}
	}
	return firstErr
}
