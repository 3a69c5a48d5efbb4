// Package report joins a run's outcomes back onto the declared target order
// and counts them. It does no rendering.
package report

import (
	"fleetcheck/pkg/monitor"
	"fleetcheck/pkg/store"
	"fleetcheck/pkg/target"
)

// Row is one target with its outcome for the run.
type Row struct {
	Target  target.Target
	Outcome monitor.Outcome
}

type Summary struct {
	Total int
	Up    int
	Down  int

	// AvgLatencyMillis is the mean over Up targets that reported a latency.
	// It is nil when none did.
	AvgLatencyMillis *float64
}

// ResolverSummary counts, per nameserver, how many sites it answered.
type ResolverSummary struct {
	Server string
	OK     int
	Failed int
}

type Report struct {
	Rows      []Row
	Summary   Summary
	Resolvers []ResolverSummary
}

// Build reads results in targets order. A target without an outcome is
// reported as an error so the counts always add up to len(targets).
func Build(targets []target.Target, results *store.Results) Report {
	rep := Report{Rows: make([]Row, 0, len(targets))}
	var latencySum float64
	var latencyN int
	resolverIndex := make(map[string]int)

	for _, t := range targets {
		o, ok := results.Get(t.ID)
		if !ok {
			o = monitor.Outcome{TargetID: t.ID, Status: monitor.StatusError, RawInfo: "no result"}
		}
		rep.Rows = append(rep.Rows, Row{Target: t, Outcome: o})

		rep.Summary.Total++
		if o.Up() {
			rep.Summary.Up++
			if o.LatencyMillis != nil {
				latencySum += *o.LatencyMillis
				latencyN++
			}
		} else {
			rep.Summary.Down++
		}

		for _, r := range o.Resolvers {
			i, seen := resolverIndex[r.Server]
			if !seen {
				i = len(rep.Resolvers)
				resolverIndex[r.Server] = i
				rep.Resolvers = append(rep.Resolvers, ResolverSummary{Server: r.Server})
			}
			if r.OK {
				rep.Resolvers[i].OK++
			} else {
				rep.Resolvers[i].Failed++
			}
		}
	}

	if latencyN > 0 {
		avg := latencySum / float64(latencyN)
		rep.Summary.AvgLatencyMillis = &avg
	}
	return rep
}

// Visible returns the rows to print. Quiet mode hides Up targets.
func (r Report) Visible(quiet bool) []Row {
	if !quiet {
		return r.Rows
	}
	var rows []Row
	for _, row := range r.Rows {
		if !row.Outcome.Up() {
			rows = append(rows, row)
		}
	}
	return rows
}

// DownRows returns every row that is not Up, in report order.
func (r Report) DownRows() []Row {
	return r.Visible(true)
}
