// Package ui renders reports for the terminal. Nothing in the checking
// core imports it.
package ui

import (
	"fmt"
	"strings"

	"fleetcheck/pkg/history"
	"fleetcheck/pkg/monitor"
	"fleetcheck/pkg/report"
	"fleetcheck/pkg/target"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Palette, dark-terminal friendly.
var (
	purple = lipgloss.Color("99")
	green  = lipgloss.Color("76")
	red    = lipgloss.Color("204")
	yellow = lipgloss.Color("214")
	dim    = lipgloss.Color("243")
	faint  = lipgloss.Color("238")
)

var (
	AccentStyle  = lipgloss.NewStyle().Foreground(purple)
	SuccessStyle = lipgloss.NewStyle().Foreground(green)
	ErrorStyle   = lipgloss.NewStyle().Foreground(red)
	WarnStyle    = lipgloss.NewStyle().Foreground(yellow)
	MutedStyle   = lipgloss.NewStyle().Foreground(dim)
	BoldStyle    = lipgloss.NewStyle().Bold(true)
)

func Muted(s string) string { return MutedStyle.Render(s) }
func Bold(s string) string  { return BoldStyle.Render(s) }

func SuccessMsg(format string, a ...any) string {
	return SuccessStyle.Render("✓") + " " + fmt.Sprintf(format, a...)
}

func ErrorMsg(format string, a ...any) string {
	return ErrorStyle.Render("✗") + " " + fmt.Sprintf(format, a...)
}

func InfoMsg(format string, a ...any) string {
	return AccentStyle.Render("●") + " " + fmt.Sprintf(format, a...)
}

// Status colors a verdict: Up green, Not Found yellow, the rest red.
func Status(s monitor.Status) string {
	switch s {
	case monitor.StatusUp:
		return SuccessStyle.Render(s.String())
	case monitor.StatusNotFound:
		return WarnStyle.Render(s.String())
	default:
		return ErrorStyle.Render(s.String())
	}
}

// Table renders a styled table with rounded borders.
func Table(headers []string, rows [][]string) string {
	headerStyle := lipgloss.NewStyle().
		Foreground(purple).
		Bold(true).
		Padding(0, 1)

	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	oddStyle := cellStyle.Foreground(dim)
	evenStyle := cellStyle

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(faint)).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row%2 == 0:
				return evenStyle
			default:
				return oddStyle
			}
		}).
		Headers(headers...).
		Rows(rows...)

	return t.String()
}

// Latency formats a latency in milliseconds, or "-" when unknown.
func Latency(ms *float64) string {
	if ms == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f ms", *ms)
}

// Report renders the rows of rep that quiet mode leaves visible.
func Report(rep report.Report, quiet bool) string {
	rows := rep.Visible(quiet)
	if len(rows) == 0 {
		return SuccessMsg("all %d targets up", rep.Summary.Total)
	}
	cells := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells = append(cells, []string{
			row.Target.DisplayName,
			row.Target.Address,
			Status(row.Outcome.Status),
			Latency(row.Outcome.LatencyMillis),
			row.Outcome.RawInfo,
		})
	}
	return Table([]string{"NAME", "ADDRESS", "STATUS", "LATENCY", "INFO"}, cells)
}

// DNS renders one row per site with the addresses each resolver returned.
func DNS(rep report.Report, quiet bool) string {
	rows := rep.Visible(quiet)
	if len(rows) == 0 {
		return SuccessMsg("all %d sites resolved", rep.Summary.Total)
	}
	headers := []string{"SITE", "STATUS", "IPV4", "IPV6"}
	for _, r := range rep.Resolvers {
		headers = append(headers, r.Server)
	}
	cells := make([][]string, 0, len(rows))
	for _, row := range rows {
		ipv4, ipv6, _ := strings.Cut(row.Outcome.RawInfo, " ")
		line := []string{row.Target.DisplayName, Status(row.Outcome.Status), ipv4, ipv6}
		for _, srv := range rep.Resolvers {
			line = append(line, resolverVerdict(row.Outcome.Resolvers, srv.Server))
		}
		cells = append(cells, line)
	}
	return Table(headers, cells)
}

func resolverVerdict(results []monitor.ResolverResult, server string) string {
	for _, r := range results {
		if r.Server != server {
			continue
		}
		if r.OK {
			return SuccessStyle.Render("OK")
		}
		return ErrorStyle.Render("FAIL")
	}
	return "-"
}

// Stats is the one-line run summary.
func Stats(s report.Summary) string {
	line := fmt.Sprintf("STATS: %d/%d Online | %d Down", s.Up, s.Total, s.Down)
	if s.AvgLatencyMillis != nil {
		line += fmt.Sprintf(" | Avg Latency: %.2f ms", *s.AvgLatencyMillis)
	}
	return Bold(line)
}

// ResolverStats lists how many sites each resolver answered.
func ResolverStats(resolvers []report.ResolverSummary) string {
	parts := make([]string, 0, len(resolvers))
	for _, r := range resolvers {
		parts = append(parts, fmt.Sprintf("%s %d OK / %d FAIL", r.Server, r.OK, r.Failed))
	}
	return Muted(strings.Join(parts, " | "))
}

// Restarts reports each restart attempt on its own line.
func Restarts(results []report.RestartResult) string {
	lines := make([]string, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			lines = append(lines, ErrorMsg("restart %s failed: %v", r.Target.DisplayName, r.Err))
		} else {
			lines = append(lines, SuccessMsg("restarted %s", r.Target.DisplayName))
		}
	}
	return strings.Join(lines, "\n")
}

// Uptime renders the uptime windows for one target.
func Uptime(t target.Target, windows []history.Window) string {
	cells := make([][]string, 0, len(windows))
	for _, w := range windows {
		pct := "N/A"
		if p, ok := w.Percent(); ok {
			pct = fmt.Sprintf("%.2f%%", p)
		}
		cells = append(cells, []string{w.Label, pct, fmt.Sprint(w.Up), fmt.Sprint(w.Down)})
	}
	return InfoMsg("%s (%s)", Bold(t.DisplayName), t.Address) + "\n" +
		Table([]string{"WINDOW", "UPTIME", "UP", "DOWN"}, cells)
}

// List renders the configured targets without probing them.
func List(targets []target.Target) string {
	cells := make([][]string, 0, len(targets))
	for _, t := range targets {
		cells = append(cells, []string{t.ID.Short(), t.Group, t.Address, t.DisplayName})
	}
	return Table([]string{"ID", "GROUP", "ADDRESS", "NAME"}, cells)
}
