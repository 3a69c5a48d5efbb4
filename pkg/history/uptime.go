package history

import "time"

// Window is the up/down tally for records no older than Duration.
type Window struct {
	Label    string
	Duration time.Duration
	Up       int
	Down     int
}

// DefaultWindows are the 24h, 7d and 30d look-back periods.
var DefaultWindows = []Window{
	{Label: "24h", Duration: 24 * time.Hour},
	{Label: "7d", Duration: 7 * 24 * time.Hour},
	{Label: "30d", Duration: 30 * 24 * time.Hour},
}

func (w Window) Total() int { return w.Up + w.Down }

// Percent is 100*up/(up+down). ok is false when the window holds no records.
func (w Window) Percent() (pct float64, ok bool) {
	if w.Total() == 0 {
		return 0, false
	}
	return 100 * float64(w.Up) / float64(w.Total()), true
}

// Uptime counts records into each window independently. A record counts
// when its timestamp is at or after now minus the window duration.
func Uptime(records []Record, now time.Time, windows []Window) []Window {
	out := make([]Window, len(windows))
	for i, w := range windows {
		w.Up, w.Down = 0, 0
		cutoff := now.Add(-w.Duration)
		for _, r := range records {
			if r.At.Before(cutoff) {
				continue
			}
			if r.Up {
				w.Up++
			} else {
				w.Down++
			}
		}
		out[i] = w
	}
	return out
}
