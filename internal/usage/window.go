// Package usage holds the pure aggregation logic over usage records:
// rounding, calendar windows, per-user summaries, 7-day charts and the
// admin grouping fold. Nothing here touches storage or the clock.
package usage

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// DateLayout is the calendar-day format used for usage dates.
const DateLayout = "2006-01-02"

// Round2 rounds to 2 decimal places. Apply it to output values only, never to
// intermediate sums.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// ParseDate accepts YYYY-MM-DD or an RFC3339 timestamp and returns the
// calendar day in DateLayout. Timestamps keep the date of their own offset.
func ParseDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if d, err := time.Parse(DateLayout, s); err == nil {
		return d.Format(DateLayout), nil
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts.Format(DateLayout), nil
	}
	return "", fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
}

// Day is one slot of a chart window.
type Day struct {
	Date  string // YYYY-MM-DD
	Label string // Mon, Tue, ...
}

// Window returns n consecutive days ending at today (inclusive), ascending.
// today is interpreted in its own location.
func Window(today time.Time, n int) []Day {
	y, m, d := today.Date()
	end := time.Date(y, m, d, 0, 0, 0, 0, today.Location())
	days := make([]Day, 0, n)
	for i := n - 1; i >= 0; i-- {
		t := end.AddDate(0, 0, -i)
		days = append(days, Day{Date: t.Format(DateLayout), Label: t.Weekday().String()[:3]})
	}
	return days
}

// Labels returns the weekday labels of a window.
func Labels(days []Day) []string {
	out := make([]string, len(days))
	for i, d := range days {
		out[i] = d.Label
	}
	return out
}
