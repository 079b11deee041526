package analytics

import (
	"errors"
	"time"
)

var ErrInvalidPeriod = errors.New("invalid period")

var periodDays = map[string]int{
	"7d":  7,
	"30d": 30,
	"90d": 90,
}

// Window is a half-open time range [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// ResolvePeriod maps a period token to the trailing window ending at now.
// Callers evaluate now once per request so every aggregation in that request
// sees the same window.
func ResolvePeriod(period string, now time.Time) (Window, error) {
	days, ok := periodDays[period]
	if !ok {
		return Window{}, ErrInvalidPeriod
	}
	return Window{Start: now.AddDate(0, 0, -days), End: now}, nil
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Previous returns the immediately preceding window of equal length.
func (w Window) Previous() Window {
	span := w.End.Sub(w.Start)
	return Window{Start: w.Start.Add(-span), End: w.Start}
}
