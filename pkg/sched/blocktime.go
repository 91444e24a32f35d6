package sched

import (
	"time"
)

// Window is a half-open time interval [Start, End) during which an aircraft
// is committed to a flight, including the boarding and post-arrival margins.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Overlaps reports whether two half-open windows intersect. Windows that
// merely touch at a boundary do not overlap.
func (w Window) Overlaps(o Window) bool {
	return w.Start.Before(o.End) && o.Start.Before(w.End)
}

// IsZero reports whether the window is the invalid sentinel.
func (w Window) IsZero() bool {
	return w.Start.IsZero() && w.End.IsZero()
}

// BlockTimeCalculator derives occupied windows from departure times and
// route durations according to the configured margins.
type BlockTimeCalculator struct {
	cfg Config
}

func NewBlockTimeCalculator(cfg Config) BlockTimeCalculator {
	return BlockTimeCalculator{cfg: cfg}
}

// Arrival returns the arrival instant for a departure and flight duration.
// time.Add handles day, month and year rollover.
func (c BlockTimeCalculator) Arrival(departure time.Time, flightMinutes int) time.Time {
	if departure.IsZero() || flightMinutes <= 0 {
		return time.Time{}
	}
	return departure.Add(time.Duration(flightMinutes) * time.Minute)
}

// BlockWindow computes the full occupied window around a nominal departure:
// boarding margin before departure through the post-arrival margin after
// arrival. It returns a zero Window and false when the inputs cannot
// produce a window.
func (c BlockTimeCalculator) BlockWindow(departure time.Time, flightMinutes int) (Window, bool) {
	if departure.IsZero() || flightMinutes <= 0 {
		return Window{}, false
	}
	arrival := c.Arrival(departure, flightMinutes)
	return Window{
		Start: departure.Add(-time.Duration(c.cfg.BoardingMinutes) * time.Minute),
		End:   arrival.Add(time.Duration(c.cfg.PostArrivalMinutes) * time.Minute),
	}, true
}
