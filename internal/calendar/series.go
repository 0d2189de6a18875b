package calendar

import (
	"fmt"
	"iter"
	"time"
)

// SessionSeries returns a lazy, restartable, infinite sequence of strictly
// increasing in-session instants. The first element is the soonest session
// instant at or after start; each following element is the raw increment
// past the previous one, snapped forward into session when it lands outside.
// Only a bounded prefix is ever consumed; callers break out of the range.
func (c *Calendar) SessionSeries(start time.Time, increment time.Duration) iter.Seq[time.Time] {
	if increment <= 0 {
		panic(fmt.Sprintf("calendar: session series increment must be positive, got %v", increment))
	}

	return func(yield func(time.Time) bool) {
		current := c.SoonestSessionInstant(start)

		for {
			if !yield(current) {
				return
			}

			current = c.SoonestSessionInstant(current.Add(increment))
		}
	}
}

// ReverseSessionSeries is the strictly decreasing counterpart of
// SessionSeries, walking backward from the most recent session instant at or
// before start.
func (c *Calendar) ReverseSessionSeries(start time.Time, increment time.Duration) iter.Seq[time.Time] {
	if increment <= 0 {
		panic(fmt.Sprintf("calendar: session series increment must be positive, got %v", increment))
	}

	return func(yield func(time.Time) bool) {
		current := c.MostRecentSessionInstant(start)

		for {
			if !yield(current) {
				return
			}

			current = c.MostRecentSessionInstant(current.Add(-increment))
		}
	}
}

// MixedSeries yields lookback backward instants before start (oldest first)
// followed by the forward series beginning at start. It seeds contexts that
// need n periods of warm-up history before trading begins.
func (c *Calendar) MixedSeries(start time.Time, increment time.Duration, lookback int) iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		if lookback > 0 {
			backward := make([]time.Time, 0, lookback)
			first := c.SoonestSessionInstant(start)

			for t := range c.ReverseSessionSeries(first.Add(-increment), increment) {
				backward = append(backward, t)
				if len(backward) == lookback {
					break
				}
			}

			for i := len(backward) - 1; i >= 0; i-- {
				if !yield(backward[i]) {
					return
				}
			}
		}

		for t := range c.SessionSeries(start, increment) {
			if !yield(t) {
				return
			}
		}
	}
}

// EstimatedDurationForPeriods returns the wall-clock gap between reference
// and the instant n periods before it along the reverse series. Because
// periods are schedule-aware, this is longer than n*periodLength whenever
// the walk crosses session gaps; it sizes the history lookback window a
// strategy needs.
func (c *Calendar) EstimatedDurationForPeriods(n int, periodLength time.Duration, reference time.Time) time.Duration {
	if n <= 0 {
		return 0
	}

	current := c.MostRecentSessionInstant(reference)
	for i := 0; i < n; i++ {
		current = c.MostRecentSessionInstant(current.Add(-periodLength))
	}

	return reference.Sub(current)
}
