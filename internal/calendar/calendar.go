package calendar

import (
	"time"

	"github.com/rxtech-lab/argo-montecarlo/pkg/errors"
)

// ClockTime is a wall-clock time of day in the calendar's location.
type ClockTime struct {
	Hour   int `yaml:"hour" json:"hour" validate:"gte=0,lt=24"`
	Minute int `yaml:"minute" json:"minute" validate:"gte=0,lt=60"`
}

// onDay pins the clock time onto the given day in that day's location.
func (ct ClockTime) onDay(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), ct.Hour, ct.Minute, 0, 0, day.Location())
}

// Session is one trading session, the half-open interval [Open, Close).
type Session struct {
	Open  ClockTime `yaml:"open" json:"open"`
	Close ClockTime `yaml:"close" json:"close"`
}

// Calendar is a weekly trading-session schedule. It classifies instants as
// in or out of session and maps arbitrary instants to valid trading
// instants. A Calendar is immutable after construction and safe to share
// across parallel trials.
type Calendar struct {
	sessions map[time.Weekday]Session
	location *time.Location
	tick     time.Duration
}

// maxDayWalk bounds the day-by-day session search. Construction guarantees
// at least one trading day per week, so seven days always suffice.
const maxDayWalk = 8

// New creates a calendar from a weekday schedule. It fails fast on a
// schedule with zero trading days or a session that closes at or before it
// opens. tick is the calendar's resolution: the last valid instant of a
// session is one tick before its close.
func New(sessions map[time.Weekday]Session, location *time.Location, tick time.Duration) (*Calendar, error) {
	if len(sessions) == 0 {
		return nil, errors.New(errors.ErrCodeNoTradingDays, "schedule has no trading days")
	}

	if location == nil {
		location = time.UTC
	}

	if tick <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidSchedule, "tick must be positive, got %v", tick)
	}

	for weekday, session := range sessions {
		openMinutes := session.Open.Hour*60 + session.Open.Minute
		closeMinutes := session.Close.Hour*60 + session.Close.Minute

		if closeMinutes <= openMinutes {
			return nil, errors.Newf(errors.ErrCodeInvalidSchedule,
				"%s session closes (%02d:%02d) at or before it opens (%02d:%02d)",
				weekday, session.Close.Hour, session.Close.Minute, session.Open.Hour, session.Open.Minute)
		}
	}

	copied := make(map[time.Weekday]Session, len(sessions))
	for weekday, session := range sessions {
		copied[weekday] = session
	}

	return &Calendar{
		sessions: copied,
		location: location,
		tick:     tick,
	}, nil
}

// Weekdays builds a Monday-through-Friday schedule with the same session
// every day.
func Weekdays(open ClockTime, close ClockTime) map[time.Weekday]Session {
	session := Session{Open: open, Close: close}

	return map[time.Weekday]Session{
		time.Monday:    session,
		time.Tuesday:   session,
		time.Wednesday: session,
		time.Thursday:  session,
		time.Friday:    session,
	}
}

// NYSE returns the regular NYSE schedule: Mon-Fri 09:30-16:00 Eastern, at
// one-minute resolution.
func NYSE() (*Calendar, error) {
	location, err := time.LoadLocation("America/New_York")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSchedule, "failed to load NYSE time zone", err)
	}

	return New(Weekdays(ClockTime{Hour: 9, Minute: 30}, ClockTime{Hour: 16}), location, time.Minute)
}

// Tick returns the calendar's resolution.
func (c *Calendar) Tick() time.Duration {
	return c.tick
}

// sessionOn returns the session bounds for the day containing local, if that
// weekday trades.
func (c *Calendar) sessionOn(local time.Time) (time.Time, time.Time, bool) {
	session, ok := c.sessions[local.Weekday()]
	if !ok {
		return time.Time{}, time.Time{}, false
	}

	return session.Open.onDay(local), session.Close.onDay(local), true
}

// InSession reports whether t falls inside a trading session.
func (c *Calendar) InSession(t time.Time) bool {
	local := t.In(c.location)

	open, close, ok := c.sessionOn(local)
	if !ok {
		return false
	}

	return !local.Before(open) && local.Before(close)
}

// NextSessionInstant returns the first session open after t. t is assumed to
// be outside any session.
func (c *Calendar) NextSessionInstant(t time.Time) time.Time {
	local := t.In(c.location)

	for i := 0; i < maxDayWalk; i++ {
		day := local.AddDate(0, 0, i)

		open, _, ok := c.sessionOn(day)
		if !ok {
			continue
		}

		if open.After(local) {
			return open
		}
	}

	// unreachable: New guarantees at least one trading day per week
	panic("calendar: no session found within a week")
}

// PreviousSessionInstant returns the last valid trading instant before t:
// one tick before the close of the most recent session. t is assumed to be
// outside any session.
func (c *Calendar) PreviousSessionInstant(t time.Time) time.Time {
	local := t.In(c.location)

	for i := 0; i < maxDayWalk; i++ {
		day := local.AddDate(0, 0, -i)

		_, close, ok := c.sessionOn(day)
		if !ok {
			continue
		}

		last := close.Add(-c.tick)
		if last.Before(local) {
			return last
		}
	}

	panic("calendar: no session found within a week")
}

// SoonestSessionInstant returns t itself when in session, otherwise the next
// session open.
func (c *Calendar) SoonestSessionInstant(t time.Time) time.Time {
	if c.InSession(t) {
		return t
	}

	return c.NextSessionInstant(t)
}

// MostRecentSessionInstant returns t itself when in session, otherwise the
// last valid instant of the previous session.
func (c *Calendar) MostRecentSessionInstant(t time.Time) time.Time {
	if c.InSession(t) {
		return t
	}

	return c.PreviousSessionInstant(t)
}
