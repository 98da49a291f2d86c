/*
Package window resolves the monthly submission window.

PURPOSE:
  New investments and withdrawal requests may only be submitted during a short
  window at the start of each month: nominally the 1st and 2nd. When either day
  falls on a weekend or public holiday it shifts forward to the next business
  day. If the 1st and 2nd collapse onto the same business day (a long weekend
  swallowing both), the window end is pushed one business day past the start so
  the window is always at least one full day.

  The same window gates investment submission and withdrawal submission;
  month-start timing is shared. Privileged accounts may bypass the window via a
  profile role flag, checked by callers - there is no identity special-casing
  here.

INVARIANTS:
  - Start <= End
  - Start and End are both business days
  - Containment checks are date-only and inclusive

SEE ALSO:
  - calendar/: business day source
*/
package window

import (
	"fmt"
	"time"

	"github.com/ablelink/invest-engine/calendar"
)

// Window is the effective, business-day-adjusted submission window of a month.
type Window struct {
	Start time.Time
	End   time.Time
}

// Resolver computes submission windows against a holiday calendar.
type Resolver struct {
	Calendar *calendar.Calendar
}

func NewResolver(cal *calendar.Calendar) *Resolver {
	return &Resolver{Calendar: cal}
}

// Resolve returns the effective submission window for the given month.
func (r *Resolver) Resolve(year int, month time.Month) Window {
	nominalStart := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	nominalEnd := time.Date(year, month, 2, 0, 0, 0, 0, time.UTC)

	start := r.Calendar.NextBusinessDay(nominalStart)
	end := r.Calendar.NextBusinessDay(nominalEnd)

	// Both nominal days collapsed onto the same business day: extend the end
	// so the window still spans more than the single start day.
	if !end.After(start) {
		end = r.Calendar.NextBusinessDay(start.AddDate(0, 0, 1))
	}

	return Window{Start: start, End: end}
}

// Open reports whether the submission window of today's month contains today.
// Time-of-day is ignored.
func (r *Resolver) Open(today time.Time) bool {
	w := r.Resolve(today.Year(), today.Month())
	return w.Contains(today)
}

// Contains reports whether the date falls within the window, inclusive on
// both ends.
func (w Window) Contains(t time.Time) bool {
	d := calendar.DateOnly(t)
	return !d.Before(w.Start) && !d.After(w.End)
}

func (w Window) String() string {
	return fmt.Sprintf("%s .. %s", w.Start.Format("2006-01-02"), w.End.Format("2006-01-02"))
}
