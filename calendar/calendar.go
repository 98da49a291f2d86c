/*
Package calendar computes Nigerian non-business days.

PURPOSE:
  Pure date arithmetic used to gate the monthly submission window. A day is
  non-business when it is a weekend or a Nigerian public holiday. Holidays come
  from three sources:

  1. Fixed-date holidays (same month/day every year)
  2. Easter-relative holidays (Good Friday, Easter Monday) computed from the
     anonymous Gregorian computus
  3. Islamic holidays, which follow lunar sightings and cannot be computed from
     the civil calendar. These are per-year approximations kept in a data table
     so they can be recalibrated annually without touching code that consumes
     the calendar.

DESIGN PRINCIPLES:
  - Purity: every function is a deterministic function of the date
  - Date-only semantics: time-of-day and timezone offsets are ignored

SEE ALSO:
  - window/: submission window resolution built on this package
*/
package calendar

import (
	"time"
)

// Holiday is a single public holiday occurrence in a specific year.
type Holiday struct {
	Date time.Time
	Name string
}

// Calendar resolves Nigerian public holidays. The zero value is not usable;
// construct with New (seeded Islamic table) or NewWithIslamicTable.
type Calendar struct {
	islamic IslamicTable
}

// New returns a Calendar seeded with the built-in Islamic holiday
// approximations (see DefaultIslamicTable).
func New() *Calendar {
	return &Calendar{islamic: DefaultIslamicTable()}
}

// NewWithIslamicTable returns a Calendar using the supplied Islamic holiday
// table. Years missing from the table simply contribute no Islamic holidays.
func NewWithIslamicTable(table IslamicTable) *Calendar {
	return &Calendar{islamic: table}
}

// =============================================================================
// EASTER - Anonymous Gregorian computus
// =============================================================================

// Easter returns Easter Sunday for the given year.
func Easter(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// =============================================================================
// HOLIDAY SOURCES
// =============================================================================

// fixedHolidays are the gazetted fixed-date public holidays. May 29 (the former
// Democracy Day / handover date) is still observed alongside June 12.
func fixedHolidays(year int) []Holiday {
	mk := func(m time.Month, d int, name string) Holiday {
		return Holiday{Date: time.Date(year, m, d, 0, 0, 0, 0, time.UTC), Name: name}
	}
	return []Holiday{
		mk(time.January, 1, "New Year's Day"),
		mk(time.May, 1, "Workers' Day"),
		mk(time.May, 27, "Children's Day"),
		mk(time.May, 29, "Democracy Day Handover"),
		mk(time.June, 12, "Democracy Day"),
		mk(time.October, 1, "Independence Day"),
		mk(time.December, 25, "Christmas Day"),
		mk(time.December, 26, "Boxing Day"),
	}
}

func floatingHolidays(year int) []Holiday {
	easter := Easter(year)
	return []Holiday{
		{Date: easter.AddDate(0, 0, -2), Name: "Good Friday"},
		{Date: easter.AddDate(0, 0, 1), Name: "Easter Monday"},
	}
}

// Holidays returns every public holiday for the year, in source order
// (fixed, Easter-relative, Islamic approximations).
func (c *Calendar) Holidays(year int) []Holiday {
	holidays := fixedHolidays(year)
	holidays = append(holidays, floatingHolidays(year)...)
	holidays = append(holidays, c.islamic.Holidays(year)...)
	return holidays
}

// =============================================================================
// BUSINESS DAY CHECKS
// =============================================================================

// IsHoliday reports whether the date (ignoring time-of-day) is a public
// holiday.
func (c *Calendar) IsHoliday(t time.Time) bool {
	d := DateOnly(t)
	for _, h := range c.Holidays(d.Year()) {
		if h.Date.Equal(d) {
			return true
		}
	}
	return false
}

// IsNonBusinessDay reports whether the date is a weekend or public holiday.
func (c *Calendar) IsNonBusinessDay(t time.Time) bool {
	wd := t.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return true
	}
	return c.IsHoliday(t)
}

// NextBusinessDay returns the earliest business day on or after t.
func (c *Calendar) NextBusinessDay(t time.Time) time.Time {
	d := DateOnly(t)
	for c.IsNonBusinessDay(d) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// DateOnly strips the time-of-day component, normalizing to midnight UTC.
// All calendar comparisons operate on these normalized values.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
