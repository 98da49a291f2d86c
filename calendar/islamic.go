/*
islamic.go - Per-year Islamic holiday approximations

Islamic holidays follow the lunar Hijri calendar and are declared on moon
sighting, so they cannot be derived from the civil calendar. We keep a table of
civil-date approximations per year. The table is data, not code: operators can
load a corrected table at startup (see LoadIslamicTable) when the official
dates are announced, without a redeploy of calendar logic.

The approximations can be off by a day or two. That is an acknowledged
limitation of the source data, not something this package tries to fix.
*/
package calendar

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// IslamicDates holds the approximate civil dates of the Islamic holidays
// observed in Nigeria for one year. Eid al-Fitr and Eid al-Adha each carry a
// second public holiday on the following day.
type IslamicDates struct {
	EidAlFitr   time.Time `json:"eid_al_fitr"`
	EidAlAdha   time.Time `json:"eid_al_adha"`
	EidElMaulud time.Time `json:"eid_el_maulud"`
}

// IslamicTable maps year -> approximate holiday dates.
type IslamicTable map[int]IslamicDates

// DefaultIslamicTable returns the built-in approximations. Dates here are
// estimates and need annual recalibration once official dates are announced.
func DefaultIslamicTable() IslamicTable {
	d := func(y int, m time.Month, day int) time.Time {
		return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
	}
	return IslamicTable{
		2024: {EidAlFitr: d(2024, time.April, 10), EidAlAdha: d(2024, time.June, 17), EidElMaulud: d(2024, time.September, 16)},
		2025: {EidAlFitr: d(2025, time.March, 31), EidAlAdha: d(2025, time.June, 7), EidElMaulud: d(2025, time.September, 5)},
		2026: {EidAlFitr: d(2026, time.March, 20), EidAlAdha: d(2026, time.May, 27), EidElMaulud: d(2026, time.August, 26)},
	}
}

// Holidays expands the table entry for a year into concrete holidays,
// including the day-after holidays for both Eids. Years absent from the table
// contribute nothing.
func (t IslamicTable) Holidays(year int) []Holiday {
	dates, ok := t[year]
	if !ok {
		return nil
	}
	return []Holiday{
		{Date: DateOnly(dates.EidAlFitr), Name: "Eid al-Fitr"},
		{Date: DateOnly(dates.EidAlFitr).AddDate(0, 0, 1), Name: "Eid al-Fitr Holiday"},
		{Date: DateOnly(dates.EidAlAdha), Name: "Eid al-Adha"},
		{Date: DateOnly(dates.EidAlAdha).AddDate(0, 0, 1), Name: "Eid al-Adha Holiday"},
		{Date: DateOnly(dates.EidElMaulud), Name: "Eid-el-Maulud"},
	}
}

// LoadIslamicTable reads a JSON table of the form
//
//	{"2025": {"eid_al_fitr": "2025-03-31T00:00:00Z", ...}}
//
// from path. Used to ship corrected dates as configuration.
func LoadIslamicTable(path string) (IslamicTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read islamic holiday table: %w", err)
	}
	var byYear map[int]IslamicDates
	if err := json.Unmarshal(raw, &byYear); err != nil {
		return nil, fmt.Errorf("parse islamic holiday table %s: %w", path, err)
	}
	return IslamicTable(byYear), nil
}
