// Package calendar produces the trading dates a run is allowed to fetch:
// every weekday between two bounds minus a fixed (month, day) holiday set.
package calendar

import (
	"time"

	"nse-data/internal/model"
)

// Holiday is a fixed-date market holiday recurring every year.
type Holiday struct {
	Month time.Month
	Day   int
}

// DefaultHolidays are the fixed national holidays the exchange always
// closes on: Republic Day, Independence Day, Gandhi Jayanti.
var DefaultHolidays = []Holiday{
	{time.January, 26},
	{time.August, 15},
	{time.October, 2},
}

// ValidDates returns every date in [start, end] (inclusive, normalized to
// UTC midnight) whose weekday is Monday through Friday and whose
// (month, day) is not in holidays. Ascending, no duplicates, empty when
// start is after end.
func ValidDates(start, end time.Time, holidays []Holiday) []time.Time {
	startDay := model.Day(start)
	endDay := model.Day(end)
	if startDay.After(endDay) {
		return nil
	}

	var dates []time.Time
	for d := startDay; !d.After(endDay); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		if isHoliday(d, holidays) {
			continue
		}
		dates = append(dates, d)
	}
	return dates
}

func isHoliday(d time.Time, holidays []Holiday) bool {
	for _, h := range holidays {
		if d.Month() == h.Month && d.Day() == h.Day {
			return true
		}
	}
	return false
}
