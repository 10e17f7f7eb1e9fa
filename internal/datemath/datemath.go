package datemath

import (
	"math"
	"time"

	"piglet-bot/internal/models"
)

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// NextOccurrence returns the nearest date >= today carrying the given
// month/day. If the candidate in today's year has already passed, it rolls
// forward exactly one year. A Feb-29 anniversary in a non-leap target year
// clamps to Feb-28 and never errors.
func NextOccurrence(md models.MonthDay, today time.Time) time.Time {
	todayStart := StartOfDay(today)

	candidate := anniversaryInYear(md, today.Year(), today.Location())
	if candidate.Before(todayStart) {
		candidate = anniversaryInYear(md, today.Year()+1, today.Location())
	}
	return candidate
}

func anniversaryInYear(md models.MonthDay, year int, loc *time.Location) time.Time {
	d := time.Date(year, md.Month, md.Day, 0, 0, 0, 0, loc)
	if d.Month() != md.Month {
		// time.Date normalized an out-of-range day (Feb 29 in a non-leap
		// year); clamp to the last day of the intended month.
		d = time.Date(year, md.Month+1, 0, 0, 0, 0, 0, loc)
	}
	return d
}

// DaysBetween returns the whole-day difference a-b after truncating both
// sides to start of day, so same-calendar-day inputs always yield 0. Rounding
// absorbs DST transitions that make a day 23 or 25 hours long.
func DaysBetween(a, b time.Time) int {
	diff := StartOfDay(a).Sub(StartOfDay(b))
	return int(math.Round(diff.Hours() / 24))
}

// ClosestToHour picks the forecast entry whose timestamp is nearest to
// targetHour:00:00 of now's calendar day. The second return value is false
// when entries is empty. Ties keep the first entry encountered.
func ClosestToHour(entries []models.ForecastEntry, targetHour int, now time.Time) (models.ForecastEntry, bool) {
	if len(entries) == 0 {
		return models.ForecastEntry{}, false
	}

	target := time.Date(now.Year(), now.Month(), now.Day(), targetHour, 0, 0, 0, now.Location())

	best := entries[0]
	for _, e := range entries[1:] {
		if absDuration(e.Timestamp.Sub(target)) < absDuration(best.Timestamp.Sub(target)) {
			best = e
		}
	}
	return best, true
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
