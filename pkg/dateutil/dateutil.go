package dateutil

import "time"

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// DaysUntil returns the number of whole calendar days between now and end,
// ignoring the time-of-day of both. A date ending today yields 0, yesterday
// yields -1.
func DaysUntil(now, end time.Time) int {
	from := StartOfDay(now)
	to := StartOfDay(end.In(now.Location()))
	return int(to.Sub(from) / (24 * time.Hour))
}

// NextDailyTrigger returns the next occurrence of the given wall-clock hour
// in loc, strictly after now.
func NextDailyTrigger(now time.Time, hour int, loc *time.Location) time.Time {
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), hour, 0, 0, 0, loc)
	if !next.After(local) {
		next = next.AddDate(0, 0, 1)
	}

	return next
}

// AddPeriod advances t by one subscription period.
func AddPeriod(t time.Time) time.Time {
	return t.AddDate(0, 1, 0)
}
