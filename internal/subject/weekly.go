package subject

import (
	"time"

	"trade-alert-ledger/internal/domain"
)

// NthWeekday returns the n-th occurrence of weekday within the month.
// Returns false when the month has fewer than n such days or n < 1.
func NthWeekday(year int, month time.Month, weekday time.Weekday, n int) (domain.Date, bool) {
	if n < 1 {
		return domain.Date{}, false
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(weekday) - int(first.Weekday()) + 7) % 7
	day := 1 + offset + (n-1)*7

	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Month() != month {
		return domain.Date{}, false
	}
	return domain.Date{Year: year, Month: month, Day: day}, true
}

// WeeklyExpiry resolves a weekly futures-option expiry: the n-th Friday of
// the month, or the n-th Thursday when thursday is set.
func WeeklyExpiry(year int, month time.Month, n int, thursday bool) (domain.Date, bool) {
	weekday := time.Friday
	if thursday {
		weekday = time.Thursday
	}
	return NthWeekday(year, month, weekday, n)
}
