// Package schedule holds the pure date math for the bill lifecycle:
// recurrence advancement, status derivation, and period bucketing. All
// functions take the current time as a parameter so derivation stays
// deterministic under test.
package schedule

import (
	"time"

	"github.com/carson-networks/ledger-server/internal/errs"
	"github.com/carson-networks/ledger-server/internal/storage/bill"
)

// NextDueDate advances a due date by one recurrence period. Month-based
// periods clamp to the last day of the target month, so a bill due
// Jan 31 advances to Feb 28 rather than spilling into March.
func NextDueDate(freq bill.Frequency, from time.Time) (time.Time, error) {
	switch freq {
	case bill.FrequencyWeekly:
		return from.AddDate(0, 0, 7), nil
	case bill.FrequencyBiWeekly:
		return from.AddDate(0, 0, 14), nil
	case bill.FrequencyMonthly:
		return addMonthsClamped(from, 1), nil
	case bill.FrequencyQuarterly:
		return addMonthsClamped(from, 3), nil
	case bill.FrequencySemiAnnually:
		return addMonthsClamped(from, 6), nil
	case bill.FrequencyAnnually:
		return addMonthsClamped(from, 12), nil
	case bill.FrequencyOneTime:
		return time.Time{}, errs.Validation("one-time bill has no next due date")
	default:
		return time.Time{}, errs.Validation("unknown frequency %q", string(freq))
	}
}

func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	firstOfTarget := time.Date(year, month+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	lastDay := daysIn(firstOfTarget.Year(), firstOfTarget.Month())
	if day > lastDay {
		day = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Derive re-computes a bill's status for the given time. Terminal states
// pass through; active and overdue flip on whether the calendar date of
// now is past the due date.
func Derive(current bill.Status, dueDate, now time.Time) bill.Status {
	switch current {
	case bill.StatusCancelled, bill.StatusPaid:
		return current
	}
	if DateOnly(now).After(DateOnly(dueDate)) {
		return bill.StatusOverdue
	}
	return bill.StatusActive
}

// DateOnly truncates a time to its calendar date in UTC.
func DateOnly(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DaysPastDue reports how many whole days the due date lies in the past,
// zero when it does not.
func DaysPastDue(dueDate, now time.Time) int {
	days := int(DateOnly(now).Sub(DateOnly(dueDate)).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// Period is a statistics bucket boundary.
type Period string

const (
	PeriodMonth   Period = "month"
	PeriodQuarter Period = "quarter"
	PeriodYear    Period = "year"
)

// PeriodBounds returns the inclusive start and exclusive end of the
// period containing ref.
func PeriodBounds(p Period, ref time.Time) (time.Time, time.Time, error) {
	ref = DateOnly(ref)
	year, month, _ := ref.Date()
	switch p {
	case PeriodMonth:
		start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, 0), nil
	case PeriodQuarter:
		quarterStart := time.Month((int(month)-1)/3*3 + 1)
		start := time.Date(year, quarterStart, 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 3, 0), nil
	case PeriodYear:
		start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(1, 0, 0), nil
	default:
		return time.Time{}, time.Time{}, errs.Validation("unknown period %q", string(p))
	}
}
