package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/ledger-server/internal/errs"
	"github.com/carson-networks/ledger-server/internal/storage/bill"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextDueDate(t *testing.T) {
	tests := []struct {
		name string
		freq bill.Frequency
		from time.Time
		want time.Time
	}{
		{"weekly", bill.FrequencyWeekly, date(2025, 1, 10), date(2025, 1, 17)},
		{"bi-weekly", bill.FrequencyBiWeekly, date(2025, 1, 10), date(2025, 1, 24)},
		{"monthly", bill.FrequencyMonthly, date(2025, 1, 10), date(2025, 2, 10)},
		{"monthly clamps to month end", bill.FrequencyMonthly, date(2025, 1, 31), date(2025, 2, 28)},
		{"monthly leap year clamp", bill.FrequencyMonthly, date(2024, 1, 31), date(2024, 2, 29)},
		{"monthly across year boundary", bill.FrequencyMonthly, date(2024, 12, 15), date(2025, 1, 15)},
		{"quarterly", bill.FrequencyQuarterly, date(2025, 1, 31), date(2025, 4, 30)},
		{"semi-annually", bill.FrequencySemiAnnually, date(2025, 1, 10), date(2025, 7, 10)},
		{"annually", bill.FrequencyAnnually, date(2025, 1, 10), date(2026, 1, 10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextDueDate(tt.freq, tt.from)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNextDueDate_NoNextDate(t *testing.T) {
	_, err := NextDueDate(bill.FrequencyOneTime, date(2025, 1, 1))
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindValidation))

	_, err = NextDueDate(bill.Frequency("fortnightly"), date(2025, 1, 1))
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindValidation))
}

func TestDerive(t *testing.T) {
	due := date(2025, 1, 1)

	tests := []struct {
		name    string
		current bill.Status
		now     time.Time
		want    bill.Status
	}{
		{"unpaid past due goes overdue", bill.StatusActive, date(2025, 1, 5), bill.StatusOverdue},
		{"unpaid on due date stays active", bill.StatusActive, date(2025, 1, 1), bill.StatusActive},
		{"unpaid before due date stays active", bill.StatusActive, date(2024, 12, 31), bill.StatusActive},
		{"overdue snaps back when due date moved forward", bill.StatusOverdue, date(2024, 12, 20), bill.StatusActive},
		{"paid is terminal", bill.StatusPaid, date(2025, 6, 1), bill.StatusPaid},
		{"cancelled is terminal", bill.StatusCancelled, date(2025, 6, 1), bill.StatusCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Derive(tt.current, due, tt.now))
		})
	}
}

func TestDerive_SameDayDifferentClockTime(t *testing.T) {
	due := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	now := time.Date(2025, 1, 10, 23, 59, 0, 0, time.UTC)

	// later clock time on the due date is not past due
	assert.Equal(t, bill.StatusActive, Derive(bill.StatusActive, due, now))
}

func TestDaysPastDue(t *testing.T) {
	assert.Equal(t, 4, DaysPastDue(date(2025, 1, 1), date(2025, 1, 5)))
	assert.Equal(t, 0, DaysPastDue(date(2025, 1, 5), date(2025, 1, 5)))
	assert.Equal(t, 0, DaysPastDue(date(2025, 1, 10), date(2025, 1, 5)))
}

func TestPeriodBounds(t *testing.T) {
	ref := date(2025, 5, 17)

	start, end, err := PeriodBounds(PeriodMonth, ref)
	require.NoError(t, err)
	assert.Equal(t, date(2025, 5, 1), start)
	assert.Equal(t, date(2025, 6, 1), end)

	start, end, err = PeriodBounds(PeriodQuarter, ref)
	require.NoError(t, err)
	assert.Equal(t, date(2025, 4, 1), start)
	assert.Equal(t, date(2025, 7, 1), end)

	start, end, err = PeriodBounds(PeriodYear, ref)
	require.NoError(t, err)
	assert.Equal(t, date(2025, 1, 1), start)
	assert.Equal(t, date(2026, 1, 1), end)

	_, _, err = PeriodBounds(Period("week"), ref)
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindValidation))
}
