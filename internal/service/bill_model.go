package service

import (
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/schedule"
	"github.com/carson-networks/ledger-server/internal/storage/bill"
)

// Bill represents a bill in the service layer. Status is re-derived for
// the listing time, never trusted from the stored row.
type Bill struct {
	ID           uuid.UUID
	CategoryID   uuid.UUID
	Name         string
	Amount       decimal.Decimal
	DueDate      time.Time
	Frequency    bill.Frequency
	Status       bill.Status
	ReminderDays int
	Recurring    bool
	Notes        string
	DaysPastDue  int
	CreatedAt    time.Time
}

func billFromStorage(row *bill.Bill, now time.Time) Bill {
	status := schedule.Derive(row.Status, row.DueDate, now)
	converted := Bill{
		ID:           row.ID,
		CategoryID:   row.CategoryID,
		Name:         row.Name,
		Amount:       row.Amount,
		DueDate:      row.DueDate,
		Frequency:    row.Frequency,
		Status:       status,
		ReminderDays: row.ReminderDays,
		Recurring:    row.Recurring,
		Notes:        row.Notes,
		CreatedAt:    row.CreatedAt,
	}
	if status == bill.StatusOverdue {
		converted.DaysPastDue = schedule.DaysPastDue(row.DueDate, now)
	}
	return converted
}

// CreateBillInput is the input for creating a bill.
type CreateBillInput struct {
	CategoryID   uuid.UUID
	Name         string
	Amount       decimal.Decimal
	DueDate      time.Time
	Frequency    bill.Frequency
	ReminderDays int
	Recurring    bool
	Notes        string
}

// MarkPaidInput is the input for recording a bill payment.
type MarkPaidInput struct {
	// Amount nil means the bill's own amount.
	Amount  *decimal.Decimal
	PaidAt  time.Time
	Notes   string
	Cleared bool
	// CreateTransaction posts an expense against AccountID in the same
	// atomic unit as the payment record.
	CreateTransaction bool
	AccountID         uuid.UUID
}

// PaymentResult reports the outcome of a payment.
type PaymentResult struct {
	PaymentID     uuid.UUID
	TransactionID *uuid.UUID
	Status        bill.Status
	NextDueDate   *time.Time
}

// Payment is one payment record in the service layer.
type Payment struct {
	ID            uuid.UUID
	BillID        uuid.UUID
	Amount        decimal.Decimal
	PaidAt        time.Time
	TransactionID *uuid.UUID
	Notes         string
}

// PaymentHistory is the ordered payment sequence for a bill with totals.
type PaymentHistory struct {
	Payments  []Payment
	Count     int
	TotalPaid decimal.Decimal
}

// BillSummary is a group of bills with a summed total, used for upcoming
// and overdue queries.
type BillSummary struct {
	Bills []Bill
	Total decimal.Decimal
}

// BillStatistics aggregates paid, upcoming, and overdue amounts within
// one period bucket.
type BillStatistics struct {
	PeriodStart   time.Time
	PeriodEnd     time.Time
	PaidTotal     decimal.Decimal
	PaidCount     int
	UpcomingTotal decimal.Decimal
	UpcomingCount int
	OverdueTotal  decimal.Decimal
	OverdueCount  int
}
