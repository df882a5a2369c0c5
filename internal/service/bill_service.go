package service

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/config"
	"github.com/carson-networks/ledger-server/internal/operator/actions"
	"github.com/carson-networks/ledger-server/internal/schedule"
	"github.com/carson-networks/ledger-server/internal/storage"
	"github.com/carson-networks/ledger-server/internal/storage/bill"
)

// BillService is the bill lifecycle manager: recurrence, lazy overdue
// derivation, payments, and statistics. The clock is injected so state
// derivation is deterministic.
type BillService struct {
	reader *storage.Reader
	ops    processor
	env    *config.Config
	clock  Clock
}

// NewBillService creates a new BillService.
func NewBillService(reader *storage.Reader, ops processor, env *config.Config, clock Clock) *BillService {
	return &BillService{reader: reader, ops: ops, env: env, clock: clock}
}

// Create creates a new bill in state active.
func (s *BillService) Create(ctx context.Context, userID uuid.UUID, input CreateBillInput) (*Bill, error) {
	action := &actions.CreateBill{
		UserID:       userID,
		CategoryID:   input.CategoryID,
		Name:         input.Name,
		Amount:       input.Amount,
		DueDate:      input.DueDate,
		Frequency:    input.Frequency,
		ReminderDays: input.ReminderDays,
		Recurring:    input.Recurring,
		Notes:        input.Notes,
	}
	if err := s.ops.Process(ctx, action); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID, action.CreatedID)
}

// Get retrieves a bill with its status derived for the current time.
func (s *BillService) Get(ctx context.Context, userID, id uuid.UUID) (*Bill, error) {
	row, err := s.reader.Bills.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	converted := billFromStorage(row, s.clock.Now())
	return &converted, nil
}

// List returns the user's bills. Statuses are re-derived for the current
// time; bills whose stored status flipped to overdue are persisted in the
// same pass so later status-filtered queries see them.
func (s *BillService) List(ctx context.Context, userID uuid.UUID, filter *bill.BillFilter) ([]Bill, error) {
	rows, err := s.reader.Bills.List(ctx, userID, filter)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	var flipped []uuid.UUID
	converted := make([]Bill, len(rows))
	for i, row := range rows {
		converted[i] = billFromStorage(row, now)
		if converted[i].Status == bill.StatusOverdue && row.Status != bill.StatusOverdue {
			flipped = append(flipped, row.ID)
		}
	}

	if len(flipped) > 0 {
		// Derivation is a pure function of time; losing this write to a
		// concurrent pass changes nothing.
		if err := s.ops.Process(ctx, &actions.MarkBillsOverdue{IDs: flipped}); err != nil {
			return nil, err
		}
	}
	return converted, nil
}

// MarkPaid records a payment, optionally emitting an expense transaction,
// and advances recurring bills to their next cycle.
func (s *BillService) MarkPaid(ctx context.Context, userID, billID uuid.UUID, input MarkPaidInput) (*PaymentResult, error) {
	paidAt := input.PaidAt
	if paidAt.IsZero() {
		paidAt = s.clock.Now()
	}

	action := &actions.PayBill{
		UserID:            userID,
		BillID:            billID,
		Amount:            input.Amount,
		PaidAt:            paidAt,
		Notes:             input.Notes,
		Cleared:           input.Cleared,
		CreateTransaction: input.CreateTransaction,
		AccountID:         input.AccountID,
	}
	if err := s.ops.Process(ctx, action); err != nil {
		return nil, err
	}

	return &PaymentResult{
		PaymentID:     action.PaymentID,
		TransactionID: action.TransactionID,
		Status:        action.NewStatus,
		NextDueDate:   action.NextDueDate,
	}, nil
}

// Duplicate creates a fresh active bill from an existing one. The due
// date defaults to the original's next cycle date; one-time bills keep
// the original's due date.
func (s *BillService) Duplicate(ctx context.Context, userID, billID uuid.UUID, overrideName *string, overrideDueDate *time.Time) (*Bill, error) {
	original, err := s.reader.Bills.FindByID(ctx, userID, billID)
	if err != nil {
		return nil, err
	}

	name := original.Name
	if overrideName != nil {
		name = *overrideName
	}

	dueDate := original.DueDate
	if overrideDueDate != nil {
		dueDate = *overrideDueDate
	} else if original.Frequency != bill.FrequencyOneTime {
		dueDate, err = schedule.NextDueDate(original.Frequency, original.DueDate)
		if err != nil {
			return nil, err
		}
	}

	return s.Create(ctx, userID, CreateBillInput{
		CategoryID:   original.CategoryID,
		Name:         name,
		Amount:       original.Amount,
		DueDate:      dueDate,
		Frequency:    original.Frequency,
		ReminderDays: original.ReminderDays,
		Recurring:    original.Recurring,
		Notes:        original.Notes,
	})
}

// Cancel moves a bill to the terminal cancelled state.
func (s *BillService) Cancel(ctx context.Context, userID, billID uuid.UUID) error {
	return s.ops.Process(ctx, &actions.CancelBill{UserID: userID, BillID: billID})
}

// Remove deletes a bill without payment history; one with history is
// cancelled instead so its payment records survive.
func (s *BillService) Remove(ctx context.Context, userID, billID uuid.UUID) (cancelled bool, err error) {
	action := &actions.RemoveBill{UserID: userID, BillID: billID}
	if err := s.ops.Process(ctx, action); err != nil {
		return false, err
	}
	return action.Cancelled, nil
}

// Upcoming returns active bills due within the window, due date
// ascending, with the summed total. windowDays zero means the configured
// default.
func (s *BillService) Upcoming(ctx context.Context, userID uuid.UUID, windowDays, limit int) (*BillSummary, error) {
	if err := s.refreshStatuses(ctx, userID); err != nil {
		return nil, err
	}

	if windowDays <= 0 {
		windowDays = s.env.UpcomingBillWindowDays
	}
	now := s.clock.Now()
	from := schedule.DateOnly(now)
	to := from.AddDate(0, 0, windowDays)

	rows, err := s.reader.Bills.DueWithin(ctx, userID, from, to, limit)
	if err != nil {
		return nil, err
	}
	return s.summarize(rows, now), nil
}

// Overdue returns overdue bills ordered most days past due first, with
// the summed total.
func (s *BillService) Overdue(ctx context.Context, userID uuid.UUID, limit int) (*BillSummary, error) {
	if err := s.refreshStatuses(ctx, userID); err != nil {
		return nil, err
	}

	rows, err := s.reader.Bills.Overdue(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	return s.summarize(rows, s.clock.Now()), nil
}

// PaymentHistory returns a bill's payment records within the optional
// range, payment date ascending, with count and total paid.
func (s *BillService) PaymentHistory(ctx context.Context, userID, billID uuid.UUID, from, to *time.Time) (*PaymentHistory, error) {
	// Ensures a not-found error for foreign bills rather than an empty list.
	if _, err := s.reader.Bills.FindByID(ctx, userID, billID); err != nil {
		return nil, err
	}

	rows, err := s.reader.Bills.Payments(ctx, userID, billID, &bill.PaymentFilter{From: from, To: to})
	if err != nil {
		return nil, err
	}

	history := &PaymentHistory{Count: len(rows)}
	history.Payments = make([]Payment, len(rows))
	for i, row := range rows {
		payment := Payment{
			ID:     row.ID,
			BillID: row.BillID,
			Amount: row.Amount,
			PaidAt: row.PaidAt,
			Notes:  row.Notes,
		}
		if row.TransactionID.Valid {
			id := row.TransactionID.UUID
			payment.TransactionID = &id
		}
		history.Payments[i] = payment
		history.TotalPaid = history.TotalPaid.Add(row.Amount)
	}
	return history, nil
}

// Statistics buckets paid, upcoming, and overdue amounts for the period
// containing ref.
func (s *BillService) Statistics(ctx context.Context, userID uuid.UUID, period schedule.Period, ref time.Time) (*BillStatistics, error) {
	start, end, err := schedule.PeriodBounds(period, ref)
	if err != nil {
		return nil, err
	}

	stats := &BillStatistics{PeriodStart: start, PeriodEnd: end}

	payments, err := s.reader.Bills.PaymentsBetween(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	for _, payment := range payments {
		stats.PaidTotal = stats.PaidTotal.Add(payment.Amount)
		stats.PaidCount++
	}

	bills, err := s.reader.Bills.DueBetween(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	for _, row := range bills {
		switch schedule.Derive(row.Status, row.DueDate, now) {
		case bill.StatusActive:
			stats.UpcomingTotal = stats.UpcomingTotal.Add(row.Amount)
			stats.UpcomingCount++
		case bill.StatusOverdue:
			stats.OverdueTotal = stats.OverdueTotal.Add(row.Amount)
			stats.OverdueCount++
		}
	}
	return stats, nil
}

// refreshStatuses persists the overdue flag for active bills whose due
// date has passed, so status-filtered queries stay truthful without a
// background timer.
func (s *BillService) refreshStatuses(ctx context.Context, userID uuid.UUID) error {
	now := s.clock.Now()
	rows, err := s.reader.Bills.List(ctx, userID, &bill.BillFilter{Status: statusPtr(bill.StatusActive)})
	if err != nil {
		return err
	}

	var flipped []uuid.UUID
	for _, row := range rows {
		if schedule.Derive(row.Status, row.DueDate, now) == bill.StatusOverdue {
			flipped = append(flipped, row.ID)
		}
	}
	if len(flipped) == 0 {
		return nil
	}
	return s.ops.Process(ctx, &actions.MarkBillsOverdue{IDs: flipped})
}

func (s *BillService) summarize(rows []*bill.Bill, now time.Time) *BillSummary {
	summary := &BillSummary{Bills: make([]Bill, len(rows))}
	for i, row := range rows {
		summary.Bills[i] = billFromStorage(row, now)
		summary.Total = summary.Total.Add(row.Amount)
	}
	return summary
}

func statusPtr(s bill.Status) *bill.Status {
	return &s
}
