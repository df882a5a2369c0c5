package actions

import (
	"context"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/errs"
	"github.com/carson-networks/ledger-server/internal/storage"
	"github.com/carson-networks/ledger-server/internal/storage/bill"
)

// CreateBill inserts a bill in state active.
type CreateBill struct {
	UserID       uuid.UUID
	CategoryID   uuid.UUID
	Name         string
	Amount       decimal.Decimal
	DueDate      time.Time
	Frequency    bill.Frequency
	ReminderDays int
	Recurring    bool
	Notes        string

	// CreatedID is populated on success.
	CreatedID uuid.UUID
}

func (a *CreateBill) Perform(ctx context.Context, writer *storage.Writer) error {
	name := strings.TrimSpace(a.Name)
	if name == "" {
		return errs.Validation("bill name is required")
	}
	if a.Amount.IsNegative() {
		return errs.Validation("bill amount must not be negative, got %s", a.Amount.String())
	}
	if !a.Frequency.Valid() {
		return errs.Validation("unknown frequency %q", string(a.Frequency))
	}
	if a.DueDate.IsZero() {
		return errs.Validation("due date is required")
	}
	if a.Recurring && a.Frequency == bill.FrequencyOneTime {
		return errs.Validation("recurring bill requires a recurrence frequency")
	}

	if _, err := writer.Categories.FindByID(ctx, a.UserID, a.CategoryID); err != nil {
		return err
	}

	id, err := writer.Bills.Insert(ctx, &bill.BillCreate{
		UserID:       a.UserID,
		CategoryID:   a.CategoryID,
		Name:         name,
		Amount:       a.Amount,
		DueDate:      a.DueDate,
		Frequency:    a.Frequency,
		ReminderDays: a.ReminderDays,
		Recurring:    a.Recurring,
		Notes:        a.Notes,
	})
	if err != nil {
		return err
	}

	a.CreatedID = id
	return nil
}
