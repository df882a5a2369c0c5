package actions

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/errs"
	"github.com/carson-networks/ledger-server/internal/posting"
	"github.com/carson-networks/ledger-server/internal/schedule"
	"github.com/carson-networks/ledger-server/internal/storage"
	"github.com/carson-networks/ledger-server/internal/storage/bill"
)

// PayBill records a payment against a bill. In the same atomic unit it
// optionally emits an expense transaction through the ledger, and for a
// recurring bill advances the due date by one recurrence period and
// resets the state to active. Non-recurring bills become paid, which is
// terminal.
type PayBill struct {
	UserID uuid.UUID
	BillID uuid.UUID
	// Amount nil means the bill's own amount; an explicit zero records a
	// zero payment.
	Amount  *decimal.Decimal
	PaidAt  time.Time
	Notes   string
	Cleared bool

	// CreateTransaction controls whether the payment also posts an expense
	// against AccountID.
	CreateTransaction bool
	AccountID         uuid.UUID

	// Populated on success.
	PaymentID     uuid.UUID
	TransactionID *uuid.UUID
	NextDueDate   *time.Time
	NewStatus     bill.Status
}

func (a *PayBill) Perform(ctx context.Context, writer *storage.Writer) error {
	row, err := writer.Bills.FindByIDForUpdate(ctx, a.UserID, a.BillID)
	if err != nil {
		return err
	}

	switch row.Status {
	case bill.StatusCancelled:
		return errs.InvalidState("bill %s is cancelled", a.BillID)
	case bill.StatusPaid:
		return errs.InvalidState("bill %s is already paid", a.BillID)
	}

	amount := row.Amount
	if a.Amount != nil {
		amount = *a.Amount
	}
	if amount.IsNegative() {
		return errs.Validation("payment amount must not be negative, got %s", amount.String())
	}

	paidAt := a.PaidAt
	if paidAt.IsZero() {
		paidAt = time.Now()
	}

	var transactionID *uuid.UUID
	if a.CreateTransaction {
		if a.AccountID == uuid.Nil {
			return errs.Validation("an account is required to create a payment transaction")
		}
		createTx := &CreateTransaction{
			UserID:          a.UserID,
			AccountID:       a.AccountID,
			CategoryID:      row.CategoryID,
			Type:            posting.TypeExpense,
			Amount:          amount,
			TransactionDate: paidAt,
			Cleared:         a.Cleared,
			Notes:           "Bill payment: " + row.Name,
		}
		if err := createTx.Perform(ctx, writer); err != nil {
			return err
		}
		transactionID = &createTx.CreatedID
	}

	paymentID, err := writer.Bills.InsertPayment(ctx, &bill.PaymentCreate{
		BillID:        a.BillID,
		Amount:        amount,
		PaidAt:        paidAt,
		TransactionID: transactionID,
		Notes:         a.Notes,
	})
	if err != nil {
		return err
	}

	if row.Recurring {
		nextDue, err := schedule.NextDueDate(row.Frequency, row.DueDate)
		if err != nil {
			return err
		}
		if err := writer.Bills.UpdateSchedule(ctx, a.BillID, nextDue, bill.StatusActive); err != nil {
			return err
		}
		a.NextDueDate = &nextDue
		a.NewStatus = bill.StatusActive
	} else {
		if err := writer.Bills.UpdateStatus(ctx, a.BillID, bill.StatusPaid); err != nil {
			return err
		}
		a.NewStatus = bill.StatusPaid
	}

	a.PaymentID = paymentID
	a.TransactionID = transactionID
	return nil
}
