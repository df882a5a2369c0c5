package actions

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/errs"
	"github.com/carson-networks/ledger-server/internal/storage"
	"github.com/carson-networks/ledger-server/internal/storage/bill"
)

// CancelBill moves a bill to the terminal cancelled state.
type CancelBill struct {
	UserID uuid.UUID
	BillID uuid.UUID
}

func (a *CancelBill) Perform(ctx context.Context, writer *storage.Writer) error {
	row, err := writer.Bills.FindByIDForUpdate(ctx, a.UserID, a.BillID)
	if err != nil {
		return err
	}
	if row.Status == bill.StatusCancelled {
		return errs.InvalidState("bill %s is already cancelled", a.BillID)
	}
	return writer.Bills.UpdateStatus(ctx, a.BillID, bill.StatusCancelled)
}

// RemoveBill deletes a bill without payment history and cancels one that
// has history, so the payment-record sequence is never orphaned.
type RemoveBill struct {
	UserID uuid.UUID
	BillID uuid.UUID

	// Cancelled reports whether the bill was kept and cancelled rather
	// than deleted.
	Cancelled bool
}

func (a *RemoveBill) Perform(ctx context.Context, writer *storage.Writer) error {
	row, err := writer.Bills.FindByIDForUpdate(ctx, a.UserID, a.BillID)
	if err != nil {
		return err
	}

	hasPayments, err := writer.Bills.HasPayments(ctx, row.ID)
	if err != nil {
		return err
	}
	if hasPayments {
		a.Cancelled = true
		return writer.Bills.UpdateStatus(ctx, a.BillID, bill.StatusCancelled)
	}
	return writer.Bills.Delete(ctx, a.UserID, a.BillID)
}
