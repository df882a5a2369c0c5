package actions

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/posting"
	"github.com/carson-networks/ledger-server/internal/storage"
)

// TransactionChanges carries the fields an update may touch. Nil pointers
// leave the stored value alone. ClearTransfer removes the transfer target
// (required when changing a transfer into income or expense).
type TransactionChanges struct {
	AccountID         *uuid.UUID
	TransferAccountID *uuid.UUID
	ClearTransfer     bool
	CategoryID        *uuid.UUID
	Type              *posting.Type
	Amount            *decimal.Decimal
	TransactionDate   *time.Time
	Cleared           *bool
	Recurring         *bool
	Tags              *[]string
	Notes             *string
}

// UpdateTransaction rewrites a transaction. The original postings are
// reversed and the postings for the new state are applied in the same
// atomic unit, so the account balances always equal the sum of currently
// recorded transactions and never an intermediate mix. Deltas aggregate
// per account, so changing an amount from A to B on the same account moves
// the balance by exactly B-A.
type UpdateTransaction struct {
	UserID        uuid.UUID
	TransactionID uuid.UUID
	Changes       TransactionChanges
}

func (a *UpdateTransaction) Perform(ctx context.Context, writer *storage.Writer) error {
	row, err := writer.Transactions.FindByID(ctx, a.UserID, a.TransactionID)
	if err != nil {
		return err
	}

	oldPostings, err := posting.ForTransaction(row.Type, row.Amount, row.AccountID, row.TransferTarget())
	if err != nil {
		return err
	}

	changes := a.Changes
	if changes.AccountID != nil {
		row.AccountID = *changes.AccountID
	}
	if changes.ClearTransfer {
		row.TransferAccountID = uuid.NullUUID{}
	} else if changes.TransferAccountID != nil {
		row.TransferAccountID = uuid.NullUUID{UUID: *changes.TransferAccountID, Valid: true}
	}
	if changes.CategoryID != nil {
		if _, err := writer.Categories.FindByID(ctx, a.UserID, *changes.CategoryID); err != nil {
			return err
		}
		row.CategoryID = *changes.CategoryID
	}
	if changes.Type != nil {
		row.Type = *changes.Type
	}
	if changes.Amount != nil {
		row.Amount = *changes.Amount
	}
	if changes.TransactionDate != nil {
		row.TransactionDate = *changes.TransactionDate
	}
	if changes.Cleared != nil {
		row.Cleared = *changes.Cleared
	}
	if changes.Recurring != nil {
		row.Recurring = *changes.Recurring
	}
	if changes.Tags != nil {
		row.Tags = pq.StringArray(*changes.Tags)
	}
	if changes.Notes != nil {
		row.Notes = *changes.Notes
	}

	newPostings, err := posting.ForTransaction(row.Type, row.Amount, row.AccountID, row.TransferTarget())
	if err != nil {
		return err
	}

	if err := applyPostings(ctx, writer, a.UserID, append(posting.Reverse(oldPostings), newPostings...)); err != nil {
		return err
	}

	return writer.Transactions.Update(ctx, row)
}
