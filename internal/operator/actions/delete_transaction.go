package actions

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/posting"
	"github.com/carson-networks/ledger-server/internal/storage"
)

// DeleteTransaction reverses a transaction's postings and removes the
// record in one atomic unit.
type DeleteTransaction struct {
	UserID        uuid.UUID
	TransactionID uuid.UUID
}

func (a *DeleteTransaction) Perform(ctx context.Context, writer *storage.Writer) error {
	row, err := writer.Transactions.FindByID(ctx, a.UserID, a.TransactionID)
	if err != nil {
		return err
	}

	postings, err := posting.ForTransaction(row.Type, row.Amount, row.AccountID, row.TransferTarget())
	if err != nil {
		return err
	}

	if err := applyPostings(ctx, writer, a.UserID, posting.Reverse(postings)); err != nil {
		return err
	}

	return writer.Transactions.Delete(ctx, a.UserID, a.TransactionID)
}
