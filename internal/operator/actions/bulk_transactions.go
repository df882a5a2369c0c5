package actions

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/storage"
)

// BulkCreateTransactions creates every item inside a single atomic unit.
// The first failure aborts the whole batch so balances are never left
// partially applied.
type BulkCreateTransactions struct {
	Items []*CreateTransaction

	// CreatedIDs is populated on success, in input order.
	CreatedIDs []uuid.UUID
}

func (a *BulkCreateTransactions) Perform(ctx context.Context, writer *storage.Writer) error {
	ids := make([]uuid.UUID, 0, len(a.Items))
	for _, item := range a.Items {
		if err := item.Perform(ctx, writer); err != nil {
			return err
		}
		ids = append(ids, item.CreatedID)
	}
	a.CreatedIDs = ids
	return nil
}

// BulkDeleteTransactions deletes every listed transaction, all or nothing.
type BulkDeleteTransactions struct {
	UserID uuid.UUID
	IDs    []uuid.UUID
}

func (a *BulkDeleteTransactions) Perform(ctx context.Context, writer *storage.Writer) error {
	for _, id := range a.IDs {
		del := &DeleteTransaction{UserID: a.UserID, TransactionID: id}
		if err := del.Perform(ctx, writer); err != nil {
			return err
		}
	}
	return nil
}
