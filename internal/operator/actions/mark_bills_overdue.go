package actions

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/storage"
)

// MarkBillsOverdue persists the overdue flag for bills whose derived
// status flipped. The ids come from an earlier untransacted read, so
// each flip applies only while the bill is still active: a payment or
// cancellation committed since that read wins.
type MarkBillsOverdue struct {
	IDs []uuid.UUID
}

func (a *MarkBillsOverdue) Perform(ctx context.Context, writer *storage.Writer) error {
	for _, id := range a.IDs {
		if err := writer.Bills.MarkOverdueIfActive(ctx, id); err != nil {
			return err
		}
	}
	return nil
}
