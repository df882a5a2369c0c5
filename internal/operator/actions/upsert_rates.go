package actions

import (
	"context"

	"github.com/carson-networks/ledger-server/internal/storage"
	"github.com/carson-networks/ledger-server/internal/storage/rate"
)

// UpsertRates writes one refresh batch of exchange rates. All rows land
// or none do, so a failed refresh leaves prior rates untouched.
type UpsertRates struct {
	Rates []*rate.Rate
}

func (a *UpsertRates) Perform(ctx context.Context, writer *storage.Writer) error {
	for _, r := range a.Rates {
		if err := writer.Rates.Upsert(ctx, r); err != nil {
			return err
		}
	}
	return nil
}
