package actions

import (
	"context"
	"sort"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/posting"
	"github.com/carson-networks/ledger-server/internal/storage"
)

// applyPostings locks every touched account and moves its balance by the
// net delta. Accounts are locked in id order so two concurrent actions
// touching the same pair of accounts cannot deadlock. The row lock is what
// serializes concurrent postings against the same account: the balance is
// re-read under the lock, never from a stale snapshot.
func applyPostings(ctx context.Context, writer *storage.Writer, userID uuid.UUID, postings []posting.Posting) error {
	deltas := make(map[uuid.UUID]decimal.Decimal, len(postings))
	for _, p := range postings {
		deltas[p.AccountID] = deltas[p.AccountID].Add(p.Delta)
	}

	ids := make([]uuid.UUID, 0, len(deltas))
	for id := range deltas {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})

	for _, id := range ids {
		account, err := writer.Accounts.FindByIDForUpdate(ctx, userID, id)
		if err != nil {
			return err
		}
		if err := writer.Accounts.UpdateBalance(ctx, id, account.Balance.Add(deltas[id])); err != nil {
			return err
		}
	}
	return nil
}
