package actions

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/posting"
	"github.com/carson-networks/ledger-server/internal/storage"
	"github.com/carson-networks/ledger-server/internal/storage/transaction"
)

// CreateTransaction inserts one transaction and applies its postings as
// one atomic unit.
type CreateTransaction struct {
	UserID            uuid.UUID
	AccountID         uuid.UUID
	TransferAccountID *uuid.UUID
	CategoryID        uuid.UUID
	Type              posting.Type
	Amount            decimal.Decimal
	TransactionDate   time.Time
	Cleared           bool
	Recurring         bool
	Tags              []string
	Notes             string

	// CreatedID is populated on success.
	CreatedID uuid.UUID
}

func (a *CreateTransaction) Perform(ctx context.Context, writer *storage.Writer) error {
	postings, err := posting.ForTransaction(a.Type, a.Amount, a.AccountID, a.TransferAccountID)
	if err != nil {
		return err
	}

	// Category ids arrive pre-validated by the calling layer, but ownership
	// is re-checked before any mutation.
	if _, err := writer.Categories.FindByID(ctx, a.UserID, a.CategoryID); err != nil {
		return err
	}

	transactionDate := a.TransactionDate
	if transactionDate.IsZero() {
		transactionDate = time.Now()
	}

	id, err := writer.Transactions.Insert(ctx, &transaction.TransactionCreate{
		UserID:            a.UserID,
		AccountID:         a.AccountID,
		TransferAccountID: a.TransferAccountID,
		CategoryID:        a.CategoryID,
		Type:              a.Type,
		Amount:            a.Amount,
		TransactionDate:   transactionDate,
		Cleared:           a.Cleared,
		Recurring:         a.Recurring,
		Tags:              a.Tags,
		Notes:             a.Notes,
	})
	if err != nil {
		return err
	}

	if err := applyPostings(ctx, writer, a.UserID, postings); err != nil {
		return err
	}

	a.CreatedID = id
	return nil
}
