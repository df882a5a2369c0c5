package transaction

import (
	"context"

	"github.com/gofrs/uuid/v5"
	"github.com/lib/pq"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dm"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/um"

	"github.com/carson-networks/ledger-server/internal/errs"
)

type Writer struct {
	tx bob.Tx
	Reader
}

func NewWriter(tx bob.Tx) *Writer {
	return &Writer{
		tx: tx,
		Reader: Reader{
			exec: tx,
		},
	}
}

func (w *Writer) Insert(ctx context.Context, create *TransactionCreate) (uuid.UUID, error) {
	id := uuid.Must(uuid.NewV4())

	var transferAccountID uuid.NullUUID
	if create.TransferAccountID != nil {
		transferAccountID = uuid.NullUUID{UUID: *create.TransferAccountID, Valid: true}
	}

	q := psql.Insert(
		im.Into("transactions",
			"id", "user_id", "account_id", "transfer_account_id", "category_id",
			"type", "amount", "transaction_date", "cleared", "recurring", "tags", "notes",
		),
		im.Values(psql.Arg(
			id, create.UserID, create.AccountID, transferAccountID, create.CategoryID,
			string(create.Type), create.Amount, create.TransactionDate, create.Cleared,
			create.Recurring, pq.StringArray(create.Tags), create.Notes,
		)),
	)

	if _, err := bob.Exec(ctx, w.tx, q); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// Update rewrites the mutable columns of an existing row. Balance
// adjustments are the caller's responsibility; the ledger action reverses
// the old postings and applies the new ones around this call.
func (w *Writer) Update(ctx context.Context, row *Transaction) error {
	q := psql.Update(
		um.Table("transactions"),
		um.SetCol("account_id").ToArg(row.AccountID),
		um.SetCol("transfer_account_id").ToArg(row.TransferAccountID),
		um.SetCol("category_id").ToArg(row.CategoryID),
		um.SetCol("type").ToArg(string(row.Type)),
		um.SetCol("amount").ToArg(row.Amount),
		um.SetCol("transaction_date").ToArg(row.TransactionDate),
		um.SetCol("cleared").ToArg(row.Cleared),
		um.SetCol("recurring").ToArg(row.Recurring),
		um.SetCol("tags").ToArg(row.Tags),
		um.SetCol("notes").ToArg(row.Notes),
		um.Where(psql.Quote("id").EQ(psql.Arg(row.ID))),
		um.Where(psql.Quote("user_id").EQ(psql.Arg(row.UserID))),
	)

	result, err := bob.Exec(ctx, w.tx, q)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errs.NotFound("transaction %s", row.ID)
	}
	return nil
}

func (w *Writer) Delete(ctx context.Context, userID, id uuid.UUID) error {
	q := psql.Delete(
		dm.From("transactions"),
		dm.Where(psql.Quote("id").EQ(psql.Arg(id))),
		dm.Where(psql.Quote("user_id").EQ(psql.Arg(userID))),
	)

	result, err := bob.Exec(ctx, w.tx, q)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errs.NotFound("transaction %s", id)
	}
	return nil
}
