package account

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/um"
	"github.com/stephenafamo/scan"

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

// FindByIDForUpdate loads the account row with a FOR UPDATE lock so that
// concurrent postings against the same account serialize. Inactive
// accounts are reported as invalid state since the caller is about to
// post against them.
func (w *Writer) FindByIDForUpdate(ctx context.Context, userID, id uuid.UUID) (*Account, error) {
	q := psql.Select(
		sm.Columns(columns...),
		sm.From("accounts"),
		sm.Where(psql.Quote("id").EQ(psql.Arg(id))),
		sm.Where(psql.Quote("user_id").EQ(psql.Arg(userID))),
		sm.ForUpdate(),
	)

	row, err := bob.One(ctx, w.tx, q, scan.StructMapper[Account]())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.NotFound("account %s", id)
		}
		return nil, err
	}
	if !row.Active {
		return nil, errs.InvalidState("account %s is inactive", id)
	}
	return &row, nil
}

func (w *Writer) Insert(ctx context.Context, create *AccountCreate) (uuid.UUID, error) {
	id := uuid.Must(uuid.NewV4())

	q := psql.Insert(
		im.Into("accounts", "id", "user_id", "name", "currency", "balance", "active", "include_in_net_worth"),
		im.Values(psql.Arg(id, create.UserID, create.Name, create.Currency, create.StartingBalance, true, create.IncludeInNetWorth)),
	)

	if _, err := bob.Exec(ctx, w.tx, q); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (w *Writer) UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error {
	q := psql.Update(
		um.Table("accounts"),
		um.SetCol("balance").ToArg(balance),
		um.Where(psql.Quote("id").EQ(psql.Arg(id))),
	)

	_, err := bob.Exec(ctx, w.tx, q)
	return err
}

// Deactivate soft-removes the account. Balance history stays behind the
// flag; the ledger refuses new postings against it.
func (w *Writer) Deactivate(ctx context.Context, userID, id uuid.UUID) error {
	q := psql.Update(
		um.Table("accounts"),
		um.SetCol("active").ToArg(false),
		um.Where(psql.Quote("id").EQ(psql.Arg(id))),
		um.Where(psql.Quote("user_id").EQ(psql.Arg(userID))),
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
		return errs.NotFound("account %s", id)
	}
	return nil
}
