package bill

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dm"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
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

// FindByIDForUpdate locks the bill row so concurrent payments of the same
// bill serialize and cannot both advance the due date.
func (w *Writer) FindByIDForUpdate(ctx context.Context, userID, id uuid.UUID) (*Bill, error) {
	q := psql.Select(
		sm.Columns(billColumns...),
		sm.From("bills"),
		sm.Where(psql.Quote("id").EQ(psql.Arg(id))),
		sm.Where(psql.Quote("user_id").EQ(psql.Arg(userID))),
		sm.ForUpdate(),
	)

	row, err := bob.One(ctx, w.tx, q, scan.StructMapper[Bill]())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.NotFound("bill %s", id)
		}
		return nil, err
	}
	return &row, nil
}

func (w *Writer) Insert(ctx context.Context, create *BillCreate) (uuid.UUID, error) {
	id := uuid.Must(uuid.NewV4())

	q := psql.Insert(
		im.Into("bills",
			"id", "user_id", "category_id", "name", "amount", "due_date",
			"frequency", "status", "reminder_days", "recurring", "notes",
		),
		im.Values(psql.Arg(
			id, create.UserID, create.CategoryID, create.Name, create.Amount,
			create.DueDate, string(create.Frequency), string(StatusActive),
			create.ReminderDays, create.Recurring, create.Notes,
		)),
	)

	if _, err := bob.Exec(ctx, w.tx, q); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (w *Writer) UpdateSchedule(ctx context.Context, id uuid.UUID, dueDate time.Time, status Status) error {
	q := psql.Update(
		um.Table("bills"),
		um.SetCol("due_date").ToArg(dueDate),
		um.SetCol("status").ToArg(string(status)),
		um.Where(psql.Quote("id").EQ(psql.Arg(id))),
	)

	_, err := bob.Exec(ctx, w.tx, q)
	return err
}

func (w *Writer) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	q := psql.Update(
		um.Table("bills"),
		um.SetCol("status").ToArg(string(status)),
		um.Where(psql.Quote("id").EQ(psql.Arg(id))),
	)

	_, err := bob.Exec(ctx, w.tx, q)
	return err
}

func (w *Writer) MarkOverdueIfActive(ctx context.Context, id uuid.UUID) error {
	q := psql.Update(
		um.Table("bills"),
		um.SetCol("status").ToArg(string(StatusOverdue)),
		um.Where(psql.Quote("id").EQ(psql.Arg(id))),
		um.Where(psql.Quote("status").EQ(psql.Arg(string(StatusActive)))),
	)

	_, err := bob.Exec(ctx, w.tx, q)
	return err
}

func (w *Writer) InsertPayment(ctx context.Context, create *PaymentCreate) (uuid.UUID, error) {
	id := uuid.Must(uuid.NewV4())

	var transactionID uuid.NullUUID
	if create.TransactionID != nil {
		transactionID = uuid.NullUUID{UUID: *create.TransactionID, Valid: true}
	}

	q := psql.Insert(
		im.Into("bill_payments", "id", "bill_id", "amount", "paid_at", "transaction_id", "notes"),
		im.Values(psql.Arg(id, create.BillID, create.Amount, create.PaidAt, transactionID, create.Notes)),
	)

	if _, err := bob.Exec(ctx, w.tx, q); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (w *Writer) Delete(ctx context.Context, userID, id uuid.UUID) error {
	q := psql.Delete(
		dm.From("bills"),
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
		return errs.NotFound("bill %s", id)
	}
	return nil
}
