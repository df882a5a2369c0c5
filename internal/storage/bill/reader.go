package bill

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/scan"

	"github.com/carson-networks/ledger-server/internal/errs"
)

var billColumns = []any{
	"id", "user_id", "category_id", "name", "amount", "due_date",
	"frequency", "status", "reminder_days", "recurring", "notes", "created_at",
}

var paymentColumns = []any{
	"id", "bill_id", "amount", "paid_at", "transaction_id", "notes", "created_at",
}

type Reader struct {
	exec bob.Executor
}

func NewReader(exec bob.Executor) *Reader {
	return &Reader{exec: exec}
}

func (r *Reader) FindByID(ctx context.Context, userID, id uuid.UUID) (*Bill, error) {
	q := psql.Select(
		sm.Columns(billColumns...),
		sm.From("bills"),
		sm.Where(psql.Quote("id").EQ(psql.Arg(id))),
		sm.Where(psql.Quote("user_id").EQ(psql.Arg(userID))),
	)

	row, err := bob.One(ctx, r.exec, q, scan.StructMapper[Bill]())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.NotFound("bill %s", id)
		}
		return nil, err
	}
	return &row, nil
}

func (r *Reader) List(ctx context.Context, userID uuid.UUID, filter *BillFilter) ([]*Bill, error) {
	queryMods := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns(billColumns...),
		sm.From("bills"),
		sm.Where(psql.Quote("user_id").EQ(psql.Arg(userID))),
	}
	if filter != nil {
		if filter.Status != nil {
			queryMods = append(queryMods, sm.Where(psql.Quote("status").EQ(psql.Arg(string(*filter.Status)))))
		}
		if filter.CategoryID != nil {
			queryMods = append(queryMods, sm.Where(psql.Quote("category_id").EQ(psql.Arg(*filter.CategoryID))))
		}
		if filter.Limit > 0 {
			queryMods = append(queryMods, sm.Limit(filter.Limit+1))
		}
		if filter.Offset > 0 {
			queryMods = append(queryMods, sm.Offset(filter.Offset))
		}
	}
	queryMods = append(queryMods,
		sm.OrderBy("due_date").Asc(),
		sm.OrderBy("id").Asc(),
	)

	return r.queryBills(ctx, queryMods)
}

func (r *Reader) DueWithin(ctx context.Context, userID uuid.UUID, from, to time.Time, limit int) ([]*Bill, error) {
	queryMods := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns(billColumns...),
		sm.From("bills"),
		sm.Where(psql.Quote("user_id").EQ(psql.Arg(userID))),
		sm.Where(psql.Quote("status").EQ(psql.Arg(string(StatusActive)))),
		sm.Where(psql.Quote("due_date").GTE(psql.Arg(from))),
		sm.Where(psql.Quote("due_date").LTE(psql.Arg(to))),
		sm.OrderBy("due_date").Asc(),
	}
	if limit > 0 {
		queryMods = append(queryMods, sm.Limit(limit))
	}

	return r.queryBills(ctx, queryMods)
}

func (r *Reader) Overdue(ctx context.Context, userID uuid.UUID, limit int) ([]*Bill, error) {
	queryMods := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns(billColumns...),
		sm.From("bills"),
		sm.Where(psql.Quote("user_id").EQ(psql.Arg(userID))),
		sm.Where(psql.Quote("status").EQ(psql.Arg(string(StatusOverdue)))),
		// oldest due date first == most days past due first
		sm.OrderBy("due_date").Asc(),
	}
	if limit > 0 {
		queryMods = append(queryMods, sm.Limit(limit))
	}

	return r.queryBills(ctx, queryMods)
}

func (r *Reader) ActiveDueBefore(ctx context.Context, cutoff time.Time) ([]*Bill, error) {
	queryMods := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns(billColumns...),
		sm.From("bills"),
		sm.Where(psql.Quote("status").EQ(psql.Arg(string(StatusActive)))),
		sm.Where(psql.Quote("due_date").LT(psql.Arg(cutoff))),
	}

	return r.queryBills(ctx, queryMods)
}

func (r *Reader) Payments(ctx context.Context, userID, billID uuid.UUID, filter *PaymentFilter) ([]*Payment, error) {
	// Ownership check rides on the join against the user's bills.
	queryMods := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns(
			"bill_payments.id", "bill_payments.bill_id", "bill_payments.amount",
			"bill_payments.paid_at", "bill_payments.transaction_id",
			"bill_payments.notes", "bill_payments.created_at",
		),
		sm.From("bill_payments"),
		sm.InnerJoin("bills").On(psql.Quote("bills", "id").EQ(psql.Quote("bill_payments", "bill_id"))),
		sm.Where(psql.Quote("bill_payments", "bill_id").EQ(psql.Arg(billID))),
		sm.Where(psql.Quote("bills", "user_id").EQ(psql.Arg(userID))),
	}
	if filter != nil {
		if filter.From != nil {
			queryMods = append(queryMods, sm.Where(psql.Quote("bill_payments", "paid_at").GTE(psql.Arg(*filter.From))))
		}
		if filter.To != nil {
			queryMods = append(queryMods, sm.Where(psql.Quote("bill_payments", "paid_at").LTE(psql.Arg(*filter.To))))
		}
	}
	queryMods = append(queryMods, sm.OrderBy("paid_at").Asc())

	rows, err := bob.All(ctx, r.exec, psql.Select(queryMods...), scan.StructMapper[Payment]())
	if err != nil {
		return nil, err
	}

	result := make([]*Payment, len(rows))
	for i := range rows {
		result[i] = &rows[i]
	}
	return result, nil
}

func (r *Reader) PaymentsBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*Payment, error) {
	queryMods := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns(
			"bill_payments.id", "bill_payments.bill_id", "bill_payments.amount",
			"bill_payments.paid_at", "bill_payments.transaction_id",
			"bill_payments.notes", "bill_payments.created_at",
		),
		sm.From("bill_payments"),
		sm.InnerJoin("bills").On(psql.Quote("bills", "id").EQ(psql.Quote("bill_payments", "bill_id"))),
		sm.Where(psql.Quote("bills", "user_id").EQ(psql.Arg(userID))),
		sm.Where(psql.Quote("bill_payments", "paid_at").GTE(psql.Arg(from))),
		sm.Where(psql.Quote("bill_payments", "paid_at").LT(psql.Arg(to))),
		sm.OrderBy("paid_at").Asc(),
	}

	rows, err := bob.All(ctx, r.exec, psql.Select(queryMods...), scan.StructMapper[Payment]())
	if err != nil {
		return nil, err
	}

	result := make([]*Payment, len(rows))
	for i := range rows {
		result[i] = &rows[i]
	}
	return result, nil
}

func (r *Reader) DueBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*Bill, error) {
	queryMods := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns(billColumns...),
		sm.From("bills"),
		sm.Where(psql.Quote("user_id").EQ(psql.Arg(userID))),
		sm.Where(psql.Quote("due_date").GTE(psql.Arg(from))),
		sm.Where(psql.Quote("due_date").LT(psql.Arg(to))),
		sm.OrderBy("due_date").Asc(),
	}

	return r.queryBills(ctx, queryMods)
}

func (r *Reader) HasPayments(ctx context.Context, billID uuid.UUID) (bool, error) {
	q := psql.Select(
		sm.Columns("id"),
		sm.From("bill_payments"),
		sm.Where(psql.Quote("bill_id").EQ(psql.Arg(billID))),
		sm.Limit(1),
	)

	rows, err := bob.All(ctx, r.exec, q, scan.SingleColumnMapper[uuid.UUID])
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

func (r *Reader) queryBills(ctx context.Context, queryMods []bob.Mod[*dialect.SelectQuery]) ([]*Bill, error) {
	rows, err := bob.All(ctx, r.exec, psql.Select(queryMods...), scan.StructMapper[Bill]())
	if err != nil {
		return nil, err
	}

	result := make([]*Bill, len(rows))
	for i := range rows {
		result[i] = &rows[i]
	}
	return result, nil
}
