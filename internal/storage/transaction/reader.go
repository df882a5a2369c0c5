package transaction

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/scan"

	"github.com/carson-networks/ledger-server/internal/errs"
)

var columns = []any{
	"id", "user_id", "account_id", "transfer_account_id", "category_id",
	"type", "amount", "transaction_date", "cleared", "recurring", "tags",
	"notes", "created_at",
}

type Reader struct {
	exec bob.Executor
}

func NewReader(exec bob.Executor) *Reader {
	return &Reader{exec: exec}
}

func (r *Reader) FindByID(ctx context.Context, userID, id uuid.UUID) (*Transaction, error) {
	q := psql.Select(
		sm.Columns(columns...),
		sm.From("transactions"),
		sm.Where(psql.Quote("id").EQ(psql.Arg(id))),
		sm.Where(psql.Quote("user_id").EQ(psql.Arg(userID))),
	)

	row, err := bob.One(ctx, r.exec, q, scan.StructMapper[Transaction]())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.NotFound("transaction %s", id)
		}
		return nil, err
	}
	return &row, nil
}

func (r *Reader) List(ctx context.Context, userID uuid.UUID, filter *TransactionFilter) ([]*Transaction, error) {
	queryMods := filterMods(userID, filter)
	if filter != nil {
		if filter.Limit > 0 {
			queryMods = append(queryMods, sm.Limit(filter.Limit+1))
		}
		if filter.Offset > 0 {
			queryMods = append(queryMods, sm.Offset(filter.Offset))
		}
	}
	return r.query(ctx, queryMods)
}

func (r *Reader) ListAll(ctx context.Context, userID uuid.UUID, filter *TransactionFilter) ([]*Transaction, error) {
	return r.query(ctx, filterMods(userID, filter))
}

func (r *Reader) query(ctx context.Context, queryMods []bob.Mod[*dialect.SelectQuery]) ([]*Transaction, error) {
	queryMods = append(queryMods,
		sm.OrderBy("transaction_date").Desc(),
		sm.OrderBy("id").Desc(),
	)

	rows, err := bob.All(ctx, r.exec, psql.Select(queryMods...), scan.StructMapper[Transaction]())
	if err != nil {
		return nil, err
	}

	result := make([]*Transaction, len(rows))
	for i := range rows {
		result[i] = &rows[i]
	}
	return result, nil
}

// NormalizeDescription is the canonical form used by the import duplicate
// key: lower-cased with collapsed whitespace.
func NormalizeDescription(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func (r *Reader) ExistsDuplicate(ctx context.Context, userID uuid.UUID, key DuplicateKey) (bool, error) {
	q := psql.Select(
		sm.Columns("id"),
		sm.From("transactions"),
		sm.Where(psql.Quote("user_id").EQ(psql.Arg(userID))),
		sm.Where(psql.Quote("account_id").EQ(psql.Arg(key.AccountID))),
		sm.Where(psql.Quote("transaction_date").EQ(psql.Arg(key.TransactionDate))),
		sm.Where(psql.Quote("amount").EQ(psql.Arg(key.Amount))),
		sm.Where(psql.Raw("lower(regexp_replace(notes, '\\s+', ' ', 'g'))").EQ(psql.Arg(key.NormalizedNotes))),
		sm.Limit(1),
	)

	rows, err := bob.All(ctx, r.exec, q, scan.SingleColumnMapper[uuid.UUID])
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

func filterMods(userID uuid.UUID, filter *TransactionFilter) []bob.Mod[*dialect.SelectQuery] {
	queryMods := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns(columns...),
		sm.From("transactions"),
		sm.Where(psql.Quote("user_id").EQ(psql.Arg(userID))),
	}
	if filter == nil {
		return queryMods
	}
	if filter.AccountID != nil {
		queryMods = append(queryMods, sm.Where(psql.Quote("account_id").EQ(psql.Arg(*filter.AccountID))))
	}
	if filter.CategoryID != nil {
		queryMods = append(queryMods, sm.Where(psql.Quote("category_id").EQ(psql.Arg(*filter.CategoryID))))
	}
	if filter.Type != nil {
		queryMods = append(queryMods, sm.Where(psql.Quote("type").EQ(psql.Arg(string(*filter.Type)))))
	}
	if filter.DateFrom != nil {
		queryMods = append(queryMods, sm.Where(psql.Quote("transaction_date").GTE(psql.Arg(*filter.DateFrom))))
	}
	if filter.DateTo != nil {
		queryMods = append(queryMods, sm.Where(psql.Quote("transaction_date").LTE(psql.Arg(*filter.DateTo))))
	}
	return queryMods
}
