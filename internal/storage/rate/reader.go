package rate

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/scan"

	"github.com/carson-networks/ledger-server/internal/errs"
)

var columns = []any{"from_currency", "to_currency", "rate_date", "rate", "source", "updated_at"}

type Reader struct {
	exec bob.Executor
}

func NewReader(exec bob.Executor) *Reader {
	return &Reader{exec: exec}
}

func (r *Reader) FindOnOrBefore(ctx context.Context, from, to string, date time.Time) (*Rate, error) {
	q := psql.Select(
		sm.Columns(columns...),
		sm.From("exchange_rates"),
		sm.Where(psql.Quote("from_currency").EQ(psql.Arg(from))),
		sm.Where(psql.Quote("to_currency").EQ(psql.Arg(to))),
		sm.Where(psql.Quote("rate_date").LTE(psql.Arg(date))),
		sm.OrderBy("rate_date").Desc(),
		sm.Limit(1),
	)

	row, err := bob.One(ctx, r.exec, q, scan.StructMapper[Rate]())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.NotFound("no rate for %s/%s on or before %s", from, to, date.Format("2006-01-02"))
		}
		return nil, err
	}
	return &row, nil
}

func (r *Reader) Series(ctx context.Context, fromCurrency, toCurrency string, from, to time.Time) ([]*Rate, error) {
	q := psql.Select(
		sm.Columns(columns...),
		sm.From("exchange_rates"),
		sm.Where(psql.Quote("from_currency").EQ(psql.Arg(fromCurrency))),
		sm.Where(psql.Quote("to_currency").EQ(psql.Arg(toCurrency))),
		sm.Where(psql.Quote("rate_date").GTE(psql.Arg(from))),
		sm.Where(psql.Quote("rate_date").LTE(psql.Arg(to))),
		sm.OrderBy("rate_date").Asc(),
	)

	rows, err := bob.All(ctx, r.exec, q, scan.StructMapper[Rate]())
	if err != nil {
		return nil, err
	}

	result := make([]*Rate, len(rows))
	for i := range rows {
		result[i] = &rows[i]
	}
	return result, nil
}
