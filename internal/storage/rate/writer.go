package rate

import (
	"context"

	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/um"
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

// Upsert overwrites the rate for (pair, date) or inserts it. Update-then-
// insert inside the enclosing transaction keeps the at-most-one-row-per-day
// invariant without relying on conflict clauses.
func (w *Writer) Upsert(ctx context.Context, r *Rate) error {
	update := psql.Update(
		um.Table("exchange_rates"),
		um.SetCol("rate").ToArg(r.Rate),
		um.SetCol("source").ToArg(r.Source),
		um.SetCol("updated_at").ToArg(r.UpdatedAt),
		um.Where(psql.Quote("from_currency").EQ(psql.Arg(r.FromCurrency))),
		um.Where(psql.Quote("to_currency").EQ(psql.Arg(r.ToCurrency))),
		um.Where(psql.Quote("rate_date").EQ(psql.Arg(r.RateDate))),
	)

	result, err := bob.Exec(ctx, w.tx, update)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	insert := psql.Insert(
		im.Into("exchange_rates", "from_currency", "to_currency", "rate_date", "rate", "source", "updated_at"),
		im.Values(psql.Arg(r.FromCurrency, r.ToCurrency, r.RateDate, r.Rate, r.Source, r.UpdatedAt)),
	)

	_, err = bob.Exec(ctx, w.tx, insert)
	return err
}
