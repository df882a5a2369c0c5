package rate

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Rate is one stored exchange rate: at most one row per (pair, date).
// Identity pairs are implicit 1.0 and never stored.
type Rate struct {
	FromCurrency string          `db:"from_currency"`
	ToCurrency   string          `db:"to_currency"`
	RateDate     time.Time       `db:"rate_date"`
	Rate         decimal.Decimal `db:"rate"`
	Source       string          `db:"source"`
	UpdatedAt    time.Time       `db:"updated_at"`
}

// IReader defines read access to stored rates. Rates are global, not
// user-scoped.
//
//go:generate mockery --name IReader
type IReader interface {
	// FindOnOrBefore returns the stored rate for the pair on the exact
	// date, or the most recent one before it. Never a later date:
	// conversions must not leak future information.
	FindOnOrBefore(ctx context.Context, from, to string, date time.Time) (*Rate, error)
	// Series returns the rates for a pair within [from, to], date ascending.
	Series(ctx context.Context, fromCurrency, toCurrency string, from, to time.Time) ([]*Rate, error)
}

// IWriter defines mutations, executed inside an open database transaction.
//
//go:generate mockery --name IWriter
type IWriter interface {
	IReader
	// Upsert inserts or overwrites the rate for (pair, date).
	Upsert(ctx context.Context, r *Rate) error
}
