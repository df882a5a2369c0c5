package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/carson-networks/ledger-server/internal/config"
	"github.com/carson-networks/ledger-server/internal/errs"
	"github.com/carson-networks/ledger-server/internal/operator/actions"
	"github.com/carson-networks/ledger-server/internal/rates"
	"github.com/carson-networks/ledger-server/internal/schedule"
	"github.com/carson-networks/ledger-server/internal/storage/rate"
)

// RefreshResult reports a refresh attempt. A throttled call reports the
// previous refresh time without reaching the provider.
type RefreshResult struct {
	Refreshed   bool
	Throttled   bool
	LastRefresh time.Time
	RatesStored int
}

// RatePoint is one stored rate in a history window.
type RatePoint struct {
	Date time.Time
	Rate decimal.Decimal
}

// RateHistory is the ordered series for a pair plus derived statistics.
type RateHistory struct {
	From   string
	To     string
	Points []RatePoint
	Stats  rates.SeriesStats
}

// CurrencyService resolves, refreshes, and applies exchange rates.
type CurrencyService struct {
	reader   rate.IReader
	ops      processor
	provider rates.IProvider
	env      *config.Config
	clock    Clock

	mutex       sync.Mutex
	lastRefresh time.Time
	flight      singleflight.Group
}

// NewCurrencyService creates a new CurrencyService.
func NewCurrencyService(reader rate.IReader, ops processor, provider rates.IProvider, env *config.Config, clock Clock) *CurrencyService {
	return &CurrencyService{
		reader:   reader,
		ops:      ops,
		provider: provider,
		env:      env,
		clock:    clock,
	}
}

// GetRate resolves the rate for a pair on a date: identity for equal
// currencies, the stored rate for the exact date, or the most recent one
// before it. Rates stored under later dates are never used, so a
// conversion cannot leak future information. Not-found is an error, never
// a silent 1.0.
func (s *CurrencyService) GetRate(ctx context.Context, from, to string, date time.Time) (decimal.Decimal, error) {
	from, err := normalizeCurrency(from)
	if err != nil {
		return decimal.Decimal{}, err
	}
	to, err = normalizeCurrency(to)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if from == to {
		return decimal.NewFromInt(1), nil
	}

	row, err := s.reader.FindOnOrBefore(ctx, from, to, schedule.DateOnly(date))
	if err != nil {
		return decimal.Decimal{}, err
	}
	return row.Rate, nil
}

// Convert multiplies amount by the pair's rate for the date, rounded to
// the target currency's configured decimal places.
func (s *CurrencyService) Convert(ctx context.Context, amount decimal.Decimal, from, to string, date time.Time) (decimal.Decimal, error) {
	converted, _, err := s.Quote(ctx, amount, from, to, date)
	return converted, err
}

// Quote resolves the pair's rate once and returns both the converted
// amount and the rate applied.
func (s *CurrencyService) Quote(ctx context.Context, amount decimal.Decimal, from, to string, date time.Time) (decimal.Decimal, decimal.Decimal, error) {
	resolved, err := s.GetRate(ctx, from, to, date)
	if err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, err
	}
	return amount.Mul(resolved).Round(s.env.DecimalPlaces(to)), resolved, nil
}

// Refresh fetches current-day rates from the provider for the given
// currencies (configured list when empty) and upserts them under today's
// date. Without force, a refresh inside the throttle window is a no-op
// reporting the previous refresh time. Concurrent callers share a single
// in-flight provider call; a failed fetch leaves stored rates untouched.
func (s *CurrencyService) Refresh(ctx context.Context, currencies []string, force bool) (*RefreshResult, error) {
	if len(currencies) == 0 {
		currencies = s.env.TrackedCurrencies
	}
	normalized := make([]string, 0, len(currencies))
	for _, c := range currencies {
		currency, err := normalizeCurrency(c)
		if err != nil {
			return nil, err
		}
		normalized = append(normalized, currency)
	}

	if !force {
		if result, throttled := s.throttled(); throttled {
			return result, nil
		}
	}

	value, err, _ := s.flight.Do("refresh", func() (interface{}, error) {
		// Re-check under the flight: a caller that waited on another
		// refresh observes its result instead of fetching again.
		if !force {
			if result, throttled := s.throttled(); throttled {
				return result, nil
			}
		}
		return s.refresh(ctx, normalized)
	})
	if err != nil {
		return nil, err
	}
	return value.(*RefreshResult), nil
}

func (s *CurrencyService) throttled() (*RefreshResult, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.lastRefresh.IsZero() || s.clock.Now().Sub(s.lastRefresh) >= s.env.RateRefreshInterval {
		return nil, false
	}
	return &RefreshResult{Throttled: true, LastRefresh: s.lastRefresh}, true
}

func (s *CurrencyService) refresh(ctx context.Context, currencies []string) (*RefreshResult, error) {
	base := s.env.BaseCurrency
	baseRates, err := s.provider.Latest(ctx, base)
	if err != nil {
		return nil, err
	}
	baseRates[base] = decimal.NewFromInt(1)

	now := s.clock.Now()
	today := schedule.DateOnly(now)

	// Cross rates for every tracked pair derive from the base quotes, so
	// lookups stay a single read per pair.
	var batch []*rate.Rate
	for _, from := range currencies {
		fromRate, ok := baseRates[from]
		if !ok || fromRate.IsZero() {
			return nil, errs.Newf(errs.KindExternal, "provider returned no rate for %s", from)
		}
		for _, to := range currencies {
			if from == to {
				continue
			}
			toRate, ok := baseRates[to]
			if !ok {
				return nil, errs.Newf(errs.KindExternal, "provider returned no rate for %s", to)
			}
			batch = append(batch, &rate.Rate{
				FromCurrency: from,
				ToCurrency:   to,
				RateDate:     today,
				Rate:         toRate.Div(fromRate).Round(8),
				Source:       s.provider.Name(),
				UpdatedAt:    now,
			})
		}
	}

	if err := s.ops.Process(ctx, &actions.UpsertRates{Rates: batch}); err != nil {
		return nil, err
	}

	s.mutex.Lock()
	s.lastRefresh = now
	s.mutex.Unlock()

	return &RefreshResult{Refreshed: true, LastRefresh: now, RatesStored: len(batch)}, nil
}

// History returns the stored series for a pair within a window plus
// min/max/mean and first-to-last change.
func (s *CurrencyService) History(ctx context.Context, from, to string, start, end time.Time) (*RateHistory, error) {
	from, err := normalizeCurrency(from)
	if err != nil {
		return nil, err
	}
	to, err = normalizeCurrency(to)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, errs.Validation("history window end precedes start")
	}

	rows, err := s.reader.Series(ctx, from, to, schedule.DateOnly(start), schedule.DateOnly(end))
	if err != nil {
		return nil, err
	}

	history := &RateHistory{From: from, To: to, Points: make([]RatePoint, len(rows))}
	values := make([]decimal.Decimal, len(rows))
	for i, row := range rows {
		history.Points[i] = RatePoint{Date: row.RateDate, Rate: row.Rate}
		values[i] = row.Rate
	}
	history.Stats = rates.ComputeSeriesStats(values)
	return history, nil
}

func normalizeCurrency(c string) (string, error) {
	currency := strings.ToUpper(strings.TrimSpace(c))
	if len(currency) != 3 {
		return "", errs.Validation("currency must be a 3-letter code, got %q", c)
	}
	return currency, nil
}
