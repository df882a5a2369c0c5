package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/ledger-server/internal/config"
	"github.com/carson-networks/ledger-server/internal/errs"
	"github.com/carson-networks/ledger-server/internal/operator/actions"
	"github.com/carson-networks/ledger-server/internal/storage/rate"
)

type fakeRateReader struct {
	rates []*rate.Rate
}

func (f *fakeRateReader) FindOnOrBefore(_ context.Context, from, to string, date time.Time) (*rate.Rate, error) {
	var best *rate.Rate
	for _, r := range f.rates {
		if r.FromCurrency != from || r.ToCurrency != to || r.RateDate.After(date) {
			continue
		}
		if best == nil || r.RateDate.After(best.RateDate) {
			best = r
		}
	}
	if best == nil {
		return nil, errs.NotFound("no rate for %s/%s on or before %s", from, to, date.Format("2006-01-02"))
	}
	return best, nil
}

func (f *fakeRateReader) Series(_ context.Context, from, to string, start, end time.Time) ([]*rate.Rate, error) {
	var out []*rate.Rate
	for _, r := range f.rates {
		if r.FromCurrency == from && r.ToCurrency == to && !r.RateDate.Before(start) && !r.RateDate.After(end) {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeProvider struct {
	rates map[string]decimal.Decimal
	err   error
	calls int
}

func (f *fakeProvider) Latest(_ context.Context, _ string) (map[string]decimal.Decimal, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]decimal.Decimal, len(f.rates))
	for k, v := range f.rates {
		out[k] = v
	}
	return out, nil
}

func (f *fakeProvider) Name() string {
	return "fake"
}

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	return f.now
}

type fakeProcessor struct {
	actions []actions.IAction
	err     error
}

func (f *fakeProcessor) Process(_ context.Context, action actions.IAction) error {
	if f.err != nil {
		return f.err
	}
	f.actions = append(f.actions, action)
	return nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testConfig() *config.Config {
	return &config.Config{
		RateRefreshInterval: 60 * time.Minute,
		BaseCurrency:        "USD",
		TrackedCurrencies:   []string{"USD", "EUR", "JPY"},
		CurrencyDecimals:    map[string]int32{"JPY": 0, "KRW": 0},
	}
}

func newTestCurrencyService(reader rate.IReader, ops processor, provider *fakeProvider, clock Clock) *CurrencyService {
	return NewCurrencyService(reader, ops, provider, testConfig(), clock)
}

func TestGetRate(t *testing.T) {
	reader := &fakeRateReader{rates: []*rate.Rate{
		{FromCurrency: "USD", ToCurrency: "EUR", RateDate: day(2025, 1, 10), Rate: decimal.RequireFromString("0.92")},
		{FromCurrency: "USD", ToCurrency: "EUR", RateDate: day(2025, 1, 15), Rate: decimal.RequireFromString("0.95")},
	}}
	svc := newTestCurrencyService(reader, &fakeProcessor{}, &fakeProvider{}, &fakeClock{})
	ctx := context.Background()

	t.Run("exact date", func(t *testing.T) {
		r, err := svc.GetRate(ctx, "USD", "EUR", day(2025, 1, 15))
		require.NoError(t, err)
		assert.True(t, r.Equal(decimal.RequireFromString("0.95")))
	})

	t.Run("falls back to most recent earlier date", func(t *testing.T) {
		r, err := svc.GetRate(ctx, "USD", "EUR", day(2025, 1, 12))
		require.NoError(t, err)
		assert.True(t, r.Equal(decimal.RequireFromString("0.92")))
	})

	t.Run("never uses a later date", func(t *testing.T) {
		_, err := svc.GetRate(ctx, "USD", "EUR", day(2025, 1, 5))
		assert.True(t, errs.IsKind(err, errs.KindNotFound))
	})

	t.Run("identity pair needs no stored rate", func(t *testing.T) {
		r, err := svc.GetRate(ctx, "JPY", "JPY", day(2025, 1, 1))
		require.NoError(t, err)
		assert.True(t, r.Equal(decimal.NewFromInt(1)))
	})

	t.Run("normalizes case and whitespace", func(t *testing.T) {
		r, err := svc.GetRate(ctx, " usd ", "eur", day(2025, 1, 15))
		require.NoError(t, err)
		assert.True(t, r.Equal(decimal.RequireFromString("0.95")))
	})

	t.Run("rejects malformed codes", func(t *testing.T) {
		_, err := svc.GetRate(ctx, "DOLLARS", "EUR", day(2025, 1, 15))
		assert.True(t, errs.IsKind(err, errs.KindValidation))
	})

	t.Run("missing pair is not found, not 1.0", func(t *testing.T) {
		_, err := svc.GetRate(ctx, "GBP", "CHF", day(2025, 1, 15))
		assert.True(t, errs.IsKind(err, errs.KindNotFound))
	})
}

func TestConvert(t *testing.T) {
	reader := &fakeRateReader{rates: []*rate.Rate{
		{FromCurrency: "USD", ToCurrency: "EUR", RateDate: day(2025, 1, 10), Rate: decimal.RequireFromString("0.923456")},
		{FromCurrency: "USD", ToCurrency: "JPY", RateDate: day(2025, 1, 10), Rate: decimal.RequireFromString("155.73")},
	}}
	svc := newTestCurrencyService(reader, &fakeProcessor{}, &fakeProvider{}, &fakeClock{})
	ctx := context.Background()

	t.Run("rounds to target currency decimals", func(t *testing.T) {
		got, err := svc.Convert(ctx, decimal.NewFromInt(100), "USD", "EUR", day(2025, 1, 10))
		require.NoError(t, err)
		assert.Equal(t, "92.35", got.String())
	})

	t.Run("zero-decimal currency", func(t *testing.T) {
		got, err := svc.Convert(ctx, decimal.RequireFromString("10.50"), "USD", "JPY", day(2025, 1, 10))
		require.NoError(t, err)
		assert.Equal(t, "1635", got.String())
	})

	t.Run("identity conversion returns the amount", func(t *testing.T) {
		got, err := svc.Convert(ctx, decimal.RequireFromString("42.42"), "EUR", "EUR", day(2025, 1, 10))
		require.NoError(t, err)
		assert.Equal(t, "42.42", got.String())
	})

	t.Run("round trip stays within one smallest unit", func(t *testing.T) {
		one := decimal.NewFromInt(1)
		fwdEUR := decimal.RequireFromString("0.923456")
		fwdJPY := decimal.RequireFromString("155.73")
		// Reverse rates stored the way a refresh stores them: the
		// reciprocal cross rate rounded to 8 places.
		rtReader := &fakeRateReader{rates: []*rate.Rate{
			{FromCurrency: "USD", ToCurrency: "EUR", RateDate: day(2025, 1, 10), Rate: fwdEUR},
			{FromCurrency: "EUR", ToCurrency: "USD", RateDate: day(2025, 1, 10), Rate: one.Div(fwdEUR).Round(8)},
			{FromCurrency: "USD", ToCurrency: "JPY", RateDate: day(2025, 1, 10), Rate: fwdJPY},
			{FromCurrency: "JPY", ToCurrency: "USD", RateDate: day(2025, 1, 10), Rate: one.Div(fwdJPY).Round(8)},
		}}
		rtSvc := newTestCurrencyService(rtReader, &fakeProcessor{}, &fakeProvider{}, &fakeClock{})

		cases := []struct {
			name     string
			amount   string
			from, to string
			unit     string
		}{
			{"two-decimal pair", "100", "USD", "EUR", "0.01"},
			{"large amount", "98765.43", "EUR", "USD", "0.01"},
			{"zero-decimal source", "10000", "JPY", "USD", "1"},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				amount := decimal.RequireFromString(tc.amount)
				out, err := rtSvc.Convert(ctx, amount, tc.from, tc.to, day(2025, 1, 10))
				require.NoError(t, err)
				back, err := rtSvc.Convert(ctx, out, tc.to, tc.from, day(2025, 1, 10))
				require.NoError(t, err)

				drift := back.Sub(amount).Abs()
				assert.True(t, drift.LessThanOrEqual(decimal.RequireFromString(tc.unit)),
					"%s %s -> %s -> %s drifted by %s", tc.amount, tc.from, tc.to, back.String(), drift.String())
			})
		}
	})
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()

	t.Run("stores pairwise cross rates", func(t *testing.T) {
		provider := &fakeProvider{rates: map[string]decimal.Decimal{
			"EUR": decimal.RequireFromString("0.9"),
			"JPY": decimal.RequireFromString("150"),
		}}
		ops := &fakeProcessor{}
		clock := &fakeClock{now: time.Date(2025, 3, 1, 14, 30, 0, 0, time.UTC)}
		svc := newTestCurrencyService(&fakeRateReader{}, ops, provider, clock)

		res, err := svc.Refresh(ctx, nil, false)
		require.NoError(t, err)
		assert.True(t, res.Refreshed)
		assert.False(t, res.Throttled)
		// Three tracked currencies yield six directed pairs.
		assert.Equal(t, 6, res.RatesStored)

		require.Len(t, ops.actions, 1)
		upsert, ok := ops.actions[0].(*actions.UpsertRates)
		require.True(t, ok)
		require.Len(t, upsert.Rates, 6)

		byPair := map[string]*rate.Rate{}
		for _, r := range upsert.Rates {
			byPair[r.FromCurrency+"/"+r.ToCurrency] = r
			assert.Equal(t, day(2025, 3, 1), r.RateDate)
			assert.Equal(t, "fake", r.Source)
		}
		assert.Equal(t, "0.9", byPair["USD/EUR"].Rate.String())
		// EUR->JPY derives from the base quotes: 150 / 0.9.
		assert.Equal(t, "166.66666667", byPair["EUR/JPY"].Rate.String())
		assert.Equal(t, "0.006", byPair["JPY/EUR"].Rate.String())
	})

	t.Run("throttles inside the refresh window", func(t *testing.T) {
		provider := &fakeProvider{rates: map[string]decimal.Decimal{
			"EUR": decimal.RequireFromString("0.9"),
			"JPY": decimal.RequireFromString("150"),
		}}
		ops := &fakeProcessor{}
		clock := &fakeClock{now: time.Date(2025, 3, 1, 14, 0, 0, 0, time.UTC)}
		svc := newTestCurrencyService(&fakeRateReader{}, ops, provider, clock)

		first, err := svc.Refresh(ctx, nil, false)
		require.NoError(t, err)
		require.True(t, first.Refreshed)

		clock.now = clock.now.Add(30 * time.Minute)
		second, err := svc.Refresh(ctx, nil, false)
		require.NoError(t, err)
		assert.True(t, second.Throttled)
		assert.False(t, second.Refreshed)
		assert.Equal(t, first.LastRefresh, second.LastRefresh)
		assert.Equal(t, 1, provider.calls)

		clock.now = clock.now.Add(31 * time.Minute)
		third, err := svc.Refresh(ctx, nil, false)
		require.NoError(t, err)
		assert.True(t, third.Refreshed)
		assert.Equal(t, 2, provider.calls)
	})

	t.Run("force bypasses the throttle", func(t *testing.T) {
		provider := &fakeProvider{rates: map[string]decimal.Decimal{
			"EUR": decimal.RequireFromString("0.9"),
			"JPY": decimal.RequireFromString("150"),
		}}
		clock := &fakeClock{now: time.Date(2025, 3, 1, 14, 0, 0, 0, time.UTC)}
		svc := newTestCurrencyService(&fakeRateReader{}, &fakeProcessor{}, provider, clock)

		_, err := svc.Refresh(ctx, nil, false)
		require.NoError(t, err)
		res, err := svc.Refresh(ctx, nil, true)
		require.NoError(t, err)
		assert.True(t, res.Refreshed)
		assert.Equal(t, 2, provider.calls)
	})

	t.Run("provider failure leaves stored rates untouched", func(t *testing.T) {
		provider := &fakeProvider{err: errs.New(errs.KindExternal, "provider unreachable")}
		ops := &fakeProcessor{}
		clock := &fakeClock{now: time.Date(2025, 3, 1, 14, 0, 0, 0, time.UTC)}
		svc := newTestCurrencyService(&fakeRateReader{}, ops, provider, clock)

		_, err := svc.Refresh(ctx, nil, false)
		assert.True(t, errs.IsKind(err, errs.KindExternal))
		assert.Empty(t, ops.actions)

		// A failed attempt does not arm the throttle.
		provider.err = nil
		provider.rates = map[string]decimal.Decimal{
			"EUR": decimal.RequireFromString("0.9"),
			"JPY": decimal.RequireFromString("150"),
		}
		res, err := svc.Refresh(ctx, nil, false)
		require.NoError(t, err)
		assert.True(t, res.Refreshed)
	})

	t.Run("explicit currency list overrides the configured one", func(t *testing.T) {
		provider := &fakeProvider{rates: map[string]decimal.Decimal{
			"EUR": decimal.RequireFromString("0.9"),
		}}
		ops := &fakeProcessor{}
		clock := &fakeClock{now: time.Date(2025, 3, 1, 14, 0, 0, 0, time.UTC)}
		svc := newTestCurrencyService(&fakeRateReader{}, ops, provider, clock)

		res, err := svc.Refresh(ctx, []string{"usd", "eur"}, false)
		require.NoError(t, err)
		assert.Equal(t, 2, res.RatesStored)
	})
}

func TestHistory(t *testing.T) {
	reader := &fakeRateReader{rates: []*rate.Rate{
		{FromCurrency: "USD", ToCurrency: "EUR", RateDate: day(2025, 1, 1), Rate: decimal.RequireFromString("0.90")},
		{FromCurrency: "USD", ToCurrency: "EUR", RateDate: day(2025, 1, 2), Rate: decimal.RequireFromString("0.94")},
		{FromCurrency: "USD", ToCurrency: "EUR", RateDate: day(2025, 1, 3), Rate: decimal.RequireFromString("0.92")},
	}}
	svc := newTestCurrencyService(reader, &fakeProcessor{}, &fakeProvider{}, &fakeClock{})
	ctx := context.Background()

	t.Run("series with statistics", func(t *testing.T) {
		h, err := svc.History(ctx, "USD", "EUR", day(2025, 1, 1), day(2025, 1, 31))
		require.NoError(t, err)
		require.Len(t, h.Points, 3)
		assert.Equal(t, "0.9", h.Stats.Min.String())
		assert.Equal(t, "0.94", h.Stats.Max.String())
		assert.Equal(t, "0.92", h.Stats.Mean.String())
		assert.Equal(t, "0.02", h.Stats.Change.String())
	})

	t.Run("empty window", func(t *testing.T) {
		h, err := svc.History(ctx, "USD", "EUR", day(2024, 1, 1), day(2024, 12, 31))
		require.NoError(t, err)
		assert.Empty(t, h.Points)
	})

	t.Run("inverted window rejected", func(t *testing.T) {
		_, err := svc.History(ctx, "USD", "EUR", day(2025, 2, 1), day(2025, 1, 1))
		assert.True(t, errs.IsKind(err, errs.KindValidation))
	})
}
