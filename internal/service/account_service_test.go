package service

import (
	"context"
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/ledger-server/internal/errs"
	"github.com/carson-networks/ledger-server/internal/storage/account"
	"github.com/carson-networks/ledger-server/internal/storage/inmemory"
	"github.com/carson-networks/ledger-server/internal/storage/rate"
)

type accountFixture struct {
	store  *inmemory.Store
	svc    *AccountService
	userID uuid.UUID
}

func newAccountFixture() *accountFixture {
	store := inmemory.NewStore()
	env := testConfig()
	ops := &applyProcessor{store: store}
	clock := &fakeClock{now: day(2025, 1, 15)}
	currency := NewCurrencyService(store.Rates, ops, &fakeProvider{}, env, clock)
	return &accountFixture{
		store:  store,
		svc:    NewAccountService(store.Reader(), ops, currency, env),
		userID: uuid.Must(uuid.NewV4()),
	}
}

func TestAccountCreate(t *testing.T) {
	ctx := context.Background()
	f := newAccountFixture()

	t.Run("creates with a starting balance", func(t *testing.T) {
		created, err := f.svc.Create(ctx, f.userID, CreateAccountInput{
			Name:              "Checking",
			Currency:          "usd",
			StartingBalance:   decimal.RequireFromString("250.75"),
			IncludeInNetWorth: true,
		})
		require.NoError(t, err)
		assert.Equal(t, "Checking", created.Name)
		assert.Equal(t, "USD", created.Currency)
		assert.Equal(t, "250.75", created.Balance.String())
		assert.True(t, created.Active)
	})

	t.Run("rejects a blank name", func(t *testing.T) {
		_, err := f.svc.Create(ctx, f.userID, CreateAccountInput{Name: " ", Currency: "USD"})
		assert.True(t, errs.IsKind(err, errs.KindValidation))
	})

	t.Run("rejects a malformed currency", func(t *testing.T) {
		_, err := f.svc.Create(ctx, f.userID, CreateAccountInput{Name: "x", Currency: "US"})
		assert.True(t, errs.IsKind(err, errs.KindValidation))
	})
}

func TestAccountDeactivate(t *testing.T) {
	ctx := context.Background()
	f := newAccountFixture()

	created, err := f.svc.Create(ctx, f.userID, CreateAccountInput{Name: "Old", Currency: "USD"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Deactivate(ctx, f.userID, created.ID))

	got, err := f.svc.Get(ctx, f.userID, created.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)

	listed, _, err := f.svc.List(ctx, f.userID, true, nil)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestAccountList(t *testing.T) {
	ctx := context.Background()
	f := newAccountFixture()

	names := []string{"Alpha", "Bravo", "Charlie"}
	for _, name := range names {
		_, err := f.svc.Create(ctx, f.userID, CreateAccountInput{Name: name, Currency: "USD"})
		require.NoError(t, err)
	}

	first, cursor, err := f.svc.List(ctx, f.userID, false, &AccountCursor{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "Alpha", first[0].Name)
	require.NotNil(t, cursor)

	rest, cursor, err := f.svc.List(ctx, f.userID, false, cursor)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "Charlie", rest[0].Name)
	assert.Nil(t, cursor)
}

func TestAccountNetWorth(t *testing.T) {
	ctx := context.Background()
	f := newAccountFixture()
	asOf := day(2025, 1, 15)

	f.store.Rates.Seed(rate.Rate{
		FromCurrency: "EUR", ToCurrency: "USD",
		RateDate: day(2025, 1, 10), Rate: decimal.RequireFromString("1.08"),
	})

	f.store.Accounts.Seed(account.Account{
		UserID: f.userID, Name: "Checking", Currency: "USD",
		Balance: decimal.RequireFromString("1000"), Active: true, IncludeInNetWorth: true,
	})
	f.store.Accounts.Seed(account.Account{
		UserID: f.userID, Name: "Euro savings", Currency: "EUR",
		Balance: decimal.RequireFromString("500"), Active: true, IncludeInNetWorth: true,
	})
	f.store.Accounts.Seed(account.Account{
		UserID: f.userID, Name: "Petty cash", Currency: "USD",
		Balance: decimal.RequireFromString("999"), Active: true, IncludeInNetWorth: false,
	})
	f.store.Accounts.Seed(account.Account{
		UserID: f.userID, Name: "Closed", Currency: "USD",
		Balance: decimal.RequireFromString("999"), Active: false, IncludeInNetWorth: true,
	})

	worth, err := f.svc.NetWorth(ctx, f.userID, asOf)
	require.NoError(t, err)
	assert.Equal(t, "USD", worth.Currency)
	// 1000 + 500 * 1.08; excluded and inactive accounts do not count.
	assert.Equal(t, "1540", worth.Total.String())
	require.Len(t, worth.Accounts, 2)

	t.Run("missing rate surfaces instead of defaulting", func(t *testing.T) {
		f.store.Accounts.Seed(account.Account{
			UserID: f.userID, Name: "Yen", Currency: "JPY",
			Balance: decimal.RequireFromString("10000"), Active: true, IncludeInNetWorth: true,
		})
		_, err := f.svc.NetWorth(ctx, f.userID, asOf)
		assert.True(t, errs.IsKind(err, errs.KindNotFound))
	})
}

