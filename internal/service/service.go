package service

import (
	"context"
	"time"

	"github.com/carson-networks/ledger-server/internal/config"
	"github.com/carson-networks/ledger-server/internal/operator"
	"github.com/carson-networks/ledger-server/internal/operator/actions"
	"github.com/carson-networks/ledger-server/internal/rates"
	"github.com/carson-networks/ledger-server/internal/storage"
)

// processor runs one action as one atomic unit. Satisfied by the
// operator delegator; tests substitute fakes.
type processor interface {
	Process(ctx context.Context, action actions.IAction) error
}

// Clock supplies the current time. Status derivation and refresh
// throttling read the clock through this so they stay deterministic
// under test.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

func NewSystemClock() Clock {
	return systemClock{}
}

// Service holds all business logic services.
type Service struct {
	Ledger   *LedgerService
	Account  *AccountService
	Bill     *BillService
	Currency *CurrencyService
}

// NewService creates a new Service with the given storage, operator, and
// rate provider.
func NewService(store *storage.Storage, ops *operator.OperatorDelegator, provider rates.IProvider, env *config.Config) *Service {
	clock := NewSystemClock()
	currency := NewCurrencyService(store.Read().Rates, ops, provider, env, clock)
	return &Service{
		Ledger:   NewLedgerService(store.Read(), ops),
		Account:  NewAccountService(store.Read(), ops, currency, env),
		Bill:     NewBillService(store.Read(), ops, env, clock),
		Currency: currency,
	}
}
