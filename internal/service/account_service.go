package service

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/config"
	"github.com/carson-networks/ledger-server/internal/operator/actions"
	"github.com/carson-networks/ledger-server/internal/storage"
	"github.com/carson-networks/ledger-server/internal/storage/account"
)

const defaultAccountLimit = 20

// Account represents an account in the service layer.
type Account struct {
	ID                uuid.UUID
	Name              string
	Currency          string
	Balance           decimal.Decimal
	Active            bool
	IncludeInNetWorth bool
	CreatedAt         time.Time
}

func accountFromStorage(row *account.Account) Account {
	return Account{
		ID:                row.ID,
		Name:              row.Name,
		Currency:          row.Currency,
		Balance:           row.Balance,
		Active:            row.Active,
		IncludeInNetWorth: row.IncludeInNetWorth,
		CreatedAt:         row.CreatedAt,
	}
}

// CreateAccountInput is the input for creating an account.
type CreateAccountInput struct {
	Name              string
	Currency          string
	StartingBalance   decimal.Decimal
	IncludeInNetWorth bool
}

// AccountCursor identifies a position in a paginated result set.
type AccountCursor struct {
	Position int
	Limit    int
}

// NetWorth is the sum of flagged account balances converted to the base
// currency.
type NetWorth struct {
	Currency string
	Total    decimal.Decimal
	Accounts []NetWorthEntry
}

// NetWorthEntry is one account's contribution to the net worth total.
type NetWorthEntry struct {
	AccountID uuid.UUID
	Name      string
	Currency  string
	Balance   decimal.Decimal
	Converted decimal.Decimal
}

// AccountService handles account business logic. Balances themselves
// belong to the transaction ledger; this service only creates, lists,
// and retires accounts.
type AccountService struct {
	reader   *storage.Reader
	ops      processor
	currency *CurrencyService
	env      *config.Config
}

// NewAccountService creates a new AccountService.
func NewAccountService(reader *storage.Reader, ops processor, currency *CurrencyService, env *config.Config) *AccountService {
	return &AccountService{reader: reader, ops: ops, currency: currency, env: env}
}

// Create creates a new account.
func (s *AccountService) Create(ctx context.Context, userID uuid.UUID, input CreateAccountInput) (*Account, error) {
	action := &actions.CreateAccount{
		UserID:            userID,
		Name:              input.Name,
		Currency:          input.Currency,
		StartingBalance:   input.StartingBalance,
		IncludeInNetWorth: input.IncludeInNetWorth,
	}
	if err := s.ops.Process(ctx, action); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID, action.CreatedID)
}

// Get retrieves an account by ID.
func (s *AccountService) Get(ctx context.Context, userID, id uuid.UUID) (*Account, error) {
	row, err := s.reader.Accounts.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	converted := accountFromStorage(row)
	return &converted, nil
}

// List returns a page of accounts using cursor pagination.
func (s *AccountService) List(ctx context.Context, userID uuid.UUID, activeOnly bool, cursor *AccountCursor) ([]Account, *AccountCursor, error) {
	limit := defaultAccountLimit
	offset := 0
	if cursor != nil {
		if cursor.Limit > 0 {
			limit = cursor.Limit
		}
		offset = cursor.Position
	}

	rows, err := s.reader.Accounts.List(ctx, userID, &account.AccountFilter{
		ActiveOnly: activeOnly,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return nil, nil, err
	}

	if len(rows) == 0 {
		return nil, nil, nil
	}

	var nextCursor *AccountCursor
	if len(rows) > limit {
		rows = rows[:limit]
		nextCursor = &AccountCursor{
			Position: offset + limit,
			Limit:    limit,
		}
	}

	converted := make([]Account, len(rows))
	for i, row := range rows {
		converted[i] = accountFromStorage(row)
	}
	return converted, nextCursor, nil
}

// Deactivate soft-removes an account; history and balances stay behind
// the flag.
func (s *AccountService) Deactivate(ctx context.Context, userID, id uuid.UUID) error {
	return s.ops.Process(ctx, &actions.DeactivateAccount{UserID: userID, AccountID: id})
}

// NetWorth sums active flagged accounts in the configured base currency,
// converting each balance at the rate on or before asOf.
func (s *AccountService) NetWorth(ctx context.Context, userID uuid.UUID, asOf time.Time) (*NetWorth, error) {
	rows, err := s.reader.Accounts.List(ctx, userID, &account.AccountFilter{ActiveOnly: true})
	if err != nil {
		return nil, err
	}

	result := &NetWorth{Currency: s.env.BaseCurrency}
	for _, row := range rows {
		if !row.IncludeInNetWorth {
			continue
		}
		converted, err := s.currency.Convert(ctx, row.Balance, row.Currency, s.env.BaseCurrency, asOf)
		if err != nil {
			return nil, err
		}
		result.Total = result.Total.Add(converted)
		result.Accounts = append(result.Accounts, NetWorthEntry{
			AccountID: row.ID,
			Name:      row.Name,
			Currency:  row.Currency,
			Balance:   row.Balance,
			Converted: converted,
		})
	}
	return result, nil
}
