package actions

import (
	"context"
	"strings"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/errs"
	"github.com/carson-networks/ledger-server/internal/storage"
	"github.com/carson-networks/ledger-server/internal/storage/account"
)

// CreateAccount inserts an account with its starting balance.
type CreateAccount struct {
	UserID            uuid.UUID
	Name              string
	Currency          string
	StartingBalance   decimal.Decimal
	IncludeInNetWorth bool

	// CreatedID is populated on success.
	CreatedID uuid.UUID
}

func (a *CreateAccount) Perform(ctx context.Context, writer *storage.Writer) error {
	name := strings.TrimSpace(a.Name)
	if name == "" {
		return errs.Validation("account name is required")
	}
	currency := strings.ToUpper(strings.TrimSpace(a.Currency))
	if len(currency) != 3 {
		return errs.Validation("currency must be a 3-letter code, got %q", a.Currency)
	}

	id, err := writer.Accounts.Insert(ctx, &account.AccountCreate{
		UserID:            a.UserID,
		Name:              name,
		Currency:          currency,
		StartingBalance:   a.StartingBalance,
		IncludeInNetWorth: a.IncludeInNetWorth,
	})
	if err != nil {
		return err
	}

	a.CreatedID = id
	return nil
}

// DeactivateAccount soft-removes an account; its balance history stays.
type DeactivateAccount struct {
	UserID    uuid.UUID
	AccountID uuid.UUID
}

func (a *DeactivateAccount) Perform(ctx context.Context, writer *storage.Writer) error {
	return writer.Accounts.Deactivate(ctx, a.UserID, a.AccountID)
}
