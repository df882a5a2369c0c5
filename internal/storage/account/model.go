package account

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
)

// Account represents an account record. Balance is only ever moved through
// the transaction ledger's postings.
type Account struct {
	ID                uuid.UUID       `db:"id"`
	UserID            uuid.UUID       `db:"user_id"`
	Name              string          `db:"name"`
	Currency          string          `db:"currency"`
	Balance           decimal.Decimal `db:"balance"`
	Active            bool            `db:"active"`
	IncludeInNetWorth bool            `db:"include_in_net_worth"`
	CreatedAt         time.Time       `db:"created_at"`
}

// AccountCreate is the input for creating a new account.
type AccountCreate struct {
	UserID            uuid.UUID
	Name              string
	Currency          string
	StartingBalance   decimal.Decimal
	IncludeInNetWorth bool
}

// AccountFilter specifies filters for listing accounts.
type AccountFilter struct {
	ActiveOnly bool
	Limit      int
	Offset     int
}

// IReader defines read access to accounts. Every query is scoped to the
// acting user; rows owned by other users behave as absent.
//
//go:generate mockery --name IReader
type IReader interface {
	FindByID(ctx context.Context, userID, id uuid.UUID) (*Account, error)
	List(ctx context.Context, userID uuid.UUID, filter *AccountFilter) ([]*Account, error)
}

// IWriter defines mutations, executed inside an open database transaction.
//
//go:generate mockery --name IWriter
type IWriter interface {
	IReader
	// FindByIDForUpdate locks the account row for the remainder of the
	// enclosing transaction. Concurrent postings against the same account
	// serialize on this lock.
	FindByIDForUpdate(ctx context.Context, userID, id uuid.UUID) (*Account, error)
	Insert(ctx context.Context, create *AccountCreate) (uuid.UUID, error)
	UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error
	Deactivate(ctx context.Context, userID, id uuid.UUID) error
}
