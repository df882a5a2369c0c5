package transaction

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/posting"
)

// Transaction represents a transaction record. Amount is stored
// non-negative; direction is derived from Type.
type Transaction struct {
	ID                uuid.UUID       `db:"id"`
	UserID            uuid.UUID       `db:"user_id"`
	AccountID         uuid.UUID       `db:"account_id"`
	TransferAccountID uuid.NullUUID   `db:"transfer_account_id"`
	CategoryID        uuid.UUID       `db:"category_id"`
	Type              posting.Type    `db:"type"`
	Amount            decimal.Decimal `db:"amount"`
	TransactionDate   time.Time       `db:"transaction_date"`
	Cleared           bool            `db:"cleared"`
	Recurring         bool            `db:"recurring"`
	Tags              pq.StringArray  `db:"tags"`
	Notes             string          `db:"notes"`
	CreatedAt         time.Time       `db:"created_at"`
}

// TransferTarget returns the transfer target as a pointer, nil for
// income and expense rows.
func (t *Transaction) TransferTarget() *uuid.UUID {
	if !t.TransferAccountID.Valid {
		return nil
	}
	id := t.TransferAccountID.UUID
	return &id
}

// TransactionCreate is the input for inserting a transaction row.
type TransactionCreate struct {
	UserID            uuid.UUID
	AccountID         uuid.UUID
	TransferAccountID *uuid.UUID
	CategoryID        uuid.UUID
	Type              posting.Type
	Amount            decimal.Decimal
	TransactionDate   time.Time
	Cleared           bool
	Recurring         bool
	Tags              []string
	Notes             string
}

// TransactionFilter specifies filters for listing transactions. Statistics
// are computed over the same filtered set the listing paginates.
type TransactionFilter struct {
	AccountID  *uuid.UUID
	CategoryID *uuid.UUID
	Type       *posting.Type
	DateFrom   *time.Time
	DateTo     *time.Time
	Limit      int
	Offset     int
}

// DuplicateKey identifies a row for import de-duplication: same account,
// date, amount, and normalized description.
type DuplicateKey struct {
	AccountID       uuid.UUID
	TransactionDate time.Time
	Amount          decimal.Decimal
	NormalizedNotes string
}

// IReader defines read access to transactions, scoped to the acting user.
//
//go:generate mockery --name IReader
type IReader interface {
	FindByID(ctx context.Context, userID, id uuid.UUID) (*Transaction, error)
	List(ctx context.Context, userID uuid.UUID, filter *TransactionFilter) ([]*Transaction, error)
	// ListAll ignores Limit/Offset; used for statistics over the filtered set.
	ListAll(ctx context.Context, userID uuid.UUID, filter *TransactionFilter) ([]*Transaction, error)
	ExistsDuplicate(ctx context.Context, userID uuid.UUID, key DuplicateKey) (bool, error)
}

// IWriter defines mutations, executed inside an open database transaction.
//
//go:generate mockery --name IWriter
type IWriter interface {
	IReader
	Insert(ctx context.Context, create *TransactionCreate) (uuid.UUID, error)
	Update(ctx context.Context, row *Transaction) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}
