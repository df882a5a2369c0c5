package service

import (
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/posting"
	"github.com/carson-networks/ledger-server/internal/storage/transaction"
)

// Transaction represents a transaction in the service layer.
type Transaction struct {
	ID                uuid.UUID
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
	CreatedAt         time.Time
}

func transactionFromStorage(row *transaction.Transaction) Transaction {
	return Transaction{
		ID:                row.ID,
		AccountID:         row.AccountID,
		TransferAccountID: row.TransferTarget(),
		CategoryID:        row.CategoryID,
		Type:              row.Type,
		Amount:            row.Amount,
		TransactionDate:   row.TransactionDate,
		Cleared:           row.Cleared,
		Recurring:         row.Recurring,
		Tags:              row.Tags,
		Notes:             row.Notes,
		CreatedAt:         row.CreatedAt,
	}
}

// CreateTransactionInput is the input for creating a transaction.
type CreateTransactionInput struct {
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

// TransactionFilter narrows listing and statistics to a subset of the
// user's transactions.
type TransactionFilter struct {
	AccountID  *uuid.UUID
	CategoryID *uuid.UUID
	Type       *posting.Type
	DateFrom   *time.Time
	DateTo     *time.Time
}

func (f *TransactionFilter) toStorage(limit, offset int) *transaction.TransactionFilter {
	out := &transaction.TransactionFilter{Limit: limit, Offset: offset}
	if f != nil {
		out.AccountID = f.AccountID
		out.CategoryID = f.CategoryID
		out.Type = f.Type
		out.DateFrom = f.DateFrom
		out.DateTo = f.DateTo
	}
	return out
}

// TransactionCursor identifies a position in a paginated result set.
type TransactionCursor struct {
	Position int
	Limit    int
}

// TransactionStatistics aggregates a filtered transaction set. It is
// always computed from the same filtered set the listing paginates.
type TransactionStatistics struct {
	Count         int
	IncomeTotal   decimal.Decimal
	ExpenseTotal  decimal.Decimal
	TransferTotal decimal.Decimal
	// Net is income minus expense; transfers move money between the
	// user's own accounts and cancel out.
	Net     decimal.Decimal
	Average decimal.Decimal
	Min     decimal.Decimal
	Max     decimal.Decimal
}

// computeStatistics derives the aggregate over rows. Average, Min, and
// Max are over the stored non-negative amounts.
func computeStatistics(rows []*transaction.Transaction) TransactionStatistics {
	stats := TransactionStatistics{Count: len(rows)}
	if len(rows) == 0 {
		return stats
	}

	stats.Min = rows[0].Amount
	stats.Max = rows[0].Amount
	sum := decimal.Zero
	for _, row := range rows {
		switch row.Type {
		case posting.TypeIncome:
			stats.IncomeTotal = stats.IncomeTotal.Add(row.Amount)
		case posting.TypeExpense:
			stats.ExpenseTotal = stats.ExpenseTotal.Add(row.Amount)
		case posting.TypeTransfer:
			stats.TransferTotal = stats.TransferTotal.Add(row.Amount)
		}
		if row.Amount.LessThan(stats.Min) {
			stats.Min = row.Amount
		}
		if row.Amount.GreaterThan(stats.Max) {
			stats.Max = row.Amount
		}
		sum = sum.Add(row.Amount)
	}
	stats.Net = stats.IncomeTotal.Sub(stats.ExpenseTotal)
	stats.Average = sum.Div(decimal.NewFromInt(int64(len(rows)))).Round(6)
	return stats
}
