// Package posting is the signed-delta calculus behind the transaction
// ledger. Amounts are stored non-negative; direction comes from the
// transaction type. Account balances are only ever moved by applying the
// postings produced here, so the balance invariant (balance == sum of
// postings of all currently recorded transactions) has a single owner.
package posting

import (
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/errs"
)

// Type classifies a transaction.
type Type string

const (
	TypeIncome   Type = "income"
	TypeExpense  Type = "expense"
	TypeTransfer Type = "transfer"
)

func (t Type) Valid() bool {
	switch t {
	case TypeIncome, TypeExpense, TypeTransfer:
		return true
	}
	return false
}

// Posting is one signed balance change against one account.
type Posting struct {
	AccountID uuid.UUID
	Delta     decimal.Decimal
}

// ForTransaction computes the postings for a transaction and enforces the
// type/amount/transfer invariants:
//   - amount must be non-negative
//   - transfer requires a target account distinct from the source
//   - income and expense must not carry a target account
func ForTransaction(t Type, amount decimal.Decimal, accountID uuid.UUID, transferAccountID *uuid.UUID) ([]Posting, error) {
	if !t.Valid() {
		return nil, errs.Validation("unknown transaction type %q", string(t))
	}
	if amount.IsNegative() {
		return nil, errs.Validation("amount must not be negative, got %s", amount.String())
	}
	if accountID == uuid.Nil {
		return nil, errs.Validation("account is required")
	}

	switch t {
	case TypeIncome:
		if transferAccountID != nil {
			return nil, errs.Validation("income must not have a transfer account")
		}
		return []Posting{{AccountID: accountID, Delta: amount}}, nil

	case TypeExpense:
		if transferAccountID != nil {
			return nil, errs.Validation("expense must not have a transfer account")
		}
		return []Posting{{AccountID: accountID, Delta: amount.Neg()}}, nil

	default: // TypeTransfer
		if transferAccountID == nil || *transferAccountID == uuid.Nil {
			return nil, errs.Validation("transfer requires a target account")
		}
		if *transferAccountID == accountID {
			return nil, errs.Validation("transfer target must differ from the source account")
		}
		return []Posting{
			{AccountID: accountID, Delta: amount.Neg()},
			{AccountID: *transferAccountID, Delta: amount},
		}, nil
	}
}

// Reverse returns the postings that undo ps. Applying ps then Reverse(ps)
// leaves every balance unchanged, which is how updates avoid drift: the
// original postings are reversed before the new ones are applied.
func Reverse(ps []Posting) []Posting {
	out := make([]Posting, len(ps))
	for i, p := range ps {
		out[i] = Posting{AccountID: p.AccountID, Delta: p.Delta.Neg()}
	}
	return out
}
