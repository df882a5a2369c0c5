package service

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/errs"
	"github.com/carson-networks/ledger-server/internal/operator/actions"
	"github.com/carson-networks/ledger-server/internal/posting"
	"github.com/carson-networks/ledger-server/internal/storage/transaction"
)

// ImportMapping maps row columns to transaction fields. A negative index
// means the column is absent.
type ImportMapping struct {
	DateColumn        int
	AmountColumn      int
	DescriptionColumn int
	TypeColumn        int
}

// ImportOptions configures one import batch. All imported rows land on
// one account and category; file parsing itself happens upstream.
type ImportOptions struct {
	AccountID  uuid.UUID
	CategoryID uuid.UUID
	// DateFormat is a Go reference layout, defaulting to 2006-01-02.
	DateFormat string
	// SkipDuplicates drops rows matching an existing transaction on
	// account, date, amount, and normalized description.
	SkipDuplicates bool
}

// ImportRowError records why one row was not imported.
type ImportRowError struct {
	Row int
	Err string
}

// ImportReport summarizes an import batch. Row errors do not abort the
// batch; each surviving row commits as its own atomic unit.
type ImportReport struct {
	Created []uuid.UUID
	Skipped int
	Errors  []ImportRowError
}

// Import maps each row to a transaction and funnels it through Create.
func (s *LedgerService) Import(ctx context.Context, userID uuid.UUID, rows [][]string, mapping ImportMapping, options ImportOptions) (*ImportReport, error) {
	if options.AccountID == uuid.Nil {
		return nil, errs.Validation("import requires an account")
	}
	if options.CategoryID == uuid.Nil {
		return nil, errs.Validation("import requires a category")
	}
	if mapping.DateColumn < 0 || mapping.AmountColumn < 0 {
		return nil, errs.Validation("import mapping requires date and amount columns")
	}

	dateFormat := options.DateFormat
	if dateFormat == "" {
		dateFormat = "2006-01-02"
	}

	report := &ImportReport{}
	for i, row := range rows {
		created, skipped, err := s.importRow(ctx, userID, row, mapping, options, dateFormat)
		if err != nil {
			report.Errors = append(report.Errors, ImportRowError{Row: i, Err: err.Error()})
			continue
		}
		if skipped {
			report.Skipped++
			continue
		}
		report.Created = append(report.Created, created)
	}
	return report, nil
}

func (s *LedgerService) importRow(ctx context.Context, userID uuid.UUID, row []string, mapping ImportMapping, options ImportOptions, dateFormat string) (uuid.UUID, bool, error) {
	date, err := columnTime(row, mapping.DateColumn, dateFormat)
	if err != nil {
		return uuid.Nil, false, err
	}
	amount, err := columnDecimal(row, mapping.AmountColumn)
	if err != nil {
		return uuid.Nil, false, err
	}

	description := ""
	if mapping.DescriptionColumn >= 0 {
		description, err = column(row, mapping.DescriptionColumn)
		if err != nil {
			return uuid.Nil, false, err
		}
	}

	// Without an explicit type column the sign decides: outflows are
	// recorded as expenses, inflows as income. Amounts are stored
	// non-negative either way.
	txType := posting.TypeIncome
	if mapping.TypeColumn >= 0 {
		raw, err := column(row, mapping.TypeColumn)
		if err != nil {
			return uuid.Nil, false, err
		}
		txType = posting.Type(raw)
		if !txType.Valid() {
			return uuid.Nil, false, errs.Validation("unknown transaction type %q", raw)
		}
	} else if amount.IsNegative() {
		txType = posting.TypeExpense
	}
	amount = amount.Abs()

	if options.SkipDuplicates {
		exists, err := s.reader.Transactions.ExistsDuplicate(ctx, userID, transaction.DuplicateKey{
			AccountID:       options.AccountID,
			TransactionDate: date,
			Amount:          amount,
			NormalizedNotes: transaction.NormalizeDescription(description),
		})
		if err != nil {
			return uuid.Nil, false, err
		}
		if exists {
			return uuid.Nil, true, nil
		}
	}

	action := &actions.CreateTransaction{
		UserID:          userID,
		AccountID:       options.AccountID,
		CategoryID:      options.CategoryID,
		Type:            txType,
		Amount:          amount,
		TransactionDate: date,
		Notes:           description,
	}
	if err := s.ops.Process(ctx, action); err != nil {
		return uuid.Nil, false, err
	}
	return action.CreatedID, false, nil
}

func column(row []string, index int) (string, error) {
	if index >= len(row) {
		return "", errs.Validation("row has no column %d", index)
	}
	return row[index], nil
}

func columnTime(row []string, index int, layout string) (time.Time, error) {
	raw, err := column(row, index)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(layout, raw)
	if err != nil {
		return time.Time{}, errs.Validation("invalid date %q: %s", raw, err.Error())
	}
	return t, nil
}

func columnDecimal(row []string, index int) (decimal.Decimal, error) {
	raw, err := column(row, index)
	if err != nil {
		return decimal.Decimal{}, err
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, errs.Validation("invalid amount %q", raw)
	}
	return d, nil
}
