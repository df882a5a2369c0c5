package service

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/operator/actions"
	"github.com/carson-networks/ledger-server/internal/storage"
)

const defaultLimit = 50

// LedgerService is the transaction ledger: it owns transaction records
// and drives every account balance change through atomic posting units.
type LedgerService struct {
	reader *storage.Reader
	ops    processor
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(reader *storage.Reader, ops processor) *LedgerService {
	return &LedgerService{reader: reader, ops: ops}
}

// Create validates and records a transaction, applying its balance
// postings in the same atomic unit.
func (s *LedgerService) Create(ctx context.Context, userID uuid.UUID, input CreateTransactionInput) (*Transaction, error) {
	action := &actions.CreateTransaction{
		UserID:            userID,
		AccountID:         input.AccountID,
		TransferAccountID: input.TransferAccountID,
		CategoryID:        input.CategoryID,
		Type:              input.Type,
		Amount:            input.Amount,
		TransactionDate:   input.TransactionDate,
		Cleared:           input.Cleared,
		Recurring:         input.Recurring,
		Tags:              input.Tags,
		Notes:             input.Notes,
	}
	if err := s.ops.Process(ctx, action); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID, action.CreatedID)
}

// Update rewrites a transaction: the original postings are reversed and
// the new ones applied atomically, so balances track the currently
// recorded set.
func (s *LedgerService) Update(ctx context.Context, userID, id uuid.UUID, changes actions.TransactionChanges) (*Transaction, error) {
	action := &actions.UpdateTransaction{
		UserID:        userID,
		TransactionID: id,
		Changes:       changes,
	}
	if err := s.ops.Process(ctx, action); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID, id)
}

// Delete reverses a transaction's postings and removes the record.
func (s *LedgerService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.ops.Process(ctx, &actions.DeleteTransaction{UserID: userID, TransactionID: id})
}

// BulkCreate records all inputs or none of them.
func (s *LedgerService) BulkCreate(ctx context.Context, userID uuid.UUID, inputs []CreateTransactionInput) ([]uuid.UUID, error) {
	items := make([]*actions.CreateTransaction, len(inputs))
	for i, input := range inputs {
		items[i] = &actions.CreateTransaction{
			UserID:            userID,
			AccountID:         input.AccountID,
			TransferAccountID: input.TransferAccountID,
			CategoryID:        input.CategoryID,
			Type:              input.Type,
			Amount:            input.Amount,
			TransactionDate:   input.TransactionDate,
			Cleared:           input.Cleared,
			Recurring:         input.Recurring,
			Tags:              input.Tags,
			Notes:             input.Notes,
		}
	}

	action := &actions.BulkCreateTransactions{Items: items}
	if err := s.ops.Process(ctx, action); err != nil {
		return nil, err
	}
	return action.CreatedIDs, nil
}

// BulkDelete removes all listed transactions or none of them.
func (s *LedgerService) BulkDelete(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error {
	return s.ops.Process(ctx, &actions.BulkDeleteTransactions{UserID: userID, IDs: ids})
}

// Get retrieves one transaction.
func (s *LedgerService) Get(ctx context.Context, userID, id uuid.UUID) (*Transaction, error) {
	row, err := s.reader.Transactions.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	converted := transactionFromStorage(row)
	return &converted, nil
}

// List returns a page of matching transactions using cursor pagination.
func (s *LedgerService) List(ctx context.Context, userID uuid.UUID, filter *TransactionFilter, cursor *TransactionCursor) ([]Transaction, *TransactionCursor, error) {
	limit := defaultLimit
	offset := 0
	if cursor != nil {
		if cursor.Limit > 0 {
			limit = cursor.Limit
		}
		offset = cursor.Position
	}

	rows, err := s.reader.Transactions.List(ctx, userID, filter.toStorage(limit, offset))
	if err != nil {
		return nil, nil, err
	}

	if len(rows) == 0 {
		return nil, nil, nil
	}

	var nextCursor *TransactionCursor
	if len(rows) > limit {
		rows = rows[:limit]
		nextCursor = &TransactionCursor{
			Position: offset + limit,
			Limit:    limit,
		}
	}

	converted := make([]Transaction, len(rows))
	for i, row := range rows {
		converted[i] = transactionFromStorage(row)
	}
	return converted, nextCursor, nil
}

// Statistics aggregates the full filtered set, unaffected by pagination.
// Reads have no balance side effects.
func (s *LedgerService) Statistics(ctx context.Context, userID uuid.UUID, filter *TransactionFilter) (*TransactionStatistics, error) {
	rows, err := s.reader.Transactions.ListAll(ctx, userID, filter.toStorage(0, 0))
	if err != nil {
		return nil, err
	}
	stats := computeStatistics(rows)
	return &stats, nil
}
