package actions

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/ledger-server/internal/errs"
	"github.com/carson-networks/ledger-server/internal/posting"
	"github.com/carson-networks/ledger-server/internal/storage/inmemory"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func balance(t *testing.T, store *inmemory.Store, userID, accountID uuid.UUID) decimal.Decimal {
	t.Helper()
	row, err := store.Accounts.FindByID(context.Background(), userID, accountID)
	require.NoError(t, err)
	return row.Balance
}

func TestCreateTransaction(t *testing.T) {
	ctx := context.Background()
	userID := uuid.Must(uuid.NewV4())

	t.Run("income credits the account", func(t *testing.T) {
		store := inmemory.NewStore()
		accountID := seedAccount(store, userID, dec("0"))
		categoryID := seedCategory(store, userID)

		action := &CreateTransaction{
			UserID: userID, AccountID: accountID, CategoryID: categoryID,
			Type: posting.TypeIncome, Amount: dec("1000"),
			TransactionDate: time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
		}
		require.NoError(t, action.Perform(ctx, store.Writer()))
		assert.NotEqual(t, uuid.Nil, action.CreatedID)
		assert.Equal(t, "1000", balance(t, store, userID, accountID).String())
	})

	t.Run("expense debits the account", func(t *testing.T) {
		store := inmemory.NewStore()
		accountID := seedAccount(store, userID, dec("100"))
		categoryID := seedCategory(store, userID)

		action := &CreateTransaction{
			UserID: userID, AccountID: accountID, CategoryID: categoryID,
			Type: posting.TypeExpense, Amount: dec("30.25"),
		}
		require.NoError(t, action.Perform(ctx, store.Writer()))
		assert.Equal(t, "69.75", balance(t, store, userID, accountID).String())
	})

	t.Run("transfer moves funds between accounts", func(t *testing.T) {
		store := inmemory.NewStore()
		source := seedAccount(store, userID, dec("1000"))
		target := seedAccount(store, userID, dec("0"))
		categoryID := seedCategory(store, userID)

		action := &CreateTransaction{
			UserID: userID, AccountID: source, TransferAccountID: &target,
			CategoryID: categoryID, Type: posting.TypeTransfer, Amount: dec("300"),
		}
		require.NoError(t, action.Perform(ctx, store.Writer()))
		assert.Equal(t, "700", balance(t, store, userID, source).String())
		assert.Equal(t, "300", balance(t, store, userID, target).String())
	})

	t.Run("inactive account rejects postings", func(t *testing.T) {
		store := inmemory.NewStore()
		accountID := seedAccount(store, userID, dec("0"))
		categoryID := seedCategory(store, userID)
		require.NoError(t, store.Accounts.Deactivate(ctx, userID, accountID))

		action := &CreateTransaction{
			UserID: userID, AccountID: accountID, CategoryID: categoryID,
			Type: posting.TypeIncome, Amount: dec("10"),
		}
		err := action.Perform(ctx, store.Writer())
		assert.True(t, errs.IsKind(err, errs.KindInvalidState))
	})

	t.Run("foreign category reads as absent", func(t *testing.T) {
		store := inmemory.NewStore()
		accountID := seedAccount(store, userID, dec("0"))
		otherUser := uuid.Must(uuid.NewV4())
		foreignCategory := seedCategory(store, otherUser)

		action := &CreateTransaction{
			UserID: userID, AccountID: accountID, CategoryID: foreignCategory,
			Type: posting.TypeIncome, Amount: dec("10"),
		}
		err := action.Perform(ctx, store.Writer())
		assert.True(t, errs.IsKind(err, errs.KindNotFound))
	})

	t.Run("negative amount rejected before any write", func(t *testing.T) {
		store := inmemory.NewStore()
		accountID := seedAccount(store, userID, dec("50"))
		categoryID := seedCategory(store, userID)

		action := &CreateTransaction{
			UserID: userID, AccountID: accountID, CategoryID: categoryID,
			Type: posting.TypeExpense, Amount: dec("-5"),
		}
		err := action.Perform(ctx, store.Writer())
		assert.True(t, errs.IsKind(err, errs.KindValidation))
		assert.Equal(t, "50", balance(t, store, userID, accountID).String())
		assert.Equal(t, 0, store.Transactions.Len())
	})
}

func TestUpdateTransaction(t *testing.T) {
	ctx := context.Background()
	userID := uuid.Must(uuid.NewV4())

	t.Run("amount change moves the balance by the difference", func(t *testing.T) {
		store := inmemory.NewStore()
		accountID := seedAccount(store, userID, dec("0"))
		categoryID := seedCategory(store, userID)

		create := &CreateTransaction{
			UserID: userID, AccountID: accountID, CategoryID: categoryID,
			Type: posting.TypeIncome, Amount: dec("1000"),
		}
		require.NoError(t, create.Perform(ctx, store.Writer()))

		newAmount := dec("500")
		update := &UpdateTransaction{
			UserID: userID, TransactionID: create.CreatedID,
			Changes: TransactionChanges{Amount: &newAmount},
		}
		require.NoError(t, update.Perform(ctx, store.Writer()))
		assert.Equal(t, "500", balance(t, store, userID, accountID).String())

		row, err := store.Transactions.FindByID(ctx, userID, create.CreatedID)
		require.NoError(t, err)
		assert.Equal(t, "500", row.Amount.String())
	})

	t.Run("retyping income to expense flips the posting direction", func(t *testing.T) {
		store := inmemory.NewStore()
		accountID := seedAccount(store, userID, dec("0"))
		categoryID := seedCategory(store, userID)

		create := &CreateTransaction{
			UserID: userID, AccountID: accountID, CategoryID: categoryID,
			Type: posting.TypeIncome, Amount: dec("100"),
		}
		require.NoError(t, create.Perform(ctx, store.Writer()))

		expense := posting.TypeExpense
		update := &UpdateTransaction{
			UserID: userID, TransactionID: create.CreatedID,
			Changes: TransactionChanges{Type: &expense},
		}
		require.NoError(t, update.Perform(ctx, store.Writer()))
		assert.Equal(t, "-100", balance(t, store, userID, accountID).String())
	})

	t.Run("retargeting a transfer reverses both legs", func(t *testing.T) {
		store := inmemory.NewStore()
		source := seedAccount(store, userID, dec("1000"))
		oldTarget := seedAccount(store, userID, dec("0"))
		newTarget := seedAccount(store, userID, dec("0"))
		categoryID := seedCategory(store, userID)

		create := &CreateTransaction{
			UserID: userID, AccountID: source, TransferAccountID: &oldTarget,
			CategoryID: categoryID, Type: posting.TypeTransfer, Amount: dec("300"),
		}
		require.NoError(t, create.Perform(ctx, store.Writer()))

		update := &UpdateTransaction{
			UserID: userID, TransactionID: create.CreatedID,
			Changes: TransactionChanges{TransferAccountID: &newTarget},
		}
		require.NoError(t, update.Perform(ctx, store.Writer()))
		assert.Equal(t, "700", balance(t, store, userID, source).String())
		assert.Equal(t, "0", balance(t, store, userID, oldTarget).String())
		assert.Equal(t, "300", balance(t, store, userID, newTarget).String())
	})

	t.Run("invalid new state leaves balances untouched", func(t *testing.T) {
		store := inmemory.NewStore()
		accountID := seedAccount(store, userID, dec("0"))
		categoryID := seedCategory(store, userID)

		create := &CreateTransaction{
			UserID: userID, AccountID: accountID, CategoryID: categoryID,
			Type: posting.TypeIncome, Amount: dec("100"),
		}
		require.NoError(t, create.Perform(ctx, store.Writer()))

		transfer := posting.TypeTransfer
		update := &UpdateTransaction{
			UserID: userID, TransactionID: create.CreatedID,
			Changes: TransactionChanges{Type: &transfer},
		}
		err := update.Perform(ctx, store.Writer())
		assert.True(t, errs.IsKind(err, errs.KindValidation))
		assert.Equal(t, "100", balance(t, store, userID, accountID).String())
	})

	t.Run("unknown transaction is not found", func(t *testing.T) {
		store := inmemory.NewStore()
		update := &UpdateTransaction{UserID: userID, TransactionID: uuid.Must(uuid.NewV4())}
		err := update.Perform(ctx, store.Writer())
		assert.True(t, errs.IsKind(err, errs.KindNotFound))
	})
}

func TestDeleteTransaction(t *testing.T) {
	ctx := context.Background()
	userID := uuid.Must(uuid.NewV4())

	t.Run("reverses the recorded postings", func(t *testing.T) {
		store := inmemory.NewStore()
		source := seedAccount(store, userID, dec("1000"))
		target := seedAccount(store, userID, dec("0"))
		categoryID := seedCategory(store, userID)

		create := &CreateTransaction{
			UserID: userID, AccountID: source, TransferAccountID: &target,
			CategoryID: categoryID, Type: posting.TypeTransfer, Amount: dec("300"),
		}
		require.NoError(t, create.Perform(ctx, store.Writer()))

		del := &DeleteTransaction{UserID: userID, TransactionID: create.CreatedID}
		require.NoError(t, del.Perform(ctx, store.Writer()))
		assert.Equal(t, "1000", balance(t, store, userID, source).String())
		assert.Equal(t, "0", balance(t, store, userID, target).String())
		assert.Equal(t, 0, store.Transactions.Len())
	})

	t.Run("foreign transaction reads as absent", func(t *testing.T) {
		store := inmemory.NewStore()
		otherUser := uuid.Must(uuid.NewV4())
		accountID := seedAccount(store, otherUser, dec("0"))
		categoryID := seedCategory(store, otherUser)

		create := &CreateTransaction{
			UserID: otherUser, AccountID: accountID, CategoryID: categoryID,
			Type: posting.TypeIncome, Amount: dec("10"),
		}
		require.NoError(t, create.Perform(ctx, store.Writer()))

		del := &DeleteTransaction{UserID: userID, TransactionID: create.CreatedID}
		err := del.Perform(ctx, store.Writer())
		assert.True(t, errs.IsKind(err, errs.KindNotFound))
	})
}

func TestBulkCreateTransactions(t *testing.T) {
	ctx := context.Background()
	userID := uuid.Must(uuid.NewV4())

	t.Run("creates every item in order", func(t *testing.T) {
		store := inmemory.NewStore()
		accountID := seedAccount(store, userID, dec("0"))
		categoryID := seedCategory(store, userID)

		bulk := &BulkCreateTransactions{Items: []*CreateTransaction{
			{UserID: userID, AccountID: accountID, CategoryID: categoryID, Type: posting.TypeIncome, Amount: dec("100")},
			{UserID: userID, AccountID: accountID, CategoryID: categoryID, Type: posting.TypeExpense, Amount: dec("40")},
		}}
		require.NoError(t, bulk.Perform(ctx, store.Writer()))
		require.Len(t, bulk.CreatedIDs, 2)
		assert.Equal(t, "60", balance(t, store, userID, accountID).String())
	})

	t.Run("first failure aborts the batch", func(t *testing.T) {
		store := inmemory.NewStore()
		accountID := seedAccount(store, userID, dec("0"))
		categoryID := seedCategory(store, userID)

		bulk := &BulkCreateTransactions{Items: []*CreateTransaction{
			{UserID: userID, AccountID: accountID, CategoryID: categoryID, Type: posting.TypeIncome, Amount: dec("100")},
			{UserID: userID, AccountID: accountID, CategoryID: categoryID, Type: posting.Type("rebate"), Amount: dec("5")},
		}}
		err := bulk.Perform(ctx, store.Writer())
		assert.True(t, errs.IsKind(err, errs.KindValidation))
		assert.Empty(t, bulk.CreatedIDs)
	})
}
