package actions

import (
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/storage/account"
	"github.com/carson-networks/ledger-server/internal/storage/bill"
	"github.com/carson-networks/ledger-server/internal/storage/category"
	"github.com/carson-networks/ledger-server/internal/storage/inmemory"
)

func seedAccount(store *inmemory.Store, userID uuid.UUID, balance decimal.Decimal) uuid.UUID {
	return store.Accounts.Seed(account.Account{
		UserID: userID, Name: "account", Currency: "USD",
		Balance: balance, Active: true, IncludeInNetWorth: true,
	})
}

func seedCategory(store *inmemory.Store, userID uuid.UUID) uuid.UUID {
	return store.Categories.Seed(category.Category{UserID: userID, Name: "category"})
}

func seedBill(store *inmemory.Store, userID, categoryID uuid.UUID, amount decimal.Decimal, dueDate time.Time, frequency bill.Frequency, recurring bool) uuid.UUID {
	return store.Bills.Seed(bill.Bill{
		UserID: userID, CategoryID: categoryID, Name: "bill",
		Amount: amount, DueDate: dueDate, Frequency: frequency,
		Status: bill.StatusActive, Recurring: recurring,
	})
}
