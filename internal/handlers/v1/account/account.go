package account

import (
	"time"

	"github.com/carson-networks/ledger-server/internal/service"
)

// Account is the API response model for an account.
type Account struct {
	ID                string `json:"id" doc:"Account UUID"`
	Name              string `json:"name" doc:"Account name"`
	Currency          string `json:"currency" doc:"ISO 4217 currency code"`
	Balance           string `json:"balance" doc:"Decimal balance"`
	Active            bool   `json:"active" doc:"False once the account is deactivated"`
	IncludeInNetWorth bool   `json:"includeInNetWorth" doc:"Whether the balance counts toward net worth"`
	CreatedAt         string `json:"createdAt" doc:"RFC3339 creation time"`
}

func fromService(a service.Account) Account {
	return Account{
		ID:                a.ID.String(),
		Name:              a.Name,
		Currency:          a.Currency,
		Balance:           a.Balance.String(),
		Active:            a.Active,
		IncludeInNetWorth: a.IncludeInNetWorth,
		CreatedAt:         a.CreatedAt.Format(time.RFC3339),
	}
}
