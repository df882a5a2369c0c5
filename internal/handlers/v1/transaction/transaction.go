package transaction

import (
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/posting"
	"github.com/carson-networks/ledger-server/internal/service"
)

// Transaction is the API response model for a transaction.
type Transaction struct {
	ID                string   `json:"id" doc:"Transaction UUID"`
	AccountID         string   `json:"accountId" doc:"Source account UUID"`
	TransferAccountID string   `json:"transferAccountId,omitempty" doc:"Target account UUID, transfers only"`
	CategoryID        string   `json:"categoryId" doc:"Category UUID"`
	Type              string   `json:"type" doc:"income, expense, or transfer"`
	Amount            string   `json:"amount" doc:"Non-negative decimal amount; the type carries direction"`
	TransactionDate   string   `json:"transactionDate" doc:"RFC3339 transaction time"`
	Cleared           bool     `json:"cleared" doc:"Whether the transaction has cleared"`
	Recurring         bool     `json:"recurring" doc:"Whether the transaction recurs"`
	Tags              []string `json:"tags,omitempty" doc:"Free-form tags"`
	Notes             string   `json:"notes,omitempty" doc:"Free-form notes"`
	CreatedAt         string   `json:"createdAt" doc:"RFC3339 creation time"`
}

func fromService(tx service.Transaction) Transaction {
	converted := Transaction{
		ID:              tx.ID.String(),
		AccountID:       tx.AccountID.String(),
		CategoryID:      tx.CategoryID.String(),
		Type:            string(tx.Type),
		Amount:          tx.Amount.String(),
		TransactionDate: tx.TransactionDate.Format(time.RFC3339),
		Cleared:         tx.Cleared,
		Recurring:       tx.Recurring,
		Tags:            tx.Tags,
		Notes:           tx.Notes,
		CreatedAt:       tx.CreatedAt.Format(time.RFC3339),
	}
	if tx.TransferAccountID != nil {
		converted.TransferAccountID = tx.TransferAccountID.String()
	}
	return converted
}

func parseType(raw string) (posting.Type, error) {
	t := posting.Type(raw)
	if !t.Valid() {
		return "", huma.NewError(http.StatusBadRequest, "type must be income, expense, or transfer")
	}
	return t, nil
}

func parseID(raw, field string) (uuid.UUID, error) {
	id, err := uuid.FromString(raw)
	if err != nil {
		return uuid.Nil, huma.NewError(http.StatusBadRequest, "invalid "+field, err)
	}
	return id, nil
}

func parseDate(raw, field string) (time.Time, error) {
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, huma.NewError(http.StatusBadRequest, "invalid "+field+", expected RFC3339", err)
	}
	return parsed, nil
}
