package transaction

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/handlers/v1/auth"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/httperr"
	"github.com/carson-networks/ledger-server/internal/logging"
	"github.com/carson-networks/ledger-server/internal/operator/actions"
	"github.com/carson-networks/ledger-server/internal/service"
)

// UpdateTransactionInput is the Huma input for updating a transaction.
// Absent fields are left unchanged.
type UpdateTransactionInput struct {
	UserID string `header:"X-User-ID" doc:"Acting user UUID"`
	ID     string `path:"id" doc:"Transaction UUID"`
	Body   UpdateTransactionBody
}

// UpdateTransactionBody carries the fields to change. Pointer fields
// distinguish "leave alone" from "set to zero value".
type UpdateTransactionBody struct {
	AccountID         *string   `json:"accountId,omitempty" doc:"New source account UUID"`
	TransferAccountID *string   `json:"transferAccountId,omitempty" doc:"New target account UUID; empty string clears it"`
	CategoryID        *string   `json:"categoryId,omitempty" doc:"New category UUID"`
	Type              *string   `json:"type,omitempty" doc:"New type: income, expense, or transfer"`
	Amount            *string   `json:"amount,omitempty" doc:"New non-negative decimal amount"`
	TransactionDate   *string   `json:"transactionDate,omitempty" doc:"New RFC3339 transaction time"`
	Cleared           *bool     `json:"cleared,omitempty" doc:"New cleared flag"`
	Recurring         *bool     `json:"recurring,omitempty" doc:"New recurring flag"`
	Tags              *[]string `json:"tags,omitempty" doc:"Replacement tag set"`
	Notes             *string   `json:"notes,omitempty" doc:"Replacement notes"`
}

// UpdateTransactionOutput is the response for updating a transaction.
type UpdateTransactionOutput struct {
	Body Transaction
}

// transactionUpdater is the interface for updating transactions.
type transactionUpdater interface {
	Update(ctx context.Context, userID, id uuid.UUID, changes actions.TransactionChanges) (*service.Transaction, error)
}

// UpdateTransactionHandler handles PATCH /v1/transactions/{id}.
type UpdateTransactionHandler struct {
	LedgerService transactionUpdater
}

// NewUpdateTransactionHandler creates a new UpdateTransactionHandler.
func NewUpdateTransactionHandler(svc transactionUpdater) *UpdateTransactionHandler {
	return &UpdateTransactionHandler{LedgerService: svc}
}

// Register registers the update transaction endpoint with the Huma API.
func (h *UpdateTransactionHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "update-transaction",
		Method:      http.MethodPatch,
		Path:        "/v1/transactions/{id}",
		Summary:     "Update a transaction",
		Description: "Rewrites a transaction. The original balance deltas are reversed and the new ones applied in one atomic unit.",
		Tags:        []string{"Transactions"},
	}, h.handle)
}

func parseUpdateTransactionInput(input *UpdateTransactionInput) (actions.TransactionChanges, error) {
	var changes actions.TransactionChanges

	if input.Body.AccountID != nil {
		id, err := parseID(*input.Body.AccountID, "accountId")
		if err != nil {
			return changes, err
		}
		changes.AccountID = &id
	}
	if input.Body.TransferAccountID != nil {
		if *input.Body.TransferAccountID == "" {
			changes.ClearTransfer = true
		} else {
			id, err := parseID(*input.Body.TransferAccountID, "transferAccountId")
			if err != nil {
				return changes, err
			}
			changes.TransferAccountID = &id
		}
	}
	if input.Body.CategoryID != nil {
		id, err := parseID(*input.Body.CategoryID, "categoryId")
		if err != nil {
			return changes, err
		}
		changes.CategoryID = &id
	}
	if input.Body.Type != nil {
		txType, err := parseType(*input.Body.Type)
		if err != nil {
			return changes, err
		}
		changes.Type = &txType
	}
	if input.Body.Amount != nil {
		amount, err := decimal.NewFromString(*input.Body.Amount)
		if err != nil {
			return changes, huma.NewError(http.StatusBadRequest, "invalid amount", err)
		}
		changes.Amount = &amount
	}
	if input.Body.TransactionDate != nil {
		parsed, err := parseDate(*input.Body.TransactionDate, "transactionDate")
		if err != nil {
			return changes, err
		}
		changes.TransactionDate = &parsed
	}
	changes.Cleared = input.Body.Cleared
	changes.Recurring = input.Body.Recurring
	changes.Tags = input.Body.Tags
	changes.Notes = input.Body.Notes

	return changes, nil
}

func (h *UpdateTransactionHandler) handle(ctx context.Context, input *UpdateTransactionInput) (*UpdateTransactionOutput, error) {
	logData := logging.GetLogData(ctx)

	userID, err := auth.UserID(input.UserID)
	if err != nil {
		return nil, err
	}

	id, err := parseID(input.ID, "transaction id")
	if err != nil {
		return nil, err
	}

	changes, err := parseUpdateTransactionInput(input)
	if err != nil {
		return nil, err
	}

	var stopTimer func()
	if logData != nil {
		stopTimer = logData.AddTiming("updateTransactionMs")
	}
	updated, err := h.LedgerService.Update(ctx, userID, id, changes)
	if stopTimer != nil {
		stopTimer()
	}
	if err != nil {
		return nil, httperr.From(err)
	}

	return &UpdateTransactionOutput{Body: fromService(*updated)}, nil
}
