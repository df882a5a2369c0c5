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
	"github.com/carson-networks/ledger-server/internal/service"
)

// CreateTransactionInput is the Huma input for creating a transaction.
type CreateTransactionInput struct {
	UserID string `header:"X-User-ID" doc:"Acting user UUID"`
	Body   CreateTransactionBody
}

// CreateTransactionBody is the request body fields for creating a
// transaction.
type CreateTransactionBody struct {
	AccountID         string   `json:"accountId" doc:"Source account UUID"`
	TransferAccountID string   `json:"transferAccountId,omitempty" doc:"Target account UUID, required for transfers"`
	CategoryID        string   `json:"categoryId" doc:"Category UUID"`
	Type              string   `json:"type" doc:"income, expense, or transfer"`
	Amount            string   `json:"amount" doc:"Non-negative decimal amount (e.g. '42.50')"`
	TransactionDate   string   `json:"transactionDate" doc:"RFC3339 transaction time"`
	Cleared           bool     `json:"cleared,omitempty" doc:"Whether the transaction has cleared"`
	Recurring         bool     `json:"recurring,omitempty" doc:"Whether the transaction recurs"`
	Tags              []string `json:"tags,omitempty" doc:"Free-form tags"`
	Notes             string   `json:"notes,omitempty" doc:"Free-form notes"`
}

// CreateTransactionOutput is the response for creating a transaction.
type CreateTransactionOutput struct {
	Status int
	Body   Transaction
}

// transactionCreator is the interface for creating transactions.
type transactionCreator interface {
	Create(ctx context.Context, userID uuid.UUID, input service.CreateTransactionInput) (*service.Transaction, error)
}

// CreateTransactionHandler handles POST /v1/transactions.
type CreateTransactionHandler struct {
	LedgerService transactionCreator
}

// NewCreateTransactionHandler creates a new CreateTransactionHandler.
func NewCreateTransactionHandler(svc transactionCreator) *CreateTransactionHandler {
	return &CreateTransactionHandler{LedgerService: svc}
}

// Register registers the create transaction endpoint with the Huma API.
func (h *CreateTransactionHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "create-transaction",
		Method:      http.MethodPost,
		Path:        "/v1/transactions",
		Summary:     "Create a transaction",
		Description: "Records a transaction and applies its balance deltas atomically.",
		Tags:        []string{"Transactions"},
	}, h.handle)
}

func parseCreateTransactionInput(input *CreateTransactionInput) (service.CreateTransactionInput, error) {
	accountID, err := parseID(input.Body.AccountID, "accountId")
	if err != nil {
		return service.CreateTransactionInput{}, err
	}
	categoryID, err := parseID(input.Body.CategoryID, "categoryId")
	if err != nil {
		return service.CreateTransactionInput{}, err
	}

	var transferAccountID *uuid.UUID
	if input.Body.TransferAccountID != "" {
		target, err := parseID(input.Body.TransferAccountID, "transferAccountId")
		if err != nil {
			return service.CreateTransactionInput{}, err
		}
		transferAccountID = &target
	}

	txType, err := parseType(input.Body.Type)
	if err != nil {
		return service.CreateTransactionInput{}, err
	}

	amount, err := decimal.NewFromString(input.Body.Amount)
	if err != nil {
		return service.CreateTransactionInput{}, huma.NewError(http.StatusBadRequest, "invalid amount", err)
	}

	transactionDate, err := parseDate(input.Body.TransactionDate, "transactionDate")
	if err != nil {
		return service.CreateTransactionInput{}, err
	}

	return service.CreateTransactionInput{
		AccountID:         accountID,
		TransferAccountID: transferAccountID,
		CategoryID:        categoryID,
		Type:              txType,
		Amount:            amount,
		TransactionDate:   transactionDate,
		Cleared:           input.Body.Cleared,
		Recurring:         input.Body.Recurring,
		Tags:              input.Body.Tags,
		Notes:             input.Body.Notes,
	}, nil
}

func (h *CreateTransactionHandler) handle(ctx context.Context, input *CreateTransactionInput) (*CreateTransactionOutput, error) {
	logData := logging.GetLogData(ctx)

	userID, err := auth.UserID(input.UserID)
	if err != nil {
		return nil, err
	}

	create, err := parseCreateTransactionInput(input)
	if err != nil {
		return nil, err
	}

	var stopTimer func()
	if logData != nil {
		stopTimer = logData.AddTiming("createTransactionMs")
	}
	created, err := h.LedgerService.Create(ctx, userID, create)
	if stopTimer != nil {
		stopTimer()
	}
	if err != nil {
		return nil, httperr.From(err)
	}

	if logData != nil {
		logData.AddData("transactionID", created.ID.String())
	}

	return &CreateTransactionOutput{
		Status: http.StatusCreated,
		Body:   fromService(*created),
	}, nil
}
