package transaction

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/handlers/v1/auth"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/httperr"
	"github.com/carson-networks/ledger-server/internal/logging"
	"github.com/carson-networks/ledger-server/internal/service"
)

// BulkCreateTransactionsInput is the Huma input for bulk creation.
type BulkCreateTransactionsInput struct {
	UserID string `header:"X-User-ID" doc:"Acting user UUID"`
	Body   BulkCreateTransactionsBody
}

// BulkCreateTransactionsBody carries the batch. The whole batch lands or
// none of it does.
type BulkCreateTransactionsBody struct {
	Transactions []CreateTransactionBody `json:"transactions" minItems:"1" doc:"Transactions to create in one atomic unit"`
}

// BulkCreateTransactionsResponse reports the created IDs in input order.
type BulkCreateTransactionsResponse struct {
	IDs []string `json:"ids" doc:"Created transaction UUIDs, in input order"`
}

// BulkCreateTransactionsOutput is the Huma output for bulk creation.
type BulkCreateTransactionsOutput struct {
	Status int
	Body   BulkCreateTransactionsResponse
}

// BulkDeleteTransactionsInput is the Huma input for bulk deletion.
type BulkDeleteTransactionsInput struct {
	UserID string `header:"X-User-ID" doc:"Acting user UUID"`
	Body   BulkDeleteTransactionsBody
}

// BulkDeleteTransactionsBody carries the IDs to delete atomically.
type BulkDeleteTransactionsBody struct {
	IDs []string `json:"ids" minItems:"1" doc:"Transaction UUIDs to delete in one atomic unit"`
}

// BulkDeleteTransactionsOutput is the Huma output for bulk deletion.
type BulkDeleteTransactionsOutput struct {
	Status int
}

// bulkProcessor is the interface for atomic batch operations.
type bulkProcessor interface {
	BulkCreate(ctx context.Context, userID uuid.UUID, inputs []service.CreateTransactionInput) ([]uuid.UUID, error)
	BulkDelete(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error
}

// BulkTransactionsHandler handles POST /v1/transactions/bulk and
// POST /v1/transactions/bulk-delete.
type BulkTransactionsHandler struct {
	LedgerService bulkProcessor
}

// NewBulkTransactionsHandler creates a new BulkTransactionsHandler.
func NewBulkTransactionsHandler(svc bulkProcessor) *BulkTransactionsHandler {
	return &BulkTransactionsHandler{LedgerService: svc}
}

// Register registers the bulk endpoints with the Huma API.
func (h *BulkTransactionsHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "bulk-create-transactions",
		Method:      http.MethodPost,
		Path:        "/v1/transactions/bulk",
		Summary:     "Create transactions in bulk",
		Description: "Creates the whole batch in one atomic unit; any invalid entry aborts all of them.",
		Tags:        []string{"Transactions"},
	}, h.handleCreate)

	huma.Register(api, huma.Operation{
		OperationID: "bulk-delete-transactions",
		Method:      http.MethodPost,
		Path:        "/v1/transactions/bulk-delete",
		Summary:     "Delete transactions in bulk",
		Description: "Deletes the listed transactions and reverses their balance deltas in one atomic unit.",
		Tags:        []string{"Transactions"},
	}, h.handleDelete)
}

func (h *BulkTransactionsHandler) handleCreate(ctx context.Context, input *BulkCreateTransactionsInput) (*BulkCreateTransactionsOutput, error) {
	logData := logging.GetLogData(ctx)

	userID, err := auth.UserID(input.UserID)
	if err != nil {
		return nil, err
	}

	inputs := make([]service.CreateTransactionInput, len(input.Body.Transactions))
	for i, body := range input.Body.Transactions {
		parsed, err := parseCreateTransactionInput(&CreateTransactionInput{Body: body})
		if err != nil {
			return nil, err
		}
		inputs[i] = parsed
	}

	var stopTimer func()
	if logData != nil {
		stopTimer = logData.AddTiming("bulkCreateTransactionsMs")
	}
	ids, err := h.LedgerService.BulkCreate(ctx, userID, inputs)
	if stopTimer != nil {
		stopTimer()
	}
	if err != nil {
		return nil, httperr.From(err)
	}

	if logData != nil {
		logData.AddData("createdCount", len(ids))
	}

	out := BulkCreateTransactionsResponse{IDs: make([]string, len(ids))}
	for i, id := range ids {
		out.IDs[i] = id.String()
	}
	return &BulkCreateTransactionsOutput{Status: http.StatusCreated, Body: out}, nil
}

func (h *BulkTransactionsHandler) handleDelete(ctx context.Context, input *BulkDeleteTransactionsInput) (*BulkDeleteTransactionsOutput, error) {
	logData := logging.GetLogData(ctx)

	userID, err := auth.UserID(input.UserID)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(input.Body.IDs))
	for i, raw := range input.Body.IDs {
		id, err := parseID(raw, "id")
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}

	var stopTimer func()
	if logData != nil {
		stopTimer = logData.AddTiming("bulkDeleteTransactionsMs")
	}
	err = h.LedgerService.BulkDelete(ctx, userID, ids)
	if stopTimer != nil {
		stopTimer()
	}
	if err != nil {
		return nil, httperr.From(err)
	}

	return &BulkDeleteTransactionsOutput{Status: http.StatusNoContent}, nil
}
