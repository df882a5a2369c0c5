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

// FilterParams are the query parameters shared by listing and statistics.
type FilterParams struct {
	AccountID  string `query:"accountId" doc:"Restrict to one account UUID"`
	CategoryID string `query:"categoryId" doc:"Restrict to one category UUID"`
	Type       string `query:"type" doc:"Restrict to income, expense, or transfer"`
	DateFrom   string `query:"dateFrom" doc:"Inclusive RFC3339 lower bound"`
	DateTo     string `query:"dateTo" doc:"Inclusive RFC3339 upper bound"`
}

func parseFilterParams(params FilterParams) (*service.TransactionFilter, error) {
	filter := &service.TransactionFilter{}
	empty := true

	if params.AccountID != "" {
		id, err := parseID(params.AccountID, "accountId")
		if err != nil {
			return nil, err
		}
		filter.AccountID = &id
		empty = false
	}
	if params.CategoryID != "" {
		id, err := parseID(params.CategoryID, "categoryId")
		if err != nil {
			return nil, err
		}
		filter.CategoryID = &id
		empty = false
	}
	if params.Type != "" {
		txType, err := parseType(params.Type)
		if err != nil {
			return nil, err
		}
		filter.Type = &txType
		empty = false
	}
	if params.DateFrom != "" {
		from, err := parseDate(params.DateFrom, "dateFrom")
		if err != nil {
			return nil, err
		}
		filter.DateFrom = &from
		empty = false
	}
	if params.DateTo != "" {
		to, err := parseDate(params.DateTo, "dateTo")
		if err != nil {
			return nil, err
		}
		filter.DateTo = &to
		empty = false
	}

	if empty {
		return nil, nil
	}
	return filter, nil
}

// ListTransactionsInput is the Huma input for listing transactions.
type ListTransactionsInput struct {
	UserID string `header:"X-User-ID" doc:"Acting user UUID"`
	FilterParams
	Position int `query:"position" minimum:"0" doc:"Offset for pagination"`
	Limit    int `query:"limit" minimum:"0" maximum:"100" doc:"Page size, default 20"`
}

// ListTransactionsNextCursor points at the next page.
type ListTransactionsNextCursor struct {
	Position int `json:"position" doc:"Offset for next page"`
	Limit    int `json:"limit" doc:"Page size"`
}

// ListTransactionsResponseBody is the response body for listing
// transactions.
type ListTransactionsResponseBody struct {
	Transactions []Transaction               `json:"transactions" doc:"Page of transactions, newest first"`
	NextCursor   *ListTransactionsNextCursor `json:"nextCursor,omitempty" doc:"Absent on the last page"`
}

// ListTransactionsOutput is the Huma output for listing transactions.
type ListTransactionsOutput struct {
	Body ListTransactionsResponseBody
}

// transactionLister is the interface for listing transactions.
type transactionLister interface {
	List(ctx context.Context, userID uuid.UUID, filter *service.TransactionFilter, cursor *service.TransactionCursor) ([]service.Transaction, *service.TransactionCursor, error)
}

// ListTransactionsHandler handles GET /v1/transactions.
type ListTransactionsHandler struct {
	LedgerService transactionLister
}

// NewListTransactionsHandler creates a new ListTransactionsHandler.
func NewListTransactionsHandler(svc transactionLister) *ListTransactionsHandler {
	return &ListTransactionsHandler{LedgerService: svc}
}

// Register registers the list transactions endpoint with the Huma API.
func (h *ListTransactionsHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-transactions",
		Method:      http.MethodGet,
		Path:        "/v1/transactions",
		Summary:     "List transactions",
		Description: "Returns a filtered, paginated list of transactions, newest first.",
		Tags:        []string{"Transactions"},
	}, h.handle)
}

func (h *ListTransactionsHandler) handle(ctx context.Context, input *ListTransactionsInput) (*ListTransactionsOutput, error) {
	logData := logging.GetLogData(ctx)

	userID, err := auth.UserID(input.UserID)
	if err != nil {
		return nil, err
	}

	filter, err := parseFilterParams(input.FilterParams)
	if err != nil {
		return nil, err
	}

	var cursor *service.TransactionCursor
	if input.Position > 0 || input.Limit > 0 {
		cursor = &service.TransactionCursor{Position: input.Position, Limit: input.Limit}
	}

	var stopTimer func()
	if logData != nil {
		stopTimer = logData.AddTiming("listTransactionsMs")
	}
	transactions, next, err := h.LedgerService.List(ctx, userID, filter, cursor)
	if stopTimer != nil {
		stopTimer()
	}
	if err != nil {
		return nil, httperr.From(err)
	}

	body := ListTransactionsResponseBody{Transactions: make([]Transaction, len(transactions))}
	for i, tx := range transactions {
		body.Transactions[i] = fromService(tx)
	}
	if next != nil {
		body.NextCursor = &ListTransactionsNextCursor{Position: next.Position, Limit: next.Limit}
	}

	return &ListTransactionsOutput{Body: body}, nil
}
