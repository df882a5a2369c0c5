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

// TransactionStatisticsInput is the Huma input for transaction
// statistics. It accepts the same filters as listing.
type TransactionStatisticsInput struct {
	UserID string `header:"X-User-ID" doc:"Acting user UUID"`
	FilterParams
}

// TransactionStatisticsResponseBody aggregates the filtered set.
type TransactionStatisticsResponseBody struct {
	Count         int    `json:"count" doc:"Number of matching transactions"`
	IncomeTotal   string `json:"incomeTotal" doc:"Sum of income amounts"`
	ExpenseTotal  string `json:"expenseTotal" doc:"Sum of expense amounts"`
	TransferTotal string `json:"transferTotal" doc:"Sum of transfer amounts"`
	Net           string `json:"net" doc:"Income minus expense"`
	Average       string `json:"average" doc:"Mean amount over the set"`
	Min           string `json:"min" doc:"Smallest amount"`
	Max           string `json:"max" doc:"Largest amount"`
}

// TransactionStatisticsOutput is the Huma output for transaction
// statistics.
type TransactionStatisticsOutput struct {
	Body TransactionStatisticsResponseBody
}

// transactionAggregator is the interface for computing statistics.
type transactionAggregator interface {
	Statistics(ctx context.Context, userID uuid.UUID, filter *service.TransactionFilter) (*service.TransactionStatistics, error)
}

// TransactionStatisticsHandler handles GET /v1/transactions/statistics.
type TransactionStatisticsHandler struct {
	LedgerService transactionAggregator
}

// NewTransactionStatisticsHandler creates a new
// TransactionStatisticsHandler.
func NewTransactionStatisticsHandler(svc transactionAggregator) *TransactionStatisticsHandler {
	return &TransactionStatisticsHandler{LedgerService: svc}
}

// Register registers the statistics endpoint with the Huma API.
func (h *TransactionStatisticsHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "transaction-statistics",
		Method:      http.MethodGet,
		Path:        "/v1/transactions/statistics",
		Summary:     "Transaction statistics",
		Description: "Aggregates the transactions matching the same filters the listing accepts.",
		Tags:        []string{"Transactions"},
	}, h.handle)
}

func (h *TransactionStatisticsHandler) handle(ctx context.Context, input *TransactionStatisticsInput) (*TransactionStatisticsOutput, error) {
	logData := logging.GetLogData(ctx)

	userID, err := auth.UserID(input.UserID)
	if err != nil {
		return nil, err
	}

	filter, err := parseFilterParams(input.FilterParams)
	if err != nil {
		return nil, err
	}

	var stopTimer func()
	if logData != nil {
		stopTimer = logData.AddTiming("transactionStatisticsMs")
	}
	stats, err := h.LedgerService.Statistics(ctx, userID, filter)
	if stopTimer != nil {
		stopTimer()
	}
	if err != nil {
		return nil, httperr.From(err)
	}

	return &TransactionStatisticsOutput{Body: TransactionStatisticsResponseBody{
		Count:         stats.Count,
		IncomeTotal:   stats.IncomeTotal.String(),
		ExpenseTotal:  stats.ExpenseTotal.String(),
		TransferTotal: stats.TransferTotal.String(),
		Net:           stats.Net.String(),
		Average:       stats.Average.String(),
		Min:           stats.Min.String(),
		Max:           stats.Max.String(),
	}}, nil
}
