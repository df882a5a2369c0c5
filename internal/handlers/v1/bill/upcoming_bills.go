package bill

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

// UpcomingBillsInput is the Huma input for the upcoming bills endpoint.
type UpcomingBillsInput struct {
	UserID     string `header:"X-User-ID" doc:"Acting user UUID"`
	WindowDays int    `query:"windowDays" minimum:"0" doc:"Look-ahead window in days, defaults to the server setting"`
	Limit      int    `query:"limit" minimum:"0" maximum:"100" doc:"Maximum bills returned"`
}

// OverdueBillsInput is the Huma input for the overdue bills endpoint.
type OverdueBillsInput struct {
	UserID string `header:"X-User-ID" doc:"Acting user UUID"`
	Limit  int    `query:"limit" minimum:"0" maximum:"100" doc:"Maximum bills returned"`
}

// BillSummaryResponseBody is a group of bills plus their summed total.
type BillSummaryResponseBody struct {
	Bills []Bill `json:"bills" doc:"Bills due date ascending"`
	Total string `json:"total" doc:"Sum of the listed amounts"`
}

// BillSummaryOutput is the Huma output for summary endpoints.
type BillSummaryOutput struct {
	Body BillSummaryResponseBody
}

// billForecaster is the interface for upcoming and overdue queries.
type billForecaster interface {
	Upcoming(ctx context.Context, userID uuid.UUID, windowDays, limit int) (*service.BillSummary, error)
	Overdue(ctx context.Context, userID uuid.UUID, limit int) (*service.BillSummary, error)
}

// ForecastBillsHandler handles GET /v1/bills/upcoming and
// GET /v1/bills/overdue.
type ForecastBillsHandler struct {
	BillService billForecaster
}

// NewForecastBillsHandler creates a new ForecastBillsHandler.
func NewForecastBillsHandler(svc billForecaster) *ForecastBillsHandler {
	return &ForecastBillsHandler{BillService: svc}
}

// Register registers the forecast endpoints with the Huma API.
func (h *ForecastBillsHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "upcoming-bills",
		Method:      http.MethodGet,
		Path:        "/v1/bills/upcoming",
		Summary:     "Upcoming bills",
		Description: "Returns active bills due within the window, soonest first, with their summed total.",
		Tags:        []string{"Bills"},
	}, h.handleUpcoming)

	huma.Register(api, huma.Operation{
		OperationID: "overdue-bills",
		Method:      http.MethodGet,
		Path:        "/v1/bills/overdue",
		Summary:     "Overdue bills",
		Description: "Returns overdue bills, oldest due date first, with their summed total.",
		Tags:        []string{"Bills"},
	}, h.handleOverdue)
}

func summaryBody(summary *service.BillSummary) BillSummaryResponseBody {
	body := BillSummaryResponseBody{
		Bills: make([]Bill, len(summary.Bills)),
		Total: summary.Total.String(),
	}
	for i, b := range summary.Bills {
		body.Bills[i] = fromService(b)
	}
	return body
}

func (h *ForecastBillsHandler) handleUpcoming(ctx context.Context, input *UpcomingBillsInput) (*BillSummaryOutput, error) {
	logData := logging.GetLogData(ctx)

	userID, err := auth.UserID(input.UserID)
	if err != nil {
		return nil, err
	}

	var stopTimer func()
	if logData != nil {
		stopTimer = logData.AddTiming("upcomingBillsMs")
	}
	summary, err := h.BillService.Upcoming(ctx, userID, input.WindowDays, input.Limit)
	if stopTimer != nil {
		stopTimer()
	}
	if err != nil {
		return nil, httperr.From(err)
	}

	return &BillSummaryOutput{Body: summaryBody(summary)}, nil
}

func (h *ForecastBillsHandler) handleOverdue(ctx context.Context, input *OverdueBillsInput) (*BillSummaryOutput, error) {
	logData := logging.GetLogData(ctx)

	userID, err := auth.UserID(input.UserID)
	if err != nil {
		return nil, err
	}

	var stopTimer func()
	if logData != nil {
		stopTimer = logData.AddTiming("overdueBillsMs")
	}
	summary, err := h.BillService.Overdue(ctx, userID, input.Limit)
	if stopTimer != nil {
		stopTimer()
	}
	if err != nil {
		return nil, httperr.From(err)
	}

	return &BillSummaryOutput{Body: summaryBody(summary)}, nil
}
