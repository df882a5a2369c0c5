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
	"github.com/carson-networks/ledger-server/internal/storage/bill"
)

// ListBillsInput is the Huma input for listing bills.
type ListBillsInput struct {
	UserID     string `header:"X-User-ID" doc:"Acting user UUID"`
	Status     string `query:"status" doc:"Restrict to active, paid, overdue, or cancelled"`
	CategoryID string `query:"categoryId" doc:"Restrict to one category UUID"`
	Position   int    `query:"position" minimum:"0" doc:"Offset for pagination"`
	Limit      int    `query:"limit" minimum:"0" maximum:"100" doc:"Page size"`
}

// ListBillsResponseBody is the response body for listing bills.
type ListBillsResponseBody struct {
	Bills []Bill `json:"bills" doc:"Bills with statuses derived for the request time"`
}

// ListBillsOutput is the Huma output for listing bills.
type ListBillsOutput struct {
	Body ListBillsResponseBody
}

// billLister is the interface for listing bills.
type billLister interface {
	List(ctx context.Context, userID uuid.UUID, filter *bill.BillFilter) ([]service.Bill, error)
}

// ListBillsHandler handles GET /v1/bills.
type ListBillsHandler struct {
	BillService billLister
}

// NewListBillsHandler creates a new ListBillsHandler.
func NewListBillsHandler(svc billLister) *ListBillsHandler {
	return &ListBillsHandler{BillService: svc}
}

// Register registers the list bills endpoint with the Huma API.
func (h *ListBillsHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-bills",
		Method:      http.MethodGet,
		Path:        "/v1/bills",
		Summary:     "List bills",
		Description: "Returns the user's bills with statuses derived for the request time.",
		Tags:        []string{"Bills"},
	}, h.handle)
}

func parseListBillsInput(input *ListBillsInput) (*bill.BillFilter, error) {
	filter := &bill.BillFilter{Limit: input.Limit, Offset: input.Position}

	if input.Status != "" {
		status := bill.Status(input.Status)
		switch status {
		case bill.StatusActive, bill.StatusPaid, bill.StatusOverdue, bill.StatusCancelled:
			filter.Status = &status
		default:
			return nil, huma.NewError(http.StatusBadRequest, "status must be active, paid, overdue, or cancelled")
		}
	}
	if input.CategoryID != "" {
		id, err := parseID(input.CategoryID, "categoryId")
		if err != nil {
			return nil, err
		}
		filter.CategoryID = &id
	}

	return filter, nil
}

func (h *ListBillsHandler) handle(ctx context.Context, input *ListBillsInput) (*ListBillsOutput, error) {
	logData := logging.GetLogData(ctx)

	userID, err := auth.UserID(input.UserID)
	if err != nil {
		return nil, err
	}

	filter, err := parseListBillsInput(input)
	if err != nil {
		return nil, err
	}

	var stopTimer func()
	if logData != nil {
		stopTimer = logData.AddTiming("listBillsMs")
	}
	bills, err := h.BillService.List(ctx, userID, filter)
	if stopTimer != nil {
		stopTimer()
	}
	if err != nil {
		return nil, httperr.From(err)
	}

	body := ListBillsResponseBody{Bills: make([]Bill, len(bills))}
	for i, b := range bills {
		body.Bills[i] = fromService(b)
	}

	return &ListBillsOutput{Body: body}, nil
}
