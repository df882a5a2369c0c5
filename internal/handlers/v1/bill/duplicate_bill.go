package bill

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/handlers/v1/auth"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/httperr"
	"github.com/carson-networks/ledger-server/internal/logging"
	"github.com/carson-networks/ledger-server/internal/service"
)

// DuplicateBillInput is the Huma input for duplicating a bill.
type DuplicateBillInput struct {
	UserID string `header:"X-User-ID" doc:"Acting user UUID"`
	ID     string `path:"id" doc:"Bill UUID to duplicate"`
	Body   DuplicateBillBody
}

// DuplicateBillBody optionally overrides fields on the copy.
type DuplicateBillBody struct {
	Name    string `json:"name,omitempty" doc:"Name for the copy, defaults to the original's"`
	DueDate string `json:"dueDate,omitempty" doc:"RFC3339 due date for the copy, defaults to the original's next cycle"`
}

// DuplicateBillOutput is the response for duplicating a bill.
type DuplicateBillOutput struct {
	Status int
	Body   Bill
}

// billDuplicator is the interface for duplicating bills.
type billDuplicator interface {
	Duplicate(ctx context.Context, userID, billID uuid.UUID, overrideName *string, overrideDueDate *time.Time) (*service.Bill, error)
}

// DuplicateBillHandler handles POST /v1/bills/{id}/duplicate.
type DuplicateBillHandler struct {
	BillService billDuplicator
}

// NewDuplicateBillHandler creates a new DuplicateBillHandler.
func NewDuplicateBillHandler(svc billDuplicator) *DuplicateBillHandler {
	return &DuplicateBillHandler{BillService: svc}
}

// Register registers the duplicate bill endpoint with the Huma API.
func (h *DuplicateBillHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "duplicate-bill",
		Method:      http.MethodPost,
		Path:        "/v1/bills/{id}/duplicate",
		Summary:     "Duplicate a bill",
		Description: "Creates a fresh active copy of a bill, due on the original's next cycle unless overridden.",
		Tags:        []string{"Bills"},
	}, h.handle)
}

func (h *DuplicateBillHandler) handle(ctx context.Context, input *DuplicateBillInput) (*DuplicateBillOutput, error) {
	logData := logging.GetLogData(ctx)

	userID, err := auth.UserID(input.UserID)
	if err != nil {
		return nil, err
	}

	billID, err := parseID(input.ID, "bill id")
	if err != nil {
		return nil, err
	}

	var overrideName *string
	if input.Body.Name != "" {
		overrideName = &input.Body.Name
	}
	var overrideDueDate *time.Time
	if input.Body.DueDate != "" {
		dueDate, err := parseDate(input.Body.DueDate, "dueDate")
		if err != nil {
			return nil, err
		}
		overrideDueDate = &dueDate
	}

	var stopTimer func()
	if logData != nil {
		stopTimer = logData.AddTiming("duplicateBillMs")
	}
	copied, err := h.BillService.Duplicate(ctx, userID, billID, overrideName, overrideDueDate)
	if stopTimer != nil {
		stopTimer()
	}
	if err != nil {
		return nil, httperr.From(err)
	}

	if logData != nil {
		logData.AddData("billID", copied.ID.String())
	}

	return &DuplicateBillOutput{
		Status: http.StatusCreated,
		Body:   fromService(*copied),
	}, nil
}
