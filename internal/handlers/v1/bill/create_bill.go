package bill

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
	"github.com/carson-networks/ledger-server/internal/storage/bill"
)

// CreateBillInput is the Huma input for creating a bill.
type CreateBillInput struct {
	UserID string `header:"X-User-ID" doc:"Acting user UUID"`
	Body   CreateBillBody
}

// CreateBillBody is the request body fields for creating a bill.
type CreateBillBody struct {
	CategoryID   string `json:"categoryId" doc:"Category UUID"`
	Name         string `json:"name" minLength:"1" doc:"Bill name"`
	Amount       string `json:"amount" doc:"Decimal amount due per cycle"`
	DueDate      string `json:"dueDate" doc:"RFC3339 due date of the first cycle"`
	Frequency    string `json:"frequency" doc:"weekly, bi-weekly, monthly, quarterly, semi-annually, annually, or one-time"`
	ReminderDays int    `json:"reminderDays,omitempty" minimum:"0" doc:"Days before due date a reminder fires"`
	Recurring    bool   `json:"recurring,omitempty" doc:"Whether the bill advances to a next cycle when paid"`
	Notes        string `json:"notes,omitempty" doc:"Free-form notes"`
}

// CreateBillOutput is the response for creating a bill.
type CreateBillOutput struct {
	Status int
	Body   Bill
}

// billCreator is the interface for creating bills.
type billCreator interface {
	Create(ctx context.Context, userID uuid.UUID, input service.CreateBillInput) (*service.Bill, error)
}

// CreateBillHandler handles POST /v1/bills.
type CreateBillHandler struct {
	BillService billCreator
}

// NewCreateBillHandler creates a new CreateBillHandler.
func NewCreateBillHandler(svc billCreator) *CreateBillHandler {
	return &CreateBillHandler{BillService: svc}
}

// Register registers the create bill endpoint with the Huma API.
func (h *CreateBillHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "create-bill",
		Method:      http.MethodPost,
		Path:        "/v1/bills",
		Summary:     "Create a bill",
		Description: "Creates a bill in the active state.",
		Tags:        []string{"Bills"},
	}, h.handle)
}

func parseCreateBillInput(input *CreateBillInput) (service.CreateBillInput, error) {
	categoryID, err := parseID(input.Body.CategoryID, "categoryId")
	if err != nil {
		return service.CreateBillInput{}, err
	}

	amount, err := decimal.NewFromString(input.Body.Amount)
	if err != nil {
		return service.CreateBillInput{}, huma.NewError(http.StatusBadRequest, "invalid amount", err)
	}

	dueDate, err := parseDate(input.Body.DueDate, "dueDate")
	if err != nil {
		return service.CreateBillInput{}, err
	}

	return service.CreateBillInput{
		CategoryID:   categoryID,
		Name:         input.Body.Name,
		Amount:       amount,
		DueDate:      dueDate,
		Frequency:    bill.Frequency(input.Body.Frequency),
		ReminderDays: input.Body.ReminderDays,
		Recurring:    input.Body.Recurring,
		Notes:        input.Body.Notes,
	}, nil
}

func (h *CreateBillHandler) handle(ctx context.Context, input *CreateBillInput) (*CreateBillOutput, error) {
	logData := logging.GetLogData(ctx)

	userID, err := auth.UserID(input.UserID)
	if err != nil {
		return nil, err
	}

	create, err := parseCreateBillInput(input)
	if err != nil {
		return nil, err
	}

	var stopTimer func()
	if logData != nil {
		stopTimer = logData.AddTiming("createBillMs")
	}
	created, err := h.BillService.Create(ctx, userID, create)
	if stopTimer != nil {
		stopTimer()
	}
	if err != nil {
		return nil, httperr.From(err)
	}

	if logData != nil {
		logData.AddData("billID", created.ID.String())
	}

	return &CreateBillOutput{
		Status: http.StatusCreated,
		Body:   fromService(*created),
	}, nil
}
