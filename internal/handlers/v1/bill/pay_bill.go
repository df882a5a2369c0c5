package bill

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/handlers/v1/auth"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/httperr"
	"github.com/carson-networks/ledger-server/internal/logging"
	"github.com/carson-networks/ledger-server/internal/service"
)

// PayBillInput is the Huma input for recording a payment.
type PayBillInput struct {
	UserID string `header:"X-User-ID" doc:"Acting user UUID"`
	ID     string `path:"id" doc:"Bill UUID"`
	Body   PayBillBody
}

// PayBillBody is the request body fields for recording a payment.
type PayBillBody struct {
	Amount            string `json:"amount,omitempty" doc:"Decimal amount paid, defaults to the bill's amount"`
	PaidAt            string `json:"paidAt,omitempty" doc:"RFC3339 payment time, defaults to now"`
	Notes             string `json:"notes,omitempty" doc:"Free-form notes"`
	CreateTransaction bool   `json:"createTransaction,omitempty" doc:"Post a matching expense in the same atomic unit"`
	AccountID         string `json:"accountId,omitempty" doc:"Account the expense posts against, required with createTransaction"`
	Cleared           bool   `json:"cleared,omitempty" doc:"Cleared flag for the posted expense"`
}

// PayBillResponse reports the payment outcome.
type PayBillResponse struct {
	PaymentID     string `json:"paymentId" doc:"Payment record UUID"`
	TransactionID string `json:"transactionId,omitempty" doc:"Posted expense UUID, when requested"`
	Status        string `json:"status" doc:"Bill status after the payment"`
	NextDueDate   string `json:"nextDueDate,omitempty" doc:"RFC3339 due date of the next cycle, recurring bills only"`
}

// PayBillOutput is the Huma output for recording a payment.
type PayBillOutput struct {
	Status int
	Body   PayBillResponse
}

// billPayer is the interface for recording payments.
type billPayer interface {
	MarkPaid(ctx context.Context, userID, billID uuid.UUID, input service.MarkPaidInput) (*service.PaymentResult, error)
}

// PayBillHandler handles POST /v1/bills/{id}/payments.
type PayBillHandler struct {
	BillService billPayer
}

// NewPayBillHandler creates a new PayBillHandler.
func NewPayBillHandler(svc billPayer) *PayBillHandler {
	return &PayBillHandler{BillService: svc}
}

// Register registers the pay bill endpoint with the Huma API.
func (h *PayBillHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "pay-bill",
		Method:      http.MethodPost,
		Path:        "/v1/bills/{id}/payments",
		Summary:     "Record a bill payment",
		Description: "Records a payment. Recurring bills advance to the next cycle; one-time bills become paid.",
		Tags:        []string{"Bills"},
	}, h.handle)
}

func parsePayBillInput(input *PayBillInput) (service.MarkPaidInput, error) {
	parsed := service.MarkPaidInput{
		Notes:             input.Body.Notes,
		Cleared:           input.Body.Cleared,
		CreateTransaction: input.Body.CreateTransaction,
	}

	if input.Body.Amount != "" {
		amount, err := decimal.NewFromString(input.Body.Amount)
		if err != nil {
			return service.MarkPaidInput{}, huma.NewError(http.StatusBadRequest, "invalid amount", err)
		}
		parsed.Amount = &amount
	}
	if input.Body.PaidAt != "" {
		paidAt, err := parseDate(input.Body.PaidAt, "paidAt")
		if err != nil {
			return service.MarkPaidInput{}, err
		}
		parsed.PaidAt = paidAt
	}
	if input.Body.AccountID != "" {
		accountID, err := parseID(input.Body.AccountID, "accountId")
		if err != nil {
			return service.MarkPaidInput{}, err
		}
		parsed.AccountID = accountID
	}

	return parsed, nil
}

func (h *PayBillHandler) handle(ctx context.Context, input *PayBillInput) (*PayBillOutput, error) {
	logData := logging.GetLogData(ctx)

	userID, err := auth.UserID(input.UserID)
	if err != nil {
		return nil, err
	}

	billID, err := parseID(input.ID, "bill id")
	if err != nil {
		return nil, err
	}

	markPaid, err := parsePayBillInput(input)
	if err != nil {
		return nil, err
	}

	var stopTimer func()
	if logData != nil {
		stopTimer = logData.AddTiming("payBillMs")
	}
	result, err := h.BillService.MarkPaid(ctx, userID, billID, markPaid)
	if stopTimer != nil {
		stopTimer()
	}
	if err != nil {
		return nil, httperr.From(err)
	}

	if logData != nil {
		logData.AddData("billID", billID.String())
		logData.AddData("paymentID", result.PaymentID.String())
	}

	body := PayBillResponse{
		PaymentID: result.PaymentID.String(),
		Status:    string(result.Status),
	}
	if result.TransactionID != nil {
		body.TransactionID = result.TransactionID.String()
	}
	if result.NextDueDate != nil {
		body.NextDueDate = result.NextDueDate.Format(time.RFC3339)
	}

	return &PayBillOutput{Status: http.StatusCreated, Body: body}, nil
}
