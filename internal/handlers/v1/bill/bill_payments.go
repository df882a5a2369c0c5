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

// BillPaymentsInput is the Huma input for a bill's payment history.
type BillPaymentsInput struct {
	UserID string `header:"X-User-ID" doc:"Acting user UUID"`
	ID     string `path:"id" doc:"Bill UUID"`
	From   string `query:"from" doc:"Inclusive RFC3339 lower bound"`
	To     string `query:"to" doc:"Exclusive RFC3339 upper bound"`
}

// Payment is one payment record in the API.
type Payment struct {
	ID            string `json:"id" doc:"Payment UUID"`
	Amount        string `json:"amount" doc:"Decimal amount paid"`
	PaidAt        string `json:"paidAt" doc:"RFC3339 payment time"`
	TransactionID string `json:"transactionId,omitempty" doc:"Linked expense UUID, when one was posted"`
	Notes         string `json:"notes,omitempty" doc:"Free-form notes"`
}

// BillPaymentsResponseBody is the payment history with totals.
type BillPaymentsResponseBody struct {
	Payments  []Payment `json:"payments" doc:"Payments, most recent first"`
	Count     int       `json:"count" doc:"Number of payments"`
	TotalPaid string    `json:"totalPaid" doc:"Sum of the listed amounts"`
}

// BillPaymentsOutput is the Huma output for payment history.
type BillPaymentsOutput struct {
	Body BillPaymentsResponseBody
}

// paymentHistorian is the interface for reading payment history.
type paymentHistorian interface {
	PaymentHistory(ctx context.Context, userID, billID uuid.UUID, from, to *time.Time) (*service.PaymentHistory, error)
}

// BillPaymentsHandler handles GET /v1/bills/{id}/payments.
type BillPaymentsHandler struct {
	BillService paymentHistorian
}

// NewBillPaymentsHandler creates a new BillPaymentsHandler.
func NewBillPaymentsHandler(svc paymentHistorian) *BillPaymentsHandler {
	return &BillPaymentsHandler{BillService: svc}
}

// Register registers the payment history endpoint with the Huma API.
func (h *BillPaymentsHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "bill-payments",
		Method:      http.MethodGet,
		Path:        "/v1/bills/{id}/payments",
		Summary:     "Bill payment history",
		Description: "Returns a bill's payments, most recent first, with count and total.",
		Tags:        []string{"Bills"},
	}, h.handle)
}

func (h *BillPaymentsHandler) handle(ctx context.Context, input *BillPaymentsInput) (*BillPaymentsOutput, error) {
	logData := logging.GetLogData(ctx)

	userID, err := auth.UserID(input.UserID)
	if err != nil {
		return nil, err
	}

	billID, err := parseID(input.ID, "bill id")
	if err != nil {
		return nil, err
	}

	var from, to *time.Time
	if input.From != "" {
		parsed, err := parseDate(input.From, "from")
		if err != nil {
			return nil, err
		}
		from = &parsed
	}
	if input.To != "" {
		parsed, err := parseDate(input.To, "to")
		if err != nil {
			return nil, err
		}
		to = &parsed
	}

	var stopTimer func()
	if logData != nil {
		stopTimer = logData.AddTiming("billPaymentsMs")
	}
	history, err := h.BillService.PaymentHistory(ctx, userID, billID, from, to)
	if stopTimer != nil {
		stopTimer()
	}
	if err != nil {
		return nil, httperr.From(err)
	}

	body := BillPaymentsResponseBody{
		Payments:  make([]Payment, len(history.Payments)),
		Count:     history.Count,
		TotalPaid: history.TotalPaid.String(),
	}
	for i, p := range history.Payments {
		payment := Payment{
			ID:     p.ID.String(),
			Amount: p.Amount.String(),
			PaidAt: p.PaidAt.Format(time.RFC3339),
			Notes:  p.Notes,
		}
		if p.TransactionID != nil {
			payment.TransactionID = p.TransactionID.String()
		}
		body.Payments[i] = payment
	}

	return &BillPaymentsOutput{Body: body}, nil
}
