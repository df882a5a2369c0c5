package bill

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/handlers/v1/auth"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/httperr"
	"github.com/carson-networks/ledger-server/internal/logging"
)

// CancelBillInput is the Huma input for cancelling a bill.
type CancelBillInput struct {
	UserID string `header:"X-User-ID" doc:"Acting user UUID"`
	ID     string `path:"id" doc:"Bill UUID"`
}

// CancelBillOutput is the response for cancelling a bill.
type CancelBillOutput struct {
	Status int
}

// RemoveBillInput is the Huma input for removing a bill.
type RemoveBillInput struct {
	UserID string `header:"X-User-ID" doc:"Acting user UUID"`
	ID     string `path:"id" doc:"Bill UUID"`
}

// RemoveBillResponse reports how the removal was carried out.
type RemoveBillResponse struct {
	Cancelled bool `json:"cancelled" doc:"True when the bill had payment history and was cancelled instead of deleted"`
}

// RemoveBillOutput is the response for removing a bill.
type RemoveBillOutput struct {
	Body RemoveBillResponse
}

// billRetirer is the interface for cancelling and removing bills.
type billRetirer interface {
	Cancel(ctx context.Context, userID, billID uuid.UUID) error
	Remove(ctx context.Context, userID, billID uuid.UUID) (bool, error)
}

// RetireBillHandler handles POST /v1/bills/{id}/cancel and
// DELETE /v1/bills/{id}.
type RetireBillHandler struct {
	BillService billRetirer
}

// NewRetireBillHandler creates a new RetireBillHandler.
func NewRetireBillHandler(svc billRetirer) *RetireBillHandler {
	return &RetireBillHandler{BillService: svc}
}

// Register registers the cancel and remove endpoints with the Huma API.
func (h *RetireBillHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "cancel-bill",
		Method:      http.MethodPost,
		Path:        "/v1/bills/{id}/cancel",
		Summary:     "Cancel a bill",
		Description: "Moves a bill to the terminal cancelled state. Its payment history is kept.",
		Tags:        []string{"Bills"},
	}, h.handleCancel)

	huma.Register(api, huma.Operation{
		OperationID: "remove-bill",
		Method:      http.MethodDelete,
		Path:        "/v1/bills/{id}",
		Summary:     "Remove a bill",
		Description: "Deletes a bill without payment history; bills with history are cancelled instead so the history survives.",
		Tags:        []string{"Bills"},
	}, h.handleRemove)
}

func (h *RetireBillHandler) handleCancel(ctx context.Context, input *CancelBillInput) (*CancelBillOutput, error) {
	logData := logging.GetLogData(ctx)

	userID, err := auth.UserID(input.UserID)
	if err != nil {
		return nil, err
	}

	billID, err := parseID(input.ID, "bill id")
	if err != nil {
		return nil, err
	}

	if err := h.BillService.Cancel(ctx, userID, billID); err != nil {
		return nil, httperr.From(err)
	}

	if logData != nil {
		logData.AddData("billID", billID.String())
	}

	return &CancelBillOutput{Status: http.StatusNoContent}, nil
}

func (h *RetireBillHandler) handleRemove(ctx context.Context, input *RemoveBillInput) (*RemoveBillOutput, error) {
	logData := logging.GetLogData(ctx)

	userID, err := auth.UserID(input.UserID)
	if err != nil {
		return nil, err
	}

	billID, err := parseID(input.ID, "bill id")
	if err != nil {
		return nil, err
	}

	cancelled, err := h.BillService.Remove(ctx, userID, billID)
	if err != nil {
		return nil, httperr.From(err)
	}

	if logData != nil {
		logData.AddData("billID", billID.String())
		logData.AddData("cancelled", cancelled)
	}

	return &RemoveBillOutput{Body: RemoveBillResponse{Cancelled: cancelled}}, nil
}
