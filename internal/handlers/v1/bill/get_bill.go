package bill

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/handlers/v1/auth"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/httperr"
	"github.com/carson-networks/ledger-server/internal/service"
)

// GetBillInput is the Huma input for fetching one bill.
type GetBillInput struct {
	UserID string `header:"X-User-ID" doc:"Acting user UUID"`
	ID     string `path:"id" doc:"Bill UUID"`
}

// GetBillOutput is the Huma output for fetching one bill.
type GetBillOutput struct {
	Body Bill
}

// billGetter is the interface for fetching one bill.
type billGetter interface {
	Get(ctx context.Context, userID, id uuid.UUID) (*service.Bill, error)
}

// GetBillHandler handles GET /v1/bills/{id}.
type GetBillHandler struct {
	BillService billGetter
}

// NewGetBillHandler creates a new GetBillHandler.
func NewGetBillHandler(svc billGetter) *GetBillHandler {
	return &GetBillHandler{BillService: svc}
}

// Register registers the get bill endpoint with the Huma API.
func (h *GetBillHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-bill",
		Method:      http.MethodGet,
		Path:        "/v1/bills/{id}",
		Summary:     "Get a bill",
		Description: "Fetches one bill with its status derived for the request time.",
		Tags:        []string{"Bills"},
	}, h.handle)
}

func (h *GetBillHandler) handle(ctx context.Context, input *GetBillInput) (*GetBillOutput, error) {
	userID, err := auth.UserID(input.UserID)
	if err != nil {
		return nil, err
	}

	id, err := parseID(input.ID, "bill id")
	if err != nil {
		return nil, err
	}

	found, err := h.BillService.Get(ctx, userID, id)
	if err != nil {
		return nil, httperr.From(err)
	}

	return &GetBillOutput{Body: fromService(*found)}, nil
}
