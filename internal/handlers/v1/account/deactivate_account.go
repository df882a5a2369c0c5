package account

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/handlers/v1/auth"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/httperr"
	"github.com/carson-networks/ledger-server/internal/logging"
)

// DeactivateAccountInput is the Huma input for deactivating an account.
type DeactivateAccountInput struct {
	UserID string `header:"X-User-ID" doc:"Acting user UUID"`
	ID     string `path:"id" doc:"Account UUID"`
}

// DeactivateAccountOutput is the Huma output for deactivating an account.
type DeactivateAccountOutput struct {
	Status int
}

// accountDeactivator is the interface for deactivating accounts.
type accountDeactivator interface {
	Deactivate(ctx context.Context, userID, id uuid.UUID) error
}

// DeactivateAccountHandler handles DELETE /v1/accounts/{id}. Accounts are
// soft-removed so their transaction history stays intact.
type DeactivateAccountHandler struct {
	AccountService accountDeactivator
}

// NewDeactivateAccountHandler creates a new DeactivateAccountHandler.
func NewDeactivateAccountHandler(svc accountDeactivator) *DeactivateAccountHandler {
	return &DeactivateAccountHandler{AccountService: svc}
}

// Register registers the deactivate account endpoint with the Huma API.
func (h *DeactivateAccountHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "deactivate-account",
		Method:      http.MethodDelete,
		Path:        "/v1/accounts/{id}",
		Summary:     "Deactivate an account",
		Description: "Soft-removes an account. Its history and balance are kept but it no longer accepts postings.",
		Tags:        []string{"Accounts"},
	}, h.handle)
}

func (h *DeactivateAccountHandler) handle(ctx context.Context, input *DeactivateAccountInput) (*DeactivateAccountOutput, error) {
	logData := logging.GetLogData(ctx)

	userID, err := auth.UserID(input.UserID)
	if err != nil {
		return nil, err
	}

	id, err := uuid.FromString(input.ID)
	if err != nil {
		return nil, huma.NewError(http.StatusBadRequest, "invalid account id", err)
	}

	if err := h.AccountService.Deactivate(ctx, userID, id); err != nil {
		return nil, httperr.From(err)
	}

	if logData != nil {
		logData.AddData("accountID", id.String())
	}

	return &DeactivateAccountOutput{Status: http.StatusNoContent}, nil
}
