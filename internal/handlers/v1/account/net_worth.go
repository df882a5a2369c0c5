package account

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

// NetWorthInput is the Huma input for the net worth endpoint.
type NetWorthInput struct {
	UserID string `header:"X-User-ID" doc:"Acting user UUID"`
	AsOf   string `query:"asOf" doc:"RFC3339 valuation time, defaults to now"`
}

// NetWorthEntry is one account's contribution to the total.
type NetWorthEntry struct {
	AccountID string `json:"accountId" doc:"Account UUID"`
	Name      string `json:"name" doc:"Account name"`
	Currency  string `json:"currency" doc:"Account currency"`
	Balance   string `json:"balance" doc:"Balance in the account currency"`
	Converted string `json:"converted" doc:"Balance converted to the base currency"`
}

// NetWorthResponseBody is the response body for the net worth endpoint.
type NetWorthResponseBody struct {
	Currency string          `json:"currency" doc:"Base currency of the total"`
	Total    string          `json:"total" doc:"Sum of converted balances"`
	Accounts []NetWorthEntry `json:"accounts" doc:"Per-account contributions"`
}

// NetWorthOutput is the Huma output for the net worth endpoint.
type NetWorthOutput struct {
	Body NetWorthResponseBody
}

// netWorthReader is the interface for computing net worth.
type netWorthReader interface {
	NetWorth(ctx context.Context, userID uuid.UUID, asOf time.Time) (*service.NetWorth, error)
}

// NetWorthHandler handles GET /v1/accounts/net-worth.
type NetWorthHandler struct {
	AccountService netWorthReader
}

// NewNetWorthHandler creates a new NetWorthHandler.
func NewNetWorthHandler(svc netWorthReader) *NetWorthHandler {
	return &NetWorthHandler{AccountService: svc}
}

// Register registers the net worth endpoint with the Huma API.
func (h *NetWorthHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-net-worth",
		Method:      http.MethodGet,
		Path:        "/v1/accounts/net-worth",
		Summary:     "Net worth",
		Description: "Sums flagged account balances converted to the base currency at the asOf date's rates.",
		Tags:        []string{"Accounts"},
	}, h.handle)
}

func (h *NetWorthHandler) handle(ctx context.Context, input *NetWorthInput) (*NetWorthOutput, error) {
	logData := logging.GetLogData(ctx)

	userID, err := auth.UserID(input.UserID)
	if err != nil {
		return nil, err
	}

	asOf := time.Now()
	if input.AsOf != "" {
		asOf, err = time.Parse(time.RFC3339, input.AsOf)
		if err != nil {
			return nil, huma.NewError(http.StatusBadRequest, "invalid asOf, expected RFC3339", err)
		}
	}

	var stopTimer func()
	if logData != nil {
		stopTimer = logData.AddTiming("netWorthMs")
	}
	netWorth, err := h.AccountService.NetWorth(ctx, userID, asOf)
	if stopTimer != nil {
		stopTimer()
	}
	if err != nil {
		return nil, httperr.From(err)
	}

	body := NetWorthResponseBody{
		Currency: netWorth.Currency,
		Total:    netWorth.Total.String(),
		Accounts: make([]NetWorthEntry, len(netWorth.Accounts)),
	}
	for i, entry := range netWorth.Accounts {
		body.Accounts[i] = NetWorthEntry{
			AccountID: entry.AccountID.String(),
			Name:      entry.Name,
			Currency:  entry.Currency,
			Balance:   entry.Balance.String(),
			Converted: entry.Converted.String(),
		}
	}

	return &NetWorthOutput{Body: body}, nil
}
