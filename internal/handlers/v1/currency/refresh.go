package currency

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/ledger-server/internal/handlers/v1/httperr"
	"github.com/carson-networks/ledger-server/internal/logging"
	"github.com/carson-networks/ledger-server/internal/service"
)

// RefreshInput is the Huma input for triggering a rate refresh.
type RefreshInput struct {
	Body RefreshBody
}

// RefreshBody configures the refresh.
type RefreshBody struct {
	Currencies []string `json:"currencies,omitempty" doc:"Currency codes to refresh, defaults to the tracked set"`
	Force      bool     `json:"force,omitempty" doc:"Bypass the refresh throttle"`
}

// RefreshResponseBody reports the refresh outcome.
type RefreshResponseBody struct {
	Refreshed   bool   `json:"refreshed" doc:"True when the provider was reached and rates stored"`
	Throttled   bool   `json:"throttled" doc:"True when the call was within the throttle window"`
	LastRefresh string `json:"lastRefresh,omitempty" doc:"RFC3339 time of the last successful refresh"`
	RatesStored int    `json:"ratesStored" doc:"Directed pairs written this refresh"`
}

// RefreshOutput is the Huma output for triggering a refresh.
type RefreshOutput struct {
	Body RefreshResponseBody
}

// refresher is the interface for refreshing rates.
type refresher interface {
	Refresh(ctx context.Context, currencies []string, force bool) (*service.RefreshResult, error)
}

// RefreshHandler handles POST /v1/currency/refresh.
type RefreshHandler struct {
	CurrencyService refresher
}

// NewRefreshHandler creates a new RefreshHandler.
func NewRefreshHandler(svc refresher) *RefreshHandler {
	return &RefreshHandler{CurrencyService: svc}
}

// Register registers the refresh endpoint with the Huma API.
func (h *RefreshHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "refresh-rates",
		Method:      http.MethodPost,
		Path:        "/v1/currency/refresh",
		Summary:     "Refresh exchange rates",
		Description: "Fetches current rates from the provider. Calls within the throttle window return the previous refresh time instead of fetching again.",
		Tags:        []string{"Currency"},
	}, h.handle)
}

func (h *RefreshHandler) handle(ctx context.Context, input *RefreshInput) (*RefreshOutput, error) {
	logData := logging.GetLogData(ctx)

	var stopTimer func()
	if logData != nil {
		stopTimer = logData.AddTiming("refreshRatesMs")
	}
	result, err := h.CurrencyService.Refresh(ctx, input.Body.Currencies, input.Body.Force)
	if stopTimer != nil {
		stopTimer()
	}
	if err != nil {
		return nil, httperr.From(err)
	}

	if logData != nil {
		logData.AddData("refreshed", result.Refreshed)
		logData.AddData("throttled", result.Throttled)
	}

	body := RefreshResponseBody{
		Refreshed:   result.Refreshed,
		Throttled:   result.Throttled,
		RatesStored: result.RatesStored,
	}
	if !result.LastRefresh.IsZero() {
		body.LastRefresh = result.LastRefresh.Format(time.RFC3339)
	}

	return &RefreshOutput{Body: body}, nil
}
