// Package currency exposes the conversion engine over HTTP. Rates are
// global, so these endpoints take no acting user.
package currency

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/handlers/v1/httperr"
	"github.com/carson-networks/ledger-server/internal/logging"
)

// ConvertInput is the Huma input for converting an amount.
type ConvertInput struct {
	Amount string `query:"amount" doc:"Decimal amount to convert"`
	From   string `query:"from" doc:"Source currency code"`
	To     string `query:"to" doc:"Target currency code"`
	Date   string `query:"date" doc:"RFC3339 valuation time, defaults to now; only rates on or before it apply"`
}

// ConvertResponseBody is the conversion result.
type ConvertResponseBody struct {
	From      string `json:"from" doc:"Source currency code"`
	To        string `json:"to" doc:"Target currency code"`
	Amount    string `json:"amount" doc:"Input amount"`
	Converted string `json:"converted" doc:"Converted amount, rounded for the target currency"`
	Rate      string `json:"rate" doc:"Rate applied"`
}

// ConvertOutput is the Huma output for converting an amount.
type ConvertOutput struct {
	Body ConvertResponseBody
}

// converter is the interface for conversion with the applied rate.
type converter interface {
	Quote(ctx context.Context, amount decimal.Decimal, from, to string, date time.Time) (decimal.Decimal, decimal.Decimal, error)
}

// ConvertHandler handles GET /v1/currency/convert.
type ConvertHandler struct {
	CurrencyService converter
}

// NewConvertHandler creates a new ConvertHandler.
func NewConvertHandler(svc converter) *ConvertHandler {
	return &ConvertHandler{CurrencyService: svc}
}

// Register registers the convert endpoint with the Huma API.
func (h *ConvertHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "convert-currency",
		Method:      http.MethodGet,
		Path:        "/v1/currency/convert",
		Summary:     "Convert an amount",
		Description: "Converts an amount using the most recent stored rate on or before the valuation date. Rates recorded after it are never used.",
		Tags:        []string{"Currency"},
	}, h.handle)
}

func (h *ConvertHandler) handle(ctx context.Context, input *ConvertInput) (*ConvertOutput, error) {
	logData := logging.GetLogData(ctx)

	amount, err := decimal.NewFromString(input.Amount)
	if err != nil {
		return nil, huma.NewError(http.StatusBadRequest, "invalid amount", err)
	}

	date := time.Now()
	if input.Date != "" {
		date, err = time.Parse(time.RFC3339, input.Date)
		if err != nil {
			return nil, huma.NewError(http.StatusBadRequest, "invalid date, expected RFC3339", err)
		}
	}

	var stopTimer func()
	if logData != nil {
		stopTimer = logData.AddTiming("convertMs")
	}
	converted, rate, err := h.CurrencyService.Quote(ctx, amount, input.From, input.To, date)
	if stopTimer != nil {
		stopTimer()
	}
	if err != nil {
		return nil, httperr.From(err)
	}

	return &ConvertOutput{Body: ConvertResponseBody{
		From:      input.From,
		To:        input.To,
		Amount:    amount.String(),
		Converted: converted.String(),
		Rate:      rate.String(),
	}}, nil
}
