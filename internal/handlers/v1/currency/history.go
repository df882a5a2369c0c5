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

// HistoryInput is the Huma input for a rate history window.
type HistoryInput struct {
	From  string `query:"from" doc:"Source currency code"`
	To    string `query:"to" doc:"Target currency code"`
	Start string `query:"start" doc:"Inclusive RFC3339 window start"`
	End   string `query:"end" doc:"Inclusive RFC3339 window end"`
}

// RatePoint is one stored rate in the window.
type RatePoint struct {
	Date string `json:"date" doc:"RFC3339 rate date"`
	Rate string `json:"rate" doc:"Stored rate"`
}

// HistoryStats summarizes the window.
type HistoryStats struct {
	Min       string `json:"min" doc:"Lowest rate in the window"`
	Max       string `json:"max" doc:"Highest rate in the window"`
	Mean      string `json:"mean" doc:"Mean rate"`
	Change    string `json:"change" doc:"Last rate minus first rate"`
	ChangePct string `json:"changePct" doc:"Change as a percentage of the first rate"`
}

// HistoryResponseBody is the ordered series plus statistics.
type HistoryResponseBody struct {
	From   string       `json:"from" doc:"Source currency code"`
	To     string       `json:"to" doc:"Target currency code"`
	Points []RatePoint  `json:"points" doc:"Stored rates, date ascending"`
	Stats  HistoryStats `json:"stats" doc:"Statistics over the window"`
}

// HistoryOutput is the Huma output for a rate history window.
type HistoryOutput struct {
	Body HistoryResponseBody
}

// historian is the interface for reading rate history.
type historian interface {
	History(ctx context.Context, from, to string, start, end time.Time) (*service.RateHistory, error)
}

// HistoryHandler handles GET /v1/currency/history.
type HistoryHandler struct {
	CurrencyService historian
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(svc historian) *HistoryHandler {
	return &HistoryHandler{CurrencyService: svc}
}

// Register registers the history endpoint with the Huma API.
func (h *HistoryHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "rate-history",
		Method:      http.MethodGet,
		Path:        "/v1/currency/history",
		Summary:     "Rate history",
		Description: "Returns the stored rates for a pair within a window, with min/max/mean and first-to-last change.",
		Tags:        []string{"Currency"},
	}, h.handle)
}

func (h *HistoryHandler) handle(ctx context.Context, input *HistoryInput) (*HistoryOutput, error) {
	logData := logging.GetLogData(ctx)

	start, err := time.Parse(time.RFC3339, input.Start)
	if err != nil {
		return nil, huma.NewError(http.StatusBadRequest, "invalid start, expected RFC3339", err)
	}
	end, err := time.Parse(time.RFC3339, input.End)
	if err != nil {
		return nil, huma.NewError(http.StatusBadRequest, "invalid end, expected RFC3339", err)
	}

	var stopTimer func()
	if logData != nil {
		stopTimer = logData.AddTiming("rateHistoryMs")
	}
	history, err := h.CurrencyService.History(ctx, input.From, input.To, start, end)
	if stopTimer != nil {
		stopTimer()
	}
	if err != nil {
		return nil, httperr.From(err)
	}

	body := HistoryResponseBody{
		From:   history.From,
		To:     history.To,
		Points: make([]RatePoint, len(history.Points)),
		Stats: HistoryStats{
			Min:       history.Stats.Min.String(),
			Max:       history.Stats.Max.String(),
			Mean:      history.Stats.Mean.String(),
			Change:    history.Stats.Change.String(),
			ChangePct: history.Stats.ChangePct.String(),
		},
	}
	for i, point := range history.Points {
		body.Points[i] = RatePoint{
			Date: point.Date.Format(time.RFC3339),
			Rate: point.Rate.String(),
		}
	}

	return &HistoryOutput{Body: body}, nil
}
