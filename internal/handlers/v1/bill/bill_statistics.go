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
	"github.com/carson-networks/ledger-server/internal/schedule"
	"github.com/carson-networks/ledger-server/internal/service"
)

// BillStatisticsInput is the Huma input for bill statistics.
type BillStatisticsInput struct {
	UserID string `header:"X-User-ID" doc:"Acting user UUID"`
	Period string `query:"period" doc:"month, quarter, or year; defaults to month"`
	Ref    string `query:"ref" doc:"RFC3339 time selecting the period bucket, defaults to now"`
}

// BillStatisticsResponseBody aggregates one period bucket.
type BillStatisticsResponseBody struct {
	PeriodStart   string `json:"periodStart" doc:"Inclusive RFC3339 start of the bucket"`
	PeriodEnd     string `json:"periodEnd" doc:"Exclusive RFC3339 end of the bucket"`
	PaidTotal     string `json:"paidTotal" doc:"Sum paid within the bucket"`
	PaidCount     int    `json:"paidCount" doc:"Payments within the bucket"`
	UpcomingTotal string `json:"upcomingTotal" doc:"Sum of active bills still due in the bucket"`
	UpcomingCount int    `json:"upcomingCount" doc:"Active bills still due in the bucket"`
	OverdueTotal  string `json:"overdueTotal" doc:"Sum of overdue bills due in the bucket"`
	OverdueCount  int    `json:"overdueCount" doc:"Overdue bills due in the bucket"`
}

// BillStatisticsOutput is the Huma output for bill statistics.
type BillStatisticsOutput struct {
	Body BillStatisticsResponseBody
}

// billAggregator is the interface for computing bill statistics.
type billAggregator interface {
	Statistics(ctx context.Context, userID uuid.UUID, period schedule.Period, ref time.Time) (*service.BillStatistics, error)
}

// BillStatisticsHandler handles GET /v1/bills/statistics.
type BillStatisticsHandler struct {
	BillService billAggregator
}

// NewBillStatisticsHandler creates a new BillStatisticsHandler.
func NewBillStatisticsHandler(svc billAggregator) *BillStatisticsHandler {
	return &BillStatisticsHandler{BillService: svc}
}

// Register registers the bill statistics endpoint with the Huma API.
func (h *BillStatisticsHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "bill-statistics",
		Method:      http.MethodGet,
		Path:        "/v1/bills/statistics",
		Summary:     "Bill statistics",
		Description: "Aggregates paid, upcoming, and overdue amounts within the period containing the ref time.",
		Tags:        []string{"Bills"},
	}, h.handle)
}

func (h *BillStatisticsHandler) handle(ctx context.Context, input *BillStatisticsInput) (*BillStatisticsOutput, error) {
	logData := logging.GetLogData(ctx)

	userID, err := auth.UserID(input.UserID)
	if err != nil {
		return nil, err
	}

	period := schedule.PeriodMonth
	if input.Period != "" {
		period = schedule.Period(input.Period)
		switch period {
		case schedule.PeriodMonth, schedule.PeriodQuarter, schedule.PeriodYear:
		default:
			return nil, huma.NewError(http.StatusBadRequest, "period must be month, quarter, or year")
		}
	}

	ref := time.Now()
	if input.Ref != "" {
		ref, err = parseDate(input.Ref, "ref")
		if err != nil {
			return nil, err
		}
	}

	var stopTimer func()
	if logData != nil {
		stopTimer = logData.AddTiming("billStatisticsMs")
	}
	stats, err := h.BillService.Statistics(ctx, userID, period, ref)
	if stopTimer != nil {
		stopTimer()
	}
	if err != nil {
		return nil, httperr.From(err)
	}

	return &BillStatisticsOutput{Body: BillStatisticsResponseBody{
		PeriodStart:   stats.PeriodStart.Format(time.RFC3339),
		PeriodEnd:     stats.PeriodEnd.Format(time.RFC3339),
		PaidTotal:     stats.PaidTotal.String(),
		PaidCount:     stats.PaidCount,
		UpcomingTotal: stats.UpcomingTotal.String(),
		UpcomingCount: stats.UpcomingCount,
		OverdueTotal:  stats.OverdueTotal.String(),
		OverdueCount:  stats.OverdueCount,
	}}, nil
}
