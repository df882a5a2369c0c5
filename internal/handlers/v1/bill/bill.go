package bill

import (
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/service"
)

// Bill is the API response model for a bill. Status is derived for the
// request time, so a bill past its due date reads overdue even before
// the nightly sweep persists the flip.
type Bill struct {
	ID           string `json:"id" doc:"Bill UUID"`
	CategoryID   string `json:"categoryId" doc:"Category UUID"`
	Name         string `json:"name" doc:"Bill name"`
	Amount       string `json:"amount" doc:"Decimal amount due per cycle"`
	DueDate      string `json:"dueDate" doc:"RFC3339 due date of the current cycle"`
	Frequency    string `json:"frequency" doc:"weekly, bi-weekly, monthly, quarterly, semi-annually, annually, or one-time"`
	Status       string `json:"status" doc:"active, paid, overdue, or cancelled"`
	ReminderDays int    `json:"reminderDays" doc:"Days before due date a reminder fires"`
	Recurring    bool   `json:"recurring" doc:"Whether the bill advances to a next cycle when paid"`
	Notes        string `json:"notes,omitempty" doc:"Free-form notes"`
	DaysPastDue  int    `json:"daysPastDue,omitempty" doc:"Whole days past due, overdue bills only"`
	CreatedAt    string `json:"createdAt" doc:"RFC3339 creation time"`
}

func fromService(b service.Bill) Bill {
	return Bill{
		ID:           b.ID.String(),
		CategoryID:   b.CategoryID.String(),
		Name:         b.Name,
		Amount:       b.Amount.String(),
		DueDate:      b.DueDate.Format(time.RFC3339),
		Frequency:    string(b.Frequency),
		Status:       string(b.Status),
		ReminderDays: b.ReminderDays,
		Recurring:    b.Recurring,
		Notes:        b.Notes,
		DaysPastDue:  b.DaysPastDue,
		CreatedAt:    b.CreatedAt.Format(time.RFC3339),
	}
}

func parseID(raw, field string) (uuid.UUID, error) {
	id, err := uuid.FromString(raw)
	if err != nil {
		return uuid.Nil, huma.NewError(http.StatusBadRequest, "invalid "+field, err)
	}
	return id, nil
}

func parseDate(raw, field string) (time.Time, error) {
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, huma.NewError(http.StatusBadRequest, "invalid "+field+", expected RFC3339", err)
	}
	return parsed, nil
}
