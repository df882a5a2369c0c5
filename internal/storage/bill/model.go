package bill

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
)

// Frequency is the recurrence period by which a recurring bill's due date
// advances after payment.
type Frequency string

const (
	FrequencyWeekly       Frequency = "weekly"
	FrequencyBiWeekly     Frequency = "bi-weekly"
	FrequencyMonthly      Frequency = "monthly"
	FrequencyQuarterly    Frequency = "quarterly"
	FrequencySemiAnnually Frequency = "semi-annually"
	FrequencyAnnually     Frequency = "annually"
	FrequencyOneTime      Frequency = "one-time"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyWeekly, FrequencyBiWeekly, FrequencyMonthly, FrequencyQuarterly,
		FrequencySemiAnnually, FrequencyAnnually, FrequencyOneTime:
		return true
	}
	return false
}

// Status of a bill. Derivable from due date, payment state, and the
// current time; the stored value is a cache re-derived on listing.
type Status string

const (
	StatusActive    Status = "active"
	StatusPaid      Status = "paid"
	StatusOverdue   Status = "overdue"
	StatusCancelled Status = "cancelled"
)

// Bill represents a recurring payment obligation.
type Bill struct {
	ID           uuid.UUID       `db:"id"`
	UserID       uuid.UUID       `db:"user_id"`
	CategoryID   uuid.UUID       `db:"category_id"`
	Name         string          `db:"name"`
	Amount       decimal.Decimal `db:"amount"`
	DueDate      time.Time       `db:"due_date"`
	Frequency    Frequency       `db:"frequency"`
	Status       Status          `db:"status"`
	ReminderDays int             `db:"reminder_days"`
	Recurring    bool            `db:"recurring"`
	Notes        string          `db:"notes"`
	CreatedAt    time.Time       `db:"created_at"`
}

// Payment is one append-only payment record for a bill.
type Payment struct {
	ID            uuid.UUID       `db:"id"`
	BillID        uuid.UUID       `db:"bill_id"`
	Amount        decimal.Decimal `db:"amount"`
	PaidAt        time.Time       `db:"paid_at"`
	TransactionID uuid.NullUUID   `db:"transaction_id"`
	Notes         string          `db:"notes"`
	CreatedAt     time.Time       `db:"created_at"`
}

// BillCreate is the input for inserting a bill row.
type BillCreate struct {
	UserID       uuid.UUID
	CategoryID   uuid.UUID
	Name         string
	Amount       decimal.Decimal
	DueDate      time.Time
	Frequency    Frequency
	ReminderDays int
	Recurring    bool
	Notes        string
}

// PaymentCreate is the input for appending a payment record.
type PaymentCreate struct {
	BillID        uuid.UUID
	Amount        decimal.Decimal
	PaidAt        time.Time
	TransactionID *uuid.UUID
	Notes         string
}

// BillFilter specifies filters for listing bills.
type BillFilter struct {
	Status     *Status
	CategoryID *uuid.UUID
	Limit      int
	Offset     int
}

// PaymentFilter bounds a payment-history query.
type PaymentFilter struct {
	From *time.Time
	To   *time.Time
}

// IReader defines read access to bills, scoped to the acting user.
//
//go:generate mockery --name IReader
type IReader interface {
	FindByID(ctx context.Context, userID, id uuid.UUID) (*Bill, error)
	List(ctx context.Context, userID uuid.UUID, filter *BillFilter) ([]*Bill, error)
	// DueWithin returns active bills due in [from, to], due date ascending.
	DueWithin(ctx context.Context, userID uuid.UUID, from, to time.Time, limit int) ([]*Bill, error)
	// Overdue returns overdue bills, oldest due date first.
	Overdue(ctx context.Context, userID uuid.UUID, limit int) ([]*Bill, error)
	Payments(ctx context.Context, userID, billID uuid.UUID, filter *PaymentFilter) ([]*Payment, error)
	// PaymentsBetween returns the user's payment records across all bills
	// with paid_at in [from, to).
	PaymentsBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*Payment, error)
	// DueBetween returns bills of any status with a due date in [from, to).
	DueBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*Bill, error)
	HasPayments(ctx context.Context, billID uuid.UUID) (bool, error)
	// ActiveDueBefore spans all users; the scheduler's overdue sweep uses it.
	ActiveDueBefore(ctx context.Context, cutoff time.Time) ([]*Bill, error)
}

// IWriter defines mutations, executed inside an open database transaction.
//
//go:generate mockery --name IWriter
type IWriter interface {
	IReader
	FindByIDForUpdate(ctx context.Context, userID, id uuid.UUID) (*Bill, error)
	Insert(ctx context.Context, create *BillCreate) (uuid.UUID, error)
	// UpdateSchedule persists a new due date and status after a payment or
	// status re-derivation.
	UpdateSchedule(ctx context.Context, id uuid.UUID, dueDate time.Time, status Status) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	// MarkOverdueIfActive flips a bill to overdue only while it is still
	// active. A payment or cancellation committed since the caller read
	// the bill wins.
	MarkOverdueIfActive(ctx context.Context, id uuid.UUID) error
	InsertPayment(ctx context.Context, create *PaymentCreate) (uuid.UUID, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}
