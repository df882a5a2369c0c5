// Package inmemory provides in-memory implementations of the storage
// interfaces. They mirror the SQL writers' ownership scoping and error
// kinds so actions and services can be exercised without a database.
package inmemory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/errs"
	"github.com/carson-networks/ledger-server/internal/storage"
	"github.com/carson-networks/ledger-server/internal/storage/account"
	"github.com/carson-networks/ledger-server/internal/storage/bill"
	"github.com/carson-networks/ledger-server/internal/storage/category"
	"github.com/carson-networks/ledger-server/internal/storage/rate"
	"github.com/carson-networks/ledger-server/internal/storage/transaction"
)

// Store bundles the in-memory repositories behind the same Reader/Writer
// shape the SQL storage exposes.
type Store struct {
	Accounts     *AccountRepository
	Categories   *CategoryRepository
	Transactions *TransactionRepository
	Bills        *BillRepository
	Rates        *RateRepository
}

func NewStore() *Store {
	return &Store{
		Accounts:     NewAccountRepository(),
		Categories:   NewCategoryRepository(),
		Transactions: NewTransactionRepository(),
		Bills:        NewBillRepository(),
		Rates:        NewRateRepository(),
	}
}

func (s *Store) Reader() *storage.Reader {
	return &storage.Reader{
		Accounts:     s.Accounts,
		Categories:   s.Categories,
		Transactions: s.Transactions,
		Bills:        s.Bills,
		Rates:        s.Rates,
	}
}

func (s *Store) Writer() *storage.Writer {
	return &storage.Writer{
		Accounts:     s.Accounts,
		Categories:   s.Categories,
		Transactions: s.Transactions,
		Bills:        s.Bills,
		Rates:        s.Rates,
	}
}

// AccountRepository is an in-memory account store.
type AccountRepository struct {
	mu   sync.RWMutex
	rows map[uuid.UUID]*account.Account
}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{rows: map[uuid.UUID]*account.Account{}}
}

// Seed inserts a row directly and returns its id.
func (r *AccountRepository) Seed(row account.Account) uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	if row.ID == uuid.Nil {
		row.ID = uuid.Must(uuid.NewV4())
	}
	r.rows[row.ID] = &row
	return row.ID
}

func (r *AccountRepository) FindByID(_ context.Context, userID, id uuid.UUID) (*account.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	row, ok := r.rows[id]
	if !ok || row.UserID != userID {
		return nil, errs.NotFound("account %s not found", id)
	}
	copied := *row
	return &copied, nil
}

func (r *AccountRepository) List(_ context.Context, userID uuid.UUID, filter *account.AccountFilter) ([]*account.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*account.Account
	for _, row := range r.rows {
		if row.UserID != userID {
			continue
		}
		if filter != nil && filter.ActiveOnly && !row.Active {
			continue
		}
		copied := *row
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	if filter != nil {
		if filter.Offset > 0 {
			if filter.Offset >= len(out) {
				return nil, nil
			}
			out = out[filter.Offset:]
		}
		if filter.Limit > 0 && len(out) > filter.Limit+1 {
			out = out[:filter.Limit+1]
		}
	}
	return out, nil
}

func (r *AccountRepository) FindByIDForUpdate(ctx context.Context, userID, id uuid.UUID) (*account.Account, error) {
	row, err := r.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !row.Active {
		return nil, errs.InvalidState("account %s is inactive", id)
	}
	return row, nil
}

func (r *AccountRepository) Insert(_ context.Context, create *account.AccountCreate) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := uuid.Must(uuid.NewV4())
	r.rows[id] = &account.Account{
		ID: id, UserID: create.UserID, Name: create.Name, Currency: create.Currency,
		Balance: create.StartingBalance, Active: true,
		IncludeInNetWorth: create.IncludeInNetWorth, CreatedAt: time.Now(),
	}
	return id, nil
}

func (r *AccountRepository) UpdateBalance(_ context.Context, id uuid.UUID, balance decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return errs.NotFound("account %s not found", id)
	}
	row.Balance = balance
	return nil
}

func (r *AccountRepository) Deactivate(_ context.Context, userID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok || row.UserID != userID {
		return errs.NotFound("account %s not found", id)
	}
	row.Active = false
	return nil
}

// CategoryRepository is an in-memory category store.
type CategoryRepository struct {
	mu   sync.RWMutex
	rows map[uuid.UUID]*category.Category
}

func NewCategoryRepository() *CategoryRepository {
	return &CategoryRepository{rows: map[uuid.UUID]*category.Category{}}
}

func (r *CategoryRepository) Seed(row category.Category) uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	if row.ID == uuid.Nil {
		row.ID = uuid.Must(uuid.NewV4())
	}
	r.rows[row.ID] = &row
	return row.ID
}

func (r *CategoryRepository) FindByID(_ context.Context, userID, id uuid.UUID) (*category.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	row, ok := r.rows[id]
	if !ok || row.UserID != userID {
		return nil, errs.NotFound("category %s not found", id)
	}
	copied := *row
	return &copied, nil
}

// TransactionRepository is an in-memory transaction store.
type TransactionRepository struct {
	mu   sync.RWMutex
	rows map[uuid.UUID]*transaction.Transaction
}

func NewTransactionRepository() *TransactionRepository {
	return &TransactionRepository{rows: map[uuid.UUID]*transaction.Transaction{}}
}

func (r *TransactionRepository) FindByID(_ context.Context, userID, id uuid.UUID) (*transaction.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	row, ok := r.rows[id]
	if !ok || row.UserID != userID {
		return nil, errs.NotFound("transaction %s not found", id)
	}
	copied := *row
	return &copied, nil
}

func (r *TransactionRepository) List(ctx context.Context, userID uuid.UUID, filter *transaction.TransactionFilter) ([]*transaction.Transaction, error) {
	rows, err := r.ListAll(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	if filter == nil {
		return rows, nil
	}
	if filter.Offset > 0 {
		if filter.Offset >= len(rows) {
			return nil, nil
		}
		rows = rows[filter.Offset:]
	}
	// One extra row past the page, matching the SQL reader, so callers
	// can detect whether another page exists.
	if filter.Limit > 0 && len(rows) > filter.Limit+1 {
		rows = rows[:filter.Limit+1]
	}
	return rows, nil
}

func (r *TransactionRepository) ListAll(_ context.Context, userID uuid.UUID, filter *transaction.TransactionFilter) ([]*transaction.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*transaction.Transaction
	for _, row := range r.rows {
		if row.UserID != userID || !matchesFilter(row, filter) {
			continue
		}
		copied := *row
		out = append(out, &copied)
	}
	// Newest first, matching the SQL reader's ordering.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].TransactionDate.Equal(out[j].TransactionDate) {
			return out[i].TransactionDate.After(out[j].TransactionDate)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func matchesFilter(row *transaction.Transaction, filter *transaction.TransactionFilter) bool {
	if filter == nil {
		return true
	}
	if filter.AccountID != nil && row.AccountID != *filter.AccountID {
		return false
	}
	if filter.CategoryID != nil && row.CategoryID != *filter.CategoryID {
		return false
	}
	if filter.Type != nil && row.Type != *filter.Type {
		return false
	}
	if filter.DateFrom != nil && row.TransactionDate.Before(*filter.DateFrom) {
		return false
	}
	if filter.DateTo != nil && row.TransactionDate.After(*filter.DateTo) {
		return false
	}
	return true
}

func (r *TransactionRepository) ExistsDuplicate(_ context.Context, userID uuid.UUID, key transaction.DuplicateKey) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, row := range r.rows {
		if row.UserID == userID &&
			row.AccountID == key.AccountID &&
			row.TransactionDate.Equal(key.TransactionDate) &&
			row.Amount.Equal(key.Amount) &&
			transaction.NormalizeDescription(row.Notes) == key.NormalizedNotes {
			return true, nil
		}
	}
	return false, nil
}

func (r *TransactionRepository) Insert(_ context.Context, create *transaction.TransactionCreate) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := uuid.Must(uuid.NewV4())
	row := &transaction.Transaction{
		ID: id, UserID: create.UserID, AccountID: create.AccountID,
		CategoryID: create.CategoryID, Type: create.Type, Amount: create.Amount,
		TransactionDate: create.TransactionDate, Cleared: create.Cleared,
		Recurring: create.Recurring, Tags: pq.StringArray(create.Tags),
		Notes: create.Notes, CreatedAt: time.Now(),
	}
	if create.TransferAccountID != nil {
		row.TransferAccountID = uuid.NullUUID{UUID: *create.TransferAccountID, Valid: true}
	}
	r.rows[id] = row
	return id, nil
}

func (r *TransactionRepository) Update(_ context.Context, row *transaction.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.rows[row.ID]
	if !ok || stored.UserID != row.UserID {
		return errs.NotFound("transaction %s not found", row.ID)
	}
	copied := *row
	r.rows[row.ID] = &copied
	return nil
}

func (r *TransactionRepository) Delete(_ context.Context, userID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok || row.UserID != userID {
		return errs.NotFound("transaction %s not found", id)
	}
	delete(r.rows, id)
	return nil
}

// Len reports the number of stored rows.
func (r *TransactionRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rows)
}

// BillRepository is an in-memory bill and payment store.
type BillRepository struct {
	mu       sync.RWMutex
	rows     map[uuid.UUID]*bill.Bill
	payments []*bill.Payment
}

func NewBillRepository() *BillRepository {
	return &BillRepository{rows: map[uuid.UUID]*bill.Bill{}}
}

func (r *BillRepository) Seed(row bill.Bill) uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	if row.ID == uuid.Nil {
		row.ID = uuid.Must(uuid.NewV4())
	}
	if row.Status == "" {
		row.Status = bill.StatusActive
	}
	r.rows[row.ID] = &row
	return row.ID
}

func (r *BillRepository) FindByID(_ context.Context, userID, id uuid.UUID) (*bill.Bill, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.findLocked(userID, id)
}

func (r *BillRepository) findLocked(userID, id uuid.UUID) (*bill.Bill, error) {
	row, ok := r.rows[id]
	if !ok || row.UserID != userID {
		return nil, errs.NotFound("bill %s not found", id)
	}
	copied := *row
	return &copied, nil
}

func (r *BillRepository) List(_ context.Context, userID uuid.UUID, filter *bill.BillFilter) ([]*bill.Bill, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*bill.Bill
	for _, row := range r.rows {
		if row.UserID != userID {
			continue
		}
		if filter != nil && filter.Status != nil && row.Status != *filter.Status {
			continue
		}
		if filter != nil && filter.CategoryID != nil && row.CategoryID != *filter.CategoryID {
			continue
		}
		copied := *row
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}

func (r *BillRepository) DueWithin(_ context.Context, userID uuid.UUID, from, to time.Time, limit int) ([]*bill.Bill, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*bill.Bill
	for _, row := range r.rows {
		if row.UserID == userID && row.Status == bill.StatusActive &&
			!row.DueDate.Before(from) && !row.DueDate.After(to) {
			copied := *row
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *BillRepository) Overdue(_ context.Context, userID uuid.UUID, limit int) ([]*bill.Bill, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*bill.Bill
	for _, row := range r.rows {
		if row.UserID == userID && row.Status == bill.StatusOverdue {
			copied := *row
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *BillRepository) Payments(_ context.Context, userID, billID uuid.UUID, filter *bill.PaymentFilter) ([]*bill.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	owner, ok := r.rows[billID]
	if !ok || owner.UserID != userID {
		return nil, nil
	}
	var out []*bill.Payment
	for _, p := range r.payments {
		if p.BillID != billID {
			continue
		}
		if filter != nil && filter.From != nil && p.PaidAt.Before(*filter.From) {
			continue
		}
		if filter != nil && filter.To != nil && p.PaidAt.After(*filter.To) {
			continue
		}
		copied := *p
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PaidAt.Before(out[j].PaidAt) })
	return out, nil
}

func (r *BillRepository) PaymentsBetween(_ context.Context, userID uuid.UUID, from, to time.Time) ([]*bill.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*bill.Payment
	for _, p := range r.payments {
		owner, ok := r.rows[p.BillID]
		if !ok || owner.UserID != userID {
			continue
		}
		if !p.PaidAt.Before(from) && p.PaidAt.Before(to) {
			copied := *p
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PaidAt.Before(out[j].PaidAt) })
	return out, nil
}

func (r *BillRepository) DueBetween(_ context.Context, userID uuid.UUID, from, to time.Time) ([]*bill.Bill, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*bill.Bill
	for _, row := range r.rows {
		if row.UserID == userID && !row.DueDate.Before(from) && row.DueDate.Before(to) {
			copied := *row
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}

func (r *BillRepository) HasPayments(_ context.Context, billID uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.payments {
		if p.BillID == billID {
			return true, nil
		}
	}
	return false, nil
}

func (r *BillRepository) ActiveDueBefore(_ context.Context, cutoff time.Time) ([]*bill.Bill, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*bill.Bill
	for _, row := range r.rows {
		if row.Status == bill.StatusActive && row.DueDate.Before(cutoff) {
			copied := *row
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *BillRepository) FindByIDForUpdate(_ context.Context, userID, id uuid.UUID) (*bill.Bill, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.findLocked(userID, id)
}

func (r *BillRepository) Insert(_ context.Context, create *bill.BillCreate) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := uuid.Must(uuid.NewV4())
	r.rows[id] = &bill.Bill{
		ID: id, UserID: create.UserID, CategoryID: create.CategoryID,
		Name: create.Name, Amount: create.Amount, DueDate: create.DueDate,
		Frequency: create.Frequency, Status: bill.StatusActive,
		ReminderDays: create.ReminderDays, Recurring: create.Recurring,
		Notes: create.Notes, CreatedAt: time.Now(),
	}
	return id, nil
}

func (r *BillRepository) UpdateSchedule(_ context.Context, id uuid.UUID, dueDate time.Time, status bill.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return errs.NotFound("bill %s not found", id)
	}
	row.DueDate = dueDate
	row.Status = status
	return nil
}

func (r *BillRepository) UpdateStatus(_ context.Context, id uuid.UUID, status bill.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return errs.NotFound("bill %s not found", id)
	}
	row.Status = status
	return nil
}

func (r *BillRepository) MarkOverdueIfActive(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	// A bill deleted since the caller's read matches no row, like the SQL
	// writer's conditional update.
	if row, ok := r.rows[id]; ok && row.Status == bill.StatusActive {
		row.Status = bill.StatusOverdue
	}
	return nil
}

func (r *BillRepository) InsertPayment(_ context.Context, create *bill.PaymentCreate) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := uuid.Must(uuid.NewV4())
	payment := &bill.Payment{
		ID: id, BillID: create.BillID, Amount: create.Amount, PaidAt: create.PaidAt,
		Notes: create.Notes, CreatedAt: time.Now(),
	}
	if create.TransactionID != nil {
		payment.TransactionID = uuid.NullUUID{UUID: *create.TransactionID, Valid: true}
	}
	r.payments = append(r.payments, payment)
	return id, nil
}

func (r *BillRepository) Delete(_ context.Context, userID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok || row.UserID != userID {
		return errs.NotFound("bill %s not found", id)
	}
	delete(r.rows, id)
	return nil
}

// RateRepository is an in-memory exchange rate store.
type RateRepository struct {
	mu   sync.RWMutex
	rows []*rate.Rate
}

func NewRateRepository() *RateRepository {
	return &RateRepository{}
}

func (r *RateRepository) Seed(row rate.Rate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, &row)
}

func (r *RateRepository) FindOnOrBefore(_ context.Context, from, to string, date time.Time) (*rate.Rate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var best *rate.Rate
	for _, row := range r.rows {
		if row.FromCurrency != from || row.ToCurrency != to || row.RateDate.After(date) {
			continue
		}
		if best == nil || row.RateDate.After(best.RateDate) {
			best = row
		}
	}
	if best == nil {
		return nil, errs.NotFound("no rate for %s/%s on or before %s", from, to, date.Format("2006-01-02"))
	}
	copied := *best
	return &copied, nil
}

func (r *RateRepository) Series(_ context.Context, fromCurrency, toCurrency string, from, to time.Time) ([]*rate.Rate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*rate.Rate
	for _, row := range r.rows {
		if row.FromCurrency == fromCurrency && row.ToCurrency == toCurrency &&
			!row.RateDate.Before(from) && !row.RateDate.After(to) {
			copied := *row
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RateDate.Before(out[j].RateDate) })
	return out, nil
}

func (r *RateRepository) Upsert(_ context.Context, row *rate.Rate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.rows {
		if existing.FromCurrency == row.FromCurrency && existing.ToCurrency == row.ToCurrency &&
			existing.RateDate.Equal(row.RateDate) {
			copied := *row
			r.rows[i] = &copied
			return nil
		}
	}
	copied := *row
	r.rows = append(r.rows, &copied)
	return nil
}

// Len reports the number of stored rates.
func (r *RateRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rows)
}

var (
	_ account.IWriter     = (*AccountRepository)(nil)
	_ category.IReader    = (*CategoryRepository)(nil)
	_ transaction.IWriter = (*TransactionRepository)(nil)
	_ bill.IWriter        = (*BillRepository)(nil)
	_ rate.IWriter        = (*RateRepository)(nil)
)
