package transaction

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/carson-networks/ledger-server/internal/posting"
	"github.com/carson-networks/ledger-server/internal/service"
)

type mockTransactionLister struct {
	mock.Mock
}

func (m *mockTransactionLister) List(ctx context.Context, userID uuid.UUID, filter *service.TransactionFilter, cursor *service.TransactionCursor) ([]service.Transaction, *service.TransactionCursor, error) {
	args := m.Called(ctx, userID, filter, cursor)
	txs, _ := args.Get(0).([]service.Transaction)
	next, _ := args.Get(1).(*service.TransactionCursor)
	return txs, next, args.Error(2)
}

func newListTestAPI(t *testing.T, svc transactionLister) humatest.TestAPI {
	t.Helper()
	_, api := humatest.New(t)
	NewListTransactionsHandler(svc).Register(api)
	return api
}

// -- parseFilterParams unit tests --

func TestParseFilterParams_Empty(t *testing.T) {
	filter, err := parseFilterParams(FilterParams{})
	assert.NoError(t, err)
	assert.Nil(t, filter)
}

func TestParseFilterParams_Full(t *testing.T) {
	accountID := uuid.Must(uuid.NewV4())

	filter, err := parseFilterParams(FilterParams{
		AccountID: accountID.String(),
		Type:      "income",
		DateFrom:  "2025-01-01T00:00:00Z",
	})
	assert.NoError(t, err)
	assert.NotNil(t, filter)
	assert.Equal(t, accountID, *filter.AccountID)
	assert.Equal(t, posting.TypeIncome, *filter.Type)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), *filter.DateFrom)
	assert.Nil(t, filter.CategoryID)
	assert.Nil(t, filter.DateTo)
}

func TestParseFilterParams_BadType(t *testing.T) {
	_, err := parseFilterParams(FilterParams{Type: "windfall"})
	assert.Error(t, err)
}

// -- HTTP integration tests --

func TestHTTP_ListTransactions_SinglePage(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	userID := uuid.Must(uuid.NewV4())
	txID := uuid.Must(uuid.NewV4())

	mockSvc := new(mockTransactionLister)
	mockSvc.On("List", mock.Anything, userID, (*service.TransactionFilter)(nil), (*service.TransactionCursor)(nil)).
		Return([]service.Transaction{
			{
				ID:              txID,
				AccountID:       uuid.Must(uuid.NewV4()),
				CategoryID:      uuid.Must(uuid.NewV4()),
				Type:            posting.TypeExpense,
				Amount:          decimal.RequireFromString("10.00"),
				TransactionDate: now,
				CreatedAt:       now,
			},
		}, (*service.TransactionCursor)(nil), nil)

	resp := newListTestAPI(t, mockSvc).Get("/v1/transactions", "X-User-ID: "+userID.String())

	assert.Equal(t, http.StatusOK, resp.Code)
	var body ListTransactionsResponseBody
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Transactions, 1)
	assert.Equal(t, txID.String(), body.Transactions[0].ID)
	assert.Nil(t, body.NextCursor)
	mockSvc.AssertExpectations(t)
}

func TestHTTP_ListTransactions_MultiplePages(t *testing.T) {
	userID := uuid.Must(uuid.NewV4())

	mockSvc := new(mockTransactionLister)
	mockSvc.On("List", mock.Anything, userID, (*service.TransactionFilter)(nil), mock.MatchedBy(func(c *service.TransactionCursor) bool {
		return c != nil && c.Position == 0 && c.Limit == 2
	})).Return([]service.Transaction{
		{ID: uuid.Must(uuid.NewV4()), Type: posting.TypeIncome, Amount: decimal.RequireFromString("5")},
		{ID: uuid.Must(uuid.NewV4()), Type: posting.TypeIncome, Amount: decimal.RequireFromString("5")},
	}, &service.TransactionCursor{Position: 2, Limit: 2}, nil)

	resp := newListTestAPI(t, mockSvc).Get("/v1/transactions?limit=2", "X-User-ID: "+userID.String())

	assert.Equal(t, http.StatusOK, resp.Code)
	var body ListTransactionsResponseBody
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Transactions, 2)
	assert.NotNil(t, body.NextCursor)
	assert.Equal(t, 2, body.NextCursor.Position)
	assert.Equal(t, 2, body.NextCursor.Limit)
	mockSvc.AssertExpectations(t)
}

func TestHTTP_ListTransactions_Filtered(t *testing.T) {
	userID := uuid.Must(uuid.NewV4())
	accountID := uuid.Must(uuid.NewV4())

	mockSvc := new(mockTransactionLister)
	mockSvc.On("List", mock.Anything, userID, mock.MatchedBy(func(f *service.TransactionFilter) bool {
		return f != nil && f.AccountID != nil && *f.AccountID == accountID && f.Type != nil && *f.Type == posting.TypeExpense
	}), (*service.TransactionCursor)(nil)).
		Return(([]service.Transaction)(nil), (*service.TransactionCursor)(nil), nil)

	resp := newListTestAPI(t, mockSvc).Get(
		"/v1/transactions?accountId="+accountID.String()+"&type=expense",
		"X-User-ID: "+userID.String())

	assert.Equal(t, http.StatusOK, resp.Code)
	var body ListTransactionsResponseBody
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Empty(t, body.Transactions)
	mockSvc.AssertExpectations(t)
}

func TestHTTP_ListTransactions_ServiceError(t *testing.T) {
	userID := uuid.Must(uuid.NewV4())

	mockSvc := new(mockTransactionLister)
	mockSvc.On("List", mock.Anything, userID, mock.Anything, mock.Anything).
		Return(([]service.Transaction)(nil), (*service.TransactionCursor)(nil), errors.New("database unavailable"))

	resp := newListTestAPI(t, mockSvc).Get("/v1/transactions", "X-User-ID: "+userID.String())

	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	mockSvc.AssertExpectations(t)
}
