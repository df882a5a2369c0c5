package transaction

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/carson-networks/ledger-server/internal/errs"
	"github.com/carson-networks/ledger-server/internal/posting"
	"github.com/carson-networks/ledger-server/internal/service"
)

type mockTransactionCreator struct {
	mock.Mock
}

func (m *mockTransactionCreator) Create(ctx context.Context, userID uuid.UUID, input service.CreateTransactionInput) (*service.Transaction, error) {
	args := m.Called(ctx, userID, input)
	created, _ := args.Get(0).(*service.Transaction)
	return created, args.Error(1)
}

func newCreateTestAPI(t *testing.T, svc transactionCreator) humatest.TestAPI {
	t.Helper()
	_, api := humatest.New(t)
	NewCreateTransactionHandler(svc).Register(api)
	return api
}

func validBody() CreateTransactionBody {
	return CreateTransactionBody{
		AccountID:       uuid.Must(uuid.NewV4()).String(),
		CategoryID:      uuid.Must(uuid.NewV4()).String(),
		Type:            "expense",
		Amount:          "42.50",
		TransactionDate: "2025-06-01T12:00:00Z",
		Notes:           "Groceries",
	}
}

// -- parseCreateTransactionInput unit tests --

func TestParseCreateTransactionInput_Valid(t *testing.T) {
	body := validBody()
	parsed, err := parseCreateTransactionInput(&CreateTransactionInput{Body: body})
	assert.NoError(t, err)
	assert.Equal(t, posting.TypeExpense, parsed.Type)
	assert.True(t, parsed.Amount.Equal(decimal.RequireFromString("42.50")))
	assert.Nil(t, parsed.TransferAccountID)
	assert.Equal(t, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), parsed.TransactionDate)
}

func TestParseCreateTransactionInput_Transfer(t *testing.T) {
	body := validBody()
	body.Type = "transfer"
	target := uuid.Must(uuid.NewV4())
	body.TransferAccountID = target.String()

	parsed, err := parseCreateTransactionInput(&CreateTransactionInput{Body: body})
	assert.NoError(t, err)
	assert.NotNil(t, parsed.TransferAccountID)
	assert.Equal(t, target, *parsed.TransferAccountID)
}

func TestParseCreateTransactionInput_Invalid(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*CreateTransactionBody)
	}{
		{"bad account id", func(b *CreateTransactionBody) { b.AccountID = "not-a-uuid" }},
		{"bad type", func(b *CreateTransactionBody) { b.Type = "refund" }},
		{"bad amount", func(b *CreateTransactionBody) { b.Amount = "lots" }},
		{"bad date", func(b *CreateTransactionBody) { b.TransactionDate = "yesterday" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body := validBody()
			tc.mutate(&body)
			_, err := parseCreateTransactionInput(&CreateTransactionInput{Body: body})
			assert.Error(t, err)
		})
	}
}

// -- HTTP integration tests --

func TestHTTP_CreateTransaction(t *testing.T) {
	userID := uuid.Must(uuid.NewV4())
	txID := uuid.Must(uuid.NewV4())
	body := validBody()

	mockSvc := new(mockTransactionCreator)
	mockSvc.On("Create", mock.Anything, userID, mock.MatchedBy(func(in service.CreateTransactionInput) bool {
		return in.Type == posting.TypeExpense && in.Amount.Equal(decimal.RequireFromString("42.50"))
	})).Return(&service.Transaction{
		ID:         txID,
		AccountID:  uuid.FromStringOrNil(body.AccountID),
		CategoryID: uuid.FromStringOrNil(body.CategoryID),
		Type:       posting.TypeExpense,
		Amount:     decimal.RequireFromString("42.50"),
	}, nil)

	resp := newCreateTestAPI(t, mockSvc).Post("/v1/transactions",
		"X-User-ID: "+userID.String(), body)

	assert.Equal(t, http.StatusCreated, resp.Code)
	var created Transaction
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, txID.String(), created.ID)
	assert.Equal(t, "42.5", created.Amount)
	mockSvc.AssertExpectations(t)
}

func TestHTTP_CreateTransaction_InvalidStateConflict(t *testing.T) {
	userID := uuid.Must(uuid.NewV4())

	mockSvc := new(mockTransactionCreator)
	mockSvc.On("Create", mock.Anything, userID, mock.Anything).
		Return((*service.Transaction)(nil), errs.InvalidState("account is inactive"))

	resp := newCreateTestAPI(t, mockSvc).Post("/v1/transactions",
		"X-User-ID: "+userID.String(), validBody())

	assert.Equal(t, http.StatusConflict, resp.Code)
	mockSvc.AssertExpectations(t)
}

func TestHTTP_CreateTransaction_ForeignAccountNotFound(t *testing.T) {
	userID := uuid.Must(uuid.NewV4())

	mockSvc := new(mockTransactionCreator)
	mockSvc.On("Create", mock.Anything, userID, mock.Anything).
		Return((*service.Transaction)(nil), errs.NotFound("account not found"))

	resp := newCreateTestAPI(t, mockSvc).Post("/v1/transactions",
		"X-User-ID: "+userID.String(), validBody())

	assert.Equal(t, http.StatusNotFound, resp.Code)
	mockSvc.AssertExpectations(t)
}

func TestHTTP_CreateTransaction_MissingUser(t *testing.T) {
	mockSvc := new(mockTransactionCreator)

	resp := newCreateTestAPI(t, mockSvc).Post("/v1/transactions", validBody())

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	mockSvc.AssertNotCalled(t, "Create")
}
