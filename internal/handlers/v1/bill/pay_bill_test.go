package bill

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
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/ledger-server/internal/errs"
	"github.com/carson-networks/ledger-server/internal/service"
	"github.com/carson-networks/ledger-server/internal/storage/bill"
)

type mockBillPayer struct {
	mock.Mock
}

func (m *mockBillPayer) MarkPaid(ctx context.Context, userID, billID uuid.UUID, input service.MarkPaidInput) (*service.PaymentResult, error) {
	args := m.Called(ctx, userID, billID, input)
	result, _ := args.Get(0).(*service.PaymentResult)
	return result, args.Error(1)
}

func newPayTestAPI(t *testing.T, svc billPayer) humatest.TestAPI {
	t.Helper()
	_, api := humatest.New(t)
	NewPayBillHandler(svc).Register(api)
	return api
}

// -- parsePayBillInput unit tests --

func TestParsePayBillInput_Defaults(t *testing.T) {
	parsed, err := parsePayBillInput(&PayBillInput{Body: PayBillBody{}})
	assert.NoError(t, err)
	assert.Nil(t, parsed.Amount)
	assert.True(t, parsed.PaidAt.IsZero())
	assert.False(t, parsed.CreateTransaction)
}

func TestParsePayBillInput_Full(t *testing.T) {
	accountID := uuid.Must(uuid.NewV4())

	parsed, err := parsePayBillInput(&PayBillInput{Body: PayBillBody{
		Amount:            "118.50",
		PaidAt:            "2025-01-08T09:00:00Z",
		CreateTransaction: true,
		AccountID:         accountID.String(),
	}})
	assert.NoError(t, err)
	require.NotNil(t, parsed.Amount)
	assert.True(t, parsed.Amount.Equal(decimal.RequireFromString("118.50")))
	assert.Equal(t, time.Date(2025, 1, 8, 9, 0, 0, 0, time.UTC), parsed.PaidAt)
	assert.True(t, parsed.CreateTransaction)
	assert.Equal(t, accountID, parsed.AccountID)
}

func TestParsePayBillInput_ExplicitZeroAmount(t *testing.T) {
	parsed, err := parsePayBillInput(&PayBillInput{Body: PayBillBody{Amount: "0"}})
	assert.NoError(t, err)
	require.NotNil(t, parsed.Amount)
	assert.True(t, parsed.Amount.IsZero())
}

func TestParsePayBillInput_BadAmount(t *testing.T) {
	_, err := parsePayBillInput(&PayBillInput{Body: PayBillBody{Amount: "plenty"}})
	assert.Error(t, err)
}

// -- HTTP integration tests --

func TestHTTP_PayBill_Recurring(t *testing.T) {
	userID := uuid.Must(uuid.NewV4())
	billID := uuid.Must(uuid.NewV4())
	paymentID := uuid.Must(uuid.NewV4())
	nextDue := time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC)

	mockSvc := new(mockBillPayer)
	mockSvc.On("MarkPaid", mock.Anything, userID, billID, mock.Anything).
		Return(&service.PaymentResult{
			PaymentID:   paymentID,
			Status:      bill.StatusActive,
			NextDueDate: &nextDue,
		}, nil)

	resp := newPayTestAPI(t, mockSvc).Post("/v1/bills/"+billID.String()+"/payments",
		"X-User-ID: "+userID.String(), PayBillBody{Amount: "120"})

	assert.Equal(t, http.StatusCreated, resp.Code)
	var body PayBillResponse
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, paymentID.String(), body.PaymentID)
	assert.Equal(t, "active", body.Status)
	assert.Equal(t, nextDue.Format(time.RFC3339), body.NextDueDate)
	assert.Empty(t, body.TransactionID)
	mockSvc.AssertExpectations(t)
}

func TestHTTP_PayBill_WithTransaction(t *testing.T) {
	userID := uuid.Must(uuid.NewV4())
	billID := uuid.Must(uuid.NewV4())
	accountID := uuid.Must(uuid.NewV4())
	txID := uuid.Must(uuid.NewV4())

	mockSvc := new(mockBillPayer)
	mockSvc.On("MarkPaid", mock.Anything, userID, billID, mock.MatchedBy(func(in service.MarkPaidInput) bool {
		return in.CreateTransaction && in.AccountID == accountID
	})).Return(&service.PaymentResult{
		PaymentID:     uuid.Must(uuid.NewV4()),
		TransactionID: &txID,
		Status:        bill.StatusPaid,
	}, nil)

	resp := newPayTestAPI(t, mockSvc).Post("/v1/bills/"+billID.String()+"/payments",
		"X-User-ID: "+userID.String(),
		PayBillBody{CreateTransaction: true, AccountID: accountID.String()})

	assert.Equal(t, http.StatusCreated, resp.Code)
	var body PayBillResponse
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, txID.String(), body.TransactionID)
	assert.Equal(t, "paid", body.Status)
	assert.Empty(t, body.NextDueDate)
	mockSvc.AssertExpectations(t)
}

func TestHTTP_PayBill_AlreadyPaid(t *testing.T) {
	userID := uuid.Must(uuid.NewV4())
	billID := uuid.Must(uuid.NewV4())

	mockSvc := new(mockBillPayer)
	mockSvc.On("MarkPaid", mock.Anything, userID, billID, mock.Anything).
		Return((*service.PaymentResult)(nil), errs.InvalidState("bill is already paid"))

	resp := newPayTestAPI(t, mockSvc).Post("/v1/bills/"+billID.String()+"/payments",
		"X-User-ID: "+userID.String(), PayBillBody{})

	assert.Equal(t, http.StatusConflict, resp.Code)
	mockSvc.AssertExpectations(t)
}

func TestHTTP_PayBill_MissingUser(t *testing.T) {
	mockSvc := new(mockBillPayer)

	resp := newPayTestAPI(t, mockSvc).Post("/v1/bills/"+uuid.Must(uuid.NewV4()).String()+"/payments",
		PayBillBody{})

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	mockSvc.AssertNotCalled(t, "MarkPaid")
}
