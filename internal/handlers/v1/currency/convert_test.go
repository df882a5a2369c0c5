package currency

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/carson-networks/ledger-server/internal/errs"
)

type mockConverter struct {
	mock.Mock
}

func (m *mockConverter) Quote(ctx context.Context, amount decimal.Decimal, from, to string, date time.Time) (decimal.Decimal, decimal.Decimal, error) {
	args := m.Called(ctx, amount, from, to, date)
	converted, _ := args.Get(0).(decimal.Decimal)
	rate, _ := args.Get(1).(decimal.Decimal)
	return converted, rate, args.Error(2)
}

func newConvertTestAPI(t *testing.T, svc converter) humatest.TestAPI {
	t.Helper()
	_, api := humatest.New(t)
	NewConvertHandler(svc).Register(api)
	return api
}

func TestHTTP_Convert(t *testing.T) {
	date := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

	mockSvc := new(mockConverter)
	// One resolution serves both the converted amount and the rate.
	mockSvc.On("Quote", mock.Anything, decimal.RequireFromString("100"), "USD", "EUR", date).
		Return(decimal.RequireFromString("92"), decimal.RequireFromString("0.92"), nil).
		Once()

	resp := newConvertTestAPI(t, mockSvc).Get(
		"/v1/currency/convert?amount=100&from=USD&to=EUR&date=2025-01-15T00:00:00Z")

	assert.Equal(t, http.StatusOK, resp.Code)
	var body ConvertResponseBody
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "92", body.Converted)
	assert.Equal(t, "0.92", body.Rate)
	mockSvc.AssertExpectations(t)
}

func TestHTTP_Convert_NoRateOnOrBefore(t *testing.T) {
	date := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	mockSvc := new(mockConverter)
	mockSvc.On("Quote", mock.Anything, decimal.RequireFromString("100"), "USD", "EUR", date).
		Return(decimal.Zero, decimal.Zero, errs.NotFound("no rate for USD/EUR on or before 2025-01-01"))

	resp := newConvertTestAPI(t, mockSvc).Get(
		"/v1/currency/convert?amount=100&from=USD&to=EUR&date=2025-01-01T00:00:00Z")

	assert.Equal(t, http.StatusNotFound, resp.Code)
	mockSvc.AssertExpectations(t)
}

func TestHTTP_Convert_BadAmount(t *testing.T) {
	mockSvc := new(mockConverter)

	resp := newConvertTestAPI(t, mockSvc).Get(
		"/v1/currency/convert?amount=heaps&from=USD&to=EUR")

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	mockSvc.AssertNotCalled(t, "Quote")
}
