package account

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/carson-networks/ledger-server/internal/errs"
	"github.com/carson-networks/ledger-server/internal/service"
)

type mockAccountCreator struct {
	mock.Mock
}

func (m *mockAccountCreator) Create(ctx context.Context, userID uuid.UUID, input service.CreateAccountInput) (*service.Account, error) {
	args := m.Called(ctx, userID, input)
	created, _ := args.Get(0).(*service.Account)
	return created, args.Error(1)
}

func newCreateTestAPI(t *testing.T, svc accountCreator) humatest.TestAPI {
	t.Helper()
	_, api := humatest.New(t)
	NewCreateAccountHandler(svc).Register(api)
	return api
}

// -- parseCreateAccountInput unit tests --

func TestParseCreateAccountInput_Defaults(t *testing.T) {
	input := &CreateAccountInput{
		Body: CreateAccountBody{Name: "Checking", Currency: "USD"},
	}

	parsed, err := parseCreateAccountInput(input)
	assert.NoError(t, err)
	assert.True(t, parsed.StartingBalance.IsZero())
	assert.Equal(t, "Checking", parsed.Name)
}

func TestParseCreateAccountInput_Balance(t *testing.T) {
	input := &CreateAccountInput{
		Body: CreateAccountBody{Name: "Savings", Currency: "EUR", StartingBalance: "1234.56"},
	}

	parsed, err := parseCreateAccountInput(input)
	assert.NoError(t, err)
	assert.True(t, parsed.StartingBalance.Equal(decimal.RequireFromString("1234.56")))
}

func TestParseCreateAccountInput_InvalidBalance(t *testing.T) {
	input := &CreateAccountInput{
		Body: CreateAccountBody{Name: "Savings", Currency: "EUR", StartingBalance: "lots"},
	}

	_, err := parseCreateAccountInput(input)
	assert.Error(t, err)
}

// -- HTTP integration tests --

func TestHTTP_CreateAccount(t *testing.T) {
	userID := uuid.Must(uuid.NewV4())
	accountID := uuid.Must(uuid.NewV4())

	mockSvc := new(mockAccountCreator)
	mockSvc.On("Create", mock.Anything, userID, mock.MatchedBy(func(in service.CreateAccountInput) bool {
		return in.Name == "Checking" && in.Currency == "USD" && in.StartingBalance.Equal(decimal.RequireFromString("250.75"))
	})).Return(&service.Account{
		ID:       accountID,
		Name:     "Checking",
		Currency: "USD",
		Balance:  decimal.RequireFromString("250.75"),
		Active:   true,
	}, nil)

	resp := newCreateTestAPI(t, mockSvc).Post("/v1/accounts",
		"X-User-ID: "+userID.String(),
		CreateAccountBody{Name: "Checking", Currency: "USD", StartingBalance: "250.75"},
	)

	assert.Equal(t, http.StatusCreated, resp.Code)
	var body Account
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, accountID.String(), body.ID)
	assert.Equal(t, "250.75", body.Balance)
	mockSvc.AssertExpectations(t)
}

func TestHTTP_CreateAccount_MissingUser(t *testing.T) {
	mockSvc := new(mockAccountCreator)

	resp := newCreateTestAPI(t, mockSvc).Post("/v1/accounts",
		CreateAccountBody{Name: "Checking", Currency: "USD"},
	)

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	mockSvc.AssertNotCalled(t, "Create")
}

func TestHTTP_CreateAccount_ValidationError(t *testing.T) {
	userID := uuid.Must(uuid.NewV4())

	mockSvc := new(mockAccountCreator)
	mockSvc.On("Create", mock.Anything, userID, mock.Anything).
		Return((*service.Account)(nil), errs.Validation("currency must be a 3-letter code"))

	resp := newCreateTestAPI(t, mockSvc).Post("/v1/accounts",
		"X-User-ID: "+userID.String(),
		CreateAccountBody{Name: "Checking", Currency: "US"},
	)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	mockSvc.AssertExpectations(t)
}
