package transaction

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/carson-networks/ledger-server/internal/service"
)

type mockTransactionImporter struct {
	mock.Mock
}

func (m *mockTransactionImporter) Import(ctx context.Context, userID uuid.UUID, rows [][]string, mapping service.ImportMapping, options service.ImportOptions) (*service.ImportReport, error) {
	args := m.Called(ctx, userID, rows, mapping, options)
	report, _ := args.Get(0).(*service.ImportReport)
	return report, args.Error(1)
}

func newImportTestAPI(t *testing.T, svc transactionImporter) humatest.TestAPI {
	t.Helper()
	_, api := humatest.New(t)
	NewImportTransactionsHandler(svc).Register(api)
	return api
}

func TestHTTP_ImportTransactions(t *testing.T) {
	userID := uuid.Must(uuid.NewV4())
	accountID := uuid.Must(uuid.NewV4())
	categoryID := uuid.Must(uuid.NewV4())
	createdID := uuid.Must(uuid.NewV4())

	rows := [][]string{
		{"2025-01-05", "1200.00", "Paycheck"},
		{"bad-date", "45.50", "Groceries"},
	}

	mockSvc := new(mockTransactionImporter)
	mockSvc.On("Import", mock.Anything, userID, rows,
		service.ImportMapping{DateColumn: 0, AmountColumn: 1, DescriptionColumn: 2, TypeColumn: -1},
		mock.MatchedBy(func(o service.ImportOptions) bool {
			return o.AccountID == accountID && o.CategoryID == categoryID && o.SkipDuplicates
		})).
		Return(&service.ImportReport{
			Created: []uuid.UUID{createdID},
			Errors:  []service.ImportRowError{{Row: 1, Err: "invalid date"}},
		}, nil)

	resp := newImportTestAPI(t, mockSvc).Post("/v1/transactions/import",
		"X-User-ID: "+userID.String(),
		ImportTransactionsBody{
			Rows:           rows,
			Mapping:        ImportMapping{DateColumn: 0, AmountColumn: 1, DescriptionColumn: 2, TypeColumn: -1},
			AccountID:      accountID.String(),
			CategoryID:     categoryID.String(),
			SkipDuplicates: true,
		})

	assert.Equal(t, http.StatusOK, resp.Code)
	var body ImportTransactionsResponse
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, []string{createdID.String()}, body.CreatedIDs)
	assert.Len(t, body.Errors, 1)
	assert.Equal(t, 1, body.Errors[0].Row)
	mockSvc.AssertExpectations(t)
}

func TestHTTP_ImportTransactions_BadAccountID(t *testing.T) {
	mockSvc := new(mockTransactionImporter)

	resp := newImportTestAPI(t, mockSvc).Post("/v1/transactions/import",
		"X-User-ID: "+uuid.Must(uuid.NewV4()).String(),
		ImportTransactionsBody{
			Rows:       [][]string{{"2025-01-05", "10"}},
			Mapping:    ImportMapping{DateColumn: 0, AmountColumn: 1, DescriptionColumn: -1, TypeColumn: -1},
			AccountID:  "not-a-uuid",
			CategoryID: uuid.Must(uuid.NewV4()).String(),
		})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	mockSvc.AssertNotCalled(t, "Import")
}
