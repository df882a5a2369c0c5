package transaction

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/handlers/v1/auth"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/httperr"
	"github.com/carson-networks/ledger-server/internal/logging"
	"github.com/carson-networks/ledger-server/internal/service"
)

// ImportTransactionsInput is the Huma input for importing parsed rows.
type ImportTransactionsInput struct {
	UserID string `header:"X-User-ID" doc:"Acting user UUID"`
	Body   ImportTransactionsBody
}

// ImportMapping maps row columns to transaction fields. -1 marks an
// absent column.
type ImportMapping struct {
	DateColumn        int `json:"dateColumn" doc:"Index of the date column"`
	AmountColumn      int `json:"amountColumn" doc:"Index of the amount column"`
	DescriptionColumn int `json:"descriptionColumn" doc:"Index of the description column, -1 if absent"`
	TypeColumn        int `json:"typeColumn" doc:"Index of the type column, -1 to derive type from the amount sign"`
}

// ImportTransactionsBody carries the pre-parsed rows and their mapping.
type ImportTransactionsBody struct {
	Rows           [][]string    `json:"rows" minItems:"1" doc:"Parsed CSV rows, header excluded"`
	Mapping        ImportMapping `json:"mapping" doc:"Column layout of the rows"`
	AccountID      string        `json:"accountId" doc:"Account every imported row posts against"`
	CategoryID     string        `json:"categoryId" doc:"Category every imported row lands in"`
	DateFormat     string        `json:"dateFormat,omitempty" doc:"Go reference layout for dates, default 2006-01-02"`
	SkipDuplicates bool          `json:"skipDuplicates,omitempty" doc:"Drop rows matching an existing transaction"`
}

// ImportRowError reports one rejected row.
type ImportRowError struct {
	Row   int    `json:"row" doc:"Zero-based row index"`
	Error string `json:"error" doc:"Why the row was rejected"`
}

// ImportTransactionsResponse summarizes the batch.
type ImportTransactionsResponse struct {
	CreatedIDs []string         `json:"createdIds" doc:"UUIDs of imported transactions"`
	Skipped    int              `json:"skipped" doc:"Rows dropped as duplicates"`
	Errors     []ImportRowError `json:"errors,omitempty" doc:"Per-row failures; they never abort the batch"`
}

// ImportTransactionsOutput is the Huma output for importing.
type ImportTransactionsOutput struct {
	Body ImportTransactionsResponse
}

// transactionImporter is the interface for importing rows.
type transactionImporter interface {
	Import(ctx context.Context, userID uuid.UUID, rows [][]string, mapping service.ImportMapping, options service.ImportOptions) (*service.ImportReport, error)
}

// ImportTransactionsHandler handles POST /v1/transactions/import.
type ImportTransactionsHandler struct {
	LedgerService transactionImporter
}

// NewImportTransactionsHandler creates a new ImportTransactionsHandler.
func NewImportTransactionsHandler(svc transactionImporter) *ImportTransactionsHandler {
	return &ImportTransactionsHandler{LedgerService: svc}
}

// Register registers the import endpoint with the Huma API.
func (h *ImportTransactionsHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "import-transactions",
		Method:      http.MethodPost,
		Path:        "/v1/transactions/import",
		Summary:     "Import transactions",
		Description: "Imports pre-parsed rows. Bad rows are reported per row and never abort the rest of the batch.",
		Tags:        []string{"Transactions"},
	}, h.handle)
}

func (h *ImportTransactionsHandler) handle(ctx context.Context, input *ImportTransactionsInput) (*ImportTransactionsOutput, error) {
	logData := logging.GetLogData(ctx)

	userID, err := auth.UserID(input.UserID)
	if err != nil {
		return nil, err
	}

	accountID, err := parseID(input.Body.AccountID, "accountId")
	if err != nil {
		return nil, err
	}
	categoryID, err := parseID(input.Body.CategoryID, "categoryId")
	if err != nil {
		return nil, err
	}

	mapping := service.ImportMapping{
		DateColumn:        input.Body.Mapping.DateColumn,
		AmountColumn:      input.Body.Mapping.AmountColumn,
		DescriptionColumn: input.Body.Mapping.DescriptionColumn,
		TypeColumn:        input.Body.Mapping.TypeColumn,
	}
	options := service.ImportOptions{
		AccountID:      accountID,
		CategoryID:     categoryID,
		DateFormat:     input.Body.DateFormat,
		SkipDuplicates: input.Body.SkipDuplicates,
	}

	var stopTimer func()
	if logData != nil {
		stopTimer = logData.AddTiming("importTransactionsMs")
	}
	report, err := h.LedgerService.Import(ctx, userID, input.Body.Rows, mapping, options)
	if stopTimer != nil {
		stopTimer()
	}
	if err != nil {
		return nil, httperr.From(err)
	}

	if logData != nil {
		logData.AddData("importedCount", len(report.Created))
		logData.AddData("skippedCount", report.Skipped)
		logData.AddData("errorCount", len(report.Errors))
	}

	out := ImportTransactionsResponse{
		CreatedIDs: make([]string, len(report.Created)),
		Skipped:    report.Skipped,
	}
	for i, id := range report.Created {
		out.CreatedIDs[i] = id.String()
	}
	for _, rowErr := range report.Errors {
		out.Errors = append(out.Errors, ImportRowError{Row: rowErr.Row, Error: rowErr.Err})
	}

	return &ImportTransactionsOutput{Body: out}, nil
}
