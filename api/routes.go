package api

import (
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/ledger-server/internal/handlers/v1/account"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/bill"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/currency"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/status"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/transaction"
	"github.com/carson-networks/ledger-server/internal/logging"
	"github.com/carson-networks/ledger-server/internal/service"
)

type Rest struct {
	Logger  *logrus.Logger
	Port    string
	Service *service.Service
}

func (r *Rest) Serve() {
	mux := http.NewServeMux()
	humaAPI := humago.New(mux, huma.DefaultConfig("ledger-server", "1.0.0"))

	status.NewHandler().Register(humaAPI)

	account.NewCreateAccountHandler(r.Service.Account).Register(humaAPI)
	account.NewListAccountsHandler(r.Service.Account).Register(humaAPI)
	account.NewNetWorthHandler(r.Service.Account).Register(humaAPI)
	account.NewGetAccountHandler(r.Service.Account).Register(humaAPI)
	account.NewDeactivateAccountHandler(r.Service.Account).Register(humaAPI)

	transaction.NewCreateTransactionHandler(r.Service.Ledger).Register(humaAPI)
	transaction.NewListTransactionsHandler(r.Service.Ledger).Register(humaAPI)
	transaction.NewTransactionStatisticsHandler(r.Service.Ledger).Register(humaAPI)
	transaction.NewBulkTransactionsHandler(r.Service.Ledger).Register(humaAPI)
	transaction.NewImportTransactionsHandler(r.Service.Ledger).Register(humaAPI)
	transaction.NewGetTransactionHandler(r.Service.Ledger).Register(humaAPI)
	transaction.NewUpdateTransactionHandler(r.Service.Ledger).Register(humaAPI)
	transaction.NewDeleteTransactionHandler(r.Service.Ledger).Register(humaAPI)

	bill.NewCreateBillHandler(r.Service.Bill).Register(humaAPI)
	bill.NewListBillsHandler(r.Service.Bill).Register(humaAPI)
	bill.NewForecastBillsHandler(r.Service.Bill).Register(humaAPI)
	bill.NewBillStatisticsHandler(r.Service.Bill).Register(humaAPI)
	bill.NewGetBillHandler(r.Service.Bill).Register(humaAPI)
	bill.NewPayBillHandler(r.Service.Bill).Register(humaAPI)
	bill.NewDuplicateBillHandler(r.Service.Bill).Register(humaAPI)
	bill.NewRetireBillHandler(r.Service.Bill).Register(humaAPI)
	bill.NewBillPaymentsHandler(r.Service.Bill).Register(humaAPI)

	currency.NewConvertHandler(r.Service.Currency).Register(humaAPI)
	currency.NewRefreshHandler(r.Service.Currency).Register(humaAPI)
	currency.NewHistoryHandler(r.Service.Currency).Register(humaAPI)

	server := http.Server{
		Addr:              ":" + r.Port,
		Handler:           logging.Middleware(r.Logger, mux),
		ReadTimeout:       time.Duration(30) * time.Second,
		WriteTimeout:      time.Duration(30) * time.Second,
		IdleTimeout:       time.Duration(10) * time.Second,
		ReadHeaderTimeout: time.Duration(10) * time.Second,
	}

	r.Logger.Info("HttpServer.Serve.listening")
	err := server.ListenAndServe()
	if err != nil {
		r.Logger.WithError(err).Error("HttpServer.Serve.listen error")
	}
	r.Logger.Info("HttpServer.Serve.shutting down")
}
