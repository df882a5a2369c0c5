package storage

import (
	"github.com/stephenafamo/bob"

	"github.com/carson-networks/ledger-server/internal/storage/account"
	"github.com/carson-networks/ledger-server/internal/storage/bill"
	"github.com/carson-networks/ledger-server/internal/storage/category"
	"github.com/carson-networks/ledger-server/internal/storage/rate"
	"github.com/carson-networks/ledger-server/internal/storage/transaction"
)

type Reader struct {
	Accounts     account.IReader
	Categories   category.IReader
	Transactions transaction.IReader
	Bills        bill.IReader
	Rates        rate.IReader
}

func NewReader(exec bob.Executor) *Reader {
	return &Reader{
		Accounts:     account.NewReader(exec),
		Categories:   category.NewReader(exec),
		Transactions: transaction.NewReader(exec),
		Bills:        bill.NewReader(exec),
		Rates:        rate.NewReader(exec),
	}
}
