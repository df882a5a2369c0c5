package storage

import (
	"context"

	"github.com/stephenafamo/bob"

	"github.com/carson-networks/ledger-server/internal/storage/account"
	"github.com/carson-networks/ledger-server/internal/storage/bill"
	"github.com/carson-networks/ledger-server/internal/storage/category"
	"github.com/carson-networks/ledger-server/internal/storage/rate"
	"github.com/carson-networks/ledger-server/internal/storage/transaction"
)

// Writer bundles the per-entity writers bound to one database transaction.
// The fields are interfaces so actions can be exercised against fakes.
type Writer struct {
	tx           bob.Tx
	Accounts     account.IWriter
	Categories   category.IReader
	Transactions transaction.IWriter
	Bills        bill.IWriter
	Rates        rate.IWriter
}

func NewWriter(tx bob.Tx) *Writer {
	return &Writer{
		tx:           tx,
		Accounts:     account.NewWriter(tx),
		Categories:   category.NewReader(tx),
		Transactions: transaction.NewWriter(tx),
		Bills:        bill.NewWriter(tx),
		Rates:        rate.NewWriter(tx),
	}
}

func (w *Writer) Commit(ctx context.Context) error {
	return w.tx.Commit(ctx)
}

func (w *Writer) Rollback(ctx context.Context) error {
	return w.tx.Rollback(ctx)
}
