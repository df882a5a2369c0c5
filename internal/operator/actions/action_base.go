package actions

import (
	"context"

	"github.com/carson-networks/ledger-server/internal/storage"
)

// IAction is one atomic unit of work. Perform receives a Writer bound to
// an open database transaction; the operator commits on nil error and
// rolls back otherwise. Actions never commit themselves.
type IAction interface {
	Perform(ctx context.Context, writer *storage.Writer) error
}
