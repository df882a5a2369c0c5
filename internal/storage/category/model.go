package category

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
)

// Category represents a spending category. The core only ever checks
// ownership; category management itself lives outside the ledger.
type Category struct {
	ID        uuid.UUID `db:"id"`
	UserID    uuid.UUID `db:"user_id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

// IReader defines read access to categories, scoped to the acting user.
//
//go:generate mockery --name IReader
type IReader interface {
	FindByID(ctx context.Context, userID, id uuid.UUID) (*Category, error)
}
