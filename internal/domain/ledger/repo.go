package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Repository persists ledger entries. Implementations read the ambient
// session from ctx, so every method must be called inside a scope.
type Repository interface {
	Insert(ctx context.Context, e *Entry) error
	GetByID(ctx context.Context, id uuid.UUID) (*Entry, error)
	ListByAccount(ctx context.Context, account string, limit, offset int) ([]Entry, error)
	CountByAccount(ctx context.Context, account string) (int64, error)
	Balance(ctx context.Context, account string) (decimal.Decimal, error)
}
