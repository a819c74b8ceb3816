// Package ledger is a minimal double-entry ledger used as the reference
// workload for the scope manager: every write happens inside one scope and
// either lands fully or not at all.
package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Entry is one signed ledger line. Amount is negative for debits.
type Entry struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	Account   string          `db:"account" json:"account"`
	Amount    decimal.Decimal `db:"amount" json:"amount"`
	Reference string          `db:"reference" json:"reference"`
	CreatedAt time.Time       `db:"created_at" json:"createdAt"`
}
