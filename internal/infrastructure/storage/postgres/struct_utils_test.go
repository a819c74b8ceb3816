package postgres

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"txscope/internal/domain/ledger"
)

type Timestamps struct {
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

type mockRow struct {
	Timestamps
	ID       uuid.UUID `db:"id" json:"id"`
	Account  string    `db:"account" json:"account"`
	Internal string    `db:"-"`
	NoTag    string
}

func TestExtractDBColumns(t *testing.T) {
	cols := ExtractDBColumns[mockRow]()

	assert.Equal(t, []string{"created_at", "id", "account"}, cols)
}

func TestExtractDBColumns_LedgerEntry(t *testing.T) {
	cols := ExtractDBColumns[ledger.Entry]()

	assert.Equal(t, []string{"id", "account", "amount", "reference", "created_at"}, cols)
}

func TestStructToMap(t *testing.T) {
	now := time.Now().UTC()
	row := mockRow{
		Timestamps: Timestamps{CreatedAt: now},
		ID:         uuid.New(),
		Account:    "cash",
		Internal:   "hidden",
		NoTag:      "skipped",
	}

	m := StructToMap(row)

	assert.Equal(t, row.ID, m["id"])
	assert.Equal(t, "cash", m["account"])
	assert.Equal(t, now, m["created_at"])
	assert.Len(t, m, 3)
}
