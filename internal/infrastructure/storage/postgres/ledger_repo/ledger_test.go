package ledger_repo

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"txscope/internal/domain/ledger"
)

func TestBuildInsert(t *testing.T) {
	repo := New()
	e := &ledger.Entry{
		ID:        uuid.MustParse("11111111-2222-3333-4444-555555555555"),
		Account:   "cash",
		Amount:    decimal.RequireFromString("10.50"),
		Reference: "ref-1",
		CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	sql, args, err := repo.buildInsert(e).ToSql()
	if err != nil {
		t.Fatalf("ToSql failed: %v", err)
	}

	// SetMap emits columns in sorted order.
	wantSQL := "INSERT INTO ledger_entries (account,amount,created_at,id,reference) VALUES ($1,$2,$3,$4,$5)"
	if sql != wantSQL {
		t.Errorf("SQL mismatch\nwant: %s\ngot:  %s", wantSQL, sql)
	}
	if len(args) != 5 {
		t.Fatalf("Args count mismatch\nwant: 5\ngot:  %d", len(args))
	}
	if args[0] != "cash" {
		t.Errorf("account arg mismatch: got %v", args[0])
	}
}

func TestBuildGet(t *testing.T) {
	repo := New()
	id := uuid.MustParse("11111111-2222-3333-4444-555555555555")

	sql, args, err := repo.buildGet(id).ToSql()
	if err != nil {
		t.Fatalf("ToSql failed: %v", err)
	}

	wantSQL := "SELECT id, account, amount, reference, created_at FROM ledger_entries WHERE id = $1"
	if sql != wantSQL {
		t.Errorf("SQL mismatch\nwant: %s\ngot:  %s", wantSQL, sql)
	}
	if len(args) != 1 || args[0] != id {
		t.Errorf("Args mismatch: %v", args)
	}
}

func TestBuildList(t *testing.T) {
	repo := New()

	sql, args, err := repo.buildList("cash", 20, 40).ToSql()
	if err != nil {
		t.Fatalf("ToSql failed: %v", err)
	}

	wantSQL := "SELECT id, account, amount, reference, created_at FROM ledger_entries WHERE account = $1 ORDER BY created_at DESC LIMIT 20 OFFSET 40"
	if sql != wantSQL {
		t.Errorf("SQL mismatch\nwant: %s\ngot:  %s", wantSQL, sql)
	}
	if len(args) != 1 || args[0] != "cash" {
		t.Errorf("Args mismatch: %v", args)
	}
}

func TestBuildCount(t *testing.T) {
	repo := New()

	sql, args, err := repo.buildCount("cash").ToSql()
	if err != nil {
		t.Fatalf("ToSql failed: %v", err)
	}

	wantSQL := "SELECT COUNT(*) FROM ledger_entries WHERE account = $1"
	if sql != wantSQL {
		t.Errorf("SQL mismatch\nwant: %s\ngot:  %s", wantSQL, sql)
	}
	if len(args) != 1 {
		t.Fatalf("Args count mismatch: %v", args)
	}
}

func TestBuildBalance(t *testing.T) {
	repo := New()

	sql, _, err := repo.buildBalance("cash").ToSql()
	if err != nil {
		t.Fatalf("ToSql failed: %v", err)
	}

	wantSQL := "SELECT COALESCE(SUM(amount), 0)::text FROM ledger_entries WHERE account = $1"
	if sql != wantSQL {
		t.Errorf("SQL mismatch\nwant: %s\ngot:  %s", wantSQL, sql)
	}
}
