package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"txscope/internal/domain/ledger"
)

// RecordEntryRequest creates one ledger entry.
// Amount is a decimal string to keep full precision on the wire.
type RecordEntryRequest struct {
	Account   string `json:"account" binding:"required"`
	Amount    string `json:"amount" binding:"required"`
	Reference string `json:"reference"`
}

// TransferRequest moves an amount between two accounts.
type TransferRequest struct {
	From      string `json:"from" binding:"required"`
	To        string `json:"to" binding:"required"`
	Amount    string `json:"amount" binding:"required"`
	Reference string `json:"reference"`
}

// EntryResponse is one ledger entry.
type EntryResponse struct {
	ID        string          `json:"id"`
	Account   string          `json:"account"`
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference"`
	CreatedAt time.Time       `json:"createdAt"`
}

// BalanceResponse is an account's current balance.
type BalanceResponse struct {
	Account string          `json:"account"`
	Balance decimal.Decimal `json:"balance"`
}

// FromEntry converts a domain entry.
func FromEntry(e ledger.Entry) EntryResponse {
	return EntryResponse{
		ID:        e.ID.String(),
		Account:   e.Account,
		Amount:    e.Amount,
		Reference: e.Reference,
		CreatedAt: e.CreatedAt,
	}
}

// FromEntries converts a slice of domain entries.
func FromEntries(entries []ledger.Entry) []EntryResponse {
	out := make([]EntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, FromEntry(e))
	}
	return out
}
