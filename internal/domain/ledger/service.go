package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"txscope/internal/core/apperror"
	"txscope/internal/core/scope"
	"txscope/internal/core/session"
)

// Service owns ledger business logic. Writes go through the read-write scope
// manager, reads through the read-only one. Because the managers join an
// ambient session when one is present, service calls compose with an outer
// per-request scope (see middleware.SessionScope) as well as standing alone.
type Service struct {
	repo       Repository
	scopes     *scope.Manager
	readScopes *scope.Manager
}

// NewService creates a ledger service.
func NewService(repo Repository, scopes, readScopes *scope.Manager) *Service {
	return &Service{repo: repo, scopes: scopes, readScopes: readScopes}
}

// RecordInput describes one entry to record.
type RecordInput struct {
	Account   string
	Amount    decimal.Decimal
	Reference string
}

func (in RecordInput) validate() error {
	if in.Account == "" {
		return apperror.NewValidation("account is required")
	}
	if in.Amount.IsZero() {
		return apperror.NewValidation("amount must be non-zero")
	}
	return nil
}

// Record writes one entry in its own scope.
func (s *Service) Record(ctx context.Context, in RecordInput) (*Entry, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	return scope.RunValue(ctx, s.scopes, func(ctx context.Context, _ session.Session) (*Entry, error) {
		e := newEntry(in)
		if err := s.repo.Insert(ctx, e); err != nil {
			return nil, err
		}
		return e, nil
	})
}

// Transfer moves amount between two accounts as a balanced pair of entries.
// Both lines share one scope: a failure on either insert rolls back both.
func (s *Service) Transfer(ctx context.Context, from, to string, amount decimal.Decimal, reference string) ([]Entry, error) {
	if from == "" || to == "" {
		return nil, apperror.NewValidation("both accounts are required")
	}
	if from == to {
		return nil, apperror.NewBusinessRule("SAME_ACCOUNT_TRANSFER", "transfer accounts must differ")
	}
	if !amount.IsPositive() {
		return nil, apperror.NewValidation("amount must be positive")
	}

	return scope.RunValue(ctx, s.scopes, func(ctx context.Context, _ session.Session) ([]Entry, error) {
		debit := newEntry(RecordInput{Account: from, Amount: amount.Neg(), Reference: reference})
		credit := newEntry(RecordInput{Account: to, Amount: amount, Reference: reference})

		if err := s.repo.Insert(ctx, debit); err != nil {
			return nil, err
		}
		if err := s.repo.Insert(ctx, credit); err != nil {
			return nil, err
		}
		return []Entry{*debit, *credit}, nil
	})
}

// Entry returns one entry by id. A missing id surfaces as a not-found error.
func (s *Service) Entry(ctx context.Context, id uuid.UUID) (*Entry, error) {
	return scope.RunValue(ctx, s.readScopes, func(ctx context.Context, _ session.Session) (*Entry, error) {
		return s.repo.GetByID(ctx, id)
	})
}

// Entries lists an account's entries with the total count, newest first.
func (s *Service) Entries(ctx context.Context, account string, limit, offset int) ([]Entry, int64, error) {
	if account == "" {
		return nil, 0, apperror.NewValidation("account is required")
	}

	var (
		entries []Entry
		total   int64
	)
	err := s.readScopes.Run(ctx, func(ctx context.Context, _ session.Session) error {
		var err error
		if entries, err = s.repo.ListByAccount(ctx, account, limit, offset); err != nil {
			return err
		}
		total, err = s.repo.CountByAccount(ctx, account)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// Balance returns the sum of an account's entries.
func (s *Service) Balance(ctx context.Context, account string) (decimal.Decimal, error) {
	if account == "" {
		return decimal.Zero, apperror.NewValidation("account is required")
	}

	return scope.RunValue(ctx, s.readScopes, func(ctx context.Context, _ session.Session) (decimal.Decimal, error) {
		return s.repo.Balance(ctx, account)
	})
}

func newEntry(in RecordInput) *Entry {
	return &Entry{
		ID:        uuid.New(),
		Account:   in.Account,
		Amount:    in.Amount,
		Reference: in.Reference,
		CreatedAt: time.Now().UTC(),
	}
}
