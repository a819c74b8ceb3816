package ledger

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"txscope/internal/core/apperror"
	"txscope/internal/core/scope"
	"txscope/internal/core/session"
)

type fakeFactory struct {
	calls []string
}

func (f *fakeFactory) Open(context.Context) (session.Session, error) {
	f.calls = append(f.calls, "open")
	return &fakeSession{f: f}, nil
}

type fakeSession struct{ f *fakeFactory }

func (s *fakeSession) Commit(context.Context) error {
	s.f.calls = append(s.f.calls, "commit")
	return nil
}

func (s *fakeSession) Rollback(context.Context) error {
	s.f.calls = append(s.f.calls, "rollback")
	return nil
}

func (s *fakeSession) Close(context.Context) error {
	s.f.calls = append(s.f.calls, "close")
	return nil
}

type fakeRepo struct {
	insertErr error
	failAfter int // fail once this many inserts have landed

	inserted []Entry
	balance  decimal.Decimal
}

func (r *fakeRepo) Insert(_ context.Context, e *Entry) error {
	if r.insertErr != nil && len(r.inserted) >= r.failAfter {
		return r.insertErr
	}
	r.inserted = append(r.inserted, *e)
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*Entry, error) {
	for i := range r.inserted {
		if r.inserted[i].ID == id {
			return &r.inserted[i], nil
		}
	}
	return nil, apperror.NewNotFound("ledger entry", id.String())
}

func (r *fakeRepo) ListByAccount(context.Context, string, int, int) ([]Entry, error) {
	return r.inserted, nil
}

func (r *fakeRepo) CountByAccount(context.Context, string) (int64, error) {
	return int64(len(r.inserted)), nil
}

func (r *fakeRepo) Balance(context.Context, string) (decimal.Decimal, error) {
	return r.balance, nil
}

func newTestService(repo Repository) (*Service, *fakeFactory) {
	f := &fakeFactory{}
	m := scope.NewManager(f)
	return NewService(repo, m, m), f
}

func TestService_Record(t *testing.T) {
	repo := &fakeRepo{}
	svc, f := newTestService(repo)

	entry, err := svc.Record(context.Background(), RecordInput{
		Account: "cash",
		Amount:  decimal.RequireFromString("10.50"),
	})

	require.NoError(t, err)
	assert.Equal(t, "cash", entry.Account)
	assert.NotEqual(t, uuid.Nil, entry.ID)
	require.Len(t, repo.inserted, 1)
	assert.Equal(t, []string{"open", "commit", "close"}, f.calls)
}

func TestService_RecordValidation(t *testing.T) {
	repo := &fakeRepo{}
	svc, f := newTestService(repo)

	_, err := svc.Record(context.Background(), RecordInput{Account: "", Amount: decimal.NewFromInt(1)})
	assert.True(t, apperror.IsAppError(err))

	_, err = svc.Record(context.Background(), RecordInput{Account: "cash", Amount: decimal.Zero})
	assert.True(t, apperror.IsAppError(err))

	// Validation fails before any scope is opened.
	assert.Empty(t, f.calls)
	assert.Empty(t, repo.inserted)
}

func TestService_Entry(t *testing.T) {
	repo := &fakeRepo{}
	svc, f := newTestService(repo)

	entry, err := svc.Record(context.Background(), RecordInput{
		Account: "cash",
		Amount:  decimal.NewFromInt(3),
	})
	require.NoError(t, err)

	got, err := svc.Entry(context.Background(), entry.ID)
	require.NoError(t, err)
	assert.Equal(t, entry.ID, got.ID)

	// Each lookup runs in its own read scope; the not-found error rides
	// through the clean rollback unchanged.
	f.calls = nil
	_, err = svc.Entry(context.Background(), uuid.New())
	assert.True(t, apperror.IsNotFound(err))
	assert.Equal(t, []string{"open", "rollback", "close"}, f.calls)
}

func TestService_Transfer(t *testing.T) {
	repo := &fakeRepo{}
	svc, f := newTestService(repo)

	entries, err := svc.Transfer(context.Background(), "cash", "expenses",
		decimal.RequireFromString("42.50"), "lunch")

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].Amount.Add(entries[1].Amount).IsZero(), "entries must balance")
	assert.Equal(t, "cash", entries[0].Account)
	assert.Equal(t, "expenses", entries[1].Account)

	// Both inserts happened in one scope.
	assert.Equal(t, []string{"open", "commit", "close"}, f.calls)
}

func TestService_TransferRollsBackOnSecondInsert(t *testing.T) {
	insertErr := errors.New("constraint violation")
	repo := &fakeRepo{insertErr: insertErr, failAfter: 1}
	svc, f := newTestService(repo)

	_, err := svc.Transfer(context.Background(), "cash", "expenses",
		decimal.NewFromInt(5), "")

	require.ErrorIs(t, err, insertErr)
	// One scope, rolled back: the first insert does not survive alone.
	assert.Equal(t, []string{"open", "rollback", "close"}, f.calls)
}

func TestService_TransferValidation(t *testing.T) {
	svc, f := newTestService(&fakeRepo{})

	cases := []struct {
		name     string
		from, to string
		amount   decimal.Decimal
	}{
		{"missing account", "", "b", decimal.NewFromInt(1)},
		{"same account", "a", "a", decimal.NewFromInt(1)},
		{"zero amount", "a", "b", decimal.Zero},
		{"negative amount", "a", "b", decimal.NewFromInt(-3)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Transfer(context.Background(), tc.from, tc.to, tc.amount, "")
			assert.True(t, apperror.IsAppError(err))
		})
	}
	assert.Empty(t, f.calls)
}

func TestService_TransferSameAccountIsBusinessRule(t *testing.T) {
	svc, f := newTestService(&fakeRepo{})

	_, err := svc.Transfer(context.Background(), "cash", "cash", decimal.NewFromInt(1), "")

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "SAME_ACCOUNT_TRANSFER", appErr.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, appErr.HTTPStatus)
	assert.Empty(t, f.calls)
}

func TestService_Balance(t *testing.T) {
	repo := &fakeRepo{balance: decimal.RequireFromString("99.95")}
	svc, f := newTestService(repo)

	balance, err := svc.Balance(context.Background(), "cash")

	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("99.95")))
	assert.Equal(t, []string{"open", "commit", "close"}, f.calls)
}

func TestService_Entries(t *testing.T) {
	repo := &fakeRepo{}
	svc, _ := newTestService(repo)

	_, err := svc.Record(context.Background(), RecordInput{
		Account: "cash",
		Amount:  decimal.NewFromInt(7),
	})
	require.NoError(t, err)

	entries, total, err := svc.Entries(context.Background(), "cash", 10, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.EqualValues(t, 1, total)
}
