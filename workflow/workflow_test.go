package workflow

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ablelink/invest-engine/invest"
	"github.com/ablelink/invest-engine/notify"
	"github.com/ablelink/invest-engine/store/memory"
)

// recordingDispatcher captures every notification and can be told to fail.
type recordingDispatcher struct {
	notify.Null
	investmentUpdates []invest.InvestmentStatus
	withdrawalUpdates []invest.WithdrawalStatus
	fail              error
}

func (r *recordingDispatcher) SendInvestmentStatusUpdate(_ context.Context, _ invest.UserProfile, _ notify.InvestmentDetails, s invest.InvestmentStatus) error {
	r.investmentUpdates = append(r.investmentUpdates, s)
	return r.fail
}

func (r *recordingDispatcher) SendWithdrawalStatusUpdate(_ context.Context, _ invest.UserProfile, _ notify.WithdrawalDetails, s invest.WithdrawalStatus) error {
	r.withdrawalUpdates = append(r.withdrawalUpdates, s)
	return r.fail
}

func quietLogger() *log.Logger { return log.New(io.Discard, "", 0) }

func seedStore(t *testing.T) *memory.Store {
	t.Helper()
	s := memory.New()
	ctx := context.Background()
	require.NoError(t, s.PutUser(ctx, invest.UserProfile{
		ID: "user-1", FullName: "Ada Obi", Email: "ada@example.com",
	}))
	require.NoError(t, s.PutInvestment(ctx, invest.Investment{
		ID: "inv-1", DisplayID: "REF-001", UserID: "user-1",
		Type: "Moderate - 20% Monthly", Amount: decimal.NewFromInt(100000),
		Status:    invest.InvestmentStatusPending,
		CreatedAt: time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC),
	}))
	require.NoError(t, s.PutWithdrawal(ctx, invest.NewWithdrawal(
		"wd-1", "1", "user-1", decimal.NewFromInt(15000), false,
		time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC))))
	return s
}

func TestTransitionInvestment_PersistsThenNotifies(t *testing.T) {
	// GIVEN: a pending investment
	// WHEN: an admin approves it
	// THEN: the store holds Approved and exactly one status email went out
	store := seedStore(t)
	d := &recordingDispatcher{}
	e := New(store, d, quietLogger())

	updated, err := e.TransitionInvestment(context.Background(), "user-1", "inv-1", invest.InvestmentStatusApproved)

	require.NoError(t, err)
	assert.Equal(t, invest.InvestmentStatusApproved, updated.Status)

	stored, err := store.GetInvestment(context.Background(), "user-1", "inv-1")
	require.NoError(t, err)
	assert.Equal(t, invest.InvestmentStatusApproved, stored.Status)
	assert.Equal(t, []invest.InvestmentStatus{invest.InvestmentStatusApproved}, d.investmentUpdates)
}

func TestTransitionInvestment_RepeatedDecisionSendsNoDuplicateEmail(t *testing.T) {
	store := seedStore(t)
	d := &recordingDispatcher{}
	e := New(store, d, quietLogger())

	_, err := e.TransitionInvestment(context.Background(), "user-1", "inv-1", invest.InvestmentStatusApproved)
	require.NoError(t, err)

	_, err = e.TransitionInvestment(context.Background(), "user-1", "inv-1", invest.InvestmentStatusApproved)

	assert.ErrorIs(t, err, invest.ErrTerminalStatus)
	assert.Len(t, d.investmentUpdates, 1)
}

func TestTransitionInvestment_MissingRecordFailsBeforeWrite(t *testing.T) {
	store := seedStore(t)
	d := &recordingDispatcher{}
	e := New(store, d, quietLogger())

	_, err := e.TransitionInvestment(context.Background(), "user-1", "no-such", invest.InvestmentStatusApproved)

	assert.ErrorIs(t, err, invest.ErrNotFound)
	assert.Empty(t, d.investmentUpdates)
}

func TestTransitionInvestment_MissingUserFails(t *testing.T) {
	store := seedStore(t)
	e := New(store, &recordingDispatcher{}, quietLogger())

	_, err := e.TransitionInvestment(context.Background(), "ghost", "inv-1", invest.InvestmentStatusApproved)

	assert.ErrorIs(t, err, invest.ErrNotFound)
}

func TestTransitionInvestment_EmailFailureDoesNotRollBack(t *testing.T) {
	store := seedStore(t)
	d := &recordingDispatcher{fail: errors.New("smtp down")}
	e := New(store, d, quietLogger())

	_, err := e.TransitionInvestment(context.Background(), "user-1", "inv-1", invest.InvestmentStatusApproved)

	require.NoError(t, err)
	stored, _ := store.GetInvestment(context.Background(), "user-1", "inv-1")
	assert.Equal(t, invest.InvestmentStatusApproved, stored.Status)
}

func TestTransitionWithdrawal_CompletesAndNotifies(t *testing.T) {
	store := seedStore(t)
	d := &recordingDispatcher{}
	e := New(store, d, quietLogger())

	updated, err := e.TransitionWithdrawal(context.Background(), "user-1", "wd-1", invest.WithdrawalStatusCompleted)

	require.NoError(t, err)
	assert.Equal(t, invest.WithdrawalStatusCompleted, updated.Status)
	assert.Equal(t, []invest.WithdrawalStatus{invest.WithdrawalStatusCompleted}, d.withdrawalUpdates)
}

func TestTransitionWithdrawal_TerminalRefused(t *testing.T) {
	store := seedStore(t)
	d := &recordingDispatcher{}
	e := New(store, d, quietLogger())

	_, err := e.TransitionWithdrawal(context.Background(), "user-1", "wd-1", invest.WithdrawalStatusRejected)
	require.NoError(t, err)

	_, err = e.TransitionWithdrawal(context.Background(), "user-1", "wd-1", invest.WithdrawalStatusCompleted)

	assert.ErrorIs(t, err, invest.ErrTerminalStatus)
	assert.Len(t, d.withdrawalUpdates, 1)
}
