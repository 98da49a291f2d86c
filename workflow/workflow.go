/*
Package workflow orchestrates status transitions and their notifications.

PURPOSE:
  An admin approving or rejecting a request is a three-step dance: load the
  user and the record, persist the new status, then email the user. The
  ordering matters:

  - user and record are fetched concurrently; a missing either fails the
    whole operation before anything is written
  - the status write happens before any email, so a notification failure
    never leaves the record unchanged
  - email dispatch is best-effort: a failure is logged and swallowed, the
    transition stands

  Transitions out of a terminal status are refused, which also means a
  repeated approval sends no duplicate email.

SEE ALSO:
  invest/types.go for the status machines this package enforces.
*/
package workflow

import (
	"context"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/ablelink/invest-engine/invest"
	"github.com/ablelink/invest-engine/notify"
)

// Engine applies status transitions against the store and dispatches the
// matching notification.
type Engine struct {
	store      invest.Store
	dispatcher notify.Dispatcher
	logger     *log.Logger
}

// New wires an Engine. A nil logger falls back to the default logger.
func New(store invest.Store, dispatcher notify.Dispatcher, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	if dispatcher == nil {
		dispatcher = notify.Null{}
	}
	return &Engine{store: store, dispatcher: dispatcher, logger: logger}
}

// TransitionInvestment moves an investment to newStatus and emails the owner.
// Returns the updated record.
func (e *Engine) TransitionInvestment(ctx context.Context, userID, investmentID string, newStatus invest.InvestmentStatus) (invest.Investment, error) {
	var user invest.UserProfile
	var inv invest.Investment

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		user, err = e.store.GetUser(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		inv, err = e.store.GetInvestment(gctx, userID, investmentID)
		return err
	})
	if err := g.Wait(); err != nil {
		return invest.Investment{}, err
	}

	if !inv.Status.CanTransitionTo(newStatus) {
		return invest.Investment{}, invest.ErrTerminalStatus
	}
	if err := e.store.UpdateInvestmentStatus(ctx, userID, investmentID, newStatus); err != nil {
		return invest.Investment{}, err
	}
	inv.Status = newStatus

	if err := e.dispatcher.SendInvestmentStatusUpdate(ctx, user, notify.InvestmentDetailsOf(inv), newStatus); err != nil {
		e.logger.Printf("workflow: investment %s status email failed: %v", investmentID, err)
	}
	return inv, nil
}

// TransitionWithdrawal moves a withdrawal to newStatus and emails the owner.
func (e *Engine) TransitionWithdrawal(ctx context.Context, userID, withdrawalID string, newStatus invest.WithdrawalStatus) (invest.Withdrawal, error) {
	var user invest.UserProfile
	var w invest.Withdrawal

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		user, err = e.store.GetUser(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		w, err = e.store.GetWithdrawal(gctx, userID, withdrawalID)
		return err
	})
	if err := g.Wait(); err != nil {
		return invest.Withdrawal{}, err
	}

	if !w.Status.CanTransitionTo(newStatus) {
		return invest.Withdrawal{}, invest.ErrTerminalStatus
	}
	if err := e.store.UpdateWithdrawalStatus(ctx, userID, withdrawalID, newStatus); err != nil {
		return invest.Withdrawal{}, err
	}
	w.Status = newStatus

	if err := e.dispatcher.SendWithdrawalStatusUpdate(ctx, user, notify.WithdrawalDetailsOf(w), newStatus); err != nil {
		e.logger.Printf("workflow: withdrawal %s status email failed: %v", withdrawalID, err)
	}
	return w, nil
}
