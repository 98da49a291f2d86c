/*
Package reconcile computes the withdrawable balance ceiling.

PURPOSE:
  Aggregates whole-month payouts across a user's approved investments and nets
  out withdrawals already made this calendar month. The result is the ceiling
  enforced when a new withdrawal request is submitted.

ALGORITHM:
  1. Keep investments whose status is Approved (legacy no-status records are
     normalized to Approved at the storage boundary).
  2. Keep only "eligible" investments: created in a (year, month) strictly
     before today's. An investment made this month contributes nothing yet,
     regardless of day-of-month.
  3. Sum the whole-month payout (principal x monthly rate, no pro-ration)
     over eligible investments.
  4. Sum the requested amount (not the net payout) of withdrawals created
     within the current calendar month, regardless of their status.
  5. Available = payouts - withdrawn. The raw value may go negative and is
     what submission enforcement compares against; Displayed() floors at zero
     for presentation.

  Pro-rata accrual (invest.AccruedProfit) is a display figure and plays no
  part here; the two must not be conflated.

SEE ALSO:
  - invest/accrual.go: the two payout figures
  - api/: submission-time enforcement, including the server-side re-check
*/
package reconcile

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ablelink/invest-engine/calendar"
	"github.com/ablelink/invest-engine/invest"
)

// Balance is the reconciled state of a user's withdrawable funds for the
// current month.
type Balance struct {
	// TotalMonthlyPayout is the sum of whole-month payouts over eligible
	// approved investments.
	TotalMonthlyPayout decimal.Decimal

	// WithdrawnThisMonth is the sum of requested amounts of withdrawals
	// created this calendar month.
	WithdrawnThisMonth decimal.Decimal

	// Available is the raw ceiling: payout - withdrawn. May be negative.
	Available decimal.Decimal
}

// Displayed floors the available balance at zero for presentation. Internal
// enforcement uses the raw Available.
func (b Balance) Displayed() decimal.Decimal {
	if b.Available.IsNegative() {
		return decimal.Zero
	}
	return b.Available
}

// Allows reports whether a new withdrawal request of the given amount fits
// under the raw ceiling.
func (b Balance) Allows(amount decimal.Decimal) bool {
	return amount.LessThanOrEqual(b.Available)
}

// AvailableBalance reconciles the user's investments and withdrawals into the
// current month's balance, as of today.
func AvailableBalance(investments []invest.Investment, withdrawals []invest.Withdrawal, today time.Time) Balance {
	var payout decimal.Decimal

	for _, inv := range investments {
		if inv.Status.Normalize() != invest.InvestmentStatusApproved {
			continue
		}
		if !Eligible(inv, today) {
			continue
		}
		payout = payout.Add(invest.MonthlyPayout(inv))
	}

	start, end := monthBounds(today)
	var withdrawn decimal.Decimal
	for _, w := range withdrawals {
		d := calendar.DateOnly(w.CreatedAt)
		if d.Before(start) || d.After(end) {
			continue
		}
		// The requested amount, not the net payout, consumes the ceiling.
		withdrawn = withdrawn.Add(w.Amount)
	}

	return Balance{
		TotalMonthlyPayout: payout,
		WithdrawnThisMonth: withdrawn,
		Available:          payout.Sub(withdrawn),
	}
}

// Eligible reports whether the investment contributes to this month's
// balance: created in a chronologically earlier (year, month) than today.
func Eligible(inv invest.Investment, today time.Time) bool {
	cy, cm := inv.CreatedAt.Year(), inv.CreatedAt.Month()
	ty, tm := today.Year(), today.Month()
	return cy < ty || (cy == ty && cm < tm)
}

// monthBounds returns the first and last day of today's calendar month,
// date-only.
func monthBounds(today time.Time) (time.Time, time.Time) {
	start := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return start, end
}
