/*
accrual.go - Pro-rata accrual and whole-month payout

Two distinct figures, never to be conflated:

  AccruedProfit  continuous pro-rata profit since creation, for live display.
                 Uses a fixed 30-day-month convention and fractional elapsed
                 days so the number ticks up continuously.

  MonthlyPayout  principal x monthly rate, no pro-ration. This coarser figure
                 is what the withdrawal ceiling is accounted in (see the
                 reconcile package).
*/
package invest

import (
	"time"

	"github.com/shopspring/decimal"
)

// daysPerMonth is the fixed convention used for pro-rating; calendar-accurate
// month lengths are intentionally not used.
var daysPerMonth = decimal.NewFromInt(30)

var nanosPerDay = decimal.NewFromInt(24 * time.Hour.Nanoseconds())

// AccruedProfit returns the pro-rata profit of the investment at asOf.
//
// Zero when:
//   - the investment is Pending or Rejected (legacy no-status accrues)
//   - the label carries no parsable rate
//   - asOf precedes the creation timestamp
//
// Otherwise: principal x (rate/30) x fractional days elapsed. Monotonically
// non-decreasing in asOf.
func AccruedProfit(inv Investment, asOf time.Time) decimal.Decimal {
	if inv.Status == InvestmentStatusPending || inv.Status == InvestmentStatusRejected {
		return decimal.Zero
	}

	rate := MonthlyRate(inv.Type)
	if rate.IsZero() {
		return decimal.Zero
	}

	elapsed := asOf.Sub(inv.CreatedAt)
	if elapsed <= 0 {
		return decimal.Zero
	}

	days := decimal.NewFromInt(elapsed.Nanoseconds()).Div(nanosPerDay)
	dailyRate := rate.Div(daysPerMonth)
	return inv.Amount.Mul(dailyRate).Mul(days)
}

// MonthlyPayout returns the whole-month payout figure used for withdrawal
// eligibility accounting: principal x monthly rate. Status is deliberately
// not consulted here; eligibility filtering is the reconcile package's job.
func MonthlyPayout(inv Investment) decimal.Decimal {
	return inv.Amount.Mul(MonthlyRate(inv.Type))
}
