/*
withdrawal.go - Withdrawal construction and the management fee

Every withdrawal carries a fixed 2% management fee on the requested amount;
the payout is the remainder. Requests below the 2,000 minimum are rejected
before anything else happens. Privileged accounts (role flag) skip the fee.
*/
package invest

import (
	"time"

	"github.com/shopspring/decimal"
)

// ManagementFeeRate is the fixed fee applied to every withdrawal's requested
// amount.
var ManagementFeeRate = decimal.NewFromFloat(0.02)

// MinWithdrawalAmount is the smallest request accepted, in naira.
var MinWithdrawalAmount = decimal.NewFromInt(2000)

// ManagementFee returns amount x 0.02, rounded to the nearest kobo.
func ManagementFee(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(ManagementFeeRate).Round(2)
}

// PayoutAmount returns the amount net of the management fee.
func PayoutAmount(amount decimal.Decimal) decimal.Decimal {
	return amount.Sub(ManagementFee(amount))
}

// ValidateWithdrawalAmount enforces the minimum request size.
func ValidateWithdrawalAmount(amount decimal.Decimal) error {
	if amount.LessThan(MinWithdrawalAmount) {
		return &ValidationError{Field: "amount", Message: "withdrawal amount must be at least 2,000"}
	}
	return nil
}

// NewWithdrawal builds a Pending withdrawal with the fee applied. feeExempt
// zeroes the fee (privileged accounts); the invariant payout = amount - fee
// holds either way.
func NewWithdrawal(id, displayID, userID string, amount decimal.Decimal, feeExempt bool, createdAt time.Time) Withdrawal {
	fee := ManagementFee(amount)
	if feeExempt {
		fee = decimal.Zero
	}
	return Withdrawal{
		ID:            id,
		DisplayID:     displayID,
		UserID:        userID,
		Amount:        amount,
		ManagementFee: fee,
		PayoutAmount:  amount.Sub(fee),
		Status:        WithdrawalStatusPending,
		CreatedAt:     createdAt,
	}
}
