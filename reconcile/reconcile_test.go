package reconcile

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/ablelink/invest-engine/invest"
)

func inv(amount int64, label string, status invest.InvestmentStatus, createdAt time.Time) invest.Investment {
	return invest.Investment{
		ID:        "inv",
		UserID:    "user-1",
		Type:      label,
		Amount:    decimal.NewFromInt(amount),
		Status:    status,
		CreatedAt: createdAt,
	}
}

func wd(amount int64, createdAt time.Time) invest.Withdrawal {
	return invest.NewWithdrawal("wd", "1", "user-1", decimal.NewFromInt(amount), false, createdAt)
}

func eq(t *testing.T, want int64, got decimal.Decimal) {
	t.Helper()
	if !decimal.NewFromInt(want).Equal(got) {
		t.Errorf("want %d, got %s", want, got)
	}
}

// =============================================================================
// AVAILABLE BALANCE TESTS
// =============================================================================

func TestAvailableBalance_SingleEligibleInvestment(t *testing.T) {
	// GIVEN: one Approved 100,000 investment at 20% monthly, created two
	//        months ago, and no withdrawals this month
	// THEN: available = 20,000
	today := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)
	created := today.AddDate(0, -2, 0)

	b := AvailableBalance(
		[]invest.Investment{inv(100000, "Moderate - 20% Monthly", invest.InvestmentStatusApproved, created)},
		nil, today)

	eq(t, 20000, b.Available)
	eq(t, 20000, b.Displayed())
}

func TestAvailableBalance_NetsWithdrawalsThisMonth(t *testing.T) {
	// GIVEN: 20,000 monthly payout and a 15,000 withdrawal this month
	// THEN: available = 5,000
	today := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)
	created := today.AddDate(0, -2, 0)

	b := AvailableBalance(
		[]invest.Investment{inv(100000, "Moderate - 20% Monthly", invest.InvestmentStatusApproved, created)},
		[]invest.Withdrawal{wd(15000, time.Date(2025, time.March, 4, 10, 0, 0, 0, time.UTC))},
		today)

	eq(t, 5000, b.Available)
}

func TestAvailableBalance_NetsRequestedAmountNotPayout(t *testing.T) {
	// The 2% fee does not reduce what a withdrawal consumes from the ceiling.
	today := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)
	created := today.AddDate(0, -1, 0)

	b := AvailableBalance(
		[]invest.Investment{inv(100000, "Moderate - 20% Monthly", invest.InvestmentStatusApproved, created)},
		[]invest.Withdrawal{wd(10000, today)},
		today)

	eq(t, 10000, b.Available) // 20,000 - 10,000, not 20,000 - 9,800
}

func TestAvailableBalance_IgnoresLastMonthWithdrawals(t *testing.T) {
	today := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)
	created := today.AddDate(0, -2, 0)

	b := AvailableBalance(
		[]invest.Investment{inv(100000, "Moderate - 20% Monthly", invest.InvestmentStatusApproved, created)},
		[]invest.Withdrawal{
			wd(15000, time.Date(2025, time.February, 27, 0, 0, 0, 0, time.UTC)),
			wd(3000, time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)),
		},
		today)

	eq(t, 20000, b.Available)
}

func TestAvailableBalance_InvestmentMadeThisMonthNotEligible(t *testing.T) {
	// GIVEN: investment created Jan 5, checked on Jan 20 of the same year
	// THEN: it contributes nothing yet, regardless of day-of-month
	created := time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC)
	today := time.Date(2025, time.January, 20, 0, 0, 0, 0, time.UTC)

	b := AvailableBalance(
		[]invest.Investment{inv(50000, "Moderate - 20% Monthly", invest.InvestmentStatusApproved, created)},
		nil, today)

	eq(t, 0, b.Available)
}

func TestAvailableBalance_EligibleInStrictlyLaterMonth(t *testing.T) {
	// Same investment, checked March 1: eligible, contributing 10,000.
	created := time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC)
	today := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)

	b := AvailableBalance(
		[]invest.Investment{inv(50000, "Moderate - 20% Monthly", invest.InvestmentStatusApproved, created)},
		nil, today)

	eq(t, 10000, b.Available)
}

func TestAvailableBalance_PriorYearLaterMonthEligible(t *testing.T) {
	// December 2024 investment checked January 2025: earlier year wins even
	// though December > January as a month number.
	created := time.Date(2024, time.December, 20, 0, 0, 0, 0, time.UTC)
	today := time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)

	assert.True(t, Eligible(inv(1, "x", invest.InvestmentStatusApproved, created), today))
}

func TestAvailableBalance_PendingAndRejectedExcluded(t *testing.T) {
	today := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)
	created := today.AddDate(0, -2, 0)

	b := AvailableBalance([]invest.Investment{
		inv(100000, "Moderate - 20% Monthly", invest.InvestmentStatusPending, created),
		inv(100000, "Moderate - 20% Monthly", invest.InvestmentStatusRejected, created),
	}, nil, today)

	eq(t, 0, b.Available)
}

func TestAvailableBalance_LegacyNoStatusCounts(t *testing.T) {
	today := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)
	created := today.AddDate(0, -2, 0)

	b := AvailableBalance(
		[]invest.Investment{inv(100000, "Moderate - 20% Monthly", invest.InvestmentStatusLegacy, created)},
		nil, today)

	eq(t, 20000, b.Available)
}

func TestAvailableBalance_RawGoesNegative_DisplayFloorsAtZero(t *testing.T) {
	// Over-withdrawn month: raw stays negative for enforcement, display is 0.
	today := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)
	created := today.AddDate(0, -2, 0)

	b := AvailableBalance(
		[]invest.Investment{inv(50000, "Moderate - 20% Monthly", invest.InvestmentStatusApproved, created)},
		[]invest.Withdrawal{wd(12000, today)},
		today)

	eq(t, -2000, b.Available)
	eq(t, 0, b.Displayed())
	assert.False(t, b.Allows(decimal.NewFromInt(2000)))
}

func TestBalance_Allows_ExactCeiling(t *testing.T) {
	b := Balance{Available: decimal.NewFromInt(5000)}
	assert.True(t, b.Allows(decimal.NewFromInt(5000)))
	assert.False(t, b.Allows(decimal.NewFromInt(5001)))
}
