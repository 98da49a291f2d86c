/*
Package notify sends transactional email notifications.

PURPOSE:
  One dispatch per platform event: user registration (welcome + admin alert),
  investment/withdrawal submission (admin alert), admin status decisions
  (user notification), and the full portfolio report with a spreadsheet
  attachment.

BEST-EFFORT CONTRACT:
  Notification delivery is never transactional with a state mutation. Call
  sites log dispatch failures and carry on; a failed email never rolls back a
  persisted status change.

IMPLEMENTATIONS:
  - resend.go: Resend REST API client
  - Null: discards everything (tests, email disabled)
*/
package notify

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ablelink/invest-engine/invest"
)

// InvestmentDetails is the financial payload carried by investment emails.
type InvestmentDetails struct {
	DisplayID string
	Type      string
	Amount    decimal.Decimal
	Date      time.Time
}

// WithdrawalDetails is the financial payload carried by withdrawal emails.
type WithdrawalDetails struct {
	DisplayID    string
	Amount       decimal.Decimal
	Fee          decimal.Decimal
	PayoutAmount decimal.Decimal
	Date         time.Time
}

// Dispatcher sends formatted notifications. Every method sends exactly one
// message.
type Dispatcher interface {
	SendWelcome(ctx context.Context, user invest.UserProfile) error
	SendAdminNewUser(ctx context.Context, user invest.UserProfile) error

	SendInvestmentRequest(ctx context.Context, user invest.UserProfile, inv InvestmentDetails) error
	SendInvestmentStatusUpdate(ctx context.Context, user invest.UserProfile, inv InvestmentDetails, newStatus invest.InvestmentStatus) error

	SendWithdrawalRequest(ctx context.Context, user invest.UserProfile, w WithdrawalDetails) error
	SendWithdrawalStatusUpdate(ctx context.Context, user invest.UserProfile, w WithdrawalDetails, newStatus invest.WithdrawalStatus) error

	// SendPortfolioReport attaches the exported workbook. dateRange is the
	// human-readable range covered ("All Time" or "2025-01-01 to 2025-03-31").
	SendPortfolioReport(ctx context.Context, user invest.UserProfile, workbook []byte, dateRange string) error

	// SendWindowOpen tells a user the monthly submission window is open.
	SendWindowOpen(ctx context.Context, user invest.UserProfile, start, end time.Time) error
}

// InvestmentDetailsOf adapts a domain record for the mail payload.
func InvestmentDetailsOf(inv invest.Investment) InvestmentDetails {
	return InvestmentDetails{
		DisplayID: inv.DisplayID,
		Type:      inv.Type,
		Amount:    inv.Amount,
		Date:      inv.CreatedAt,
	}
}

// WithdrawalDetailsOf adapts a domain record for the mail payload.
func WithdrawalDetailsOf(w invest.Withdrawal) WithdrawalDetails {
	return WithdrawalDetails{
		DisplayID:    w.DisplayID,
		Amount:       w.Amount,
		Fee:          w.ManagementFee,
		PayoutAmount: w.PayoutAmount,
		Date:         w.CreatedAt,
	}
}

// Null discards every notification. Used in tests and when email is disabled.
type Null struct{}

var _ Dispatcher = Null{}

func (Null) SendWelcome(context.Context, invest.UserProfile) error      { return nil }
func (Null) SendAdminNewUser(context.Context, invest.UserProfile) error { return nil }
func (Null) SendInvestmentRequest(context.Context, invest.UserProfile, InvestmentDetails) error {
	return nil
}
func (Null) SendInvestmentStatusUpdate(context.Context, invest.UserProfile, InvestmentDetails, invest.InvestmentStatus) error {
	return nil
}
func (Null) SendWithdrawalRequest(context.Context, invest.UserProfile, WithdrawalDetails) error {
	return nil
}
func (Null) SendWithdrawalStatusUpdate(context.Context, invest.UserProfile, WithdrawalDetails, invest.WithdrawalStatus) error {
	return nil
}
func (Null) SendPortfolioReport(context.Context, invest.UserProfile, []byte, string) error {
	return nil
}
func (Null) SendWindowOpen(context.Context, invest.UserProfile, time.Time, time.Time) error {
	return nil
}
