/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication, decoupling the internal
  domain model from the external contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY:
  Amounts cross the wire as JSON numbers. decimal.Decimal marshals itself as a
  number, so domain values pass through unchanged; request amounts are decoded
  into decimal directly.

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ablelink/invest-engine/invest"
	"github.com/ablelink/invest-engine/reconcile"
	"github.com/ablelink/invest-engine/window"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// RegisterRequest creates an account.
type RegisterRequest struct {
	FullName       string `json:"full_name"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	WhatsAppNumber string `json:"whatsapp_number"`
	BankName       string `json:"bank_name"`
	AccountName    string `json:"account_name"`
	AccountNumber  string `json:"account_number"`
}

// LoginRequest exchanges credentials for a session token.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionDTO is the response to register and login.
type SessionDTO struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

// UserDTO is a profile in API responses. Credential hashes never leave the
// server.
type UserDTO struct {
	ID                         string `json:"id"`
	FullName                   string `json:"full_name"`
	Email                      string `json:"email"`
	WhatsAppNumber             string `json:"whatsapp_number,omitempty"`
	BankName                   string `json:"bank_name,omitempty"`
	AccountName                string `json:"account_name,omitempty"`
	AccountNumber              string `json:"account_number,omitempty"`
	Disabled                   bool   `json:"disabled"`
	Admin                      bool   `json:"admin,omitempty"`
	PrivilegedWithdrawalAccess bool   `json:"privileged_withdrawal_access,omitempty"`
	HasWithdrawalPIN           bool   `json:"has_withdrawal_pin"`
	CreatedAt                  string `json:"created_at,omitempty"`
}

// UpdateProfileRequest updates display and payout details. Role flags and
// credentials have their own endpoints.
type UpdateProfileRequest struct {
	FullName       string `json:"full_name"`
	WhatsAppNumber string `json:"whatsapp_number"`
	BankName       string `json:"bank_name"`
	AccountName    string `json:"account_name"`
	AccountNumber  string `json:"account_number"`
}

// PINRequest sets or verifies the withdrawal PIN.
type PINRequest struct {
	PIN string `json:"pin"`
}

// PlanDTO describes a plan available for new submissions.
type PlanDTO struct {
	ID           string          `json:"id"`
	Label        string          `json:"label"`
	Rate         decimal.Decimal `json:"rate"`
	MinAmount    decimal.Decimal `json:"min_amount"`
	MaxAmount    decimal.Decimal `json:"max_amount"`
	TenureMonths int             `json:"tenure_months"`
}

// InvestmentDTO is an investment in API responses.
type InvestmentDTO struct {
	ID            string          `json:"id"`
	DisplayID     string          `json:"display_id"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"`
	AccruedProfit decimal.Decimal `json:"accrued_profit"`
	MonthlyPayout decimal.Decimal `json:"monthly_payout"`
	CreatedAt     string          `json:"created_at"`
}

// SubmitInvestmentRequest starts a new investment. The amount is charged via
// the payment gateway before anything is persisted.
type SubmitInvestmentRequest struct {
	PlanID string          `json:"plan_id"`
	Amount decimal.Decimal `json:"amount"`
}

// SubmitInvestmentResponse carries the checkout redirect.
type SubmitInvestmentResponse struct {
	Investment       InvestmentDTO `json:"investment"`
	AuthorizationURL string        `json:"authorization_url"`
}

// WithdrawalDTO is a withdrawal in API responses.
type WithdrawalDTO struct {
	ID            string          `json:"id"`
	DisplayID     string          `json:"display_id"`
	Amount        decimal.Decimal `json:"amount"`
	ManagementFee decimal.Decimal `json:"management_fee"`
	PayoutAmount  decimal.Decimal `json:"payout_amount"`
	Status        string          `json:"status"`
	CreatedAt     string          `json:"created_at"`
}

// SubmitWithdrawalRequest requests a payout. The PIN is verified before
// anything else happens.
type SubmitWithdrawalRequest struct {
	Amount decimal.Decimal `json:"amount"`
	PIN    string          `json:"pin"`
}

// BalanceDTO is the withdrawable balance summary.
type BalanceDTO struct {
	TotalMonthlyPayout decimal.Decimal `json:"total_monthly_payout"`
	WithdrawnThisMonth decimal.Decimal `json:"withdrawn_this_month"`
	Available          decimal.Decimal `json:"available"`
	AsOf               string          `json:"as_of"`
}

// WindowDTO reports the submission window for the current month.
type WindowDTO struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Open  bool   `json:"open"`
}

// ReportRequest bounds an emailed portfolio report. Both dates optional,
// ISO "2006-01-02"; absent means all time.
type ReportRequest struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toUserDTO(u invest.UserProfile) UserDTO {
	return UserDTO{
		ID:                         u.ID,
		FullName:                   u.FullName,
		Email:                      u.Email,
		WhatsAppNumber:             u.WhatsAppNumber,
		BankName:                   u.BankName,
		AccountName:                u.AccountName,
		AccountNumber:              u.AccountNumber,
		Disabled:                   u.Disabled,
		Admin:                      u.Admin,
		PrivilegedWithdrawalAccess: u.PrivilegedWithdrawalAccess,
		HasWithdrawalPIN:           u.WithdrawalPINHash != "",
		CreatedAt:                  u.CreatedAt.Format(time.RFC3339),
	}
}

func toInvestmentDTO(inv invest.Investment, asOf time.Time) InvestmentDTO {
	return InvestmentDTO{
		ID:            inv.ID,
		DisplayID:     inv.DisplayID,
		Type:          inv.Type,
		Amount:        inv.Amount,
		Status:        string(inv.Status.Normalize()),
		AccruedProfit: invest.AccruedProfit(inv, asOf),
		MonthlyPayout: invest.MonthlyPayout(inv),
		CreatedAt:     inv.CreatedAt.Format(time.RFC3339),
	}
}

func toInvestmentDTOs(invs []invest.Investment, asOf time.Time) []InvestmentDTO {
	dtos := make([]InvestmentDTO, len(invs))
	for i, inv := range invs {
		dtos[i] = toInvestmentDTO(inv, asOf)
	}
	return dtos
}

func toWithdrawalDTO(w invest.Withdrawal) WithdrawalDTO {
	return WithdrawalDTO{
		ID:            w.ID,
		DisplayID:     w.DisplayID,
		Amount:        w.Amount,
		ManagementFee: w.ManagementFee,
		PayoutAmount:  w.PayoutAmount,
		Status:        string(w.Status),
		CreatedAt:     w.CreatedAt.Format(time.RFC3339),
	}
}

func toWithdrawalDTOs(ws []invest.Withdrawal) []WithdrawalDTO {
	dtos := make([]WithdrawalDTO, len(ws))
	for i, w := range ws {
		dtos[i] = toWithdrawalDTO(w)
	}
	return dtos
}

func toPlanDTO(p invest.Plan) PlanDTO {
	return PlanDTO{
		ID:           p.ID,
		Label:        p.Label,
		Rate:         p.Rate,
		MinAmount:    p.MinAmount,
		MaxAmount:    p.MaxAmount,
		TenureMonths: p.TenureMonths,
	}
}

func toBalanceDTO(b reconcile.Balance, asOf time.Time) BalanceDTO {
	return BalanceDTO{
		TotalMonthlyPayout: b.TotalMonthlyPayout,
		WithdrawnThisMonth: b.WithdrawnThisMonth,
		Available:          b.Displayed(),
		AsOf:               asOf.Format(time.RFC3339),
	}
}

func toWindowDTO(win window.Window, today time.Time) WindowDTO {
	return WindowDTO{
		Start: win.Start.Format("2006-01-02"),
		End:   win.End.Format("2006-01-02"),
		Open:  win.Contains(today),
	}
}
