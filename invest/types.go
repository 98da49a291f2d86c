/*
Package invest holds the core domain model of the investment platform.

PURPOSE:
  Defines the persistent entities (Investment, Withdrawal, UserProfile), their
  status machines, the plan catalog, and the pure financial calculations
  (accrual, monthly payout, withdrawal fees) that the rest of the system is
  built on.

KEY CONCEPTS:
  - Investment: principal placed against a fixed-rate monthly plan. Accrues
    only once Approved; the creation timestamp is the authoritative accrual
    start.
  - Withdrawal: a request against accrued monthly payouts. Carries a fixed 2%
    management fee; payout = amount - fee.
  - Legacy records: investments written before the status field existed have
    an empty status and are treated as Approved. Normalization happens once,
    at the storage read boundary, not in consuming code.

DESIGN PRINCIPLES:
  - decimal.Decimal for every currency value; no float money
  - Statuses are closed string enums with explicit transition rules
  - All calculations are pure functions of their inputs

SEE ALSO:
  - accrual.go: pro-rata profit and whole-month payout
  - plan.go: plan catalog and rate extraction from type labels
  - reconcile/: withdrawable balance computation
*/
package invest

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// STATUS ENUMS
// =============================================================================

type InvestmentStatus string

const (
	// InvestmentStatusLegacy marks records written before the status field
	// existed. Treated as Approved everywhere; Normalize rewrites it.
	InvestmentStatusLegacy   InvestmentStatus = ""
	InvestmentStatusPending  InvestmentStatus = "Pending"
	InvestmentStatusApproved InvestmentStatus = "Approved"
	InvestmentStatusRejected InvestmentStatus = "Rejected"
)

// Normalize maps the legacy empty status to Approved.
func (s InvestmentStatus) Normalize() InvestmentStatus {
	if s == InvestmentStatusLegacy {
		return InvestmentStatusApproved
	}
	return s
}

// Terminal reports whether no further transition is defined from s.
func (s InvestmentStatus) Terminal() bool {
	n := s.Normalize()
	return n == InvestmentStatusApproved || n == InvestmentStatusRejected
}

// CanTransitionTo reports whether s -> target is a legal admin transition.
// Only Pending -> Approved and Pending -> Rejected exist.
func (s InvestmentStatus) CanTransitionTo(target InvestmentStatus) bool {
	if s.Normalize() != InvestmentStatusPending {
		return false
	}
	return target == InvestmentStatusApproved || target == InvestmentStatusRejected
}

type WithdrawalStatus string

const (
	WithdrawalStatusPending   WithdrawalStatus = "Pending"
	WithdrawalStatusCompleted WithdrawalStatus = "Completed"
	WithdrawalStatusRejected  WithdrawalStatus = "Rejected"
)

func (s WithdrawalStatus) Terminal() bool {
	return s == WithdrawalStatusCompleted || s == WithdrawalStatusRejected
}

// CanTransitionTo reports whether s -> target is legal.
// Only Pending -> Completed and Pending -> Rejected exist.
func (s WithdrawalStatus) CanTransitionTo(target WithdrawalStatus) bool {
	if s != WithdrawalStatusPending {
		return false
	}
	return target == WithdrawalStatusCompleted || target == WithdrawalStatusRejected
}

// =============================================================================
// ENTITIES
// =============================================================================

// Investment is a principal placed against a fixed-rate plan.
type Investment struct {
	ID        string // opaque document id
	DisplayID string // payment gateway reference, shown to users and admins
	UserID    string
	Type      string // plan label, e.g. "Moderate - 20% Monthly"
	Amount    decimal.Decimal
	Status    InvestmentStatus
	CreatedAt time.Time // authoritative accrual start
}

// Withdrawal is a request to pay out part of the accrued monthly balance.
type Withdrawal struct {
	ID            string // opaque document id
	DisplayID     string // per-user sequential id
	UserID        string
	Amount        decimal.Decimal // requested amount, netted against the ceiling
	ManagementFee decimal.Decimal // Amount * 0.02
	PayoutAmount  decimal.Decimal // Amount - ManagementFee
	Status        WithdrawalStatus
	CreatedAt     time.Time
}

// UserProfile is the persisted profile document: credentials, display and
// payout details, and role flags.
type UserProfile struct {
	ID             string
	FullName       string
	Email          string
	WhatsAppNumber string

	// PasswordHash is a bcrypt hash; the raw password is never stored.
	PasswordHash string

	// Payout bank details
	BankName      string
	AccountName   string
	AccountNumber string

	Disabled bool
	Admin    bool

	// PrivilegedWithdrawalAccess exempts the account from the submission
	// window and management fee. Role flag, not an identity check.
	PrivilegedWithdrawalAccess bool

	// WithdrawalPINHash is a bcrypt hash; the raw PIN is never stored.
	WithdrawalPINHash string

	CreatedAt time.Time
}
