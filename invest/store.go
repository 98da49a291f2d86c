/*
store.go - Persistence interfaces for the document store

PURPOSE:
  Defines the interface between domain logic and the hosted document store.
  The store is organized as a flat users collection plus per-user
  sub-collections for investments and withdrawals; implementations mirror
  that scoping (every investment/withdrawal access is keyed by user).

MUTATION CONTRACT:
  Entities are never deleted. Investments and withdrawals are created by user
  action and mutated only by administrator status updates, expressed here as
  the narrow UpdateStatus methods rather than whole-document writes.

LEGACY NORMALIZATION:
  Implementations must return investments with the legacy empty status
  already normalized to Approved, so consuming code never sees it.

IMPLEMENTATIONS:
  - store/sqlite: production store
  - store/memory: in-memory store for tests
*/
package invest

import "context"

// UserStore persists user profile documents.
type UserStore interface {
	// GetUser returns ErrNotFound when the document is absent.
	GetUser(ctx context.Context, userID string) (UserProfile, error)

	// GetUserByEmail backs login. Emails are unique.
	GetUserByEmail(ctx context.Context, email string) (UserProfile, error)

	PutUser(ctx context.Context, u UserProfile) error

	// ListUsers returns all profiles, ordered by creation time.
	ListUsers(ctx context.Context) ([]UserProfile, error)

	// SetUserDisabled flips the account active/disabled flag.
	SetUserDisabled(ctx context.Context, userID string, disabled bool) error

	// SetWithdrawalPINHash stores the bcrypt hash of the withdrawal PIN.
	SetWithdrawalPINHash(ctx context.Context, userID, hash string) error
}

// InvestmentStore persists the per-user investments sub-collection.
type InvestmentStore interface {
	GetInvestment(ctx context.Context, userID, id string) (Investment, error)

	PutInvestment(ctx context.Context, inv Investment) error

	// ListInvestments returns the user's investments ordered by creation
	// time, legacy statuses normalized.
	ListInvestments(ctx context.Context, userID string) ([]Investment, error)

	// ListInvestmentsByStatus spans all users; used by the admin surface.
	ListInvestmentsByStatus(ctx context.Context, status InvestmentStatus) ([]Investment, error)

	// UpdateInvestmentStatus is the only mutation after creation.
	UpdateInvestmentStatus(ctx context.Context, userID, id string, status InvestmentStatus) error
}

// WithdrawalStore persists the per-user withdrawals sub-collection.
type WithdrawalStore interface {
	GetWithdrawal(ctx context.Context, userID, id string) (Withdrawal, error)

	PutWithdrawal(ctx context.Context, w Withdrawal) error

	// ListWithdrawals returns the user's withdrawals ordered by creation time.
	ListWithdrawals(ctx context.Context, userID string) ([]Withdrawal, error)

	// CountWithdrawals backs the per-user sequential display id.
	CountWithdrawals(ctx context.Context, userID string) (int, error)

	// ListWithdrawalsByStatus spans all users; used by the admin surface.
	ListWithdrawalsByStatus(ctx context.Context, status WithdrawalStatus) ([]Withdrawal, error)

	// UpdateWithdrawalStatus is the only mutation after creation.
	UpdateWithdrawalStatus(ctx context.Context, userID, id string, status WithdrawalStatus) error
}

// Store is the full document store surface.
type Store interface {
	UserStore
	InvestmentStore
	WithdrawalStore
}
