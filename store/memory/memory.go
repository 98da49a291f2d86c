/*
Package memory provides an in-memory invest.Store for tests.

Mirrors the semantics of the sqlite store: per-user scoping of investments
and withdrawals, legacy status normalization on read, creation-time ordering.
Thread-safe; data lives only for the process lifetime.
*/
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/ablelink/invest-engine/invest"
)

type Store struct {
	mu          sync.RWMutex
	users       map[string]invest.UserProfile
	investments map[string]map[string]invest.Investment // userID -> id -> record
	withdrawals map[string]map[string]invest.Withdrawal
}

func New() *Store {
	return &Store{
		users:       make(map[string]invest.UserProfile),
		investments: make(map[string]map[string]invest.Investment),
		withdrawals: make(map[string]map[string]invest.Withdrawal),
	}
}

var _ invest.Store = (*Store)(nil)

// =============================================================================
// USERS
// =============================================================================

func (s *Store) GetUser(_ context.Context, userID string) (invest.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return invest.UserProfile{}, invest.ErrNotFound
	}
	return u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (invest.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return invest.UserProfile{}, invest.ErrNotFound
}

func (s *Store) PutUser(_ context.Context, u invest.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]invest.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]invest.UserProfile, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) SetUserDisabled(_ context.Context, userID string, disabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return invest.ErrNotFound
	}
	u.Disabled = disabled
	s.users[userID] = u
	return nil
}

func (s *Store) SetWithdrawalPINHash(_ context.Context, userID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return invest.ErrNotFound
	}
	u.WithdrawalPINHash = hash
	s.users[userID] = u
	return nil
}

// =============================================================================
// INVESTMENTS
// =============================================================================

func (s *Store) GetInvestment(_ context.Context, userID, id string) (invest.Investment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.investments[userID][id]
	if !ok {
		return invest.Investment{}, invest.ErrNotFound
	}
	rec.Status = rec.Status.Normalize()
	return rec, nil
}

func (s *Store) PutInvestment(_ context.Context, inv invest.Investment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.investments[inv.UserID] == nil {
		s.investments[inv.UserID] = make(map[string]invest.Investment)
	}
	s.investments[inv.UserID][inv.ID] = inv
	return nil
}

func (s *Store) ListInvestments(_ context.Context, userID string) ([]invest.Investment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]invest.Investment, 0, len(s.investments[userID]))
	for _, rec := range s.investments[userID] {
		rec.Status = rec.Status.Normalize()
		out = append(out, rec)
	}
	sortInvestments(out)
	return out, nil
}

func (s *Store) ListInvestmentsByStatus(_ context.Context, status invest.InvestmentStatus) ([]invest.Investment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []invest.Investment
	for _, perUser := range s.investments {
		for _, rec := range perUser {
			rec.Status = rec.Status.Normalize()
			if rec.Status == status {
				out = append(out, rec)
			}
		}
	}
	sortInvestments(out)
	return out, nil
}

func (s *Store) UpdateInvestmentStatus(_ context.Context, userID, id string, status invest.InvestmentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.investments[userID][id]
	if !ok {
		return invest.ErrNotFound
	}
	rec.Status = status
	s.investments[userID][id] = rec
	return nil
}

// =============================================================================
// WITHDRAWALS
// =============================================================================

func (s *Store) GetWithdrawal(_ context.Context, userID, id string) (invest.Withdrawal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.withdrawals[userID][id]
	if !ok {
		return invest.Withdrawal{}, invest.ErrNotFound
	}
	return rec, nil
}

func (s *Store) PutWithdrawal(_ context.Context, w invest.Withdrawal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.withdrawals[w.UserID] == nil {
		s.withdrawals[w.UserID] = make(map[string]invest.Withdrawal)
	}
	s.withdrawals[w.UserID][w.ID] = w
	return nil
}

func (s *Store) ListWithdrawals(_ context.Context, userID string) ([]invest.Withdrawal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]invest.Withdrawal, 0, len(s.withdrawals[userID]))
	for _, rec := range s.withdrawals[userID] {
		out = append(out, rec)
	}
	sortWithdrawals(out)
	return out, nil
}

func (s *Store) CountWithdrawals(_ context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.withdrawals[userID]), nil
}

func (s *Store) ListWithdrawalsByStatus(_ context.Context, status invest.WithdrawalStatus) ([]invest.Withdrawal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []invest.Withdrawal
	for _, perUser := range s.withdrawals {
		for _, rec := range perUser {
			if rec.Status == status {
				out = append(out, rec)
			}
		}
	}
	sortWithdrawals(out)
	return out, nil
}

func (s *Store) UpdateWithdrawalStatus(_ context.Context, userID, id string, status invest.WithdrawalStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.withdrawals[userID][id]
	if !ok {
		return invest.ErrNotFound
	}
	rec.Status = status
	s.withdrawals[userID][id] = rec
	return nil
}

func sortInvestments(recs []invest.Investment) {
	sort.Slice(recs, func(i, j int) bool { return recs[i].CreatedAt.Before(recs[j].CreatedAt) })
}

func sortWithdrawals(recs []invest.Withdrawal) {
	sort.Slice(recs, func(i, j int) bool { return recs[i].CreatedAt.Before(recs[j].CreatedAt) })
}
