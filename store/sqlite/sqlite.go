/*
Package sqlite provides the SQLite-backed implementation of invest.Store.

PURPOSE:
  Persists the users collection and the per-user investments and withdrawals
  sub-collections. In production against a hosted document store the same
  access patterns apply; this implementation keeps the document-style scoping
  (every investment/withdrawal row is keyed by user) in a relational schema.

MUTATION CONTRACT:
  - No DELETE statements exist; entities are never deleted
  - Investments and withdrawals are only ever mutated through the narrow
    status-update methods

LEGACY NORMALIZATION:
  Investments written before the status column carried a value come back with
  status '' and are normalized to Approved in scan, so consuming code never
  sees the legacy form.

WAL MODE:
  Opened with WAL for concurrent readers; a sync.RWMutex serializes writers
  in-process.

MIGRATION:
  Schema is auto-migrated on New(). Use ":memory:" for throwaway databases.
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/ablelink/invest-engine/invest"
)

// Store implements invest.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (and migrates) the database at dbPath. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		full_name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL DEFAULT '',
		whatsapp_number TEXT,
		bank_name TEXT,
		account_name TEXT,
		account_number TEXT,
		disabled INTEGER NOT NULL DEFAULT 0,
		admin INTEGER NOT NULL DEFAULT 0,
		privileged_withdrawal_access INTEGER NOT NULL DEFAULT 0,
		withdrawal_pin_hash TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS investments (
		user_id TEXT NOT NULL,
		id TEXT NOT NULL,
		display_id TEXT NOT NULL,
		type TEXT NOT NULL,
		amount TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		PRIMARY KEY (user_id, id)
	);

	CREATE TABLE IF NOT EXISTS withdrawals (
		user_id TEXT NOT NULL,
		id TEXT NOT NULL,
		display_id TEXT NOT NULL,
		amount TEXT NOT NULL,
		management_fee TEXT NOT NULL,
		payout_amount TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at TEXT NOT NULL,
		PRIMARY KEY (user_id, id)
	);

	CREATE INDEX IF NOT EXISTS idx_investments_user_created ON investments(user_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_investments_status ON investments(status);
	CREATE INDEX IF NOT EXISTS idx_withdrawals_user_created ON withdrawals(user_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_withdrawals_status ON withdrawals(status);
	`
	_, err := s.db.Exec(schema)
	return err
}

var _ invest.Store = (*Store)(nil)

// =============================================================================
// USERS
// =============================================================================

const userColumns = `id, full_name, email, password_hash, whatsapp_number, bank_name, account_name,
	account_number, disabled, admin, privileged_withdrawal_access, withdrawal_pin_hash, created_at`

func (s *Store) GetUser(ctx context.Context, userID string) (invest.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, userID)
	return scanUser(row)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (invest.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (s *Store) PutUser(ctx context.Context, u invest.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			full_name = excluded.full_name,
			email = excluded.email,
			password_hash = excluded.password_hash,
			whatsapp_number = excluded.whatsapp_number,
			bank_name = excluded.bank_name,
			account_name = excluded.account_name,
			account_number = excluded.account_number,
			disabled = excluded.disabled,
			admin = excluded.admin,
			privileged_withdrawal_access = excluded.privileged_withdrawal_access,
			withdrawal_pin_hash = excluded.withdrawal_pin_hash`,
		u.ID, u.FullName, u.Email, u.PasswordHash, u.WhatsAppNumber, u.BankName, u.AccountName,
		u.AccountNumber, boolToInt(u.Disabled), boolToInt(u.Admin),
		boolToInt(u.PrivilegedWithdrawalAccess), u.WithdrawalPINHash,
		u.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("put user %s: %w", u.ID, err)
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]invest.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []invest.UserProfile
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *Store) SetUserDisabled(ctx context.Context, userID string, disabled bool) error {
	return s.updateUserField(ctx, userID, "disabled", boolToInt(disabled))
}

func (s *Store) SetWithdrawalPINHash(ctx context.Context, userID, hash string) error {
	return s.updateUserField(ctx, userID, "withdrawal_pin_hash", hash)
}

func (s *Store) updateUserField(ctx context.Context, userID, column string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET `+column+` = ? WHERE id = ?`, value, userID)
	if err != nil {
		return fmt.Errorf("update user %s: %w", userID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return invest.ErrNotFound
	}
	return nil
}

// =============================================================================
// INVESTMENTS
// =============================================================================

const investmentColumns = `user_id, id, display_id, type, amount, status, created_at`

func (s *Store) GetInvestment(ctx context.Context, userID, id string) (invest.Investment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+investmentColumns+` FROM investments WHERE user_id = ? AND id = ?`, userID, id)
	return scanInvestment(row)
}

func (s *Store) PutInvestment(ctx context.Context, inv invest.Investment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO investments (`+investmentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		inv.UserID, inv.ID, inv.DisplayID, inv.Type, inv.Amount.String(),
		string(inv.Status), inv.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("put investment %s/%s: %w", inv.UserID, inv.ID, err)
	}
	return nil
}

func (s *Store) ListInvestments(ctx context.Context, userID string) ([]invest.Investment, error) {
	return s.queryInvestments(ctx,
		`SELECT `+investmentColumns+` FROM investments WHERE user_id = ? ORDER BY created_at`, userID)
}

func (s *Store) ListInvestmentsByStatus(ctx context.Context, status invest.InvestmentStatus) ([]invest.Investment, error) {
	if status == invest.InvestmentStatusApproved {
		// Legacy rows carry '' and count as Approved.
		return s.queryInvestments(ctx,
			`SELECT `+investmentColumns+` FROM investments WHERE status IN (?, '') ORDER BY created_at`,
			string(status))
	}
	return s.queryInvestments(ctx,
		`SELECT `+investmentColumns+` FROM investments WHERE status = ? ORDER BY created_at`,
		string(status))
}

func (s *Store) queryInvestments(ctx context.Context, query string, args ...any) ([]invest.Investment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []invest.Investment
	for rows.Next() {
		inv, err := scanInvestment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (s *Store) UpdateInvestmentStatus(ctx context.Context, userID, id string, status invest.InvestmentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE investments SET status = ? WHERE user_id = ? AND id = ?`,
		string(status), userID, id)
	if err != nil {
		return fmt.Errorf("update investment %s/%s: %w", userID, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return invest.ErrNotFound
	}
	return nil
}

// =============================================================================
// WITHDRAWALS
// =============================================================================

const withdrawalColumns = `user_id, id, display_id, amount, management_fee, payout_amount, status, created_at`

func (s *Store) GetWithdrawal(ctx context.Context, userID, id string) (invest.Withdrawal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+withdrawalColumns+` FROM withdrawals WHERE user_id = ? AND id = ?`, userID, id)
	return scanWithdrawal(row)
}

func (s *Store) PutWithdrawal(ctx context.Context, w invest.Withdrawal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO withdrawals (`+withdrawalColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		w.UserID, w.ID, w.DisplayID, w.Amount.String(), w.ManagementFee.String(),
		w.PayoutAmount.String(), string(w.Status), w.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("put withdrawal %s/%s: %w", w.UserID, w.ID, err)
	}
	return nil
}

func (s *Store) ListWithdrawals(ctx context.Context, userID string) ([]invest.Withdrawal, error) {
	return s.queryWithdrawals(ctx,
		`SELECT `+withdrawalColumns+` FROM withdrawals WHERE user_id = ? ORDER BY created_at`, userID)
}

func (s *Store) CountWithdrawals(ctx context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM withdrawals WHERE user_id = ?`, userID).Scan(&n)
	return n, err
}

func (s *Store) ListWithdrawalsByStatus(ctx context.Context, status invest.WithdrawalStatus) ([]invest.Withdrawal, error) {
	return s.queryWithdrawals(ctx,
		`SELECT `+withdrawalColumns+` FROM withdrawals WHERE status = ? ORDER BY created_at`,
		string(status))
}

func (s *Store) queryWithdrawals(ctx context.Context, query string, args ...any) ([]invest.Withdrawal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []invest.Withdrawal
	for rows.Next() {
		w, err := scanWithdrawal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (s *Store) UpdateWithdrawalStatus(ctx context.Context, userID, id string, status invest.WithdrawalStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE withdrawals SET status = ? WHERE user_id = ? AND id = ?`,
		string(status), userID, id)
	if err != nil {
		return fmt.Errorf("update withdrawal %s/%s: %w", userID, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return invest.ErrNotFound
	}
	return nil
}

// =============================================================================
// SCANNING
// =============================================================================

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(r rowScanner) (invest.UserProfile, error) {
	var u invest.UserProfile
	var disabled, admin, privileged int
	var createdAt string
	err := r.Scan(&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &u.WhatsAppNumber, &u.BankName,
		&u.AccountName, &u.AccountNumber, &disabled, &admin, &privileged,
		&u.WithdrawalPINHash, &createdAt)
	if err == sql.ErrNoRows {
		return invest.UserProfile{}, invest.ErrNotFound
	}
	if err != nil {
		return invest.UserProfile{}, err
	}
	u.Disabled = disabled != 0
	u.Admin = admin != 0
	u.PrivilegedWithdrawalAccess = privileged != 0
	u.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	return u, err
}

func scanInvestment(r rowScanner) (invest.Investment, error) {
	var inv invest.Investment
	var amount, status, createdAt string
	err := r.Scan(&inv.UserID, &inv.ID, &inv.DisplayID, &inv.Type, &amount, &status, &createdAt)
	if err == sql.ErrNoRows {
		return invest.Investment{}, invest.ErrNotFound
	}
	if err != nil {
		return invest.Investment{}, err
	}
	if inv.Amount, err = decimal.NewFromString(amount); err != nil {
		return invest.Investment{}, fmt.Errorf("corrupt amount %q: %w", amount, err)
	}
	inv.Status = invest.InvestmentStatus(status).Normalize()
	inv.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	return inv, err
}

func scanWithdrawal(r rowScanner) (invest.Withdrawal, error) {
	var w invest.Withdrawal
	var amount, fee, payout, status, createdAt string
	err := r.Scan(&w.UserID, &w.ID, &w.DisplayID, &amount, &fee, &payout, &status, &createdAt)
	if err == sql.ErrNoRows {
		return invest.Withdrawal{}, invest.ErrNotFound
	}
	if err != nil {
		return invest.Withdrawal{}, err
	}
	if w.Amount, err = decimal.NewFromString(amount); err != nil {
		return invest.Withdrawal{}, fmt.Errorf("corrupt amount %q: %w", amount, err)
	}
	if w.ManagementFee, err = decimal.NewFromString(fee); err != nil {
		return invest.Withdrawal{}, fmt.Errorf("corrupt fee %q: %w", fee, err)
	}
	if w.PayoutAmount, err = decimal.NewFromString(payout); err != nil {
		return invest.Withdrawal{}, fmt.Errorf("corrupt payout %q: %w", payout, err)
	}
	w.Status = invest.WithdrawalStatus(status)
	w.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	return w, err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
