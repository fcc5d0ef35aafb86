package sqlite

import (
	"context"
	"database/sql"
	"time"
)

// CreditRepository tracks per-user credit balances. Accounts are
// provisioned lazily with the configured initial grant on first use.
type CreditRepository struct {
	db           *sql.DB
	initialGrant int64
}

// NewCreditRepository creates a new CreditRepository.
func NewCreditRepository(db *sql.DB, initialGrant int64) *CreditRepository {
	return &CreditRepository{db: db, initialGrant: initialGrant}
}

func (r *CreditRepository) ensure(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO credit_accounts (user_id, balance, updated_at) VALUES (?, ?, ?)
	`, userID, r.initialGrant, now())
	return err
}

// HasSufficientBalance reports whether the user can afford the given amount.
func (r *CreditRepository) HasSufficientBalance(ctx context.Context, userID string, amount int64) (bool, error) {
	balance, err := r.Balance(ctx, userID)
	if err != nil {
		return false, err
	}
	return balance >= amount, nil
}

// Charge atomically deducts amount from the user's balance. It returns
// sql.ErrNoRows when the balance is too low for the deduction.
func (r *CreditRepository) Charge(ctx context.Context, userID string, amount int64) error {
	if err := r.ensure(ctx, userID); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE credit_accounts SET balance = balance - ?, updated_at = ? WHERE user_id = ? AND balance >= ?
	`, amount, now(), userID, amount)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Balance returns the user's current balance, provisioning the account
// if it does not exist yet.
func (r *CreditRepository) Balance(ctx context.Context, userID string) (int64, error) {
	if err := r.ensure(ctx, userID); err != nil {
		return 0, err
	}
	var balance int64
	err := r.db.QueryRowContext(ctx, `
		SELECT balance FROM credit_accounts WHERE user_id = ?
	`, userID).Scan(&balance)
	return balance, err
}

// Grant adds amount to the user's balance.
func (r *CreditRepository) Grant(ctx context.Context, userID string, amount int64) error {
	if err := r.ensure(ctx, userID); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
		UPDATE credit_accounts SET balance = balance + ?, updated_at = ? WHERE user_id = ?
	`, amount, now(), userID)
	return err
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

