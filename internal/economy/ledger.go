package economy

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/wastenexus/wastenexus/internal/model"
)

// award increments a user's balance inside the caller's transaction and
// appends the audit record. The ledger does not guarantee idempotency;
// callers must prevent duplicate awards before calling.
func award(tx *sql.Tx, userID int64, amount int, txType model.TransactionType, description string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	result, err := tx.Exec(
		`UPDATE users SET points = points + ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		amount, userID,
	)
	if err != nil {
		return fmt.Errorf("award points: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	return recordTransaction(tx, userID, amount, txType, description)
}

// deduct is a compare-and-decrement: the balance check and the decrement are
// one statement, so concurrent deductions cannot drive a balance negative.
func deduct(tx *sql.Tx, userID int64, amount int, txType model.TransactionType, description string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	result, err := tx.Exec(
		`UPDATE users SET points = points - ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND points >= ?`,
		amount, userID, amount,
	)
	if err != nil {
		return fmt.Errorf("deduct points: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		var exists int
		if err := tx.QueryRow(`SELECT COUNT(*) FROM users WHERE id = ?`, userID).Scan(&exists); err != nil {
			return fmt.Errorf("check user: %w", err)
		}
		if exists == 0 {
			return ErrNotFound
		}
		return ErrInsufficientBalance
	}

	return recordTransaction(tx, userID, -amount, txType, description)
}

// recordTransaction appends the audit row. Every balance change produces
// exactly one transaction record, written in the same SQL transaction as the
// balance update.
func recordTransaction(tx *sql.Tx, userID int64, amount int, txType model.TransactionType, description string) error {
	_, err := tx.Exec(
		`INSERT INTO transactions (user_id, amount, type, description) VALUES (?, ?, ?, ?)`,
		userID, amount, txType, description,
	)
	if err != nil {
		return fmt.Errorf("record transaction: %w", err)
	}
	return nil
}

// Award credits points to a user in its own transaction.
func (s *Service) Award(ctx context.Context, userID int64, amount int, txType model.TransactionType, description string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return award(tx, userID, amount, txType, description)
	})
}

// Deduct debits points from a user in its own transaction. Fails with
// ErrInsufficientBalance when amount exceeds the current balance.
func (s *Service) Deduct(ctx context.Context, userID int64, amount int, txType model.TransactionType, description string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return deduct(tx, userID, amount, txType, description)
	})
}
