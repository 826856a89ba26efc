// Package economy implements the points economy: the ledger governing user
// balances, the reward redemption lifecycle, and the qualifying actions that
// award points (event joins, verified collections). Every compound mutation
// runs inside a single SQL transaction so no partial state is observable.
package economy

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrInactive            = errors.New("reward item is inactive")
	ErrOutOfStock          = errors.New("reward item is out of stock")
	ErrInsufficientBalance = errors.New("insufficient point balance")
	ErrEventFull           = errors.New("event is full")
	ErrAlreadyJoined       = errors.New("already joined event")
	ErrInvalidAmount       = errors.New("amount must be a positive integer")
	ErrInvalidTransition   = errors.New("invalid status transition")
)

type Service struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewService(db *sql.DB, logger *slog.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// withTx runs fn inside a transaction, retrying with backoff when SQLite
// reports a busy database. Domain errors pass through unretried.
func (s *Service) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	backoff := retry.WithMaxRetries(5, retry.NewFibonacci(10*time.Millisecond))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback()

		if err := fn(tx); err != nil {
			if isBusy(err) {
				return retry.RetryableError(err)
			}
			return err
		}

		if err := tx.Commit(); err != nil {
			if isBusy(err) {
				return retry.RetryableError(err)
			}
			return fmt.Errorf("commit tx: %w", err)
		}
		return nil
	})
}

func isBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}
