package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/baharkarakas/booking-ledger/internal/models"
	repo "github.com/baharkarakas/booking-ledger/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the Postgres implementation of repository.Store.
type Store struct {
	pool *pgxpool.Pool
}

var _ repo.Store = (*Store)(nil)

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// WithTx runs fn inside one READ COMMITTED transaction. Every row the engine
// mutates is read FOR UPDATE first, so a waiter sees the committed row once
// the lock is released instead of failing. The transaction is rolled back on
// error or panic, which releases those row locks.
func (s *Store) WithTx(ctx context.Context, fn func(repo.Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.ReadCommitted,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return mapErr("begin", err)
	}
	// no-op after Commit; detached so a cancelled request still rolls back
	defer func() { _ = tx.Rollback(context.WithoutCancel(ctx)) }()

	if err := fn(&pgTx{tx: tx}); err != nil {
		return mapErr("scope", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return mapErr("commit", err)
	}
	return nil
}

type pgTx struct{ tx pgx.Tx }

var _ repo.Tx = (*pgTx)(nil)

const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
	sqlStateLockNotAvailable     = "55P03"
	sqlStateNumericOutOfRange    = "22003"
)

// mapErr turns driver errors into engine error types; typed engine errors
// pass through unchanged.
func mapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case sqlStateSerializationFailure, sqlStateDeadlockDetected, sqlStateLockNotAvailable:
			return &models.ConcurrencyConflictError{Op: op, Err: err}
		case sqlStateNumericOutOfRange:
			return fmt.Errorf("%s: %w", op, models.ErrAmountTooLarge)
		}
	}
	if errors.Is(err, models.ErrInvalidTransition) || errors.Is(err, models.ErrUnauthorized) ||
		errors.Is(err, models.ErrInsufficientFunds) || errors.Is(err, models.ErrNotFound) ||
		errors.Is(err, models.ErrConcurrencyConflict) || errors.Is(err, models.ErrInvalidAmount) {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}

func notFound(entity, id string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return &models.NotFoundError{Entity: entity, ID: id}
	}
	return err
}

// limitArg maps a non-positive limit to NULL, which Postgres reads as LIMIT ALL.
func limitArg(limit int) any {
	if limit <= 0 {
		return nil
	}
	return limit
}
