// Package postgres implements the store port on PostgreSQL via pgx.
// Transactions run at serializable isolation; serialization failures
// surface as domain.ErrConcurrentModification and are never retried here;
// retry is left to the caller.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/phaseline/phaseline/internal/domain"
	"github.com/phaseline/phaseline/internal/ports"
)

// SQLSTATE codes translated into domain sentinels: the first two mean the
// serializable isolation level could not be satisfied, the third that a
// write collided with a uniqueness constraint.
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeUniqueViolation      = "23505"
)

// Compile-time checks.
var (
	_ ports.Store         = (*Store)(nil)
	_ ports.HealthChecker = (*Store)(nil)
)

// Store is a PostgreSQL-backed record store.
type Store struct {
	pool *pgxpool.Pool
}

// New connects a pool to the given DSN and verifies the connection.
func New(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// WithinTx runs fn inside a serializable transaction. Any error from fn
// rolls the transaction back and is returned unchanged, except that
// serialization failures are translated to domain.ErrConcurrentModification.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx ports.Tx) error) error {
	pgtx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = pgtx.Rollback(ctx) }()

	if err := fn(ctx, &tx{q: pgtx}); err != nil {
		return translateErr(err)
	}
	if err := pgtx.Commit(ctx); err != nil {
		return translateErr(fmt.Errorf("committing transaction: %w", err))
	}
	return nil
}

// Name implements ports.HealthChecker.
func (s *Store) Name() string { return "postgres" }

// HealthCheck implements ports.HealthChecker.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// translateErr maps serialization failures and uniqueness violations to
// domain sentinels. All other errors pass through untouched so domain
// sentinels wrapped by repos survive.
func translateErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeSerializationFailure, codeDeadlockDetected:
			return fmt.Errorf("%w: %s", domain.ErrConcurrentModification, pgErr.Code)
		case codeUniqueViolation:
			return fmt.Errorf("%w: %s", domain.ErrConflict, pgErr.ConstraintName)
		}
	}
	return err
}

// tx adapts one open pgx transaction to the ports.Tx repository set.
type tx struct {
	q pgx.Tx
}

func (t *tx) Projects() ports.ProjectRepo    { return &projectRepo{q: t.q} }
func (t *tx) Stages() ports.StageRepo        { return &stageRepo{q: t.q} }
func (t *tx) Activities() ports.ActivityRepo { return &activityRepo{q: t.q} }
func (t *tx) Budgets() ports.BudgetRepo      { return &budgetRepo{q: t.q} }
