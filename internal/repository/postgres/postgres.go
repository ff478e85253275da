package postgres

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/garnizeh/assessboard/internal/repository"
)

const uniqueViolationCode = "23505"

// Repo implements the Record Store on PostgreSQL.
type Repo struct {
	pool   Pool
	logger *slog.Logger
	clock  func() time.Time
}

var _ repository.EmployeeRepo = (*Repo)(nil)
var _ repository.UserRepo = (*Repo)(nil)

func New(pool Pool, logger *slog.Logger) *Repo {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Repo{pool: pool, logger: logger, clock: time.Now}
}

// WithClock replaces the time source used for audit timestamps.
func (r *Repo) WithClock(clock func() time.Time) *Repo {
	r.clock = clock
	return r
}

func (r *Repo) now() time.Time {
	return r.clock().UTC().Truncate(time.Microsecond)
}

// withinTx runs fn in a read-write transaction.
func (r *Repo) withinTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadWrite})
	if err != nil {
		return fmt.Errorf("postgres: begin tx: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return errors.Join(err, fmt.Errorf("postgres: rollback: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

func translatePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return repository.ErrDuplicateEmail
	}
	return err
}
