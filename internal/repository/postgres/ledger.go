package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	repo "github.com/baharkarakas/point-ledger/internal/repository"
)

const maxTxAttempts = 3

type Ledger struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

func NewLedger(pool *pgxpool.Pool, log *zap.Logger) *Ledger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Ledger{pool: pool, log: log}
}

func (l *Ledger) Balances() repo.Balances   { return &balancesRepo{l.pool} }
func (l *Ledger) Histories() repo.Histories { return &historiesRepo{l.pool} }

// WithTx runs fn in one serializable transaction, retrying serialization
// failures and deadlocks.
func (l *Ledger) WithTx(ctx context.Context, fn func(b repo.Balances, h repo.Histories) error) error {
	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		if err = l.runTx(ctx, fn); err == nil || !isRetryable(err) {
			return err
		}
		l.log.Warn("ledger transaction conflict, retrying",
			zap.Int("attempt", attempt),
			zap.Error(err))
	}
	return fmt.Errorf("ledger transaction failed after %d attempts: %w", maxTxAttempts, err)
}

func (l *Ledger) runTx(ctx context.Context, fn func(b repo.Balances, h repo.Histories) error) error {
	tx, err := l.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.Serializable,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			l.log.Error("rollback failed", zap.Error(rbErr))
		}
	}()

	if err := fn(&balancesRepo{tx}, &historiesRepo{tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected:
			return true
		}
	}
	return false
}
