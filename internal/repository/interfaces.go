package repository

import (
	"context"
	"errors"
	"time"

	"github.com/baharkarakas/point-ledger/internal/models"
)

// ErrNotFound is returned by lookups when no record exists.
var ErrNotFound = errors.New("record not found")

type Balances interface {
	SelectByID(ctx context.Context, userID int64) (models.Balance, error)
	// InsertOrUpdate replaces the user's balance, creating the record if needed.
	InsertOrUpdate(ctx context.Context, userID, amount int64) (models.Balance, error)
}

type Histories interface {
	Insert(ctx context.Context, userID, amount int64, kind models.TransactionKind, at time.Time) (models.HistoryEntry, error)
	// SelectAllByUserID returns entries in insertion order.
	SelectAllByUserID(ctx context.Context, userID int64) ([]models.HistoryEntry, error)
}

// Ledger groups the stores touched by one balance mutation.
type Ledger interface {
	Balances() Balances
	Histories() Histories

	// WithTx runs fn against stores bound to a single unit of work.
	// Nothing fn wrote is kept when it returns an error.
	WithTx(ctx context.Context, fn func(b Balances, h Histories) error) error
}

type AuditLogs interface {
	Create(ctx context.Context, l models.AuditLog) error
}

type Repositories struct {
	Ledger    Ledger
	AuditLogs AuditLogs
}
