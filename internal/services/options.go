package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/baharkarakas/point-ledger/internal/locks"
	"github.com/baharkarakas/point-ledger/internal/models"
	repo "github.com/baharkarakas/point-ledger/internal/repository"
	"github.com/baharkarakas/point-ledger/internal/worker"
)

// BalanceCache is a best-effort read cache of balance records.
type BalanceCache interface {
	Get(ctx context.Context, userID int64) (models.Balance, bool, error)
	Set(ctx context.Context, b models.Balance) error
	Delete(ctx context.Context, userID int64) error
}

type Option func(*PointService)

// WithStrictUsers makes operations on users without a stored balance fail
// with ErrUserNotFound instead of starting from zero.
func WithStrictUsers() Option {
	return func(s *PointService) { s.strict = true }
}

func WithLocks(r *locks.Registry) Option {
	return func(s *PointService) { s.locks = r }
}

func WithCache(c BalanceCache) Option {
	return func(s *PointService) { s.cache = c }
}

// WithAudit records every operation outcome in logs, written from wp.
func WithAudit(logs repo.AuditLogs, wp *worker.Pool) Option {
	return func(s *PointService) {
		s.auditLogs = logs
		s.wp = wp
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *PointService) { s.log = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *PointService) { s.now = now }
}
