package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/baharkarakas/point-ledger/internal/locks"
	"github.com/baharkarakas/point-ledger/internal/metrics"
	"github.com/baharkarakas/point-ledger/internal/models"
	repo "github.com/baharkarakas/point-ledger/internal/repository"
	"github.com/baharkarakas/point-ledger/internal/worker"
)

// PointService owns every mutation of user point balances. Operations on
// the same user run one at a time; different users never wait on each other.
type PointService struct {
	ledger    repo.Ledger
	locks     *locks.Registry
	cache     BalanceCache
	auditLogs repo.AuditLogs
	wp        *worker.Pool
	log       *zap.Logger
	now       func() time.Time
	strict    bool
}

func NewPointService(ledger repo.Ledger, opts ...Option) *PointService {
	s := &PointService{ledger: ledger}
	for _, opt := range opts {
		opt(s)
	}
	if s.locks == nil {
		s.locks = locks.NewRegistry()
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *PointService) Locks() *locks.Registry { return s.locks }

// ----------------- Mutations -----------------

func (s *PointService) Charge(ctx context.Context, userID, amount int64) (models.Balance, error) {
	if amount < 0 {
		return s.finish(models.KindCharge, userID, amount, models.Balance{}, ErrInvalidAmount)
	}
	b, err := s.mutate(ctx, userID, amount, models.KindCharge, func(current int64) (int64, error) {
		// current never exceeds MaxBalance, so the subtraction cannot overflow.
		if amount > models.MaxBalance-current {
			return 0, ErrBalanceLimitExceeded
		}
		return current + amount, nil
	})
	return s.finish(models.KindCharge, userID, amount, b, err)
}

func (s *PointService) Use(ctx context.Context, userID, amount int64) (models.Balance, error) {
	if amount < 0 {
		return s.finish(models.KindUse, userID, amount, models.Balance{}, ErrInvalidAmount)
	}
	b, err := s.mutate(ctx, userID, amount, models.KindUse, func(current int64) (int64, error) {
		if current < amount {
			return 0, ErrInsufficientBalance
		}
		return current - amount, nil
	})
	return s.finish(models.KindUse, userID, amount, b, err)
}

// RecordHistory appends an entry without touching the balance.
func (s *PointService) RecordHistory(ctx context.Context, userID, amount int64, kind models.TransactionKind) (models.HistoryEntry, error) {
	if !kind.Valid() {
		return models.HistoryEntry{}, ErrInvalidKind
	}
	e, err := s.ledger.Histories().Insert(ctx, userID, amount, kind, s.now())
	if err != nil {
		return models.HistoryEntry{}, fmt.Errorf("append history: %w", err)
	}
	return e, nil
}

// mutate is the critical section shared by Charge and Use: read, check via
// apply, write the balance and append history, all under the user's lock
// and inside one ledger transaction.
func (s *PointService) mutate(
	ctx context.Context,
	userID, amount int64,
	kind models.TransactionKind,
	apply func(current int64) (int64, error),
) (models.Balance, error) {
	mu := s.locks.For(userID)
	mu.Lock()
	defer mu.Unlock()

	start := time.Now()
	defer func() {
		metrics.CriticalSectionSeconds.WithLabelValues(label(kind)).Observe(time.Since(start).Seconds())
	}()

	var updated models.Balance
	err := s.ledger.WithTx(ctx, func(b repo.Balances, h repo.Histories) error {
		current, err := s.load(ctx, b, userID)
		if err != nil {
			return err
		}
		next, err := apply(current.Amount)
		if err != nil {
			return err
		}
		if updated, err = b.InsertOrUpdate(ctx, userID, next); err != nil {
			return fmt.Errorf("update balance: %w", err)
		}
		at := updated.UpdatedAt
		if at.IsZero() {
			at = s.now()
		}
		if _, err := h.Insert(ctx, userID, amount, kind, at); err != nil {
			return fmt.Errorf("append history: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.Balance{}, err
	}

	s.cachePut(ctx, updated)
	return updated, nil
}

func (s *PointService) load(ctx context.Context, b repo.Balances, userID int64) (models.Balance, error) {
	current, err := b.SelectByID(ctx, userID)
	switch {
	case err == nil:
		return current, nil
	case errors.Is(err, repo.ErrNotFound):
		if s.strict {
			return models.Balance{}, ErrUserNotFound
		}
		return models.Empty(userID), nil
	default:
		return models.Balance{}, fmt.Errorf("select balance: %w", err)
	}
}

// ----------------- Queries -----------------

func (s *PointService) Point(ctx context.Context, userID int64) (models.Balance, error) {
	if s.cache == nil {
		return s.load(ctx, s.ledger.Balances(), userID)
	}
	if b, ok := s.cacheGet(ctx, userID); ok {
		return b, nil
	}

	// Filling under the lock keeps a slow reader from caching a value older
	// than one a writer just stored.
	mu := s.locks.For(userID)
	mu.Lock()
	defer mu.Unlock()
	b, err := s.load(ctx, s.ledger.Balances(), userID)
	if err != nil {
		return models.Balance{}, err
	}
	s.cachePut(ctx, b)
	return b, nil
}

func (s *PointService) Histories(ctx context.Context, userID int64) ([]models.HistoryEntry, error) {
	entries, err := s.ledger.Histories().SelectAllByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("select histories: %w", err)
	}
	if entries == nil {
		entries = []models.HistoryEntry{}
	}
	return entries, nil
}

// ----------------- Helpers -----------------

func label(kind models.TransactionKind) string { return strings.ToLower(string(kind)) }

func (s *PointService) finish(kind models.TransactionKind, userID, amount int64, b models.Balance, err error) (models.Balance, error) {
	result := resultLabel(err)
	metrics.OperationsTotal.WithLabelValues(label(kind), result).Inc()

	details := map[string]any{"amount": amount, "result": result}
	action := label(kind)
	switch {
	case err == nil:
		details["balance"] = b.Amount
	case IsRejection(err):
		action += "_rejected"
		s.log.Debug("point operation rejected",
			zap.String("kind", string(kind)),
			zap.Int64("user_id", userID),
			zap.Int64("amount", amount),
			zap.Error(err))
	default:
		action += "_failed"
		details["error"] = err.Error()
		s.log.Error("point operation failed",
			zap.String("kind", string(kind)),
			zap.Int64("user_id", userID),
			zap.Int64("amount", amount),
			zap.Error(err))
	}
	s.audit(userID, action, details)
	return b, err
}

func (s *PointService) audit(userID int64, action string, details map[string]any) {
	if s.auditLogs == nil || s.wp == nil {
		return
	}
	entry := models.AuditLog{
		EntityType: "point",
		UserID:     userID,
		Action:     action,
		Details:    details,
		CreatedAt:  s.now(),
	}
	ok := s.wp.Submit(func() {
		if err := s.auditLogs.Create(context.Background(), entry); err != nil {
			s.log.Warn("audit write failed", zap.Int64("user_id", userID), zap.Error(err))
		}
	})
	if !ok {
		s.log.Warn("audit dropped: worker pool stopped", zap.Int64("user_id", userID))
	}
}

func (s *PointService) cacheGet(ctx context.Context, userID int64) (models.Balance, bool) {
	b, ok, err := s.cache.Get(ctx, userID)
	switch {
	case err != nil:
		metrics.CacheLookups.WithLabelValues("error").Inc()
		s.log.Warn("balance cache read failed", zap.Int64("user_id", userID), zap.Error(err))
		return models.Balance{}, false
	case !ok:
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return models.Balance{}, false
	}
	metrics.CacheLookups.WithLabelValues("hit").Inc()
	return b, true
}

// cachePut must be called with the user's lock held.
func (s *PointService) cachePut(ctx context.Context, b models.Balance) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, b); err != nil {
		s.log.Warn("balance cache write failed", zap.Int64("user_id", b.UserID), zap.Error(err))
		if err := s.cache.Delete(ctx, b.UserID); err != nil {
			s.log.Warn("balance cache evict failed", zap.Int64("user_id", b.UserID), zap.Error(err))
		}
	}
}
