package memory

import (
	"context"
	"time"

	"github.com/baharkarakas/point-ledger/internal/models"
	repo "github.com/baharkarakas/point-ledger/internal/repository"
)

// Ledger keeps balances and histories in process memory. WithTx undoes the
// writes of a failed unit of work; callers serialize writers per user.
type Ledger struct {
	balances  *balancesRepo
	histories *historiesRepo
}

func NewLedger(now Clock) *Ledger {
	if now == nil {
		now = time.Now
	}
	return &Ledger{
		balances:  newBalancesRepo(now),
		histories: newHistoriesRepo(),
	}
}

func (l *Ledger) Balances() repo.Balances   { return l.balances }
func (l *Ledger) Histories() repo.Histories { return l.histories }

// WithTx hands fn stores that record an undo log. When fn returns an error
// or panics every balance it wrote is restored and every history entry it
// appended is removed.
func (l *Ledger) WithTx(ctx context.Context, fn func(b repo.Balances, h repo.Histories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx := &memTx{
		balances:  l.balances,
		histories: l.histories,
		before:    make(map[int64]priorBalance),
	}
	committed := false
	defer func() {
		if !committed {
			tx.rollback()
		}
	}()

	if err := fn(&txBalances{tx}, &txHistories{tx}); err != nil {
		return err
	}
	committed = true
	return nil
}

type priorBalance struct {
	b      models.Balance
	exists bool
}

type memTx struct {
	balances  *balancesRepo
	histories *historiesRepo
	before    map[int64]priorBalance
	inserted  []models.HistoryEntry
}

func (tx *memTx) rollback() {
	for i := len(tx.inserted) - 1; i >= 0; i-- {
		e := tx.inserted[i]
		tx.histories.remove(e.UserID, e.ID)
	}
	for userID, p := range tx.before {
		tx.balances.restore(userID, p.b, p.exists)
	}
}

type txBalances struct{ tx *memTx }

func (t *txBalances) SelectByID(ctx context.Context, userID int64) (models.Balance, error) {
	return t.tx.balances.SelectByID(ctx, userID)
}

func (t *txBalances) InsertOrUpdate(ctx context.Context, userID, amount int64) (models.Balance, error) {
	if _, seen := t.tx.before[userID]; !seen {
		b, exists := t.tx.balances.get(userID)
		t.tx.before[userID] = priorBalance{b: b, exists: exists}
	}
	return t.tx.balances.InsertOrUpdate(ctx, userID, amount)
}

type txHistories struct{ tx *memTx }

func (t *txHistories) Insert(ctx context.Context, userID, amount int64, kind models.TransactionKind, at time.Time) (models.HistoryEntry, error) {
	e, err := t.tx.histories.Insert(ctx, userID, amount, kind, at)
	if err == nil {
		t.tx.inserted = append(t.tx.inserted, e)
	}
	return e, err
}

func (t *txHistories) SelectAllByUserID(ctx context.Context, userID int64) ([]models.HistoryEntry, error) {
	return t.tx.histories.SelectAllByUserID(ctx, userID)
}
