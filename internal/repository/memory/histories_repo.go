package memory

import (
	"context"
	"sync"
	"time"

	"github.com/baharkarakas/point-ledger/internal/models"
)

type historiesRepo struct {
	mu     sync.RWMutex
	seq    int64
	byUser map[int64][]models.HistoryEntry
}

func newHistoriesRepo() *historiesRepo {
	return &historiesRepo{byUser: make(map[int64][]models.HistoryEntry)}
}

func (r *historiesRepo) Insert(_ context.Context, userID, amount int64, kind models.TransactionKind, at time.Time) (models.HistoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	e := models.HistoryEntry{
		ID:        r.seq,
		UserID:    userID,
		Amount:    amount,
		Kind:      kind,
		CreatedAt: at,
	}
	r.byUser[userID] = append(r.byUser[userID], e)
	return e, nil
}

func (r *historiesRepo) SelectAllByUserID(_ context.Context, userID int64) ([]models.HistoryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	src := r.byUser[userID]
	out := make([]models.HistoryEntry, len(src))
	copy(out, src)
	return out, nil
}

// remove drops one entry; ids are not reused.
func (r *historiesRepo) remove(userID, id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	src := r.byUser[userID]
	for i := len(src) - 1; i >= 0; i-- {
		if src[i].ID == id {
			r.byUser[userID] = append(src[:i], src[i+1:]...)
			break
		}
	}
	if len(r.byUser[userID]) == 0 {
		delete(r.byUser, userID)
	}
}
