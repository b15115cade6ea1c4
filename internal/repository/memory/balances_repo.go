package memory

import (
	"context"
	"sync"

	"github.com/baharkarakas/point-ledger/internal/models"
	repo "github.com/baharkarakas/point-ledger/internal/repository"
)

type balancesRepo struct {
	mu   sync.RWMutex
	rows map[int64]models.Balance
	now  Clock
}

func newBalancesRepo(now Clock) *balancesRepo {
	return &balancesRepo{rows: make(map[int64]models.Balance), now: now}
}

func (r *balancesRepo) SelectByID(_ context.Context, userID int64) (models.Balance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.rows[userID]
	if !ok {
		return models.Balance{}, repo.ErrNotFound
	}
	return b, nil
}

func (r *balancesRepo) InsertOrUpdate(_ context.Context, userID, amount int64) (models.Balance, error) {
	b := models.Balance{UserID: userID, Amount: amount, UpdatedAt: r.now()}
	r.mu.Lock()
	r.rows[userID] = b
	r.mu.Unlock()
	return b, nil
}

func (r *balancesRepo) get(userID int64) (models.Balance, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.rows[userID]
	return b, ok
}

func (r *balancesRepo) restore(userID int64, b models.Balance, exists bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !exists {
		delete(r.rows, userID)
		return
	}
	r.rows[userID] = b
}
