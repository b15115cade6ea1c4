package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/baharkarakas/point-ledger/internal/models"
)

type AuditLogs struct {
	mu   sync.Mutex
	rows []models.AuditLog
	now  Clock
}

func NewAuditLogs(now Clock) *AuditLogs {
	if now == nil {
		now = time.Now
	}
	return &AuditLogs{now: now}
}

func (r *AuditLogs) Create(_ context.Context, l models.AuditLog) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = r.now()
	}
	r.mu.Lock()
	r.rows = append(r.rows, l)
	r.mu.Unlock()
	return nil
}

// List returns a snapshot of every stored entry in insertion order.
func (r *AuditLogs) List() []models.AuditLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.AuditLog, len(r.rows))
	copy(out, r.rows)
	return out
}
