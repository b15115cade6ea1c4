package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/baharkarakas/point-ledger/internal/models"
)

type auditLogsRepo struct{ q querier }

func (r *auditLogsRepo) Create(ctx context.Context, l models.AuditLog) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}
	_, err := r.q.Exec(ctx,
		`INSERT INTO audit_logs (id, entity_type, user_id, action, details, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		l.ID, l.EntityType, l.UserID, l.Action, l.Details, l.CreatedAt,
	)
	return err
}
