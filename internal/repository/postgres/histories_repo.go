package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/baharkarakas/point-ledger/internal/models"
)

type historiesRepo struct{ q querier }

func (r *historiesRepo) Insert(ctx context.Context, userID, amount int64, kind models.TransactionKind, at time.Time) (models.HistoryEntry, error) {
	if !kind.Valid() {
		return models.HistoryEntry{}, fmt.Errorf("insert history: unknown transaction kind %q", kind)
	}
	e := models.HistoryEntry{UserID: userID, Amount: amount, Kind: kind}
	err := r.q.QueryRow(ctx,
		`INSERT INTO point_histories (user_id, amount, kind, created_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		userID, amount, string(kind), at,
	).Scan(&e.ID, &e.CreatedAt)
	return e, err
}

func (r *historiesRepo) SelectAllByUserID(ctx context.Context, userID int64) ([]models.HistoryEntry, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, user_id, amount, kind, created_at
		   FROM point_histories
		  WHERE user_id = $1
		  ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.HistoryEntry{}
	for rows.Next() {
		var (
			e    models.HistoryEntry
			kind string
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.Amount, &kind, &e.CreatedAt); err != nil {
			return nil, err
		}
		if e.Kind, err = models.ParseTransactionKind(kind); err != nil {
			return nil, fmt.Errorf("history %d: %w", e.ID, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
