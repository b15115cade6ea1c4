package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/baharkarakas/point-ledger/internal/models"
	repo "github.com/baharkarakas/point-ledger/internal/repository"
)

type balancesRepo struct{ q querier }

func (r *balancesRepo) SelectByID(ctx context.Context, userID int64) (models.Balance, error) {
	var b models.Balance
	err := r.q.QueryRow(ctx,
		`SELECT user_id, amount, updated_at
		   FROM balances
		  WHERE user_id = $1`,
		userID,
	).Scan(&b.UserID, &b.Amount, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Balance{}, repo.ErrNotFound
	}
	return b, err
}

func (r *balancesRepo) InsertOrUpdate(ctx context.Context, userID, amount int64) (models.Balance, error) {
	var b models.Balance
	err := r.q.QueryRow(ctx,
		`INSERT INTO balances (user_id, amount, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (user_id) DO UPDATE
		    SET amount = EXCLUDED.amount,
		        updated_at = EXCLUDED.updated_at
		 RETURNING user_id, amount, updated_at`,
		userID, amount,
	).Scan(&b.UserID, &b.Amount, &b.UpdatedAt)
	return b, err
}
