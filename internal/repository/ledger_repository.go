package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"paintsnap/internal/models"
)

type LedgerRepository struct {
	pool *pgxpool.Pool
}

func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

// Record inserts a grant and reports whether it was applied. A duplicate
// event_id inserts nothing, which is what makes replayed purchase
// callbacks harmless.
func (r *LedgerRepository) Record(ctx context.Context, entry models.LedgerEntry) (bool, error) {
	const query = `
		INSERT INTO credit_ledger (id, user_id, event_id, product_id, credits, source, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (event_id) DO NOTHING
	`

	cmd, err := r.pool.Exec(ctx, query,
		entry.ID,
		entry.UserID,
		entry.EventID,
		entry.ProductID,
		entry.Credits,
		entry.Source,
	)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *LedgerRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.LedgerEntry, error) {
	const query = `
		SELECT id, user_id, event_id, product_id, credits, source, created_at
		FROM credit_ledger
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.LedgerEntry
	for rows.Next() {
		var e models.LedgerEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.EventID, &e.ProductID, &e.Credits, &e.Source, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
