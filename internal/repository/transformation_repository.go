package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"paintsnap/internal/models"
)

var (
	ErrTransformationNotFound = errors.New("transformation not found")
	// ErrInvalidTransition is returned when a status update would move a
	// record backwards or out of a terminal state.
	ErrInvalidTransition = errors.New("invalid status transition")
)

const transformationColumns = `
	id, user_id, source_url, result_url, style, prediction_id, status,
	created_at, updated_at`

type TransformationRepository struct {
	pool *pgxpool.Pool
}

func NewTransformationRepository(pool *pgxpool.Pool) *TransformationRepository {
	return &TransformationRepository{pool: pool}
}

func scanTransformation(row pgx.Row) (models.Transformation, error) {
	var t models.Transformation
	if err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.SourceURL,
		&t.ResultURL,
		&t.Style,
		&t.PredictionID,
		&t.Status,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Transformation{}, ErrTransformationNotFound
		}
		return models.Transformation{}, err
	}
	return t, nil
}

func (r *TransformationRepository) Create(ctx context.Context, t models.Transformation) error {
	const query = `
		INSERT INTO transformations (
			id, user_id, source_url, result_url, style, prediction_id, status, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, NOW(), NOW()
		)
	`

	_, err := r.pool.Exec(ctx, query,
		t.ID,
		t.UserID,
		t.SourceURL,
		t.ResultURL,
		t.Style,
		t.PredictionID,
		t.Status,
	)
	return err
}

func (r *TransformationRepository) GetByID(ctx context.Context, id string) (models.Transformation, error) {
	const query = `SELECT` + transformationColumns + ` FROM transformations WHERE id = $1`
	return scanTransformation(r.pool.QueryRow(ctx, query, id))
}

func (r *TransformationRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Transformation, error) {
	const query = `
		SELECT` + transformationColumns + `
		FROM transformations
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.list(ctx, query, userID, limit, offset)
}

func (r *TransformationRepository) List(ctx context.Context, limit, offset int) ([]models.Transformation, error) {
	const query = `
		SELECT` + transformationColumns + `
		FROM transformations
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	return r.list(ctx, query, limit, offset)
}

func (r *TransformationRepository) list(ctx context.Context, query string, args ...any) ([]models.Transformation, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.Transformation
	for rows.Next() {
		t, err := scanTransformation(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

// MarkProcessing advances pending → processing. The WHERE guard keeps the
// observed status sequence non-decreasing.
func (r *TransformationRepository) MarkProcessing(ctx context.Context, id string, predictionID string) (models.Transformation, error) {
	const query = `
		UPDATE transformations
		SET status = 'processing', prediction_id = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING` + transformationColumns

	return r.guarded(ctx, id, query, id, predictionID)
}

// Finalize moves a non-terminal record to completed or failed. Terminal
// states are absorbing: once completed or failed, no update lands.
func (r *TransformationRepository) Finalize(ctx context.Context, id string, status models.TransformationStatus, resultURL *string, predictionID *string) (models.Transformation, error) {
	const query = `
		UPDATE transformations
		SET status = $2,
		    result_url = COALESCE($3, result_url),
		    prediction_id = COALESCE($4, prediction_id),
		    updated_at = NOW()
		WHERE id = $1 AND status IN ('pending', 'processing')
		RETURNING` + transformationColumns

	if !status.Terminal() {
		return models.Transformation{}, ErrInvalidTransition
	}
	return r.guarded(ctx, id, query, id, status, resultURL, predictionID)
}

func (r *TransformationRepository) guarded(ctx context.Context, id string, query string, args ...any) (models.Transformation, error) {
	t, err := scanTransformation(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, ErrTransformationNotFound) {
			if _, getErr := r.GetByID(ctx, id); getErr == nil {
				return models.Transformation{}, ErrInvalidTransition
			}
			return models.Transformation{}, ErrTransformationNotFound
		}
		return models.Transformation{}, err
	}
	return t, nil
}

// ListStale returns non-terminal records untouched since the cutoff, for
// the sweep job.
func (r *TransformationRepository) ListStale(ctx context.Context, cutoff time.Time, limit int) ([]models.Transformation, error) {
	const query = `
		SELECT` + transformationColumns + `
		FROM transformations
		WHERE status IN ('pending', 'processing') AND updated_at < $1
		ORDER BY updated_at ASC
		LIMIT $2
	`
	return r.list(ctx, query, cutoff, limit)
}
