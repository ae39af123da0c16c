package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"paintsnap/internal/models"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrNoGenerations = errors.New("no generations remaining")
)

const userColumns = `
	id, email, password_hash, apple_user_id, credits, generations_remaining,
	total_transformations, favorite_artist, premium, premium_product_id,
	role, status, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.AppleUserID,
		&user.Credits,
		&user.GenerationsRemaining,
		&user.TotalTransformations,
		&user.FavoriteArtist,
		&user.Premium,
		&user.PremiumProductID,
		&user.Role,
		&user.Status,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

// CreateIfAbsent provisions a profile row. The conditional insert makes
// concurrent first logins converge on a single row instead of racing a
// read-then-insert.
func (r *UserRepository) CreateIfAbsent(ctx context.Context, user models.User) (models.User, error) {
	const query = `
		INSERT INTO users (
			id, email, password_hash, apple_user_id, credits, generations_remaining,
			total_transformations, favorite_artist, premium, premium_product_id,
			role, status, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW()
		)
		ON CONFLICT (email) DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.AppleUserID,
		user.Credits,
		user.GenerationsRemaining,
		user.TotalTransformations,
		user.FavoriteArtist,
		user.Premium,
		user.PremiumProductID,
		user.Role,
		user.Status,
	)
	if err != nil {
		return models.User{}, err
	}

	return r.FindByEmail(ctx, user.Email)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	const query = `SELECT` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *UserRepository) FindByAppleID(ctx context.Context, appleUserID string) (models.User, error) {
	const query = `SELECT` + userColumns + ` FROM users WHERE apple_user_id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, appleUserID))
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (models.User, error) {
	const query = `SELECT` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

// AddGenerations applies a relative increment so concurrent grants from
// multiple devices cannot overwrite each other.
func (r *UserRepository) AddGenerations(ctx context.Context, id string, amount int) (models.User, error) {
	const query = `
		UPDATE users
		SET generations_remaining = generations_remaining + $2,
		    credits = credits + $2,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING` + userColumns

	return scanUser(r.pool.QueryRow(ctx, query, id, amount))
}

// RefundGeneration returns one generation spent by a submission that
// never made it onto the queue. Credits stay put: that counter records
// grants, and the failed submission granted nothing.
func (r *UserRepository) RefundGeneration(ctx context.Context, id string) (models.User, error) {
	const query = `
		UPDATE users
		SET generations_remaining = generations_remaining + 1,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING` + userColumns

	return scanUser(r.pool.QueryRow(ctx, query, id))
}

// ConsumeGeneration decrements one generation, refusing when none remain.
// This is the authoritative admission check for a submission.
func (r *UserRepository) ConsumeGeneration(ctx context.Context, id string) (models.User, error) {
	const query = `
		UPDATE users
		SET generations_remaining = generations_remaining - 1,
		    updated_at = NOW()
		WHERE id = $1 AND generations_remaining > 0
		RETURNING` + userColumns

	user, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			// Distinguish "gone" from "out of credit".
			if _, getErr := r.GetByID(ctx, id); getErr == nil {
				return models.User{}, ErrNoGenerations
			}
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func (r *UserRepository) IncrementTransformations(ctx context.Context, id string) error {
	const query = `
		UPDATE users
		SET total_transformations = total_transformations + 1, updated_at = NOW()
		WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) SetFavoriteArtist(ctx context.Context, id string, artist *string) (models.User, error) {
	const query = `
		UPDATE users SET favorite_artist = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING` + userColumns

	return scanUser(r.pool.QueryRow(ctx, query, id, artist))
}

func (r *UserRepository) SetPremium(ctx context.Context, id string, premium bool, productID *string) (models.User, error) {
	const query = `
		UPDATE users SET premium = $2, premium_product_id = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING` + userColumns

	return scanUser(r.pool.QueryRow(ctx, query, id, premium, productID))
}

func (r *UserRepository) LinkAppleID(ctx context.Context, id string, appleUserID string) error {
	const query = `
		UPDATE users SET apple_user_id = $2, updated_at = NOW() WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query, id, appleUserID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Delete removes the profile row; sessions, transformations and ledger
// entries go with it via cascading constraints.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM users WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}
