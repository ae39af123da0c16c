package service

import (
	"context"
	"time"

	"paintsnap/internal/models"
)

// Store interfaces consumed by the services. The pgx repositories under
// internal/repository are the production implementations.

type UserStore interface {
	CreateIfAbsent(ctx context.Context, user models.User) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByAppleID(ctx context.Context, appleUserID string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	AddGenerations(ctx context.Context, id string, amount int) (models.User, error)
	ConsumeGeneration(ctx context.Context, id string) (models.User, error)
	RefundGeneration(ctx context.Context, id string) (models.User, error)
	IncrementTransformations(ctx context.Context, id string) error
	SetFavoriteArtist(ctx context.Context, id string, artist *string) (models.User, error)
	SetPremium(ctx context.Context, id string, premium bool, productID *string) (models.User, error)
	LinkAppleID(ctx context.Context, id string, appleUserID string) error
	Delete(ctx context.Context, id string) error
}

type SessionStore interface {
	Upsert(ctx context.Context, session models.Session) error
	GetByID(ctx context.Context, id string) (models.Session, error)
	FindByRefreshHash(ctx context.Context, userID string, refreshHash []byte) (models.Session, error)
	CountByUser(ctx context.Context, userID string) (int, error)
	DeleteOldest(ctx context.Context, userID string, keepLatest int) error
	DeleteByID(ctx context.Context, id string) error
	DeleteByDevice(ctx context.Context, userID string, deviceID string) error
	DeleteByUser(ctx context.Context, userID string) error
}

type TransformationStore interface {
	Create(ctx context.Context, t models.Transformation) error
	GetByID(ctx context.Context, id string) (models.Transformation, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Transformation, error)
	List(ctx context.Context, limit, offset int) ([]models.Transformation, error)
	MarkProcessing(ctx context.Context, id string, predictionID string) (models.Transformation, error)
	Finalize(ctx context.Context, id string, status models.TransformationStatus, resultURL *string, predictionID *string) (models.Transformation, error)
	ListStale(ctx context.Context, cutoff time.Time, limit int) ([]models.Transformation, error)
}

type LedgerStore interface {
	Record(ctx context.Context, entry models.LedgerEntry) (bool, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.LedgerEntry, error)
}

// JobQueue publishes transformation tasks for the worker.
type JobQueue interface {
	Publish(ctx context.Context, values map[string]any) error
}
