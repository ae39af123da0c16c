package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"paintsnap/internal/ids"
	"paintsnap/internal/models"
	"paintsnap/internal/prediction"
	"paintsnap/internal/queue"
	"paintsnap/internal/repository"
	"paintsnap/internal/styles"
)

var (
	ErrNoGenerations = repository.ErrNoGenerations
	ErrUnknownStyle  = errors.New("unknown style")
	ErrNotOwner      = errors.New("transformation belongs to another user")
)

// Predictor turns a prompt plus a source photo into a painting result.
// The production implementation is the prediction HTTP client.
type Predictor interface {
	Transform(ctx context.Context, prompt string, imageURL string) prediction.Result
}

// TransformationService owns the job lifecycle: admission, the pending
// row, queueing, and the worker-side status advancement.
type TransformationService struct {
	transforms TransformationStore
	users      UserStore
	predictor  Predictor
	jobs       JobQueue
	log        zerolog.Logger
}

func NewTransformationService(transforms TransformationStore, users UserStore, predictor Predictor, jobs JobQueue, log zerolog.Logger) *TransformationService {
	return &TransformationService{
		transforms: transforms,
		users:      users,
		predictor:  predictor,
		jobs:       jobs,
		log:        log,
	}
}

type SubmitInput struct {
	UserID    string
	SourceURL string
	StyleID   string
}

// Submit spends one generation, creates the pending record, and enqueues
// the job. The generation is refunded if the record cannot be created or
// queued, so a failed submission does not eat credit.
func (s *TransformationService) Submit(ctx context.Context, input SubmitInput) (models.Transformation, error) {
	style, ok := styles.Lookup(input.StyleID)
	if !ok {
		return models.Transformation{}, ErrUnknownStyle
	}
	if input.SourceURL == "" {
		return models.Transformation{}, fmt.Errorf("source url required")
	}

	if _, err := s.users.ConsumeGeneration(ctx, input.UserID); err != nil {
		return models.Transformation{}, err
	}

	t := models.Transformation{
		ID:        ids.New(),
		UserID:    input.UserID,
		SourceURL: input.SourceURL,
		Style:     style.ID,
		Status:    models.TransformationStatusPending,
	}

	if err := s.transforms.Create(ctx, t); err != nil {
		s.refundGeneration(ctx, input.UserID)
		return models.Transformation{}, fmt.Errorf("create transformation: %w", err)
	}

	if err := s.jobs.Publish(ctx, map[string]any{
		"type":             queue.TaskTransform,
		"transformationId": t.ID,
	}); err != nil {
		s.refundGeneration(ctx, input.UserID)
		if _, finErr := s.transforms.Finalize(ctx, t.ID, models.TransformationStatusFailed, nil, nil); finErr != nil {
			s.log.Error().Err(finErr).Str("transformation_id", t.ID).Msg("fail unqueued transformation")
		}
		return models.Transformation{}, fmt.Errorf("enqueue transformation: %w", err)
	}

	return t, nil
}

func (s *TransformationService) refundGeneration(ctx context.Context, userID string) {
	if _, err := s.users.RefundGeneration(ctx, userID); err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("refund generation failed")
	}
}

func (s *TransformationService) Get(ctx context.Context, userID string, id string) (models.Transformation, error) {
	t, err := s.transforms.GetByID(ctx, id)
	if err != nil {
		return models.Transformation{}, err
	}
	if t.UserID != userID {
		return models.Transformation{}, ErrNotOwner
	}
	return t, nil
}

func (s *TransformationService) ListForUser(ctx context.Context, userID string, limit, offset int) ([]models.Transformation, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	items, err := s.transforms.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list transformations: %w", err)
	}
	return items, nil
}

// ListAll pages every user's transformations, for the admin surface.
func (s *TransformationService) ListAll(ctx context.Context, limit, offset int) ([]models.Transformation, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.transforms.List(ctx, limit, offset)
}

// Process runs one queued job to completion. Called by the worker. The
// prediction client never fails hard, so the record lands in completed
// with either a provider result or the synthetic fallback.
func (s *TransformationService) Process(ctx context.Context, transformationID string) error {
	t, err := s.transforms.GetByID(ctx, transformationID)
	if err != nil {
		return err
	}
	if t.Status.Terminal() {
		// Replayed or reclaimed message; nothing to do.
		return nil
	}

	style, ok := styles.Lookup(t.Style)
	if !ok {
		_, err := s.transforms.Finalize(ctx, t.ID, models.TransformationStatusFailed, nil, nil)
		return err
	}

	if t.Status == models.TransformationStatusPending {
		if _, err := s.transforms.MarkProcessing(ctx, t.ID, ""); err != nil {
			if !errors.Is(err, repository.ErrInvalidTransition) {
				return err
			}
		}
	}

	result := s.predictor.Transform(ctx, styles.BuildPrompt(style), t.SourceURL)

	if _, err := s.transforms.Finalize(ctx, t.ID, models.TransformationStatusCompleted, &result.OutputURL, &result.PredictionID); err != nil {
		if errors.Is(err, repository.ErrInvalidTransition) {
			return nil
		}
		return err
	}

	if err := s.users.IncrementTransformations(ctx, t.UserID); err != nil {
		s.log.Warn().Err(err).Str("user_id", t.UserID).Msg("increment transformation count failed")
	}

	s.log.Info().
		Str("transformation_id", t.ID).
		Str("style", t.Style).
		Bool("synthetic", result.Synthetic).
		Msg("transformation completed")
	return nil
}

// SweepStale finalizes jobs stuck in pending or processing past the
// deadline with the fallback result, so nothing hangs forever.
func (s *TransformationService) SweepStale(ctx context.Context, staleAfter time.Duration, limit int) (int, error) {
	cutoff := time.Now().Add(-staleAfter)
	stale, err := s.transforms.ListStale(ctx, cutoff, limit)
	if err != nil {
		return 0, fmt.Errorf("list stale: %w", err)
	}

	swept := 0
	for _, t := range stale {
		syntheticID := prediction.SyntheticPrefix + ids.New()
		if _, err := s.transforms.Finalize(ctx, t.ID, models.TransformationStatusCompleted, &t.SourceURL, &syntheticID); err != nil {
			if errors.Is(err, repository.ErrInvalidTransition) {
				continue
			}
			return swept, err
		}
		swept++
		s.log.Info().Str("transformation_id", t.ID).Msg("stale transformation swept to fallback")
	}
	return swept, nil
}
