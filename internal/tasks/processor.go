package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"paintsnap/internal/config"
	"paintsnap/internal/queue"
	"paintsnap/internal/service"
)

// Processor executes queued transformation work: running predictions and
// sweeping stale jobs.
type Processor struct {
	transforms *service.TransformationService
	cfg        config.QueueConfig
	logger     zerolog.Logger
}

type TaskPayload struct {
	Type             string `json:"type"`
	TransformationID string `json:"transformationId"`
}

func NewProcessor(transforms *service.TransformationService, cfg config.QueueConfig, logger zerolog.Logger) *Processor {
	return &Processor{
		transforms: transforms,
		cfg:        cfg,
		logger:     logger,
	}
}

func (p *Processor) Handle(ctx context.Context, msg redis.XMessage) error {
	var payload TaskPayload
	if err := decodePayload(msg.Values, &payload); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	switch payload.Type {
	case queue.TaskTransform:
		return p.handleTransform(ctx, payload)
	case queue.TaskSweep:
		return p.handleSweep(ctx)
	default:
		p.logger.Warn().Str("type", payload.Type).Msg("unknown task type")
		return nil
	}
}

func decodePayload(values map[string]interface{}, out *TaskPayload) error {
	bytes, err := json.Marshal(values)
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, out)
}

func (p *Processor) handleTransform(ctx context.Context, payload TaskPayload) error {
	if payload.TransformationID == "" {
		p.logger.Warn().Msg("transform task without id")
		return nil
	}
	return p.transforms.Process(ctx, payload.TransformationID)
}

func (p *Processor) handleSweep(ctx context.Context) error {
	swept, err := p.transforms.SweepStale(ctx, p.cfg.StaleAfter, 100)
	if err != nil {
		return err
	}
	if swept > 0 {
		p.logger.Info().Int("count", swept).Msg("stale transformations swept")
	}
	return nil
}
