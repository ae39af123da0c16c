package jobs

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"paintsnap/internal/queue"
)

// Scheduler enqueues periodic sweep tasks onto the transformation stream
// so jobs stuck mid-flight get finalized.
type Scheduler struct {
	cron   *cron.Cron
	client *redis.Client
	stream string
	log    zerolog.Logger
}

func NewScheduler(client *redis.Client, stream string, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds()),
		client: client,
		stream: stream,
		log:    log,
	}
}

func (s *Scheduler) Start() error {
	if s.client == nil {
		return nil
	}

	if _, err := s.cron.AddFunc("0 */5 * * * *", s.enqueueSweep); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop waits for running entries to finish, bounded by a short timeout.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
	}
}

func (s *Scheduler) enqueueSweep() {
	err := s.client.XAdd(context.Background(), &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]any{"type": queue.TaskSweep},
	}).Err()
	if err != nil {
		s.log.Error().Err(err).Msg("enqueue sweep failed")
	}
}
