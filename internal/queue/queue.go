package queue

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Task types carried on the transformation stream.
const (
	TaskTransform = "transform"
	TaskSweep     = "sweep"
)

// Publisher appends tasks to the transformation stream.
type Publisher struct {
	client *redis.Client
	stream string
}

func NewPublisher(client *redis.Client, stream string) *Publisher {
	return &Publisher{client: client, stream: stream}
}

func (p *Publisher) Publish(ctx context.Context, values map[string]any) error {
	return p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: values,
	}).Err()
}
