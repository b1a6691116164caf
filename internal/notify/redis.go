package notify

import (
	"context"

	"cityvoice/backend/internal/models"
)

// EventPublisher is implemented by storage.Service.
type EventPublisher interface {
	PublishEvent(ctx context.Context, ev models.TriageEvent) error
}

// RedisNotifier publishes events on the pub/sub channel read by the staff feed.
type RedisNotifier struct {
	publisher EventPublisher
}

func NewRedisNotifier(p EventPublisher) *RedisNotifier {
	return &RedisNotifier{publisher: p}
}

func (r *RedisNotifier) Name() string { return "redis" }

func (r *RedisNotifier) Notify(ctx context.Context, n Notification) error {
	return r.publisher.PublishEvent(ctx, n.Event)
}
