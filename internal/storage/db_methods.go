package storage

import (
	"context"
	"encoding/json"

	"cityvoice/backend/internal/models"

	"github.com/redis/go-redis/v9"
)

// EventChannel is the redis pub/sub channel carrying committed triage events.
const EventChannel = "triage:events"

// PublishEvent publishes a triage event on the redis channel.
func (s *Service) PublishEvent(ctx context.Context, ev models.TriageEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return s.Redis.Publish(ctx, EventChannel, string(payload)).Err()
}

// SubscribeEvents subscribes to the triage event channel. The caller closes the subscription.
func (s *Service) SubscribeEvents(ctx context.Context) *redis.PubSub {
	return s.Redis.Subscribe(ctx, EventChannel)
}
