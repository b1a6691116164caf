package hub

import (
	"context"
	"encoding/json"

	"cityvoice/backend/internal/models"

	"github.com/apex/log"
)

// StartPubSubListener forwards events from the redis channel into EventsCh until ctx is done.
func (m *ManagerService) StartPubSubListener(ctx context.Context) {
	go func() {
		pubsub := m.Subscriber.SubscribeEvents(ctx)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev models.TriageEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					log.WithError(err).Warn("failed to decode triage event from redis")
					continue
				}
				select {
				case m.EventsCh <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
}
