// Package hub fans committed triage events out to connected staff dashboards.
package hub

import (
	"context"

	"cityvoice/backend/internal/metrics"
	"cityvoice/backend/internal/models"

	"github.com/apex/log"
	"github.com/redis/go-redis/v9"
)

// EventSubscriber is implemented by storage.Service.
type EventSubscriber interface {
	SubscribeEvents(ctx context.Context) *redis.PubSub
}

// ManagerService owns the set of connected clients. All map access happens on the Run goroutine.
type ManagerService struct {
	Clients map[string]Client

	RegisterCh   chan Client
	UnregisterCh chan Client
	// EventsCh receives events decoded from the pub/sub listener.
	EventsCh chan models.TriageEvent

	Subscriber EventSubscriber

	done chan struct{}
}

// NewManagerService creates a hub. A nil subscriber disables the redis listener.
func NewManagerService(s EventSubscriber) *ManagerService {
	return &ManagerService{
		Clients:      make(map[string]Client),
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		EventsCh:     make(chan models.TriageEvent, 64),
		Subscriber:   s,
		done:         make(chan struct{}),
	}
}

// Register hands a client to the hub. It reports false once Run has returned, in which
// case the caller still owns the client.
func (m *ManagerService) Register(client Client) bool {
	select {
	case m.RegisterCh <- client:
		return true
	case <-m.done:
		return false
	}
}

// Unregister removes a client. After Run has returned it is a no-op.
func (m *ManagerService) Unregister(client Client) {
	select {
	case m.UnregisterCh <- client:
	case <-m.done:
	}
}

// Done is closed when Run returns.
func (m *ManagerService) Done() <-chan struct{} {
	return m.done
}

// Run processes registrations and broadcasts until ctx is done.
func (m *ManagerService) Run(ctx context.Context) {
	defer close(m.done)

	if m.Subscriber != nil {
		m.StartPubSubListener(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			for id, client := range m.Clients {
				client.Close()
				delete(m.Clients, id)
			}
			metrics.FeedClients.Set(0)
			return

		case client := <-m.RegisterCh:
			m.Clients[client.GetClientID()] = client
			metrics.FeedClients.Set(float64(len(m.Clients)))
			log.WithField("client_id", client.GetClientID()).Info("feed client registered")

		case client := <-m.UnregisterCh:
			m.drop(client.GetClientID())

		case ev := <-m.EventsCh:
			m.broadcast(ev)
		}
	}
}

func (m *ManagerService) broadcast(ev models.TriageEvent) {
	for id, client := range m.Clients {
		if !client.Accepts(ev) {
			continue
		}
		select {
		case client.GetSendChannel() <- ev:
		default:
			log.WithField("client_id", id).Warn("feed client too slow, dropping")
			m.drop(id)
		}
	}
}

func (m *ManagerService) drop(id string) {
	client, ok := m.Clients[id]
	if !ok {
		return
	}
	delete(m.Clients, id)
	client.Close()
	metrics.FeedClients.Set(float64(len(m.Clients)))
	log.WithField("client_id", id).Info("feed client unregistered")
}
