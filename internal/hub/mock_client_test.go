package hub_test

import "cityvoice/backend/internal/models"

type MockClient struct {
	id               string
	manualReviewOnly bool
	RecvChannel      chan models.TriageEvent
	closed           chan struct{}
}

func newMockClient(id string) *MockClient {
	return &MockClient{
		id:          id,
		RecvChannel: make(chan models.TriageEvent, 10),
		closed:      make(chan struct{}),
	}
}

func (c *MockClient) GetClientID() string { return c.id }

func (c *MockClient) Accepts(ev models.TriageEvent) bool {
	return !c.manualReviewOnly || ev.ManualReview
}

func (c *MockClient) GetSendChannel() chan<- models.TriageEvent {
	return c.RecvChannel
}

func (c *MockClient) Run() {
	// Not needed for testing
}

func (c *MockClient) Close() {
	close(c.closed)
}
