package hub

import "cityvoice/backend/internal/models"

// Client is one connected staff feed subscriber.
type Client interface {
	// GetClientID returns the unique identifier of the connection.
	GetClientID() string

	// Accepts reports whether the client wants to receive ev.
	Accepts(ev models.TriageEvent) bool

	// GetSendChannel returns the channel the hub writes events to.
	GetSendChannel() chan<- models.TriageEvent

	// Run starts the client's read and write pumps.
	Run()
	// Close shuts down the send channel, which ends the write pump.
	Close()
}
