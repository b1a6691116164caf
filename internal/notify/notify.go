// Package notify delivers committed triage events to staff feeds, downstream services and
// citizens. Delivery is best-effort: failures are logged and counted, never retried.
package notify

import (
	"context"

	"cityvoice/backend/internal/metrics"
	"cityvoice/backend/internal/models"

	"github.com/apex/log"
)

// Notification is one committed event plus the citizen it concerns.
type Notification struct {
	Event models.TriageEvent
	// Citizen is nil for anonymous reports.
	Citizen *models.Citizen
}

// Notifier delivers a notification over one channel.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, n Notification) error
}

// Multi fans a notification out to every configured channel.
type Multi struct {
	notifiers []Notifier
}

// NewMulti creates a fan-out over notifiers. Nil entries are skipped.
func NewMulti(notifiers ...Notifier) *Multi {
	m := &Multi{}
	for _, n := range notifiers {
		m.Add(n)
	}
	return m
}

// Add appends a channel.
func (m *Multi) Add(n Notifier) {
	if n != nil {
		m.notifiers = append(m.notifiers, n)
	}
}

// Channels returns the names of the configured channels.
func (m *Multi) Channels() []string {
	names := make([]string, 0, len(m.notifiers))
	for _, n := range m.notifiers {
		names = append(names, n.Name())
	}
	return names
}

func (m *Multi) Name() string { return "multi" }

// Notify delivers to every channel. A failing channel does not stop the others and the
// error is not returned to the caller.
func (m *Multi) Notify(ctx context.Context, n Notification) error {
	for _, notifier := range m.notifiers {
		if err := notifier.Notify(ctx, n); err != nil {
			metrics.NotificationFailuresTotal.WithLabelValues(notifier.Name()).Inc()
			log.WithError(err).WithFields(log.Fields{
				"channel":   notifier.Name(),
				"event":     n.Event.Type,
				"report_id": n.Event.ReportID,
			}).Warn("notification failed")
		}
	}
	return nil
}
