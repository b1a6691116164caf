package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "cityvoice"
	subsystem = "intake"
)

var (
	once sync.Once

	// AdmissionsTotal counts admission decisions by outcome (admitted, VerificationRequired, DailyLimitReached).
	AdmissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "admissions_total",
		Help:      "Total number of admission decisions, labeled by outcome and trust level.",
	}, []string{"outcome", "level"})

	// LedgerStepsTotal counts applied credits, penalties and their reversals.
	LedgerStepsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "ledger_steps_total",
		Help:      "Total number of trust ledger steps applied, labeled by kind.",
	}, []string{"kind"})

	TransitionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "transitions_total",
		Help:      "Total number of committed report transitions, labeled by target status.",
	}, []string{"status"})

	// NotificationFailuresTotal counts best-effort deliveries that failed after commit.
	NotificationFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "notification_failures_total",
		Help:      "Total number of failed post-commit notifications, labeled by channel.",
	}, []string{"channel"})

	// ResolutionSeconds is the time from submission to the first move into Resolved.
	ResolutionSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "resolution_seconds",
		Help:      "Time from report submission to resolution.",
		Buckets:   []float64{3600, 6 * 3600, 24 * 3600, 3 * 24 * 3600, 7 * 24 * 3600, 30 * 24 * 3600},
	})

	// FeedClients is the number of connected staff websocket clients.
	FeedClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "feed_clients",
		Help:      "Current number of staff clients connected to the live feed.",
	})
)

// Register registers intake metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			AdmissionsTotal,
			LedgerStepsTotal,
			TransitionsTotal,
			NotificationFailuresTotal,
			ResolutionSeconds,
			FeedClients,
		)
	})
}
