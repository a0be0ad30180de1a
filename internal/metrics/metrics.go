// Package metrics holds the service's Prometheus collectors. They register
// with the default registry on init and are served at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dailylog"

// Notification outcomes, used as the "result" label of NotificationsTotal.
const (
	ResultSent    = "sent"
	ResultFailed  = "failed"
	ResultDropped = "dropped"
)

var (
	// SyncEntriesTotal counts reconciled entries by outcome
	// (added, updated, skipped).
	SyncEntriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "entries_total",
			Help:      "Entries processed by sync requests, by outcome.",
		},
		[]string{"outcome"},
	)

	SyncRequestsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "requests_total",
			Help:      "Sync requests that completed a merge.",
		},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "notifications_total",
			Help:      "Entry notifications by result (sent, failed, dropped).",
		},
		[]string{"result"},
	)

	// NotifyQueueDepth is only written by the enqueuing side and the workers
	// after each receive, so it may lag by one job.
	NotifyQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "queue_depth",
			Help:      "Jobs waiting in the notification queue.",
		},
	)

	NotifySendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "send_duration_seconds",
			Help:      "Time spent delivering one notification, retries included.",
			Buckets:   prometheus.DefBuckets,
		},
	)
)

// ObserveSync records the outcome counts of one merge.
func ObserveSync(added, updated, skipped int) {
	SyncRequestsTotal.Inc()
	SyncEntriesTotal.WithLabelValues("added").Add(float64(added))
	SyncEntriesTotal.WithLabelValues("updated").Add(float64(updated))
	SyncEntriesTotal.WithLabelValues("skipped").Add(float64(skipped))
}
