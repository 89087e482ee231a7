package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the gateway.
type Metrics struct {
	Decisions           *prometheus.CounterVec
	AuditEntries        *prometheus.CounterVec
	AuditPersistFails   prometheus.Counter
	SubscriberOverflows prometheus.Counter
	CollaboratorSeconds *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		Decisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "kbgate_decisions_total",
			Help: "Capability resolutions by outcome (allowed, denied).",
		}, []string{"outcome"}),
		AuditEntries: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "kbgate_audit_entries_total",
			Help: "Audit entries recorded by status.",
		}, []string{"status"}),
		AuditPersistFails: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kbgate_audit_persist_failures_total",
			Help: "Audit append failures. Non-zero values page: audit durability is the core guarantee.",
		}),
		SubscriberOverflows: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kbgate_audit_subscriber_overflows_total",
			Help: "Live audit subscribers disconnected for falling behind.",
		}),
		CollaboratorSeconds: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kbgate_collaborator_seconds",
			Help:    "Latency of external collaborator calls.",
			Buckets: prometheus.DefBuckets,
		}, []string{"collaborator"}),
	}
}
