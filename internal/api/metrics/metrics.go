// Package metrics defines the custom Prometheus metrics of the accounts
// service. HTTP request metrics come from the echoprometheus middleware;
// this package covers authentication outcomes and the audit queue.
//
// Metrics are registered on an explicit Registerer so that tests can build
// as many routers as they like.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "accounts"

// Metrics groups the service collectors.
type Metrics struct {
	// LoginsTotal counts login attempts.
	// Label:
	//   - result: "success", "invalid_credentials", "inactive" or "error"
	LoginsTotal *prometheus.CounterVec

	// AuthorizationDeniedTotal counts requests rejected by the access guard.
	// Labels:
	//   - reason: "unauthenticated", "forbidden" or "inactive"
	//   - level: the required access level (e.g. "superuser")
	AuthorizationDeniedTotal *prometheus.CounterVec

	// AccountsCreatedTotal counts created accounts.
	// Label:
	//   - origin: "signup" or "admin"
	AccountsCreatedTotal *prometheus.CounterVec

	// AuditQueueDepthGauge tracks events pending per dispatcher worker.
	AuditQueueDepthGauge *prometheus.GaugeVec

	// AuditDroppedTotal counts audit events dropped on a full queue.
	AuditDroppedTotal prometheus.Counter
}

// New creates and registers all collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		LoginsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Total number of login attempts, by result.",
		}, []string{"result"}),
		AuthorizationDeniedTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "authorization_denied_total",
			Help:      "Total number of requests rejected by the access guard.",
		}, []string{"reason", "level"}),
		AccountsCreatedTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "accounts_created_total",
			Help:      "Total number of accounts created, by origin.",
		}, []string{"origin"}),
		AuditQueueDepthGauge: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "audit_queue_depth",
			Help:      "Current number of audit events pending in each dispatcher worker channel.",
		}, []string{"worker_id"}),
		AuditDroppedTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_events_dropped_total",
			Help:      "Total number of audit events dropped because a worker queue was full.",
		}),
	}
}

// AuditQueueDepth satisfies queue.Observer.
func (m *Metrics) AuditQueueDepth(worker string, depth int) {
	m.AuditQueueDepthGauge.WithLabelValues(worker).Set(float64(depth))
}

// AuditEventDropped satisfies queue.Observer.
func (m *Metrics) AuditEventDropped() {
	m.AuditDroppedTotal.Inc()
}

// ObserveLogin records a login attempt. Safe on a nil receiver.
func (m *Metrics) ObserveLogin(result string) {
	if m == nil {
		return
	}
	m.LoginsTotal.WithLabelValues(result).Inc()
}

// ObserveDenied records a guard rejection. Safe on a nil receiver.
func (m *Metrics) ObserveDenied(reason, level string) {
	if m == nil {
		return
	}
	m.AuthorizationDeniedTotal.WithLabelValues(reason, level).Inc()
}

// ObserveCreated records a created account. Safe on a nil receiver.
func (m *Metrics) ObserveCreated(origin string) {
	if m == nil {
		return
	}
	m.AccountsCreatedTotal.WithLabelValues(origin).Inc()
}
