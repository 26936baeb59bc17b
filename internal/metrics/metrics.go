package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of the service. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	GuardDecisions *prometheus.CounterVec // guard outcomes by result (allowed/denied)
	AuditEntries   *prometheus.CounterVec // audit entries appended by entity type
	AdminMutations *prometheus.CounterVec // directory mutations by action
	LoginAttempts  *prometheus.CounterVec // login attempts by status
	BroadcastDrops prometheus.Counter     // websocket clients dropped on write failure
}

// NewMetrics registers the collectors on reg (the default registerer when nil).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		GuardDecisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authz_guard_decisions_total",
				Help: "Permission guard decisions by outcome",
			},
			[]string{"outcome"},
		),
		AuditEntries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "audit_entries_total",
				Help: "Audit entries appended by entity type",
			},
			[]string{"entity_type"},
		),
		AdminMutations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "admin_mutations_total",
				Help: "Administrator directory mutations by action",
			},
			[]string{"action"},
		),
		LoginAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_login_attempts_total",
				Help: "Login attempts by status (success, failure, inactive)",
			},
			[]string{"status"},
		),
		BroadcastDrops: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "ws_broadcast_drops_total",
				Help: "WebSocket clients dropped after a failed write",
			},
		),
	}
}

func (m *Metrics) RecordGuardDecision(allowed bool) {
	if m == nil {
		return
	}
	outcome := "denied"
	if allowed {
		outcome = "allowed"
	}
	m.GuardDecisions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordAuditEntry(entityType string) {
	if m == nil {
		return
	}
	m.AuditEntries.WithLabelValues(entityType).Inc()
}

func (m *Metrics) RecordAdminMutation(action string) {
	if m == nil {
		return
	}
	m.AdminMutations.WithLabelValues(action).Inc()
}

func (m *Metrics) RecordLoginAttempt(status string) {
	if m == nil {
		return
	}
	m.LoginAttempts.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordBroadcastDrop() {
	if m == nil {
		return
	}
	m.BroadcastDrops.Inc()
}
