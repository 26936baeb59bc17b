package metrics_test

import (
	"testing"

	"go-restaurant-authz/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordGuardDecision(t *testing.T) {
	m := metrics.NewMetrics(prometheus.NewRegistry())
	m.RecordGuardDecision(true)
	m.RecordGuardDecision(false)
	m.RecordGuardDecision(false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.GuardDecisions.WithLabelValues("allowed")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.GuardDecisions.WithLabelValues("denied")))
}

func TestRecordAuditAndMutations(t *testing.T) {
	m := metrics.NewMetrics(prometheus.NewRegistry())
	m.RecordAuditEntry("permission")
	m.RecordAdminMutation("Create Admin")
	m.RecordLoginAttempt("failure")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuditEntries.WithLabelValues("permission")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AdminMutations.WithLabelValues("Create Admin")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LoginAttempts.WithLabelValues("failure")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.RecordGuardDecision(true)
		m.RecordAuditEntry("admin")
		m.RecordAdminMutation("Delete Admin")
		m.RecordLoginAttempt("success")
		m.RecordBroadcastDrop()
	})
}
