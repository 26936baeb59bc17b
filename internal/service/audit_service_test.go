package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"go-restaurant-authz/internal/metrics"
	"go-restaurant-authz/internal/model"
	"go-restaurant-authz/internal/repository"
	"go-restaurant-authz/pkg/database"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAuditService(t *testing.T, now func() time.Time) *auditService {
	t.Helper()

	db, err := database.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	s, err := NewAuditService(repository.NewAuditRepo(db), nil)
	require.NoError(t, err)

	svc := s.(*auditService)
	if now != nil {
		svc.now = now
	}
	return svc
}

func record(t *testing.T, s AuditService, entityType model.EntityType, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, s.Record(nil, &model.AuditLog{
			PerformedBy: "root@example.com",
			Action:      model.ActionUpdateAdmin,
			Details:     fmt.Sprintf("change %d", i),
			EntityType:  entityType,
			EntityID:    fmt.Sprintf("%s-%d", entityType, i),
		}))
	}
}

func TestAuditTimestampsStrictlyIncrease(t *testing.T) {
	frozen := time.Date(2026, 3, 10, 12, 0, 0, 0, time.FixedZone("WIB", 7*3600))
	s := newAuditService(t, func() time.Time { return frozen })

	record(t, s, model.EntityAdmin, 5)

	entries, err := s.List(nil, 0)
	require.NoError(t, err)
	require.Len(t, entries, 5)

	for i := 1; i < len(entries); i++ {
		assert.True(t, entries[i-1].Timestamp.After(entries[i].Timestamp),
			"entry %d is not newer than entry %d", i-1, i)
	}
	assert.True(t, entries[len(entries)-1].Timestamp.Equal(frozen))
	assert.Equal(t, "change 4", entries[0].Details)
}

func TestAuditRecordValidatesEntry(t *testing.T) {
	s := newAuditService(t, nil)

	err := s.Record(nil, &model.AuditLog{Action: model.ActionCreateAdmin, EntityType: "invoice"})
	assert.ErrorIs(t, err, ErrValidation)

	err = s.Record(nil, &model.AuditLog{EntityType: model.EntityAdmin})
	assert.ErrorIs(t, err, ErrValidation)

	entry := &model.AuditLog{Action: model.ActionCreateAdmin, EntityType: model.EntityAdmin}
	require.NoError(t, s.Record(nil, entry))
	assert.Equal(t, "system", entry.PerformedBy)
	assert.Equal(t, time.UTC, entry.Timestamp.Location())
}

func TestAuditQueryPagesAndFilters(t *testing.T) {
	s := newAuditService(t, nil)
	s.pageSize = 2

	record(t, s, model.EntityAdmin, 3)
	record(t, s, model.EntityPermission, 4)
	record(t, s, model.EntityTicket, 1)

	all, err := s.List(nil, 0)
	require.NoError(t, err)
	assert.Len(t, all, 8)

	seen := make(map[string]bool)
	for _, e := range all {
		assert.False(t, seen[e.ID.String()], "entry %s yielded twice", e.ID)
		seen[e.ID.String()] = true
	}

	perms, err := s.List(entityPtr(model.EntityPermission), 0)
	require.NoError(t, err)
	require.Len(t, perms, 4)
	for _, e := range perms {
		assert.Equal(t, model.EntityPermission, e.EntityType)
	}

	limited, err := s.List(nil, 3)
	require.NoError(t, err)
	assert.Equal(t, all[:3], limited)

	none, err := s.List(entityPtr(model.EntitySubscription), 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestAuditQueryIsRestartable(t *testing.T) {
	s := newAuditService(t, nil)
	s.pageSize = 2
	record(t, s, model.EntityAdmin, 5)

	seq := s.Query(nil)

	var first []string
	for e, err := range seq {
		require.NoError(t, err)
		first = append(first, e.ID.String())
		if len(first) == 3 {
			break
		}
	}

	var second []string
	for e, err := range seq {
		require.NoError(t, err)
		second = append(second, e.ID.String())
	}

	require.Len(t, second, 5)
	assert.Equal(t, first, second[:3])

	// entries appended later show up on the next pass
	record(t, s, model.EntityTicket, 1)
	var third int
	for _, err := range seq {
		require.NoError(t, err)
		third++
	}
	assert.Equal(t, 6, third)
}

func TestAuditSummary(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	clock := now
	s := newAuditService(t, func() time.Time { return clock })

	clock = now.AddDate(0, 0, -10)
	record(t, s, model.EntityAdmin, 2)

	clock = now.AddDate(0, 0, -1)
	record(t, s, model.EntityAdmin, 1)
	record(t, s, model.EntityPermission, 2)

	clock = now
	record(t, s, model.EntityTicket, 3)

	summary, err := s.Summary(7)
	require.NoError(t, err)
	require.Len(t, summary, 2)

	assert.Equal(t, "2026-03-10", summary[0].Date)
	assert.Equal(t, int64(3), summary[0].Total)
	assert.Equal(t, int64(3), summary[0].Counts[model.EntityTicket])

	assert.Equal(t, "2026-03-09", summary[1].Date)
	assert.Equal(t, int64(3), summary[1].Total)
	assert.Equal(t, int64(1), summary[1].Counts[model.EntityAdmin])
	assert.Equal(t, int64(2), summary[1].Counts[model.EntityPermission])

	all, err := s.Summary(30)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestAuditServiceResumesAfterLatestEntry(t *testing.T) {
	db, err := database.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	repo := repository.NewAuditRepo(db)
	future := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	first, err := NewAuditService(repo, nil)
	require.NoError(t, err)
	first.(*auditService).now = func() time.Time { return future }
	record(t, first, model.EntityAdmin, 1)

	// a restarted service with a clock behind the stored trail still appends newer entries
	second, err := NewAuditService(repo, nil)
	require.NoError(t, err)
	record(t, second, model.EntityAdmin, 1)

	entries, err := second.List(nil, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].Timestamp.After(future))
}

func TestAuditEntriesCountedOnceCommitted(t *testing.T) {
	db, err := database.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	m := metrics.NewMetrics(prometheus.NewRegistry())
	adminRepo := repository.NewAdminRepo(db)
	audit, err := NewAuditService(repository.NewAuditRepo(db), m)
	require.NoError(t, err)
	registry := NewRegistryService(db, repository.NewPageRepo(db), adminRepo, audit, nil, m)
	require.NoError(t, registry.Init())
	admins := NewAdminService(db, adminRepo, registry, audit, nil, m)

	counted := func(e model.EntityType) float64 {
		return testutil.ToFloat64(m.AuditEntries.WithLabelValues(string(e)))
	}

	_, err = admins.EnsureSuperAdmin(rootEmail, rootPassword)
	require.NoError(t, err)
	assert.Equal(t, 1.0, counted(model.EntityAdmin))

	// an entry written in a rolled back transaction is neither kept nor counted
	err = db.Transaction(func(tx *gorm.DB) error {
		require.NoError(t, audit.Record(tx, &model.AuditLog{
			Action:     model.ActionUpdateAdmin,
			EntityType: model.EntityAdmin,
			EntityID:   "rolled-back",
		}))
		return errors.New("abort")
	})
	require.Error(t, err)
	assert.Equal(t, 1.0, counted(model.EntityAdmin))
	assert.Len(t, auditEntries(t, audit, entityPtr(model.EntityAdmin)), 1)

	_, err = registry.AddPage(SystemActor, &AddPageRequest{Key: "loyalty", Label: "Loyalty"})
	require.NoError(t, err)
	assert.Equal(t, 1.0, counted(model.EntityPermission))

	record(t, audit, model.EntityTicket, 2)
	assert.Equal(t, 2.0, counted(model.EntityTicket))
}
