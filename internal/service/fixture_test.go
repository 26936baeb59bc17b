package service

import (
	"sync"
	"testing"
	"time"

	"go-restaurant-authz/internal/authz"
	"go-restaurant-authz/internal/model"
	"go-restaurant-authz/internal/repository"
	"go-restaurant-authz/internal/ws"
	"go-restaurant-authz/pkg/database"
	"go-restaurant-authz/pkg/jwt"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []ws.Event
}

func (p *recordingPublisher) Publish(e ws.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) actions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Action
	}
	return out
}

type fixture struct {
	db        *gorm.DB
	adminRepo repository.AdminRepository
	audit     AuditService
	registry  RegistryService
	admins    AdminService
	auth      AuthService
	events    *recordingPublisher
	super     Actor
}

const (
	rootEmail    = "root@example.com"
	rootPassword = "root-secret"
)

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := database.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	f := &fixture{db: db, events: &recordingPublisher{}}
	f.adminRepo = repository.NewAdminRepo(db)

	f.audit, err = NewAuditService(repository.NewAuditRepo(db), nil)
	require.NoError(t, err)

	f.registry = NewRegistryService(db, repository.NewPageRepo(db), f.adminRepo, f.audit, f.events, nil)
	require.NoError(t, f.registry.Init())

	f.admins = NewAdminService(db, f.adminRepo, f.registry, f.audit, f.events, nil)
	created, err := f.admins.EnsureSuperAdmin(rootEmail, rootPassword)
	require.NoError(t, err)
	require.True(t, created)

	root, err := f.adminRepo.FindByEmail(rootEmail)
	require.NoError(t, err)
	f.super = ActorFor(root)

	f.auth = NewAuthService(f.adminRepo, f.admins, f.registry, authz.New(), jwt.NewIssuer("service-test-secret-key", time.Hour), nil)
	return f
}

// createAdmin creates an admin with an all-deny matrix.
func (f *fixture) createAdmin(t *testing.T, email string) *model.Admin {
	t.Helper()
	admin, err := f.admins.CreateAdmin(f.super, &CreateAdminRequest{
		Name:     "Admin " + email,
		Email:    email,
		Password: "password1",
	})
	require.NoError(t, err)
	return admin
}

func auditEntries(t *testing.T, s AuditService, entityType *model.EntityType) []model.AuditLog {
	t.Helper()
	entries, err := s.List(entityType, 0)
	require.NoError(t, err)
	return entries
}

func entityPtr(e model.EntityType) *model.EntityType {
	return &e
}
