package middleware

import (
	"errors"
	"net/http/httptest"
	"testing"

	"go-restaurant-authz/internal/authz"
	"go-restaurant-authz/internal/metrics"
	"go-restaurant-authz/internal/model"
	"go-restaurant-authz/internal/service"
	"go-restaurant-authz/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubAuth resolves tokens from a fixed table.
type stubAuth struct {
	service.AuthService
	admins map[string]*model.Admin
}

func (s stubAuth) Authenticate(token string) (*model.Admin, error) {
	if token == "replaced" {
		return nil, service.ErrSessionReplaced
	}
	admin, ok := s.admins[token]
	if !ok {
		return nil, jwt.ErrInvalidToken
	}
	return admin, nil
}

// livePages is a registry whose page set the test controls.
type livePages struct {
	pages []model.Page
	err   error
}

func (l *livePages) PageKeys() ([]model.Page, error) {
	return l.pages, l.err
}

func newAdmin(role model.UserRole, grant func(m *model.ResponsibilityMatrix)) *model.Admin {
	a := &model.Admin{Name: string(role), Email: string(role) + "@example.com", Role: role, Status: model.StatusActive}
	a.ID = uuid.New()
	m := model.NewResponsibilityMatrix()
	if grant != nil {
		grant(&m)
	}
	a.SetResponsibilityMatrix(m)
	return a
}

func newApp(m *metrics.Metrics) *fiber.App {
	return newAppWithPages(m, &livePages{pages: []model.Page{model.PageUsers}})
}

func newAppWithPages(m *metrics.Metrics, pages PageSource) *fiber.App {
	auth := stubAuth{admins: map[string]*model.Admin{
		"root":  newAdmin(model.RoleSuperAdmin, nil),
		"plain": newAdmin(model.RoleAdmin, nil),
		"auditor": newAdmin(model.RoleAdmin, func(m *model.ResponsibilityMatrix) {
			m.FeatureAuthority[model.FeatureAuditLogs] = true
		}),
		"staff": newAdmin(model.RoleAdmin, func(m *model.ResponsibilityMatrix) {
			m.PageAuthority[model.PageUsers] = true
		}),
	}}

	app := fiber.New()
	api := app.Group("/api", RequireAuth(auth))
	api.Get("/whoami", func(c *fiber.Ctx) error {
		actor, ok := CurrentActor(c)
		if !ok {
			return c.SendStatus(500)
		}
		return c.SendString(actor.Email)
	})
	api.Get("/audit", RequireAccess(authz.New(), authz.RequireFeatures(model.FeatureAuditLogs), pages, m), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	api.Get("/users", RequireAccess(authz.New(), authz.RequirePages(model.PageUsers), pages, m), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	api.Post("/pages", RequireSuperAdmin(), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func request(t *testing.T, app *fiber.App, method, path, token string) int {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestRequireAuth(t *testing.T) {
	app := newApp(nil)

	assert.Equal(t, 401, request(t, app, "GET", "/api/whoami", ""))
	assert.Equal(t, 401, request(t, app, "GET", "/api/whoami", "garbage"))
	assert.Equal(t, 401, request(t, app, "GET", "/api/whoami", "replaced"))
	assert.Equal(t, 200, request(t, app, "GET", "/api/whoami", "plain"))

	req := httptest.NewRequest("GET", "/api/whoami", nil)
	req.Header.Set("Authorization", "Token plain")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestRequireAccess(t *testing.T) {
	m := metrics.NewMetrics(prometheus.NewRegistry())
	app := newApp(m)

	tests := []struct {
		token string
		want  int
	}{
		{"root", 200},
		{"auditor", 200},
		{"plain", 403},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			assert.Equal(t, tt.want, request(t, app, "GET", "/api/audit", tt.token))
		})
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.GuardDecisions.WithLabelValues("allowed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GuardDecisions.WithLabelValues("denied")))
}

func TestRequireSuperAdmin(t *testing.T) {
	app := newApp(nil)

	assert.Equal(t, 200, request(t, app, "POST", "/api/pages", "root"))
	assert.Equal(t, 403, request(t, app, "POST", "/api/pages", "auditor"))
}

func TestRequireAccessIgnoresRemovedPages(t *testing.T) {
	pages := &livePages{pages: []model.Page{model.PageUsers}}
	app := newAppWithPages(nil, pages)

	assert.Equal(t, 200, request(t, app, "GET", "/api/users", "staff"))

	pages.pages = []model.Page{model.PageDashboard}
	assert.Equal(t, 403, request(t, app, "GET", "/api/users", "staff"))
	assert.Equal(t, 200, request(t, app, "GET", "/api/users", "root"))

	pages.pages, pages.err = nil, errors.New("database is locked")
	assert.Equal(t, 403, request(t, app, "GET", "/api/users", "staff"))
}
