package middleware

import (
	"errors"
	"strings"

	"go-restaurant-authz/internal/authz"
	"go-restaurant-authz/internal/metrics"
	"go-restaurant-authz/internal/model"
	"go-restaurant-authz/internal/service"
	"go-restaurant-authz/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

const (
	localAdmin = "admin"
	localActor = "actor"
)

// RequireAuth is middleware that validates the bearer token against the live
// admin record and stores the admin in the request context.
func RequireAuth(authService service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Get Authorization header
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(401).JSON(fiber.Map{"error": "Missing authorization token"})
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid authorization format. Use: Bearer <token>"})
		}

		return authenticate(c, authService, parts[1])
	}
}

// RequireQueryAuth reads the token from the "token" query parameter.
// Browsers cannot set headers on a WebSocket upgrade.
func RequireQueryAuth(authService service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return authenticate(c, authService, c.Query("token"))
	}
}

func authenticate(c *fiber.Ctx, authService service.AuthService, token string) error {
	admin, err := authService.Authenticate(token)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": authError(err)})
	}

	c.Locals(localAdmin, admin)
	c.Locals(localActor, service.ActorFor(admin))
	return c.Next()
}

func authError(err error) string {
	switch {
	case errors.Is(err, service.ErrSessionReplaced), errors.Is(err, service.ErrAdminInactive):
		return err.Error()
	case errors.Is(err, service.ErrNotFound):
		return "Admin not found"
	case errors.Is(err, jwt.ErrMissingToken):
		return "Missing authorization token"
	default:
		return "Invalid or expired token"
	}
}

// CurrentAdmin returns the admin stored by RequireAuth, nil on public routes.
func CurrentAdmin(c *fiber.Ctx) *model.Admin {
	admin, _ := c.Locals(localAdmin).(*model.Admin)
	return admin
}

// CurrentActor returns the acting admin for service calls.
func CurrentActor(c *fiber.Ctx) (service.Actor, bool) {
	actor, ok := c.Locals(localActor).(service.Actor)
	return actor, ok
}

// RequireSuperAdmin rejects every role but Super Admin.
func RequireSuperAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		admin := CurrentAdmin(c)
		if admin == nil || admin.Role != model.RoleSuperAdmin {
			return c.Status(403).JSON(fiber.Map{"error": "Access denied"})
		}
		return c.Next()
	}
}

// PageSource lists the pages currently in the registry.
type PageSource interface {
	PageKeys() ([]model.Page, error)
}

// RequireAccess checks the authenticated admin's matrix against req. Matrix
// entries for pages missing from the registry are ignored. The response
// never names the missing permission.
func RequireAccess(e authz.Evaluator, req authz.Requirement, pages PageSource, m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		admin := CurrentAdmin(c)
		if admin == nil {
			m.RecordGuardDecision(false)
			return c.Status(403).JSON(fiber.Map{"error": "Access denied"})
		}

		live, err := pages.PageKeys()
		if err != nil {
			m.RecordGuardDecision(false)
			log.Errorf("access check: load registry: %v", err)
			return c.Status(403).JSON(fiber.Map{"error": "Access denied"})
		}

		matrix := admin.ResponsibilityMatrix().RestrictPages(live)
		if !req.Allowed(e, admin.Role, &matrix) {
			m.RecordGuardDecision(false)
			log.Debugf("access denied: %s %s for %s", c.Method(), c.Path(), admin.Email)
			return c.Status(403).JSON(fiber.Map{"error": "Access denied"})
		}

		m.RecordGuardDecision(true)
		return c.Next()
	}
}
