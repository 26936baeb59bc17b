package handler

import (
	"go-restaurant-authz/internal/authz"
	"go-restaurant-authz/internal/metrics"
	"go-restaurant-authz/internal/middleware"
	"go-restaurant-authz/internal/model"
	"go-restaurant-authz/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Services groups what the HTTP layer calls into.
type Services struct {
	Auth      service.AuthService
	Admins    service.AdminService
	Registry  service.RegistryService
	Audit     service.AuditService
	Evaluator authz.Evaluator
	Metrics   *metrics.Metrics
}

// directoryAccess guards every view of other admins' accounts and matrices.
var directoryAccess = authz.Requirement{
	Features: []model.Feature{model.FeatureUsers},
	Pages:    []model.Page{model.PageUsers},
	Mode:     authz.MatchAny,
}

// RegisterRoutes mounts the /api/v1 routes on app.
func RegisterRoutes(app *fiber.App, s Services) {
	authHandler := NewAuthHandler(s.Auth)
	adminHandler := NewAdminHandler(s.Admins, s.Auth)
	registryHandler := NewRegistryHandler(s.Registry)
	auditHandler := NewAuditHandler(s.Audit)

	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/reset-password", authHandler.ResetPassword)
	auth.Post("/validate-token", authHandler.ValidateToken)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(s.Auth))
	superAdmin := middleware.RequireSuperAdmin()
	directory := middleware.RequireAccess(s.Evaluator, directoryAccess, s.Registry, s.Metrics)
	auditTrail := middleware.RequireAccess(s.Evaluator, authz.RequireFeatures(model.FeatureAuditLogs), s.Registry, s.Metrics)

	protected.Get("/me/permissions", authHandler.Me)

	// Registry
	protected.Get("/registry", registryHandler.GetRegistry)
	protected.Post("/registry/pages", superAdmin, registryHandler.AddPage)
	protected.Delete("/registry/pages/:key", superAdmin, registryHandler.RemovePage)

	// Admin directory; profile updates are checked per field by the service
	protected.Get("/admins", directory, adminHandler.GetAdmins)
	protected.Get("/admins/:id", directory, adminHandler.GetAdmin)
	protected.Post("/admins", superAdmin, adminHandler.CreateAdmin)
	protected.Put("/admins/:id", adminHandler.UpdateAdmin)
	protected.Delete("/admins/:id", superAdmin, adminHandler.DeleteAdmin)
	protected.Post("/admins/:id/toggle-status", superAdmin, adminHandler.ToggleStatus)
	protected.Put("/admins/:id/matrix", superAdmin, adminHandler.UpdateMatrix)
	protected.Get("/admins/:id/matrix/export", directory, adminHandler.ExportMatrix)
	protected.Post("/admins/:id/matrix/import", superAdmin, adminHandler.ImportMatrix)
	protected.Get("/admins/:id/permissions", directory, adminHandler.GetPermissions)

	// Audit trail
	protected.Get("/audit-logs", auditTrail, auditHandler.GetAuditLogs)
	protected.Get("/audit-logs/summary", auditTrail, auditHandler.GetSummary)
}
