package handler

import (
	"go-restaurant-authz/internal/model"
	"go-restaurant-authz/internal/service"

	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	adminService service.AdminService
	authService  service.AuthService
}

func NewAdminHandler(adminService service.AdminService, authService service.AuthService) *AdminHandler {
	return &AdminHandler{adminService: adminService, authService: authService}
}

// GetAdmins returns all admins
// GET /api/v1/admins
func (h *AdminHandler) GetAdmins(c *fiber.Ctx) error {
	admins, err := h.adminService.ListAdmins()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch admins"})
	}

	out := make([]model.AdminResponse, len(admins))
	for i := range admins {
		out[i] = admins[i].ToResponse()
	}
	return c.JSON(out)
}

// GetAdmin returns a single admin by ID
// GET /api/v1/admins/:id
func (h *AdminHandler) GetAdmin(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid admin ID"})
	}

	admin, err := h.adminService.GetAdmin(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(admin.ToResponse())
}

// CreateAdmin handles admin creation
// POST /api/v1/admins
func (h *AdminHandler) CreateAdmin(c *fiber.Ctx) error {
	actor, ok, err := actorOrAbort(c)
	if !ok {
		return err
	}

	var req service.CreateAdminRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	admin, err := h.adminService.CreateAdmin(actor, &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{
		"message": "Admin created successfully",
		"data":    admin.ToResponse(),
	})
}

// UpdateAdmin handles a partial profile update
// PUT /api/v1/admins/:id
func (h *AdminHandler) UpdateAdmin(c *fiber.Ctx) error {
	actor, ok, err := actorOrAbort(c)
	if !ok {
		return err
	}
	id, ok := parseID(c)
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid admin ID"})
	}

	var req service.UpdateAdminRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	admin, err := h.adminService.UpdateAdmin(actor, id, &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Admin updated successfully",
		"data":    admin.ToResponse(),
	})
}

// DeleteAdmin handles admin deletion
// DELETE /api/v1/admins/:id
func (h *AdminHandler) DeleteAdmin(c *fiber.Ctx) error {
	actor, ok, err := actorOrAbort(c)
	if !ok {
		return err
	}
	id, ok := parseID(c)
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid admin ID"})
	}

	if err := h.adminService.DeleteAdmin(actor, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Admin deleted successfully"})
}

// ToggleStatus flips an admin between active and inactive
// POST /api/v1/admins/:id/toggle-status
func (h *AdminHandler) ToggleStatus(c *fiber.Ctx) error {
	actor, ok, err := actorOrAbort(c)
	if !ok {
		return err
	}
	id, ok := parseID(c)
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid admin ID"})
	}

	admin, err := h.adminService.ToggleStatus(actor, id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Admin status updated",
		"data":    admin.ToResponse(),
	})
}

// UpdateMatrix replaces an admin's responsibility matrix
// PUT /api/v1/admins/:id/matrix
func (h *AdminHandler) UpdateMatrix(c *fiber.Ctx) error {
	actor, ok, err := actorOrAbort(c)
	if !ok {
		return err
	}
	id, ok := parseID(c)
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid admin ID"})
	}

	var m model.ResponsibilityMatrix
	if err := c.BodyParser(&m); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	admin, err := h.adminService.UpdateResponsibilityMatrix(actor, id, m)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Permissions updated successfully",
		"data":    admin.ToResponse(),
	})
}

// ExportMatrix downloads an admin's matrix as JSON
// GET /api/v1/admins/:id/matrix/export
func (h *AdminHandler) ExportMatrix(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid admin ID"})
	}

	data, err := h.adminService.ExportMatrix(id)
	if err != nil {
		return respondError(c, err)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="responsibility-matrix-`+id.String()+`.json"`)
	return c.Send(data)
}

// ImportMatrix replaces an admin's matrix with an exported document
// POST /api/v1/admins/:id/matrix/import
func (h *AdminHandler) ImportMatrix(c *fiber.Ctx) error {
	actor, ok, err := actorOrAbort(c)
	if !ok {
		return err
	}
	id, ok := parseID(c)
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid admin ID"})
	}

	admin, err := h.adminService.ImportMatrix(actor, id, c.Body())
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Permissions imported successfully",
		"data":    admin.ToResponse(),
	})
}

// GetPermissions returns the evaluated permissions of an admin
// GET /api/v1/admins/:id/permissions
func (h *AdminHandler) GetPermissions(c *fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid admin ID"})
	}

	admin, err := h.adminService.GetAdmin(id)
	if err != nil {
		return respondError(c, err)
	}

	snapshot, err := h.authService.Permissions(admin)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(snapshot)
}
