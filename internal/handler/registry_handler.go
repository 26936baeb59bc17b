package handler

import (
	"go-restaurant-authz/internal/model"
	"go-restaurant-authz/internal/service"

	"github.com/gofiber/fiber/v2"
)

type RegistryHandler struct {
	registry service.RegistryService
}

func NewRegistryHandler(registry service.RegistryService) *RegistryHandler {
	return &RegistryHandler{registry: registry}
}

// GetRegistry returns the permission vocabulary
// GET /api/v1/registry
func (h *RegistryHandler) GetRegistry(c *fiber.Ctx) error {
	reg, err := h.registry.Projection()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch registry"})
	}
	return c.JSON(reg)
}

// AddPage registers a new page
// POST /api/v1/registry/pages
func (h *RegistryHandler) AddPage(c *fiber.Ctx) error {
	actor, ok, err := actorOrAbort(c)
	if !ok {
		return err
	}

	var req service.AddPageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	page, err := h.registry.AddPage(actor, &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{
		"message": "Page registered successfully",
		"data":    page,
	})
}

// RemovePage drops a page from the registry
// DELETE /api/v1/registry/pages/:key
func (h *RegistryHandler) RemovePage(c *fiber.Ctx) error {
	actor, ok, err := actorOrAbort(c)
	if !ok {
		return err
	}

	if err := h.registry.RemovePage(actor, model.Page(c.Params("key"))); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Page removed successfully"})
}
