package handler

import (
	"strconv"

	"go-restaurant-authz/internal/model"
	"go-restaurant-authz/internal/service"

	"github.com/gofiber/fiber/v2"
)

const maxAuditLimit = 1000

type AuditHandler struct {
	audit service.AuditService
}

func NewAuditHandler(audit service.AuditService) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// GetAuditLogs returns audit entries newest first
// Query params: entity_type (optional), limit (default 100)
func (h *AuditHandler) GetAuditLogs(c *fiber.Ctx) error {
	var entityType *model.EntityType
	if raw := c.Query("entity_type"); raw != "" {
		et := model.EntityType(raw)
		if !et.IsValid() {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid entity_type"})
		}
		entityType = &et
	}

	limit, err := strconv.Atoi(c.Query("limit", "100"))
	if err != nil || limit <= 0 {
		limit = 100
	}
	if limit > maxAuditLimit {
		limit = maxAuditLimit
	}

	entries, err := h.audit.List(entityType, limit)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch audit logs"})
	}

	return c.JSON(fiber.Map{
		"count": len(entries),
		"data":  entries,
	})
}

// GetSummary returns per-day audit counts for charts
// Query params: days (default 7)
func (h *AuditHandler) GetSummary(c *fiber.Ctx) error {
	days, err := strconv.Atoi(c.Query("days", "7"))
	if err != nil || days <= 0 {
		days = 7
	}

	data, err := h.audit.Summary(days)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch audit summary"})
	}

	return c.JSON(fiber.Map{
		"period": days,
		"data":   data,
	})
}
