package handler

import (
	"errors"

	"go-restaurant-authz/internal/middleware"
	"go-restaurant-authz/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

// respondError maps service errors onto HTTP statuses.
func respondError(c *fiber.Ctx, err error) error {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(400).JSON(fiber.Map{"error": "Validation failed", "details": verr.Problems})
	case errors.Is(err, service.ErrValidation):
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		return c.Status(404).JSON(fiber.Map{"error": "Not found"})
	case errors.Is(err, service.ErrUnauthorizedOperation):
		return c.Status(403).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrEmailExists), errors.Is(err, service.ErrPageExists):
		return c.Status(409).JSON(fiber.Map{"error": err.Error()})
	default:
		log.Errorf("%s %s: %v", c.Method(), c.Path(), err)
		return c.Status(500).JSON(fiber.Map{"error": "Internal server error"})
	}
}

// actorOrAbort reads the actor set by middleware.RequireAuth. When it is
// missing the 401 response is already written and ok is false.
func actorOrAbort(c *fiber.Ctx) (actor service.Actor, ok bool, err error) {
	actor, ok = middleware.CurrentActor(c)
	if !ok {
		err = c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
	}
	return actor, ok, err
}

func parseID(c *fiber.Ctx) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params("id"))
	return id, err == nil
}
