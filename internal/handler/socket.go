package handler

import (
	"go-restaurant-authz/internal/middleware"
	"go-restaurant-authz/internal/ws"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// RegisterSocket mounts the /ws event stream. Events carry directory data,
// so subscribers pass the same guard as the directory routes.
func RegisterSocket(app *fiber.App, s Services, hub *ws.Hub) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return c.SendStatus(fiber.StatusUpgradeRequired)
		}
		return c.Next()
	},
		middleware.RequireQueryAuth(s.Auth),
		middleware.RequireAccess(s.Evaluator, directoryAccess, s.Registry, s.Metrics),
	)

	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		if !hub.Join(c) {
			return
		}
		defer hub.Leave(c)

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))
}
