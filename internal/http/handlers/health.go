package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"autosalon/internal/log"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	DB Pinger
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	if err := h.DB.PingContext(c.UserContext()); err != nil {
		c.Status(fiber.StatusServiceUnavailable)
		log.Error(c, "health.ping", err, nil)
		return c.JSON(fiber.Map{"ok": false})
	}
	return c.JSON(fiber.Map{"ok": true})
}
