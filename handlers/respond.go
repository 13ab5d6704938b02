// handlers/respond.go
package handlers

import (
	"log"

	"github.com/Pratyunmis/robosaga26/services"

	"github.com/gofiber/fiber/v2"
)

// fail renders a service error as {ok, kind, message}. Informational kinds
// (AlreadyRegistered, AlreadyInTeam) come back as 200 with ok=true since the
// caller's desired end-state already holds.
func fail(c *fiber.Ctx, err error) error {
	kind := services.KindOf(err)
	status := services.HTTPStatus(kind)
	if kind == services.KindInternal {
		log.Printf("[HTTP] %s %s failed: %v", c.Method(), c.Path(), err)
		return c.Status(status).JSON(fiber.Map{
			"ok":      false,
			"kind":    kind,
			"message": "internal error",
		})
	}
	return c.Status(status).JSON(fiber.Map{
		"ok":      status < 400,
		"kind":    kind,
		"message": services.MessageOf(err),
	})
}

func ok(c *fiber.Ctx, payload fiber.Map) error {
	payload["ok"] = true
	return c.JSON(payload)
}
