// handlers/event.go
package handlers

import (
	"github.com/Pratyunmis/robosaga26/middleware"
	"github.com/Pratyunmis/robosaga26/services"

	"github.com/gofiber/fiber/v2"
)

func SetupEventRoutes(app *fiber.App, eventService *services.EventService) {
	app.Get("/events", func(c *fiber.Ctx) error {
		events, err := eventService.ListActiveEvents()
		if err != nil {
			return fail(c, err)
		}
		return ok(c, fiber.Map{"events": events})
	})

	secured := app.Group("/s", middleware.UserContextMiddleware())

	secured.Post("/events/:slug/register", func(c *fiber.Ctx) error {
		reg, err := eventService.RegisterForEvent(middleware.UserID(c), c.Params("slug"))
		if err != nil {
			if services.KindOf(err) == services.KindAlreadyRegistered {
				return ok(c, fiber.Map{
					"registration":       reg,
					"already_registered": true,
				})
			}
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"ok": true, "registration": reg})
	})

	secured.Get("/events/registrations/me", func(c *fiber.Ctx) error {
		slugs, err := eventService.UserRegistrations(middleware.UserID(c))
		if err != nil {
			return fail(c, err)
		}
		return ok(c, fiber.Map{"registered_events": slugs})
	})
}
