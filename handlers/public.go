// handlers/public.go
package handlers

import (
	"github.com/Pratyunmis/robosaga26/services"

	"github.com/gofiber/fiber/v2"
)

func SetupPublicRoutes(app *fiber.App, teamService *services.TeamService, userService *services.UserService) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return ok(c, fiber.Map{"status": "up"})
	})

	app.Get("/leaderboard", func(c *fiber.Ctx) error {
		entries, err := teamService.Leaderboard()
		if err != nil {
			return fail(c, err)
		}
		return ok(c, fiber.Map{"leaderboard": entries})
	})

	app.Get("/teams/:slug", func(c *fiber.Ctx) error {
		team, err := teamService.GetTeamBySlug(c.Params("slug"))
		if err != nil {
			return fail(c, err)
		}
		return ok(c, fiber.Map{"team": team})
	})

	app.Post("/contact", func(c *fiber.Ctx) error {
		var req services.ContactInput
		if err := c.BodyParser(&req); err != nil {
			return fail(c, services.Err(services.KindInvalidInput, "invalid JSON body"))
		}
		msg, err := userService.CreateMessage(req)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"ok": true, "id": msg.ID})
	})
}
