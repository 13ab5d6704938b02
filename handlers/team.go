// handlers/team.go
package handlers

import (
	"github.com/Pratyunmis/robosaga26/middleware"
	"github.com/Pratyunmis/robosaga26/services"

	"github.com/gofiber/fiber/v2"
)

func SetupTeamRoutes(app *fiber.App, teamService *services.TeamService) {
	secured := app.Group("/s", middleware.UserContextMiddleware())

	secured.Post("/teams", func(c *fiber.Ctx) error {
		var req struct {
			Name string `json:"name"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fail(c, services.Err(services.KindInvalidInput, "invalid JSON body"))
		}
		team, err := teamService.CreateTeam(middleware.UserID(c), req.Name)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"ok": true, "team": team})
	})

	secured.Get("/teams/me", func(c *fiber.Ctx) error {
		team, err := teamService.GetUserTeam(middleware.UserID(c))
		if err != nil {
			return fail(c, err)
		}
		return ok(c, fiber.Map{"team": team})
	})

	secured.Delete("/teams/:id", func(c *fiber.Ctx) error {
		if err := teamService.DeleteTeam(middleware.UserID(c), c.Params("id")); err != nil {
			return fail(c, err)
		}
		return ok(c, fiber.Map{"message": "team deleted"})
	})

	secured.Post("/teams/:slug/join", func(c *fiber.Ctx) error {
		request, err := teamService.RequestJoin(middleware.UserID(c), c.Params("slug"))
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"ok": true, "request": request})
	})

	secured.Get("/teams/requests", func(c *fiber.Ctx) error {
		requests, err := teamService.ListJoinRequests(middleware.UserID(c))
		if err != nil {
			return fail(c, err)
		}
		return ok(c, fiber.Map{"requests": requests})
	})

	secured.Post("/teams/requests/:id/accept", func(c *fiber.Ctx) error {
		member, err := teamService.AcceptJoinRequest(middleware.UserID(c), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return ok(c, fiber.Map{"member": member})
	})

	secured.Post("/teams/requests/:id/reject", func(c *fiber.Ctx) error {
		if err := teamService.RejectJoinRequest(middleware.UserID(c), c.Params("id")); err != nil {
			return fail(c, err)
		}
		return ok(c, fiber.Map{"message": "request rejected"})
	})

	secured.Post("/teams/leave", func(c *fiber.Ctx) error {
		if err := teamService.LeaveTeam(middleware.UserID(c)); err != nil {
			return fail(c, err)
		}
		return ok(c, fiber.Map{"message": "left team"})
	})

	secured.Delete("/teams/members/:userId", func(c *fiber.Ctx) error {
		if err := teamService.RemoveMember(middleware.UserID(c), c.Params("userId")); err != nil {
			return fail(c, err)
		}
		return ok(c, fiber.Map{"message": "member removed"})
	})
}
