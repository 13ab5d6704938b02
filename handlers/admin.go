// handlers/admin.go
package handlers

import (
	"strconv"

	"github.com/Pratyunmis/robosaga26/middleware"
	"github.com/Pratyunmis/robosaga26/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupAdminRoutes(
	app *fiber.App,
	db *gorm.DB,
	adminService *services.AdminService,
	eventService *services.EventService,
	hackawayService *services.HackawayService,
) {
	admin := app.Group("/s/admin", middleware.UserContextMiddleware(), middleware.RequireAdmin(db))

	// Dashboard
	admin.Get("/stats", func(c *fiber.Ctx) error {
		stats, err := adminService.Stats()
		if err != nil {
			return fail(c, err)
		}
		return ok(c, fiber.Map{"stats": stats})
	})

	admin.Get("/analytics", func(c *fiber.Ctx) error {
		analytics, err := adminService.Analytics()
		if err != nil {
			return fail(c, err)
		}
		return ok(c, fiber.Map{"analytics": analytics})
	})

	// Management lists
	admin.Get("/users", func(c *fiber.Ctx) error {
		users, err := adminService.ListUsers()
		if err != nil {
			return fail(c, err)
		}
		return ok(c, fiber.Map{"users": users})
	})

	admin.Get("/teams", func(c *fiber.Ctx) error {
		teams, err := adminService.ListTeams()
		if err != nil {
			return fail(c, err)
		}
		return ok(c, fiber.Map{"teams": teams})
	})

	admin.Get("/registrations", func(c *fiber.Ctx) error {
		regs, err := eventService.ListRegistrations()
		if err != nil {
			return fail(c, err)
		}
		return ok(c, fiber.Map{"registrations": regs})
	})

	admin.Get("/messages", func(c *fiber.Ctx) error {
		msgs, err := adminService.ListMessages()
		if err != nil {
			return fail(c, err)
		}
		return ok(c, fiber.Map{"messages": msgs})
	})

	admin.Patch("/users/:id/role", func(c *fiber.Ctx) error {
		var req struct {
			Role string `json:"role"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fail(c, services.Err(services.KindInvalidInput, "invalid JSON body"))
		}
		user, err := adminService.UpdateUserRole(c.Params("id"), req.Role)
		if err != nil {
			return fail(c, err)
		}
		return ok(c, fiber.Map{"user": user})
	})

	admin.Patch("/teams/:id/score", func(c *fiber.Ctx) error {
		var req struct {
			Score int `json:"score"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fail(c, services.Err(services.KindInvalidInput, "invalid JSON body"))
		}
		team, err := adminService.UpdateTeamScore(c.Params("id"), req.Score)
		if err != nil {
			return fail(c, err)
		}
		return ok(c, fiber.Map{"team": team})
	})

	// Event catalogue
	admin.Post("/events", func(c *fiber.Ctx) error {
		var req services.EventInput
		if err := c.BodyParser(&req); err != nil {
			return fail(c, services.Err(services.KindInvalidInput, "invalid JSON body"))
		}
		event, err := eventService.CreateEvent(req)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"ok": true, "event": event})
	})

	admin.Put("/events/:id", func(c *fiber.Ctx) error {
		var req services.EventInput
		if err := c.BodyParser(&req); err != nil {
			return fail(c, services.Err(services.KindInvalidInput, "invalid JSON body"))
		}
		event, err := eventService.UpdateEvent(c.Params("id"), req)
		if err != nil {
			return fail(c, err)
		}
		return ok(c, fiber.Map{"event": event})
	})

	admin.Delete("/events/:id", func(c *fiber.Ctx) error {
		if err := eventService.DeleteEvent(c.Params("id")); err != nil {
			return fail(c, err)
		}
		return ok(c, fiber.Map{"message": "event deleted"})
	})

	admin.Patch("/registrations/:id/result", func(c *fiber.Ctx) error {
		var req struct {
			Score int `json:"score"`
			Rank  int `json:"rank"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fail(c, services.Err(services.KindInvalidInput, "invalid JSON body"))
		}
		reg, err := eventService.SetResult(c.Params("id"), req.Score, req.Rank)
		if err != nil {
			return fail(c, err)
		}
		return ok(c, fiber.Map{"registration": reg})
	})

	// Hackathon administration
	admin.Get("/hackaway/registrations", func(c *fiber.Ctx) error {
		regs, err := hackawayService.ListRegistrations()
		if err != nil {
			return fail(c, err)
		}
		return ok(c, fiber.Map{"registrations": regs})
	})

	admin.Patch("/hackaway/problem-statements/:no/max", func(c *fiber.Ctx) error {
		no, err := strconv.Atoi(c.Params("no"))
		if err != nil {
			return fail(c, services.Err(services.KindInvalidInput, "problem statement number must be an integer"))
		}
		var req struct {
			MaxParticipants int `json:"max_participants"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fail(c, services.Err(services.KindInvalidInput, "invalid JSON body"))
		}
		setting, err := hackawayService.SetMaxParticipants(no, req.MaxParticipants)
		if err != nil {
			return fail(c, err)
		}
		return ok(c, fiber.Map{"setting": setting})
	})

	admin.Patch("/hackaway/problem-statements/:no/active", func(c *fiber.Ctx) error {
		no, err := strconv.Atoi(c.Params("no"))
		if err != nil {
			return fail(c, services.Err(services.KindInvalidInput, "problem statement number must be an integer"))
		}
		var req struct {
			IsActive bool `json:"is_active"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fail(c, services.Err(services.KindInvalidInput, "invalid JSON body"))
		}
		setting, err := hackawayService.SetActive(no, req.IsActive)
		if err != nil {
			return fail(c, err)
		}
		return ok(c, fiber.Map{"setting": setting})
	})

	admin.Patch("/hackaway/registrations/:id/result", func(c *fiber.Ctx) error {
		var req struct {
			Rank             int    `json:"rank"`
			Qualified        bool   `json:"qualified"`
			PresentationLink string `json:"presentation_link"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fail(c, services.Err(services.KindInvalidInput, "invalid JSON body"))
		}
		reg, err := hackawayService.UpdateResult(c.Params("id"), req.Rank, req.Qualified, req.PresentationLink)
		if err != nil {
			return fail(c, err)
		}
		return ok(c, fiber.Map{"registration": reg})
	})
}
