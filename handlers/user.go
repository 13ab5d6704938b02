// handlers/user.go
package handlers

import (
	"github.com/Pratyunmis/robosaga26/middleware"
	"github.com/Pratyunmis/robosaga26/services"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(app *fiber.App, userService *services.UserService) {
	secured := app.Group("/s", middleware.UserContextMiddleware())

	// Called by the auth layer right after sign-in to mirror the account.
	secured.Post("/users/sync", func(c *fiber.Ctx) error {
		var req struct {
			Name  string `json:"name"`
			Email string `json:"email"`
			Image string `json:"image"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fail(c, services.Err(services.KindInvalidInput, "invalid JSON body"))
		}
		user, err := userService.SyncUser(middleware.UserID(c), req.Name, req.Email, req.Image)
		if err != nil {
			return fail(c, err)
		}
		return ok(c, fiber.Map{"user": user})
	})

	secured.Get("/users/me", func(c *fiber.Ctx) error {
		user, err := userService.GetProfile(middleware.UserID(c))
		if err != nil {
			return fail(c, err)
		}
		return ok(c, fiber.Map{"user": user})
	})

	secured.Patch("/users/me", func(c *fiber.Ctx) error {
		var req services.ProfileInput
		if err := c.BodyParser(&req); err != nil {
			return fail(c, services.Err(services.KindInvalidInput, "invalid JSON body"))
		}
		user, err := userService.UpdateProfile(middleware.UserID(c), req)
		if err != nil {
			return fail(c, err)
		}
		return ok(c, fiber.Map{"user": user})
	})
}
