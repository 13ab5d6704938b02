// handlers/hackaway.go
package handlers

import (
	"fmt"
	"path/filepath"

	"github.com/Pratyunmis/robosaga26/middleware"
	"github.com/Pratyunmis/robosaga26/services"
	"github.com/Pratyunmis/robosaga26/utils"

	"github.com/gofiber/fiber/v2"
)

const maxDeckSize = 20 << 20 // 20 MiB

func SetupHackawayRoutes(app *fiber.App, hackawayService *services.HackawayService) {
	app.Get("/hackaway/stats", func(c *fiber.Ctx) error {
		stats, err := hackawayService.Stats()
		if err != nil {
			return fail(c, err)
		}
		return ok(c, fiber.Map{"stats": stats})
	})

	app.Get("/hackaway/problem-statements", func(c *fiber.Ctx) error {
		settings, err := hackawayService.Settings()
		if err != nil {
			return fail(c, err)
		}
		return ok(c, fiber.Map{"problem_statements": settings})
	})

	secured := app.Group("/s", middleware.UserContextMiddleware())

	secured.Post("/hackaway/register", func(c *fiber.Ctx) error {
		var req struct {
			ProblemStatementNo int `json:"problem_statement_no"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fail(c, services.Err(services.KindInvalidInput, "invalid JSON body"))
		}
		reg, err := hackawayService.Register(middleware.UserID(c), req.ProblemStatementNo)
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

	secured.Get("/hackaway/status", func(c *fiber.Ctx) error {
		status, err := hackawayService.Status(middleware.UserID(c))
		if err != nil {
			return fail(c, err)
		}
		return ok(c, fiber.Map{"status": status})
	})

	// Leaders attach their deck either as a direct file upload (stored on R2)
	// or as an external link.
	secured.Post("/hackaway/presentation", func(c *fiber.Ctx) error {
		userID := middleware.UserID(c)

		if file, err := c.FormFile("file"); err == nil {
			if !utils.R2Enabled() {
				return fail(c, services.Err(services.KindInvalidInput, "file uploads are not enabled, submit a link instead"))
			}
			if file.Size > maxDeckSize {
				return fail(c, services.Err(services.KindInvalidInput, "presentation file exceeds 20MB"))
			}
			key := fmt.Sprintf("decks/%s%s", utils.RandomSuffix(12), filepath.Ext(file.Filename))
			url, err := utils.UploadFileToR2(file, key)
			if err != nil {
				return fail(c, err)
			}
			reg, err := hackawayService.SetPresentationLink(userID, url)
			if err != nil {
				return fail(c, err)
			}
			return ok(c, fiber.Map{"registration": reg})
		}

		var req struct {
			Link string `json:"link"`
		}
		if err := c.BodyParser(&req); err != nil || req.Link == "" {
			return fail(c, services.Err(services.KindInvalidInput, "provide a file upload or a link"))
		}
		reg, err := hackawayService.SetPresentationLink(userID, req.Link)
		if err != nil {
			return fail(c, err)
		}
		return ok(c, fiber.Map{"registration": reg})
	})
}
