// middleware/admin.go
package middleware

import (
	"log"

	"github.com/Pratyunmis/robosaga26/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// RequireAdmin allows the request through when either the gateway passed an
// admin role header or the local user record carries the admin role. The DB
// check covers roles granted through the dashboard after login.
func RequireAdmin(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if roles, ok := c.Locals("user_roles").([]string); ok {
			for _, r := range roles {
				if r == models.RoleAdmin {
					return c.Next()
				}
			}
		}

		userID := UserID(c)
		if userID != "" {
			var user models.User
			err := db.Select("role").Where("id = ?", userID).First(&user).Error
			if err == nil && user.Role == models.RoleAdmin {
				return c.Next()
			}
			if err != nil && err != gorm.ErrRecordNotFound {
				log.Printf("[ADMIN] role lookup failed for %s: %v", userID, err)
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"ok":      false,
			"kind":    "unauthorized",
			"message": "admin access required",
		})
	}
}
