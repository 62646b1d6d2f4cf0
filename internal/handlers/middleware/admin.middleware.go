package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
)

const AdminTokenHeader = "X-Admin-Token"

// RequireAdminToken guards operations routes with the shared ADMIN_TOKEN.
// With no token configured the routes are closed.
func (m *Middleware) RequireAdminToken() fiber.Handler {
	log := m.log.Function("RequireAdminToken")

	return func(c *fiber.Ctx) error {
		if m.Config.AdminToken == "" {
			log.Warn("admin token not configured, rejecting request", "path", c.Path())
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "Admin access not configured",
			})
		}

		token := c.Get(AdminTokenHeader)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Admin token required",
			})
		}

		if subtle.ConstantTimeCompare([]byte(token), []byte(m.Config.AdminToken)) != 1 {
			log.Info("invalid admin token", "path", c.Path(), "ip", c.IP())
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Invalid admin token",
			})
		}

		return c.Next()
	}
}
