package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"

	applog "watchflip/internal/log"
	"watchflip/internal/services"
)

// RequireOperator guards mutating routes with HTTP basic auth against the
// configured operator. Without a configured hash the gate is open.
func RequireOperator(auth *services.AuthService) fiber.Handler {
	if auth == nil || auth.Open() {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return basicauth.New(basicauth.Config{
		Realm: "watchflip",
		Authorizer: func(user, pass string) bool {
			return auth.Check(user, pass) == nil
		},
		Unauthorized: func(c *fiber.Ctx) error {
			applog.Security(c, "access.denied.operator", nil)
			c.Set(fiber.HeaderWWWAuthenticate, `Basic realm="watchflip"`)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "operator login required"})
		},
	})
}
