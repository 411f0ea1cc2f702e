package middlewares

import (
	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware giriş yapmamış kullanıcıyı login sayfasına yönlendirir.
func AuthMiddleware(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok || userID == 0 {
		return c.Redirect("/auth/login", fiber.StatusTemporaryRedirect)
	}
	return c.Next()
}

// GuestMiddleware giriş yapmış kullanıcıyı panel ana sayfasına yönlendirir.
func GuestMiddleware(c *fiber.Ctx) error {
	if userID, ok := c.Locals("userID").(uint); ok && userID != 0 {
		return c.Redirect("/panel/forms", fiber.StatusTemporaryRedirect)
	}
	return c.Next()
}

// RequireSystem yalnızca sistem kullanıcılarına izin verir.
func RequireSystem() fiber.Handler {
	return func(c *fiber.Ctx) error {
		isSystem, ok := c.Locals("isSystem").(bool)
		if !ok || !isSystem {
			return c.Status(fiber.StatusForbidden).SendString("Bu işlem için yetkiniz yok.")
		}
		return c.Next()
	}
}
