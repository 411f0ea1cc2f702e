package routes

import (
	"github.com/gofiber/fiber/v2"

	auth_handlers "formulier.link/handlers/auth" // İsim çakışmasını önlemek için alias
	"formulier.link/middlewares"
)

// registerAuthRoutes panel giriş/çıkış rotalarını tanımlar. "/auth" prefix'i
// form kimlik doğrulama dispatch'i ile paylaşıldığı için middleware'ler
// gruba değil tek tek rotalara bağlanır.
func registerAuthRoutes(app *fiber.App) {
	authHandler := auth_handlers.NewAuthHandler()
	authGroup := app.Group("/auth")

	authGroup.Get("/login", middlewares.GuestMiddleware, authHandler.ShowLogin)
	authGroup.Post("/login", middlewares.GuestMiddleware, authHandler.Login)

	authGroup.Get("/logout", middlewares.AuthMiddleware, authHandler.Logout)
	authGroup.Post("/logout", middlewares.AuthMiddleware, authHandler.Logout)
}
