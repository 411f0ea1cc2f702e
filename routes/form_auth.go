package routes

import (
	"github.com/gofiber/fiber/v2"

	"formulier.link/handlers/formauth"
	"formulier.link/plugins"
	"formulier.link/services"
)

// registerFormAuthRoutes /auth/:slug/:plugin altındaki kimlik doğrulama
// dispatch rotalarını tanımlar. Panel giriş rotalarından ("/auth/login")
// sonra kaydedilir.
func registerFormAuthRoutes(app *fiber.App, formService services.IFormService, submissionService services.ISubmissionService, set *plugins.Set) {
	handler := formauth.NewFormAuthHandler(formService, submissionService, set.Auth)

	app.Post("/auth/session/logout", handler.Logout)

	authGroup := app.Group("/auth/:slug/:plugin")
	authGroup.Get("/start", handler.Start)
	authGroup.Post("/return", handler.Return)
	authGroup.Post("/co-sign", handler.CoSign)
}
