package routes

import (
	"github.com/gofiber/fiber/v2"

	panel_handlers "formulier.link/handlers/panel"
	"formulier.link/middlewares"
	"formulier.link/plugins/registration"
	"formulier.link/services"
)

// registerPanelRoutes /panel altındaki yönetim rotalarını tanımlar.
func registerPanelRoutes(app *fiber.App, formService services.IFormService, versionService services.IFormVersionService, mailer registration.Mailer) {
	formHandler := panel_handlers.NewPanelFormHandler(formService, versionService)
	emailHandler := panel_handlers.NewPanelEmailHandler(mailer)

	panelGroup := app.Group("/panel")
	panelGroup.Use(middlewares.AuthMiddleware)

	panelGroup.Get("/forms", formHandler.ListForms)
	panelGroup.Get("/forms/:id/versions", formHandler.ListVersions)
	panelGroup.Post("/forms/:id/versions", formHandler.CreateVersion)
	panelGroup.Post("/forms/:id/versions/:uuid/restore", formHandler.RestoreVersion)
	panelGroup.Post("/forms/delete/:id", formHandler.DeleteForm)
	panelGroup.Delete("/forms/delete/:id", formHandler.DeleteForm)

	panelGroup.Post("/email/test", emailHandler.SendTest)
}
