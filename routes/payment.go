package routes

import (
	"github.com/gofiber/fiber/v2"

	payment_handlers "formulier.link/handlers/payment"
	"formulier.link/plugins"
	"formulier.link/repositories"
	"formulier.link/services"
)

func registerPaymentRoutes(app *fiber.App, paymentRepo repositories.ISubmissionPaymentRepository, registrationService services.IRegistrationService, set *plugins.Set) {
	handler := payment_handlers.NewPaymentHandler(paymentRepo, registrationService, set.Payment)

	// Sağlayıcılar GET veya POST ile dönebilir.
	app.Get("/payment/:uuid/:plugin/return", handler.Return)
	app.Post("/payment/:uuid/:plugin/return", handler.Return)
}
