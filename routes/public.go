package routes

import (
	"github.com/gofiber/fiber/v2"

	public_handlers "formulier.link/handlers/public"
	"formulier.link/plugins"
	"formulier.link/repositories"
	"formulier.link/services"
)

// registerPublicRoutes son kullanıcının form doldurma rotalarını tanımlar.
func registerPublicRoutes(app *fiber.App, formService services.IFormService, submissionService services.ISubmissionService,
	paymentRepo repositories.ISubmissionPaymentRepository, set *plugins.Set) {
	handler := public_handlers.NewPublicFormHandler(formService, submissionService, paymentRepo, set.Payment)

	app.Get("/forms/:slug", handler.ShowForm)
	app.Post("/forms/:slug/submissions", handler.StartSubmission)
	app.Post("/submissions/:uuid/data", handler.SubmitStepData)
	app.Post("/submissions/:uuid/complete", handler.Complete)
	app.Post("/submissions/:uuid/payment", handler.StartPayment)
}
