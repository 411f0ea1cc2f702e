package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	recoverMiddleware "github.com/gofiber/fiber/v2/middleware/recover"

	"formulier.link/configs"
	"formulier.link/pkg/workerpool"
	"formulier.link/plugins"
	"formulier.link/plugins/registration"
	"formulier.link/repositories"
	"formulier.link/services"
	"formulier.link/utils"
)

// Deps router'ın ihtiyaç duyduğu, main.go'da kurulan bağımlılıklar.
type Deps struct {
	Set    *plugins.Set
	Pool   *workerpool.WorkerPool
	Mailer registration.Mailer
}

// SetupRoutes tüm uygulama rotalarını ve genel middleware'leri ayarlar.
func SetupRoutes(app *fiber.App, deps Deps) {
	// --- Genel Middleware'ler ---
	app.Use(recoverMiddleware.New()) // Panic yakalama
	app.Use(logger.New())            // İstek loglama
	app.Use(initializeSessionAndLocals())

	// --- Servisler ---
	formService := services.NewFormService()
	versionService := services.NewFormVersionService()
	registrationService := services.NewRegistrationService(deps.Set.Registration)
	submissionService := services.NewSubmissionService(registrationService, deps.Pool)
	paymentRepo := repositories.NewSubmissionPaymentRepository()

	// --- Rota Grupları ---
	registerAuthRoutes(app)
	registerFormAuthRoutes(app, formService, submissionService, deps.Set)
	registerPaymentRoutes(app, paymentRepo, registrationService, deps.Set)
	registerPanelRoutes(app, formService, versionService, deps.Mailer)
	registerPublicRoutes(app, formService, submissionService, paymentRepo, deps.Set)

	// --- Kök URL ("/") Yönlendirmesi ---
	app.Get("/", rootRedirector)

	// --- 404 Handler ---
	app.Use(notFoundHandler)
}

// initializeSessionAndLocals session store'u locals'a koyar ve giriş
// bilgilerini her istekte hazır eder.
func initializeSessionAndLocals() fiber.Handler {
	sessionStore := configs.SetupSession()
	return func(c *fiber.Ctx) error {
		c.Locals("session_store", sessionStore)
		sess, err := utils.SessionStart(c)
		if err != nil {
			return c.Next()
		}
		if userID, idErr := utils.GetUserIDFromSession(sess); idErr == nil {
			c.Locals("userID", userID)
		}
		if isSystem, sysErr := utils.GetIsSystemFromSession(sess); sysErr == nil {
			c.Locals("isSystem", isSystem)
		}
		if userName, ok := sess.Get("user_name").(string); ok {
			c.Locals("userName", userName)
		}
		return c.Next()
	}
}

func rootRedirector(c *fiber.Ctx) error {
	if userID, ok := c.Locals("userID").(uint); ok && userID != 0 {
		return c.Redirect("/panel/forms", fiber.StatusTemporaryRedirect)
	}
	return c.Redirect("/auth/login", fiber.StatusTemporaryRedirect)
}

func notFoundHandler(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).SendString("Sayfa bulunamadı.")
}
