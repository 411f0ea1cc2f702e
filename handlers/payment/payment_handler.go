// Package payment ödeme plugin'lerine giden HTTP dispatch katmanıdır.
package payment

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"formulier.link/configs/configslog"
	paymentplugins "formulier.link/plugins/payment"
	"formulier.link/plugins/registry"
	"formulier.link/repositories"
	"formulier.link/services"
)

// PaymentHandler ödeme dönüşlerini ilgili plugin'e yönlendirir ve
// tamamlanan ödemeyi kayıt backend'ine bildirir.
type PaymentHandler struct {
	paymentRepo  repositories.ISubmissionPaymentRepository
	registration services.IRegistrationService
	registry     *registry.Registry[paymentplugins.Plugin]
}

// NewPaymentHandler yeni bir PaymentHandler örneği oluşturur.
func NewPaymentHandler(paymentRepo repositories.ISubmissionPaymentRepository, registration services.IRegistrationService, reg *registry.Registry[paymentplugins.Plugin]) *PaymentHandler {
	return &PaymentHandler{paymentRepo: paymentRepo, registration: registration, registry: reg}
}

// Return POST /payment/:uuid/:plugin/return — sağlayıcı dönüşünü işler.
func (h *PaymentHandler) Return(c *fiber.Ctx) error {
	paymentUUID, err := uuid.Parse(c.Params("uuid"))
	if err != nil {
		return fiber.ErrNotFound
	}

	plugin, err := h.registry.Get(c.Params("plugin"))
	if err != nil {
		return fiber.ErrNotFound
	}

	payment, err := h.paymentRepo.FindByUUID(c.UserContext(), paymentUUID)
	if err != nil {
		return fiber.ErrNotFound
	}

	if err := plugin.HandleReturn(c, payment); err != nil {
		configslog.Log.Error("Ödeme dönüşü işlenemedi",
			zap.String("payment_uuid", paymentUUID.String()),
			zap.String("plugin", c.Params("plugin")),
			zap.Error(err))
		return fiber.ErrInternalServerError
	}

	// Bildirim best-effort'tur; webhook tekrar teslim edilirse
	// registration_notified bayrağı çift kaydı engeller.
	if notifyErr := h.registration.UpdatePaymentStatus(c.UserContext(), payment.SubmissionID); notifyErr != nil {
		configslog.Log.Error("Ödeme bildirimi başarısız",
			zap.Uint("submission_id", payment.SubmissionID), zap.Error(notifyErr))
	}
	return nil
}
