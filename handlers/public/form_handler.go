// Package public son kullanıcının form doldurma akışını taşır.
package public

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"formulier.link/configs/configslog"
	"formulier.link/models"
	"formulier.link/pkg/renderer"
	"formulier.link/plugins/auth"
	paymentplugins "formulier.link/plugins/payment"
	"formulier.link/plugins/registry"
	"formulier.link/repositories"
	"formulier.link/services"
	"formulier.link/utils"
)

// PublicFormHandler public form görüntüleme ve gönderim akışı.
type PublicFormHandler struct {
	formService       services.IFormService
	submissionService services.ISubmissionService
	paymentRepo       repositories.ISubmissionPaymentRepository
	paymentRegistry   *registry.Registry[paymentplugins.Plugin]
}

// NewPublicFormHandler yeni bir PublicFormHandler örneği oluşturur.
func NewPublicFormHandler(formService services.IFormService, submissionService services.ISubmissionService,
	paymentRepo repositories.ISubmissionPaymentRepository, paymentRegistry *registry.Registry[paymentplugins.Plugin]) *PublicFormHandler {
	return &PublicFormHandler{
		formService:       formService,
		submissionService: submissionService,
		paymentRepo:       paymentRepo,
		paymentRegistry:   paymentRegistry,
	}
}

// ShowForm GET /forms/:slug — formu adımlarıyla render eder.
func (h *PublicFormHandler) ShowForm(c *fiber.Ctx) error {
	form, err := h.formService.GetPublicFormBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		if err == services.ErrFormMaintenance {
			return c.Status(fiber.StatusServiceUnavailable).SendString("Form şu anda bakımda.")
		}
		return fiber.ErrNotFound
	}

	return renderer.Render(c, "public/form", "layouts/public_layout", fiber.Map{
		"Title":        form.Name,
		"Form":         form,
		"AuthBackends": form.AuthBackendList(),
	})
}

// StartSubmission POST /forms/:slug/submissions — yeni gönderim başlatır.
// Session'da bekleyen kimlik aktarımı gönderime yazılır ve session'dan
// silinir; aktarım tek kullanımlıktır.
func (h *PublicFormHandler) StartSubmission(c *fiber.Ctx) error {
	form, err := h.formService.GetPublicFormBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return fiber.ErrNotFound
	}

	sess, err := utils.SessionStart(c)
	if err != nil {
		return fiber.ErrInternalServerError
	}
	formAuth, _ := auth.FormAuthFromSession(sess)

	formURL := fmt.Sprintf("/forms/%s", form.Slug)
	submission, err := h.submissionService.StartSubmission(c.UserContext(), form, formURL, formAuth)
	if err != nil {
		configslog.Log.Error("Gönderim başlatılamadı", zap.String("slug", form.Slug), zap.Error(err))
		return fiber.ErrInternalServerError
	}

	if formAuth != nil {
		if err := auth.DeleteFormAuth(sess); err != nil {
			configslog.Log.Error("Kimlik aktarımı session'dan silinemedi",
				zap.Uint("submission_id", submission.ID), zap.Error(err))
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"uuid": submission.UUID,
		"form": form.Slug,
	})
}

// SubmitStepData POST /submissions/:uuid/data — adım verisini birleştirir.
func (h *PublicFormHandler) SubmitStepData(c *fiber.Ctx) error {
	submission, err := h.resolveSubmission(c)
	if err != nil {
		return err
	}

	var stepData map[string]any
	if err := c.BodyParser(&stepData); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("geçersiz adım verisi")
	}

	if err := h.submissionService.MergeStepData(c.UserContext(), submission, stepData); err != nil {
		if err == services.ErrSubmissionAlreadyCompleted {
			return c.Status(fiber.StatusConflict).SendString(err.Error())
		}
		return fiber.ErrInternalServerError
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Complete POST /submissions/:uuid/complete — gönderimi tamamlar ve kayıt
// işini arka plana atar.
func (h *PublicFormHandler) Complete(c *fiber.Ctx) error {
	submission, err := h.resolveSubmission(c)
	if err != nil {
		return err
	}

	if err := h.submissionService.CompleteSubmission(c.UserContext(), submission); err != nil {
		if err == services.ErrSubmissionAlreadyCompleted {
			return c.Status(fiber.StatusConflict).SendString(err.Error())
		}
		return fiber.ErrInternalServerError
	}

	// Tamamlanma ile session'daki kimlik aktarımı tüketilmiş sayılır;
	// aynı session'daki bir sonraki gönderim tekrar anonim başlar.
	if sess, sessErr := utils.SessionStart(c); sessErr == nil {
		if delErr := auth.DeleteFormAuth(sess); delErr != nil {
			configslog.Log.Error("Kimlik aktarımı session'dan silinemedi",
				zap.Uint("submission_id", submission.ID), zap.Error(delErr))
		}
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// StartPayment POST /submissions/:uuid/payment — formun ödeme backend'i
// ile ödeme başlatır ve kullanıcıyı sağlayıcıya yönlendirir.
func (h *PublicFormHandler) StartPayment(c *fiber.Ctx) error {
	submission, err := h.resolveSubmission(c)
	if err != nil {
		return err
	}

	backend := submission.Form.PaymentBackend
	if backend == "" {
		return c.Status(fiber.StatusBadRequest).SendString("form için ödeme backend'i tanımlı değil")
	}
	plugin, err := h.paymentRegistry.Get(backend)
	if err != nil {
		return fiber.ErrNotFound
	}

	amount, err := decimal.NewFromString(c.FormValue("amount", "0"))
	if err != nil || amount.IsNegative() || amount.IsZero() {
		return c.Status(fiber.StatusBadRequest).SendString("geçersiz tutar")
	}

	payment := &models.SubmissionPayment{
		UUID:         uuid.New(),
		SubmissionID: submission.ID,
		Plugin:       backend,
		Amount:       amount,
		Status:       models.PaymentStatusStarted,
	}
	if err := h.paymentRepo.Create(c.UserContext(), payment); err != nil {
		return fiber.ErrInternalServerError
	}

	info, err := plugin.StartPayment(c, payment)
	if err != nil {
		configslog.Log.Error("Ödeme başlatılamadı",
			zap.Uint("submission_id", submission.ID), zap.String("plugin", backend), zap.Error(err))
		return fiber.ErrInternalServerError
	}
	return c.Redirect(info.URL, fiber.StatusFound)
}

func (h *PublicFormHandler) resolveSubmission(c *fiber.Ctx) (*models.Submission, error) {
	submissionUUID, err := uuid.Parse(c.Params("uuid"))
	if err != nil {
		return nil, fiber.ErrNotFound
	}
	submission, err := h.submissionService.GetSubmissionByUUID(c.UserContext(), submissionUUID)
	if err != nil {
		return nil, fiber.ErrNotFound
	}
	return submission, nil
}
