// Package formauth kimlik doğrulama plugin'lerine giden HTTP dispatch
// katmanıdır. Plugin'ler hata sınırı kurmaz; panic dahil her hata burada
// yakalanır ve iç detay sızdırmayan bir 500'e çevrilir.
package formauth

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"formulier.link/configs/configslog"
	"formulier.link/models"
	"formulier.link/plugins/auth"
	"formulier.link/plugins/registry"
	"formulier.link/services"
	"formulier.link/utils"
)

// FormAuthHandler auth plugin dispatch handler'ı.
type FormAuthHandler struct {
	formService       services.IFormService
	submissionService services.ISubmissionService
	registry          *registry.Registry[auth.Plugin]
}

// NewFormAuthHandler yeni bir FormAuthHandler örneği oluşturur.
func NewFormAuthHandler(formService services.IFormService, submissionService services.ISubmissionService, reg *registry.Registry[auth.Plugin]) *FormAuthHandler {
	return &FormAuthHandler{
		formService:       formService,
		submissionService: submissionService,
		registry:          reg,
	}
}

// resolve slug ve plugin parametrelerini doğrular. Plugin registry'de
// yoksa veya form o plugin'i kullanmıyorsa 404 gibi davranılır.
func (h *FormAuthHandler) resolve(c *fiber.Ctx) (*fiber.Ctx, auth.Plugin, error) {
	slug := c.Params("slug")
	pluginID := c.Params("plugin")

	form, err := h.formService.GetPublicFormBySlug(c.UserContext(), slug)
	if err != nil {
		return nil, nil, fiber.ErrNotFound
	}

	plugin, err := h.registry.Get(pluginID)
	if err != nil {
		return nil, nil, fiber.ErrNotFound
	}

	allowed := false
	for _, backend := range form.AuthBackendList() {
		if backend == pluginID {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, nil, fiber.ErrNotFound
	}

	c.Locals("authForm", form)
	return c, plugin, nil
}

// guard plugin çağrısını hata sınırının içinde çalıştırır. Plugin'deki
// bir panic 500'e çevrilir; yanıt gövdesi iç detay içermez.
func (h *FormAuthHandler) guard(c *fiber.Ctx, pluginID string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			configslog.Log.Error("Auth plugin panic",
				zap.String("plugin", pluginID),
				zap.String("path", c.Path()),
				zap.Any("panic_info", r))
			err = c.Status(fiber.StatusInternalServerError).SendString("Kimlik doğrulama başarısız oldu.")
		}
	}()
	if err = fn(); err != nil && !isClientError(err) {
		configslog.Log.Error("Auth plugin hatası",
			zap.String("plugin", pluginID),
			zap.String("path", c.Path()),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).SendString("Kimlik doğrulama başarısız oldu.")
	}
	return err
}

func isClientError(err error) bool {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code < fiber.StatusInternalServerError
	}
	return false
}

// Start GET /auth/:slug/:plugin/start — login akışını başlatır.
func (h *FormAuthHandler) Start(c *fiber.Ctx) error {
	c, plugin, err := h.resolve(c)
	if err != nil {
		return err
	}
	form := mustForm(c)

	formURL := c.Query("next")
	if formURL == "" {
		formURL = fmt.Sprintf("/forms/%s", form.Slug)
	}
	return h.guard(c, plugin.Identifier(), func() error {
		return plugin.StartLogin(c, form, formURL)
	})
}

// Return POST /auth/:slug/:plugin/return — sağlayıcıdan dönüşü işler.
func (h *FormAuthHandler) Return(c *fiber.Ctx) error {
	c, plugin, err := h.resolve(c)
	if err != nil {
		return err
	}
	form := mustForm(c)

	return h.guard(c, plugin.Identifier(), func() error {
		return plugin.HandleReturn(c, form)
	})
}

// CoSign POST /auth/:slug/:plugin/co-sign — ikinci imzacı dönüşünü işler.
// Doğrulanan kimlik, co-sign parametresindeki submission'a bağlanır;
// primary session'a yazılmaz.
func (h *FormAuthHandler) CoSign(c *fiber.Ctx) error {
	c, plugin, err := h.resolve(c)
	if err != nil {
		return err
	}
	form := mustForm(c)

	return h.guard(c, plugin.Identifier(), func() error {
		coSign, err := plugin.HandleCoSign(c, form)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCoSignData) {
				return c.Status(fiber.StatusBadRequest).SendString("geçersiz co-sign verisi")
			}
			return err
		}

		rawUUID := c.FormValue(auth.CoSignParameter, c.Query(auth.CoSignParameter))
		submissionUUID, err := uuid.Parse(rawUUID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).SendString("geçersiz co-sign verisi")
		}
		submission, err := h.submissionService.GetSubmissionByUUID(c.UserContext(), submissionUUID)
		if err != nil {
			return fiber.ErrNotFound
		}
		if err := h.submissionService.ApplyCoSignData(c.UserContext(), submission, coSign); err != nil {
			return err
		}
		return c.Redirect(fmt.Sprintf("/forms/%s", form.Slug), fiber.StatusFound)
	})
}

// Logout POST /auth/session/logout — bekleyen kimlik aktarımını siler.
func (h *FormAuthHandler) Logout(c *fiber.Ctx) error {
	sess, err := utils.SessionStart(c)
	if err != nil {
		return fiber.ErrInternalServerError
	}
	if err := auth.DeleteFormAuth(sess); err != nil {
		return fiber.ErrInternalServerError
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// mustForm resolve'un locals'a koyduğu formu okur.
func mustForm(c *fiber.Ctx) *models.Form {
	form, _ := c.Locals("authForm").(*models.Form)
	return form
}
