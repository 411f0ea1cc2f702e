package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"formulier.link/configs/configslog"
	"formulier.link/pkg/flashmessages"
	"formulier.link/plugins/registration"
)

// PanelEmailHandler e-posta backend tanı işlemleri.
type PanelEmailHandler struct {
	mailer registration.Mailer
}

// NewPanelEmailHandler yeni bir PanelEmailHandler örneği oluşturur.
func NewPanelEmailHandler(mailer registration.Mailer) *PanelEmailHandler {
	return &PanelEmailHandler{mailer: mailer}
}

// SendTest POST /panel/email/test — oturumdaki yöneticiye test e-postası
// gönderir. E-posta backend'inin ConfigActions listesinden tetiklenir.
func (h *PanelEmailHandler) SendTest(c *fiber.Ctx) error {
	recipient := c.FormValue("to")
	if recipient == "" {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Alıcı adresi zorunludur.")
		return c.Redirect("/panel/forms", fiber.StatusSeeOther)
	}

	if checker, ok := h.mailer.(interface{ CheckConfig() error }); ok {
		if err := checker.CheckConfig(); err != nil {
			_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "E-posta konfigürasyonu geçersiz: "+err.Error())
			return c.Redirect("/panel/forms", fiber.StatusSeeOther)
		}
	}

	message := registration.Message{
		To:       []string{recipient},
		Subject:  "[Formulier] Test e-postası",
		TextBody: "Bu bir test e-postasıdır. E-posta kayıt backend'i çalışıyor.",
	}
	if err := h.mailer.Send(&message); err != nil {
		configslog.Log.Error("Test e-postası gönderilemedi", zap.Error(err))
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Test e-postası gönderilemedi.")
		return c.Redirect("/panel/forms", fiber.StatusSeeOther)
	}

	_ = flashmessages.SetFlashMessage(c, flashmessages.FlashSuccessKey, "Test e-postası gönderildi.")
	return c.Redirect("/panel/forms", fiber.StatusFound)
}
