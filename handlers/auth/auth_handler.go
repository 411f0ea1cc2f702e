package handlers // handlers/auth paketi

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"formulier.link/configs/configslog"
	"formulier.link/pkg/flashmessages"
	"formulier.link/pkg/renderer"
	"formulier.link/services"
	"formulier.link/utils"
)

// AuthHandler panel giriş/çıkış işlemleri.
type AuthHandler struct {
	userService services.IUserService
}

// NewAuthHandler yeni bir AuthHandler örneği oluşturur.
func NewAuthHandler() *AuthHandler {
	return &AuthHandler{userService: services.NewUserService()}
}

// ShowLogin giriş formunu gösterir.
func (h *AuthHandler) ShowLogin(c *fiber.Ctx) error {
	renderData := fiber.Map{"Title": "Giriş"}
	renderer.SetFlashMessages(renderData, flashmessages.GetFlashMessages(c))
	return renderer.Render(c, "auth/login", "layouts/auth_layout", renderData)
}

// Login e-posta/şifre ile giriş yapar.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	email := c.FormValue("email")
	password := c.FormValue("password")

	user, err := h.userService.Authenticate(c.UserContext(), email, password)
	if err != nil {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, err.Error())
		return c.Redirect("/auth/login", fiber.StatusSeeOther)
	}

	sess, err := utils.SessionStart(c)
	if err != nil {
		configslog.Log.Error("Login: session başlatılamadı", zap.Error(err))
		return fiber.ErrInternalServerError
	}
	sess.Set("user_id", user.ID)
	sess.Set("is_system", user.IsSystem)
	sess.Set("user_name", user.Name)
	if err := sess.Save(); err != nil {
		configslog.Log.Error("Login: session kaydedilemedi", zap.Error(err))
		return fiber.ErrInternalServerError
	}

	return c.Redirect("/panel/forms", fiber.StatusFound)
}

// Logout session'ı sonlandırır.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sess, err := utils.SessionStart(c)
	if err == nil {
		_ = sess.Destroy()
	}
	return c.Redirect("/auth/login", fiber.StatusFound)
}
