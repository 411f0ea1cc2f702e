package auth

import (
	"github.com/gofiber/fiber/v2"

	"formulier.link/models"
)

// FailingPlugin her çağrıda panikleyen test plugin'i. Plugin sözleşmesi
// hataları yakalamadığı için, dispatch eden handler'ın hata sınırının
// paniği güvenli bir HTTP yanıtına çevirdiğini doğrulamakta kullanılır.
type FailingPlugin struct{}

func (p *FailingPlugin) Identifier() string          { return "failing" }
func (p *FailingPlugin) VerboseName() string         { return "Failing" }
func (p *FailingPlugin) IsDemoPlugin() bool          { return true }
func (p *FailingPlugin) ProvidesAuth() AuthAttribute { return AttributeBSN }

func (p *FailingPlugin) StartLogin(c *fiber.Ctx, form *models.Form, formURL string) error {
	panic("start_login çöktü")
}

func (p *FailingPlugin) HandleReturn(c *fiber.Ctx, form *models.Form) error {
	panic("handle_return çöktü")
}

func (p *FailingPlugin) HandleCoSign(c *fiber.Ctx, form *models.Form) (*CoSignData, error) {
	panic("handle_co_sign çöktü")
}

var _ Plugin = (*FailingPlugin)(nil)
