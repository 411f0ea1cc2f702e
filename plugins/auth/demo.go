package auth

import (
	"fmt"
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"formulier.link/models"
	"formulier.link/utils"
)

// Demo plugin identifier'ları. Kayıtlı formlar bu string'lere referans
// verir; yeniden adlandırmak mevcut kayıtları kırar.
const (
	DemoPluginID    = "demo"
	DemoKvKPluginID = "demo-kvk"
)

// DemoPlugin harici bir kimlik sağlayıcısını taklit eden, login formunu
// kendisi render eden plugin. BSN ve KvK varyantları aynı gövdeyi kullanır.
type DemoPlugin struct {
	identifier  string
	verboseName string
	attribute   AuthAttribute
	isDemo      bool
	validate    func(string) error
}

// NewDemoBSN "demo" identifier'lı BSN plugin'ini kurar.
func NewDemoBSN() *DemoPlugin {
	return &DemoPlugin{
		identifier:  DemoPluginID,
		verboseName: "Demo BSN",
		attribute:   AttributeBSN,
		// Müşteri isteğiyle demo bayrağı kapalı (bkz. form seçim listeleri)
		isDemo:   false,
		validate: validateBSN,
	}
}

// NewDemoKvK "demo-kvk" identifier'lı KvK plugin'ini kurar.
func NewDemoKvK() *DemoPlugin {
	return &DemoPlugin{
		identifier:  DemoKvKPluginID,
		verboseName: "Demo KvK numarası",
		attribute:   AttributeKvK,
		isDemo:      false,
		validate:    validateKvK,
	}
}

func (p *DemoPlugin) Identifier() string          { return p.identifier }
func (p *DemoPlugin) VerboseName() string         { return p.verboseName }
func (p *DemoPlugin) IsDemoPlugin() bool          { return p.isDemo }
func (p *DemoPlugin) ProvidesAuth() AuthAttribute { return p.attribute }

// StartLogin demo login formunu render eder. "next" ve co-sign parametresi
// hidden input olarak forma gömülür.
func (p *DemoPlugin) StartLogin(c *fiber.Ctx, form *models.Form, formURL string) error {
	returnURL := fmt.Sprintf("/auth/%s/%s/return", form.Slug, p.identifier)
	return c.Render("auth/demo_login", fiber.Map{
		"Title":           p.verboseName,
		"FormAction":      returnURL,
		"FormURL":         formURL,
		"Attribute":       string(p.attribute),
		"CoSignParameter": CoSignParameter,
		"CoSignValue":     c.Query(CoSignParameter),
	})
}

// demoReturnForm POST dönüş payload'ı.
type demoReturnForm struct {
	Next   string `form:"next"`
	CoSign string `form:"coSignSubmission"`
	Value  string `form:"value"`
}

func (p *DemoPlugin) parseReturn(c *fiber.Ctx) (*demoReturnForm, error) {
	var payload demoReturnForm
	if err := c.BodyParser(&payload); err != nil {
		return nil, err
	}
	if payload.Next == "" {
		return nil, fmt.Errorf("next alanı zorunlu")
	}
	if _, err := url.Parse(payload.Next); err != nil {
		return nil, fmt.Errorf("next geçerli bir URL değil")
	}
	if payload.CoSign != "" {
		if _, err := uuid.Parse(payload.CoSign); err != nil {
			return nil, fmt.Errorf("co-sign parametresi geçerli bir UUID değil")
		}
	}
	if err := p.validate(payload.Value); err != nil {
		return nil, err
	}
	return &payload, nil
}

// HandleReturn payload'ı doğrular; co-sign akışı değilse FormAuth'u
// session'a yazar ve "next" URL'ine redirect eder.
func (p *DemoPlugin) HandleReturn(c *fiber.Ctx, form *models.Form) error {
	payload, err := p.parseReturn(c)
	if err != nil {
		// Doğrulama hatası client hatasıdır, exception değil.
		return c.Status(fiber.StatusBadRequest).SendString("geçersiz veri")
	}

	// Co-sign akışında kimlik, primary session'a değil ilgili
	// submission'ın co-sign meta verisine bağlanır.
	if payload.CoSign == "" {
		sess, err := utils.SessionStart(c)
		if err != nil {
			return err
		}
		if err := SetFormAuth(sess, FormAuth{
			Plugin:    p.identifier,
			Attribute: p.attribute,
			Value:     payload.Value,
		}); err != nil {
			return err
		}
	}

	return c.Redirect(payload.Next, fiber.StatusFound)
}

// HandleCoSign co-sign payload'ını doğrular ve imzacının kimliğini döndürür.
func (p *DemoPlugin) HandleCoSign(c *fiber.Ctx, form *models.Form) (*CoSignData, error) {
	payload, err := p.parseReturn(c)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCoSignData, err)
	}
	return &CoSignData{
		Identifier: payload.Value,
		Fields:     map[string]any{},
	}, nil
}

var _ Plugin = (*DemoPlugin)(nil)
