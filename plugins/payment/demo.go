package payment

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"formulier.link/models"
)

// DemoPluginID demo ödeme plugin'inin identifier'ı.
const DemoPluginID = "demo"

// DemoPayment ödeme sağlayıcısını taklit eden plugin: başlatma doğrudan
// dönüş URL'ine yönlendirir, dönüş ödemeyi tamamlanmış sayar.
type DemoPayment struct {
	db *gorm.DB
}

// NewDemo demo ödeme plugin'ini kurar.
func NewDemo(db *gorm.DB) *DemoPayment {
	return &DemoPayment{db: db}
}

func (p *DemoPayment) Identifier() string  { return DemoPluginID }
func (p *DemoPayment) VerboseName() string { return "Demo" }
func (p *DemoPayment) IsDemoPlugin() bool  { return true }

// StartPayment sağlayıcıya gitmeden doğrudan dönüş URL'ini üretir.
func (p *DemoPayment) StartPayment(c *fiber.Ctx, payment *models.SubmissionPayment) (*PaymentInfo, error) {
	returnURL := fmt.Sprintf("/payment/%s/%s/return", payment.UUID, p.Identifier())
	return &PaymentInfo{URL: returnURL, Data: map[string]string{}}, nil
}

// HandleReturn ödemeyi tamamlanmış olarak işaretler ve kullanıcıyı
// submission'ın form URL'ine geri yönlendirir.
func (p *DemoPayment) HandleReturn(c *fiber.Ctx, payment *models.SubmissionPayment) error {
	payment.Status = models.PaymentStatusCompleted
	if payment.PublicOrderID == "" {
		payment.PublicOrderID = fmt.Sprintf("DEMO-%d", payment.ID)
	}
	err := p.db.WithContext(c.UserContext()).
		Model(payment).
		Select("status", "public_order_id").
		Updates(map[string]any{
			"status":          payment.Status,
			"public_order_id": payment.PublicOrderID,
		}).Error
	if err != nil {
		return err
	}
	return c.Redirect(payment.Submission.FormURL, fiber.StatusFound)
}

// CheckConfig demo konfigürasyonu her zaman geçerlidir.
func (p *DemoPayment) CheckConfig() error {
	return nil
}

var _ Plugin = (*DemoPayment)(nil)
