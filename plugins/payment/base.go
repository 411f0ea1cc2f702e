// Package payment ödeme plugin sözleşmesini içerir.
package payment

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"formulier.link/models"
	"formulier.link/plugins/registry"
)

// ErrConfigInvalid CheckConfig başarısızlığı; yöneticilere gösterilir,
// son kullanıcıya asla.
var ErrConfigInvalid = errors.New("ödeme plugin konfigürasyonu geçersiz")

// PaymentInfo ödeme başlatma yanıtı: kullanıcının yönlendirileceği URL
// ve sağlayıcıya taşınacak ek veri.
type PaymentInfo struct {
	URL  string
	Data map[string]string
}

// Plugin ödeme backend sözleşmesi.
type Plugin interface {
	registry.Plugin

	// StartPayment ödeme akışını başlatır.
	StartPayment(c *fiber.Ctx, payment *models.SubmissionPayment) (*PaymentInfo, error)

	// HandleReturn ödemeyi tamamlanmış olarak işaretler ve kullanıcıyı
	// submission'ın form URL'ine redirect eder.
	HandleReturn(c *fiber.Ctx, payment *models.SubmissionPayment) error

	// CheckConfig çalışma zamanı konfigürasyonunu doğrular.
	CheckConfig() error
}

// NewRegistry ödeme plugin'leri için registry kurar.
func NewRegistry() *registry.Registry[Plugin] {
	return registry.New[Plugin]()
}
