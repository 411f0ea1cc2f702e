// Package registration kayıt (registration) plugin sözleşmesini içerir:
// tamamlanan submission'ların harici kanallara iletilmesi.
package registration

import (
	"context"
	"errors"

	"gorm.io/datatypes"

	"formulier.link/models"
	"formulier.link/plugins/registry"
)

// ErrNoSubmissionReference backend'in kendine ait bir kayıt referansı
// üretemediğini bildirir. Beklenen, ölümcül olmayan bir sinyaldir:
// çağıran taraf dahili üretilmiş referansa düşmek zorundadır.
var ErrNoSubmissionReference = errors.New("backend bir submission referansı üretmiyor")

// ConfigAction admin tarafından tetiklenebilen tanı aksiyonu
// (örn. "test e-postası gönder").
type ConfigAction struct {
	Label string
	URL   string
}

// Plugin kayıt backend sözleşmesi.
type Plugin interface {
	registry.Plugin

	// RegisterSubmission submission verisini formatlar, ekleri çözer ve
	// harici kanala iletir. Dönen result, ReferenceFromResult'a verilir.
	// Public referansın submission'a atanmış olması çağıranın
	// sorumluluğudur (side effect olarak persist edilir).
	RegisterSubmission(ctx context.Context, submission *models.Submission, options datatypes.JSON) (any, error)

	// ReferenceFromResult backend'e özgü kayıt referansını çıkarır;
	// backend üretemiyorsa ErrNoSubmissionReference ile döner.
	ReferenceFromResult(result any) (string, error)

	// UpdatePaymentStatus ödemenin tamamlandığını backend'e bildirir.
	UpdatePaymentStatus(ctx context.Context, submission *models.Submission, options datatypes.JSON) error

	// CheckConfig çalışma zamanı konfigürasyonunu doğrular; hatalar
	// yöneticilere gösterilir, son kullanıcıya değil.
	CheckConfig() error

	// ConfigActions admin ekranında listelenecek aksiyonlar (sıralı).
	ConfigActions() []ConfigAction
}

// NewRegistry kayıt plugin'leri için registry kurar.
func NewRegistry() *registry.Registry[Plugin] {
	return registry.New[Plugin]()
}
