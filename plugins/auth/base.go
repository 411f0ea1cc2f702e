// Package auth kimlik doğrulama plugin sözleşmesini ve session tabanlı
// auth aktarımını (handoff) içerir.
package auth

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"formulier.link/models"
	"formulier.link/plugins/registry"
)

// FormAuthSessionKey başarılı bir login dönüşünün session'daki anahtarı.
// İçerik: {"plugin": ..., "attribute": ..., "value": ...}
const FormAuthSessionKey = "form_auth"

// CoSignParameter login akışı boyunca taşınan co-sign korelasyon
// parametresi (bir submission UUID'si).
const CoSignParameter = "coSignSubmission"

// AuthAttribute plugin'in sağladığı kimlik niteliği. Kapalı kümedir;
// genişletmek SubmissionService'teki doğrulamanın da güncellenmesini
// gerektirir.
type AuthAttribute string

const (
	AttributeBSN AuthAttribute = "bsn"
	AttributeKvK AuthAttribute = "kvk"
)

// IsValid niteliğin bilinen kümede olup olmadığını söyler.
func (a AuthAttribute) IsValid() bool {
	switch a {
	case AttributeBSN, AttributeKvK:
		return true
	}
	return false
}

// ErrInvalidCoSignData co-sign payload'ı doğrulamayı geçemedi.
var ErrInvalidCoSignData = errors.New("geçersiz co-sign verisi")

// FormAuth session'da saklanan kimlik doğrulama sonucu.
type FormAuth struct {
	Plugin    string        `json:"plugin"`
	Attribute AuthAttribute `json:"attribute"`
	Value     string        `json:"value"`
}

// CoSignData başarılı bir co-sign doğrulamasının sonucu. Primary session'a
// yazılmaz, ilgili submission'ın co-sign meta verisine eklenir.
type CoSignData struct {
	Identifier string         `json:"identifier"`
	Fields     map[string]any `json:"fields"`
}

// Plugin kimlik doğrulama backend sözleşmesi.
//
// StartLogin ve HandleReturn içinde oluşan hatalar/panikler plugin veya
// registry tarafından yakalanmaz; dispatch eden handler kendi hata
// sınırını kurmak zorundadır.
type Plugin interface {
	registry.Plugin

	// ProvidesAuth plugin'in yazdığı kimlik niteliği.
	ProvidesAuth() AuthAttribute

	// StartLogin harici/demo kimlik akışını başlatan yanıtı üretir.
	// formURL dönüş hedefi olarak gömülür, co-sign parametresi varsa
	// login formuna taşınır.
	StartLogin(c *fiber.Ctx, form *models.Form, formURL string) error

	// HandleReturn dönen payload'ı doğrular. Doğrulama hatası exception
	// değil client hatasıdır (400 yanıtı). Co-sign akışında session'a
	// YAZILMAZ; normal akışta FormAuth session'a yazılır ve "next"
	// URL'ine redirect edilir.
	HandleReturn(c *fiber.Ctx, form *models.Form) error

	// HandleCoSign co-sign payload'ını doğrular; geçersiz alanlarda
	// ErrInvalidCoSignData ile sarılmış hata döner.
	HandleCoSign(c *fiber.Ctx, form *models.Form) (*CoSignData, error)
}

// Registry kimlik doğrulama plugin'leri için registry kurar.
func NewRegistry() *registry.Registry[Plugin] {
	return registry.New[Plugin]()
}

// --- Session yardımcıları ---
// FormAuth, storage backend'leri arasında taşınabilir olması için
// session'a JSON string olarak yazılır.

// SetFormAuth kimlik doğrulama sonucunu session'a yazar.
func SetFormAuth(sess *session.Session, formAuth FormAuth) error {
	raw, err := json.Marshal(formAuth)
	if err != nil {
		return err
	}
	sess.Set(FormAuthSessionKey, string(raw))
	return sess.Save()
}

// FormAuthFromSession session'daki kimlik doğrulama sonucunu okur.
// Yoksa (anonim gönderim) nil döner.
func FormAuthFromSession(sess *session.Session) (*FormAuth, bool) {
	raw, ok := sess.Get(FormAuthSessionKey).(string)
	if !ok || raw == "" {
		return nil, false
	}
	var formAuth FormAuth
	if err := json.Unmarshal([]byte(raw), &formAuth); err != nil {
		return nil, false
	}
	return &formAuth, true
}

// DeleteFormAuth submission tamamlandığında session anahtarını temizler;
// aynı session'daki sonraki gönderimler tekrar anonim başlar.
func DeleteFormAuth(sess *session.Session) error {
	sess.Delete(FormAuthSessionKey)
	return sess.Save()
}
