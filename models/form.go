package models

import (
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Form çok adımlı bir online formun ana kaydıdır.
// Adımlar FormStep üzerinden sıralı olarak FormDefinition'lara bağlanır.
// Bir submission referans verdiği sürece form hard delete edilmez (soft delete).
type Form struct {
	BaseModel
	UUID          uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	Slug          string    `gorm:"type:varchar(100);uniqueIndex;not null"` // Public adres
	Name          string    `gorm:"type:varchar(150);not null"`
	InternalName  string    `gorm:"type:varchar(150)"`
	CreatorUserID uint      `gorm:"index;not null"`
	IsEnabled     bool      `gorm:"default:true;index"`
	Maintenance   bool      `gorm:"default:false"`

	// Kimlik doğrulama backend'leri (plugin identifier listesi, JSON)
	AuthenticationBackends         datatypes.JSON `gorm:"type:jsonb"`
	AutoLoginAuthenticationBackend string         `gorm:"type:varchar(100)"`

	// Kayıt (registration) backend'i ve plugin'e özel seçenekleri
	RegistrationBackend        string         `gorm:"type:varchar(100)"`
	RegistrationBackendOptions datatypes.JSON `gorm:"type:jsonb"`

	// Ödeme backend'i ve seçenekleri
	PaymentBackend        string         `gorm:"type:varchar(100)"`
	PaymentBackendOptions datatypes.JSON `gorm:"type:jsonb"`

	// Form şifre koruması (opsiyonel, bcrypt hash)
	PasswordHash string `gorm:"type:varchar(255)"`

	// GORM İlişkileri
	Steps []FormStep `gorm:"foreignKey:FormID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// AdminName yönetim ekranlarında ve e-postalarda kullanılan isim:
// internal_name doluysa o, değilse name.
func (f *Form) AdminName() string {
	if f.InternalName != "" {
		return f.InternalName
	}
	return f.Name
}

// AuthBackendList JSON sütunundaki plugin identifier listesini çözer.
func (f *Form) AuthBackendList() []string {
	var backends []string
	if len(f.AuthenticationBackends) == 0 {
		return backends
	}
	_ = json.Unmarshal(f.AuthenticationBackends, &backends)
	return backends
}
