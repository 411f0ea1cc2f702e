package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Kayıt (registration) durumları.
const (
	RegistrationStatusPending    = "pending"
	RegistrationStatusInProgress = "in_progress"
	RegistrationStatusSuccess    = "success"
	RegistrationStatusFailed     = "failed"
)

// Submission bir kullanıcının bir Form üzerindeki (devam eden veya
// tamamlanmış) doldurma sürecidir. Kimlik doğrulama sonucu (bsn/kvk)
// session'dan bu kayda aktarılır; BSN/KvK değerleri loglanmaz.
type Submission struct {
	BaseModel
	UUID   uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	FormID uint      `gorm:"index;not null"`

	// Adım adım birleştirilen gönderi verisi (component key -> değer)
	Data datatypes.JSONMap `gorm:"type:jsonb"`

	// Kimlik doğrulama bilgileri
	AuthPlugin string `gorm:"type:varchar(100);index"`
	BSN        string `gorm:"type:varchar(9)"`
	KvK        string `gorm:"column:kvk;type:varchar(8)"` // "KvK" varsayılan isimlendirmede "kv_k" olur

	// Co-sign (ikinci imzacı) meta verisi; primary session'a yazılmaz
	CoSignData datatypes.JSON `gorm:"type:jsonb"`

	// Formun public URL'i (ödeme dönüşünde redirect hedefi)
	FormURL string `gorm:"type:varchar(500)"`

	CompletedAt *time.Time `gorm:"index"`

	// Kayıt (registration) backend takibi
	RegistrationStatus          string     `gorm:"type:varchar(20);default:'pending';index"`
	PublicRegistrationReference string     `gorm:"type:varchar(100);index"`
	LastRegisterDate            *time.Time

	// GORM İlişkileri
	Form     Form                `gorm:"foreignKey:FormID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
	Payments []SubmissionPayment `gorm:"foreignKey:SubmissionID"`
	Report   *SubmissionReport   `gorm:"foreignKey:SubmissionID"`
}

// IsCompleted tüm adımların tamamlanıp tamamlanmadığını söyler.
func (s *Submission) IsCompleted() bool {
	return s.CompletedAt != nil
}

// CompletedPublicOrderIDs tamamlanmış ödemelerin public sipariş ID'leri.
func (s *Submission) CompletedPublicOrderIDs() []string {
	var ids []string
	for _, p := range s.Payments {
		if p.Status == PaymentStatusCompleted && p.PublicOrderID != "" {
			ids = append(ids, p.PublicOrderID)
		}
	}
	return ids
}
