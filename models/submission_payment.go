package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ödeme durumları.
const (
	PaymentStatusStarted   = "started"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

// SubmissionPayment bir submission için başlatılan tek bir ödemedir.
type SubmissionPayment struct {
	BaseModel
	UUID         uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	SubmissionID uint      `gorm:"index;not null"`

	Plugin        string          `gorm:"type:varchar(100);not null"`
	Amount        decimal.Decimal `gorm:"type:numeric(10,2)"`
	PublicOrderID string          `gorm:"type:varchar(100);index"`
	Status        string          `gorm:"type:varchar(20);default:'started';index"`

	// Ödeme tamamlandı bildirimi registration backend'ine bir kez gider;
	// webhook'lar at-least-once teslim ettiği için tekrarlar bu bayrakla elenir.
	RegistrationNotified bool `gorm:"default:false"`

	// GORM İlişkileri
	Submission Submission `gorm:"foreignKey:SubmissionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
