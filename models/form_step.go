package models

import "github.com/google/uuid"

// FormStep bir Form ile bir FormDefinition arasındaki sıralı bağdır.
// Restore işlemi sırasında toptan silinip yeniden oluşturulur.
type FormStep struct {
	BaseModel
	UUID             uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	FormID           uint      `gorm:"index;not null"`
	FormDefinitionID uint      `gorm:"index;not null"`
	Order            int       `gorm:"column:step_order;not null"` // "order" SQL'de ayrılmış kelime

	// GORM İlişkileri
	FormDefinition FormDefinition `gorm:"foreignKey:FormDefinitionID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
}
