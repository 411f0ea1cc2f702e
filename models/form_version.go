package models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// FormVersion bir formun değiştirilemez (immutable) tarihsel anlık görüntüsüdür.
// ExportBlob, formun skaler alanlarını, sıralı adımlarını ve adımların
// FormDefinition içeriklerini serialize edilmiş halde tutar. Kayıtlar
// append-only'dir: restore geçmişi değiştirmez, yeni bir versiyon ekler.
type FormVersion struct {
	BaseModel
	UUID        uuid.UUID      `gorm:"type:uuid;uniqueIndex;not null"`
	FormID      uint           `gorm:"index;not null"`
	Description string         `gorm:"type:varchar(255)"`
	ExportBlob  datatypes.JSON `gorm:"type:jsonb;not null"`

	// GORM İlişkileri
	Form Form `gorm:"foreignKey:FormID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
