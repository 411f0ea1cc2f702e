package models

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type contextKey string

// ContextUserIDKey audit sütunları için işlemi yapan kullanıcının ID'sini
// taşıyan context anahtarı.
const ContextUserIDKey contextKey = "user_id"

// ContextWithUserID işlemi yapan kullanıcıyı context'e koyar; BaseModel
// hook'ları CreatedBy/UpdatedBy sütunlarını buradan doldurur.
func ContextWithUserID(ctx context.Context, userID uint) context.Context {
	return context.WithValue(ctx, ContextUserIDKey, userID)
}

// BaseModel tüm tabloların paylaştığı kimlik ve audit sütunları.
type BaseModel struct {
	ID        uint           `gorm:"primarykey"`
	CreatedAt time.Time      `gorm:"index"`
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`

	CreatedBy *uint `gorm:"index"`
	UpdatedBy *uint
	DeletedBy *uint
}

// BeforeCreate oluşturan kullanıcıyı context'ten okur.
func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if userID, ok := tx.Statement.Context.Value(ContextUserIDKey).(uint); ok && userID != 0 {
		m.CreatedBy = &userID
		m.UpdatedBy = &userID
	}
	return nil
}

// BeforeUpdate güncelleyen kullanıcıyı context'ten okur.
func (m *BaseModel) BeforeUpdate(tx *gorm.DB) error {
	if userID, ok := tx.Statement.Context.Value(ContextUserIDKey).(uint); ok && userID != 0 {
		m.UpdatedBy = &userID
	}
	return nil
}
