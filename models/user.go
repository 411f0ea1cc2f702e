package models

// User panel kullanıcısı. IsSystem true olan kullanıcılar tüm formları
// yönetebilir.
type User struct {
	BaseModel
	Email        string `gorm:"type:varchar(150);uniqueIndex;not null"`
	Name         string `gorm:"type:varchar(150);not null"`
	PasswordHash string `gorm:"type:varchar(255);not null"`
	IsSystem     bool   `gorm:"default:false"`
	IsEnabled    bool   `gorm:"default:true;index"`
}
