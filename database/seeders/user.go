package seeders

import (
	"errors"
	"os"

	"formulier.link/configs/configslog"
	"formulier.link/models"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedSystemUser sistem kullanıcısını oluşturur veya günceller. Şifre
// SYSTEM_USER_PASSWORD ortam değişkeninden okunur; boşsa mevcut hash korunur.
func SeedSystemUser(db *gorm.DB) error {
	email := os.Getenv("SYSTEM_USER_EMAIL")
	if email == "" {
		email = "system@formulier.link"
	}
	password := os.Getenv("SYSTEM_USER_PASSWORD")

	var existing models.User
	result := db.Where("email = ?", email).First(&existing)

	if result.Error != nil && !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		configslog.Log.Error("Sistem kullanıcısı kontrol edilirken veritabanı hatası", zap.Error(result.Error))
		return result.Error
	}

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		if password == "" {
			configslog.SLog.Warn("SYSTEM_USER_PASSWORD tanımlı değil, sistem kullanıcısı oluşturulmayacak.")
			return nil
		}
		hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			configslog.Log.Error("Sistem kullanıcısı şifresi hash'lenemedi", zap.Error(err))
			return err
		}
		systemUser := models.User{
			Email:        email,
			Name:         "System",
			PasswordHash: string(hashedBytes),
			IsSystem:     true,
			IsEnabled:    true,
		}
		if err := db.Create(&systemUser).Error; err != nil {
			configslog.Log.Error("Sistem kullanıcısı oluşturulamadı", zap.Error(err))
			return err
		}
		configslog.SLog.Infof("Sistem kullanıcısı oluşturuldu: %s (ID: %d)", email, systemUser.ID)
		return nil
	}

	if password != "" {
		hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			configslog.Log.Error("Sistem kullanıcısı şifresi hash'lenemedi", zap.Error(err))
			return err
		}
		existing.PasswordHash = string(hashedBytes)
		if err := db.Model(&existing).Select("password_hash").Updates(&existing).Error; err != nil {
			configslog.Log.Error("Sistem kullanıcısı şifresi güncellenemedi", zap.Error(err))
			return err
		}
		configslog.SLog.Info("Sistem kullanıcısı şifresi güncellendi.")
	} else {
		configslog.SLog.Debug("Sistem kullanıcısı mevcut, şifre değişikliği yok.")
	}
	return nil
}
