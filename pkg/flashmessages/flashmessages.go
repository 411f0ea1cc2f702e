// Package flashmessages session üzerinden tek kullanımlık panel
// mesajları taşır (başarı/hata).
package flashmessages

import (
	"github.com/gofiber/fiber/v2"

	"formulier.link/utils"
)

const (
	FlashSuccessKey = "flash_success"
	FlashErrorKey   = "flash_error"
)

// FlashData bir istekte gösterilecek mesajlar.
type FlashData struct {
	Success string
	Error   string
}

// SetFlashMessage mesajı session'a yazar; bir sonraki GetFlashMessages
// çağrısında tüketilir.
func SetFlashMessage(c *fiber.Ctx, key, message string) error {
	sess, err := utils.SessionStart(c)
	if err != nil {
		return err
	}
	sess.Set(key, message)
	return sess.Save()
}

// GetFlashMessages bekleyen mesajları okur ve session'dan siler.
func GetFlashMessages(c *fiber.Ctx) FlashData {
	var data FlashData
	sess, err := utils.SessionStart(c)
	if err != nil {
		return data
	}
	if msg, ok := sess.Get(FlashSuccessKey).(string); ok {
		data.Success = msg
		sess.Delete(FlashSuccessKey)
	}
	if msg, ok := sess.Get(FlashErrorKey).(string); ok {
		data.Error = msg
		sess.Delete(FlashErrorKey)
	}
	if data.Success != "" || data.Error != "" {
		_ = sess.Save()
	}
	return data
}
