package utils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

var ErrSessionUnavailable = errors.New("session store bulunamadı")

// SessionStart locals'daki store üzerinden isteğin session'ını açar.
// Store, router middleware'i tarafından "session_store" anahtarıyla konur.
func SessionStart(c *fiber.Ctx) (*session.Session, error) {
	store, ok := c.Locals("session_store").(*session.Store)
	if !ok || store == nil {
		return nil, ErrSessionUnavailable
	}
	return store.Get(c)
}

// GetUserIDFromSession giriş yapmış kullanıcının ID'sini okur.
func GetUserIDFromSession(sess *session.Session) (uint, error) {
	userID, ok := sess.Get("user_id").(uint)
	if !ok || userID == 0 {
		return 0, errors.New("session'da kullanıcı ID yok")
	}
	return userID, nil
}

// GetIsSystemFromSession kullanıcının sistem yöneticisi olup olmadığını okur.
func GetIsSystemFromSession(sess *session.Session) (bool, error) {
	isSystem, ok := sess.Get("is_system").(bool)
	if !ok {
		return false, errors.New("session'da is_system bilgisi yok")
	}
	return isSystem, nil
}
