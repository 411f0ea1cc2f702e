// Package renderer view render çağrılarını layout ve flash mesaj
// kurallarıyla tek noktada toplar.
package renderer

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"formulier.link/pkg/flashmessages"
)

const (
	FlashSuccessKeyView = "Success"
	FlashErrorKeyView   = "Error"
)

// SetFlashMessages flash mesajlarını view verisine ekler.
func SetFlashMessages(renderData fiber.Map, flash flashmessages.FlashData) {
	if flash.Success != "" {
		renderData[FlashSuccessKeyView] = flash.Success
	}
	if flash.Error != "" {
		renderData[FlashErrorKeyView] = flash.Error
	}
}

// Render view'ı verilen layout ile render eder.
func Render(c *fiber.Ctx, view string, layout string, data fiber.Map, status ...int) error {
	code := http.StatusOK
	if len(status) > 0 {
		code = status[0]
	}
	c.Status(code)
	if layout == "" {
		return c.Render(view, data)
	}
	return c.Render(view, data, layout)
}
