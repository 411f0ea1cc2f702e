package auth

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/google/uuid"

	"formulier.link/models"
	"formulier.link/utils"
)

func TestValidateBSN(t *testing.T) {
	tests := []struct {
		value string
		valid bool
	}{
		{"111222333", true},  // elfproef geçer
		{"123456782", true},  // elfproef geçer
		{"123456789", false}, // elfproef başarısız
		{"12345678", false},  // 8 hane
		{"1234567890", false},
		{"11122233a", false},
		{"", false},
	}
	for _, tt := range tests {
		if err := validateBSN(tt.value); (err == nil) != tt.valid {
			t.Errorf("validateBSN(%q): geçerlilik %v bekleniyordu, hata: %v", tt.value, tt.valid, err)
		}
	}
}

func TestValidateKvK(t *testing.T) {
	tests := []struct {
		value string
		valid bool
	}{
		{"12345678", true},
		{"1234567", false},
		{"123456789", false},
		{"1234567a", false},
		{"", false},
	}
	for _, tt := range tests {
		if err := validateKvK(tt.value); (err == nil) != tt.valid {
			t.Errorf("validateKvK(%q): geçerlilik %v bekleniyordu, hata: %v", tt.value, tt.valid, err)
		}
	}
}

// newDemoTestApp demo plugin'in dönüş ucunu ve session'ı okuyan bir
// kontrol ucunu bağlayan test uygulaması kurar.
func newDemoTestApp(plugin *DemoPlugin) *fiber.App {
	app := fiber.New()
	store := session.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("session_store", store)
		return c.Next()
	})

	form := &models.Form{Slug: "test-form"}
	app.Post("/return", func(c *fiber.Ctx) error {
		return plugin.HandleReturn(c, form)
	})
	app.Get("/check", func(c *fiber.Ctx) error {
		sess, err := utils.SessionStart(c)
		if err != nil {
			return err
		}
		formAuth, ok := FormAuthFromSession(sess)
		if !ok {
			return c.SendStatus(fiber.StatusNoContent)
		}
		return c.JSON(formAuth)
	})
	return app
}

func postForm(t *testing.T, app *fiber.App, path string, values url.Values, cookie string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	if cookie != "" {
		req.Header.Set(fiber.HeaderCookie, cookie)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("istek başarısız: %v", err)
	}
	return resp
}

func sessionCookie(resp *http.Response) string {
	return strings.Split(resp.Header.Get(fiber.HeaderSetCookie), ";")[0]
}

func readSessionAuth(t *testing.T, app *fiber.App, cookie string) (string, int) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodGet, "/check", nil)
	if cookie != "" {
		req.Header.Set(fiber.HeaderCookie, cookie)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("kontrol isteği başarısız: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return string(body), resp.StatusCode
}

func TestDemoHandleReturnStoresFormAuth(t *testing.T) {
	plugin := NewDemoBSN()
	app := newDemoTestApp(plugin)

	resp := postForm(t, app, "/return", url.Values{
		"next":  {"/forms/test-form"},
		"value": {"111222333"},
	}, "")
	if resp.StatusCode != fiber.StatusFound {
		t.Fatalf("302 bekleniyordu: %d", resp.StatusCode)
	}
	if location := resp.Header.Get(fiber.HeaderLocation); location != "/forms/test-form" {
		t.Errorf("next URL'ine redirect bekleniyordu: %q", location)
	}

	body, status := readSessionAuth(t, app, sessionCookie(resp))
	if status != fiber.StatusOK {
		t.Fatalf("session'da kimlik bekleniyordu, durum: %d", status)
	}
	for _, want := range []string{`"plugin":"demo"`, `"attribute":"bsn"`, `"value":"111222333"`} {
		if !strings.Contains(body, want) {
			t.Errorf("session kimliği %s içermeli: %s", want, body)
		}
	}
}

func TestDemoHandleReturnKvK(t *testing.T) {
	plugin := NewDemoKvK()
	app := newDemoTestApp(plugin)

	resp := postForm(t, app, "/return", url.Values{
		"next":  {"/forms/test-form"},
		"value": {"12345678"},
	}, "")
	if resp.StatusCode != fiber.StatusFound {
		t.Fatalf("302 bekleniyordu: %d", resp.StatusCode)
	}

	body, _ := readSessionAuth(t, app, sessionCookie(resp))
	if !strings.Contains(body, `"attribute":"kvk"`) {
		t.Errorf("kvk niteliği bekleniyordu: %s", body)
	}
}

func TestDemoHandleReturnCoSignSkipsSession(t *testing.T) {
	plugin := NewDemoBSN()
	app := newDemoTestApp(plugin)

	resp := postForm(t, app, "/return", url.Values{
		"next":             {"/forms/test-form"},
		"value":            {"111222333"},
		"coSignSubmission": {uuid.NewString()},
	}, "")
	if resp.StatusCode != fiber.StatusFound {
		t.Fatalf("co-sign dönüşü de redirect etmeli: %d", resp.StatusCode)
	}

	// Co-sign akışında primary session'a kimlik yazılmaz
	_, status := readSessionAuth(t, app, sessionCookie(resp))
	if status != fiber.StatusNoContent {
		t.Errorf("session boş kalmalıydı, durum: %d", status)
	}
}

func TestDemoHandleReturnRejectsInvalidPayload(t *testing.T) {
	plugin := NewDemoBSN()
	app := newDemoTestApp(plugin)

	tests := []struct {
		name   string
		values url.Values
	}{
		{"geçersiz bsn", url.Values{"next": {"/forms/x"}, "value": {"123456789"}}},
		{"next eksik", url.Values{"value": {"111222333"}}},
		{"geçersiz co-sign uuid", url.Values{"next": {"/forms/x"}, "value": {"111222333"}, "coSignSubmission": {"niet-een-uuid"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postForm(t, app, "/return", tt.values, "")
			if resp.StatusCode != fiber.StatusBadRequest {
				t.Errorf("400 bekleniyordu: %d", resp.StatusCode)
			}
		})
	}
}

func TestDemoHandleCoSign(t *testing.T) {
	plugin := NewDemoBSN()
	app := fiber.New()
	form := &models.Form{Slug: "test-form"}

	var coSign *CoSignData
	var coSignErr error
	app.Post("/co-sign", func(c *fiber.Ctx) error {
		coSign, coSignErr = plugin.HandleCoSign(c, form)
		return c.SendStatus(fiber.StatusOK)
	})

	postForm(t, app, "/co-sign", url.Values{
		"next":             {"/forms/test-form"},
		"value":            {"123456782"},
		"coSignSubmission": {uuid.NewString()},
	}, "")
	if coSignErr != nil {
		t.Fatalf("HandleCoSign hata döndürdü: %v", coSignErr)
	}
	if coSign == nil || coSign.Identifier != "123456782" {
		t.Errorf("imzacı kimliği bekleniyordu: %+v", coSign)
	}
}
