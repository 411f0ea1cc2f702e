package public

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/google/uuid"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"formulier.link/database"
	"formulier.link/models"
	"formulier.link/plugins/auth"
	"formulier.link/services"
	"formulier.link/utils"
)

func openHandlerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		t.Fatalf("test veritabanı açılamadı: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("veritabanı havuzu alınamadı: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.RunMigrationsInOrder(db); err != nil {
		t.Fatalf("migrasyonlar çalıştırılamadı: %v", err)
	}
	return db
}

// newCompleteTestApp tamamlanma ucunu ve session'ı okuyup yazan yardımcı
// uçları bağlayan test uygulaması kurar.
func newCompleteTestApp(handler *PublicFormHandler) *fiber.App {
	app := fiber.New()
	store := session.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("session_store", store)
		return c.Next()
	})

	app.Post("/seed-auth", func(c *fiber.Ctx) error {
		sess, err := utils.SessionStart(c)
		if err != nil {
			return err
		}
		if err := auth.SetFormAuth(sess, auth.FormAuth{
			Plugin:    "demo",
			Attribute: auth.AttributeBSN,
			Value:     "111222333",
		}); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Get("/check-auth", func(c *fiber.Ctx) error {
		sess, err := utils.SessionStart(c)
		if err != nil {
			return err
		}
		if _, ok := auth.FormAuthFromSession(sess); ok {
			return c.SendStatus(fiber.StatusOK)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Post("/submissions/:uuid/complete", handler.Complete)
	return app
}

func doRequest(t *testing.T, app *fiber.App, method, path, cookie string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if cookie != "" {
		req.Header.Set(fiber.HeaderCookie, cookie)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("istek başarısız: %v", err)
	}
	return resp
}

func TestCompleteDeletesPendingFormAuthFromSession(t *testing.T) {
	db := openHandlerTestDB(t)

	form := models.Form{
		UUID:          uuid.New(),
		Slug:          "complete-form",
		Name:          "Complete Form",
		CreatorUserID: 1,
		IsEnabled:     true,
	}
	if err := db.Create(&form).Error; err != nil {
		t.Fatalf("form oluşturulamadı: %v", err)
	}
	submission := models.Submission{
		UUID:               uuid.New(),
		FormID:             form.ID,
		RegistrationStatus: models.RegistrationStatusPending,
	}
	if err := db.Create(&submission).Error; err != nil {
		t.Fatalf("gönderim oluşturulamadı: %v", err)
	}

	submissionService := services.NewSubmissionServiceWithDB(db, nil, nil)
	handler := NewPublicFormHandler(nil, submissionService, nil, nil)
	app := newCompleteTestApp(handler)

	// Session'a bekleyen bir kimlik aktarımı koy
	seedResp := doRequest(t, app, fiber.MethodPost, "/seed-auth", "")
	cookie := strings.Split(seedResp.Header.Get(fiber.HeaderSetCookie), ";")[0]

	if resp := doRequest(t, app, fiber.MethodGet, "/check-auth", cookie); resp.StatusCode != fiber.StatusOK {
		t.Fatalf("tamamlanmadan önce kimlik session'da olmalı: %d", resp.StatusCode)
	}

	resp := doRequest(t, app, fiber.MethodPost, "/submissions/"+submission.UUID.String()+"/complete", cookie)
	if resp.StatusCode != fiber.StatusNoContent {
		t.Fatalf("tamamlanma 204 dönmeliydi: %d", resp.StatusCode)
	}

	// Tamamlanma sonrası session anahtarı silinmiş olmalı
	if resp := doRequest(t, app, fiber.MethodGet, "/check-auth", cookie); resp.StatusCode != fiber.StatusNoContent {
		t.Errorf("tamamlanma sonrası kimlik session'dan silinmeli: %d", resp.StatusCode)
	}

	var reloaded models.Submission
	if err := db.First(&reloaded, submission.ID).Error; err != nil {
		t.Fatalf("gönderim okunamadı: %v", err)
	}
	if reloaded.CompletedAt == nil {
		t.Error("completed_at yazılmadı")
	}
}

func TestCompleteConflictKeepsSessionUntouched(t *testing.T) {
	db := openHandlerTestDB(t)

	form := models.Form{
		UUID:          uuid.New(),
		Slug:          "done-form",
		Name:          "Done Form",
		CreatorUserID: 1,
		IsEnabled:     true,
	}
	if err := db.Create(&form).Error; err != nil {
		t.Fatalf("form oluşturulamadı: %v", err)
	}
	completedAt := time.Now().UTC()
	submission := models.Submission{
		UUID:               uuid.New(),
		FormID:             form.ID,
		CompletedAt:        &completedAt,
		RegistrationStatus: models.RegistrationStatusSuccess,
	}
	if err := db.Create(&submission).Error; err != nil {
		t.Fatalf("gönderim oluşturulamadı: %v", err)
	}

	submissionService := services.NewSubmissionServiceWithDB(db, nil, nil)
	handler := NewPublicFormHandler(nil, submissionService, nil, nil)
	app := newCompleteTestApp(handler)

	seedResp := doRequest(t, app, fiber.MethodPost, "/seed-auth", "")
	cookie := strings.Split(seedResp.Header.Get(fiber.HeaderSetCookie), ";")[0]

	resp := doRequest(t, app, fiber.MethodPost, "/submissions/"+submission.UUID.String()+"/complete", cookie)
	if resp.StatusCode != fiber.StatusConflict {
		t.Fatalf("tamamlanmış gönderim 409 dönmeliydi: %d", resp.StatusCode)
	}

	// Başarısız tamamlanma session'ı tüketmez
	if resp := doRequest(t, app, fiber.MethodGet, "/check-auth", cookie); resp.StatusCode != fiber.StatusOK {
		t.Errorf("başarısız tamamlanma kimliği silmemeli: %d", resp.StatusCode)
	}
}
