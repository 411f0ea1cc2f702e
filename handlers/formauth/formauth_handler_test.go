package formauth

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"formulier.link/models"
	"formulier.link/pkg/queryparams"
	"formulier.link/plugins/auth"
	"formulier.link/services"
)

// stubFormService testlerde tek bir sabit formu sunar.
type stubFormService struct {
	form *models.Form
}

func (s *stubFormService) GetPublicFormBySlug(ctx context.Context, slug string) (*models.Form, error) {
	if s.form != nil && s.form.Slug == slug {
		return s.form, nil
	}
	return nil, services.ErrFormNotFound
}

func (s *stubFormService) CreateForm(ctx context.Context, creatorUserID uint, form *models.Form) (*models.Form, error) {
	return nil, services.ErrFormCreationFailed
}
func (s *stubFormService) GetFormByID(ctx context.Context, id uint) (*models.Form, error) {
	return nil, services.ErrFormNotFound
}
func (s *stubFormService) GetFormBySlug(ctx context.Context, slug string) (*models.Form, error) {
	return s.GetPublicFormBySlug(ctx, slug)
}
func (s *stubFormService) GetAllFormsPaginated(ctx context.Context, params queryparams.ListParams) (*queryparams.PaginatedResult, error) {
	return &queryparams.PaginatedResult{}, nil
}
func (s *stubFormService) UpdateForm(ctx context.Context, updatingUserID uint, form *models.Form) error {
	return nil
}
func (s *stubFormService) DeleteForm(ctx context.Context, id uint, deletingUserID uint) error {
	return nil
}
func (s *stubFormService) GetFormCount(ctx context.Context) (int64, error) { return 0, nil }

var _ services.IFormService = (*stubFormService)(nil)

func newBoundaryTestApp(t *testing.T, form *models.Form, plugins ...auth.Plugin) *fiber.App {
	t.Helper()
	reg := auth.NewRegistry()
	for _, plugin := range plugins {
		reg.MustRegister(plugin.Identifier(), plugin)
	}
	handler := NewFormAuthHandler(&stubFormService{form: form}, nil, reg)

	app := fiber.New()
	app.Get("/auth/:slug/:plugin/start", handler.Start)
	app.Post("/auth/:slug/:plugin/return", handler.Return)
	return app
}

func testFormWithBackends(backends string) *models.Form {
	form := &models.Form{
		UUID:                   uuid.New(),
		Slug:                   "test-form",
		Name:                   "Test Form",
		IsEnabled:              true,
		AuthenticationBackends: datatypes.JSON([]byte(backends)),
	}
	form.ID = 1
	return form
}

func TestGuardConvertsPluginPanicToInternalError(t *testing.T) {
	form := testFormWithBackends(`["failing"]`)
	app := newBoundaryTestApp(t, form, &auth.FailingPlugin{})

	req := httptest.NewRequest(fiber.MethodGet, "/auth/test-form/failing/start", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("istek başarısız: %v", err)
	}
	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Errorf("panic 500'e çevrilmeliydi: %d", resp.StatusCode)
	}

	// Gövde panic detayını sızdırmamalı
	body := make([]byte, 256)
	n, _ := resp.Body.Read(body)
	if got := string(body[:n]); got != "Kimlik doğrulama başarısız oldu." {
		t.Errorf("iç detay sızdırılmamalı: %q", got)
	}
}

func TestDispatchUnknownPluginIs404(t *testing.T) {
	form := testFormWithBackends(`["demo"]`)
	app := newBoundaryTestApp(t, form, auth.NewDemoBSN())

	req := httptest.NewRequest(fiber.MethodGet, "/auth/test-form/bestaat-niet/start", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("istek başarısız: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("404 bekleniyordu: %d", resp.StatusCode)
	}
}

func TestDispatchPluginNotEnabledForFormIs404(t *testing.T) {
	// Plugin registry'de var ama formun backend listesinde yok
	form := testFormWithBackends(`["demo-kvk"]`)
	app := newBoundaryTestApp(t, form, auth.NewDemoBSN(), auth.NewDemoKvK())

	req := httptest.NewRequest(fiber.MethodGet, "/auth/test-form/demo/start", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("istek başarısız: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("404 bekleniyordu: %d", resp.StatusCode)
	}
}

func TestDispatchUnknownFormIs404(t *testing.T) {
	form := testFormWithBackends(`["demo"]`)
	app := newBoundaryTestApp(t, form, auth.NewDemoBSN())

	req := httptest.NewRequest(fiber.MethodGet, "/auth/andere-form/demo/start", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("istek başarısız: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("404 bekleniyordu: %d", resp.StatusCode)
	}
}

func TestGuardPassesClientErrorsThrough(t *testing.T) {
	form := testFormWithBackends(`["demo"]`)
	app := newBoundaryTestApp(t, form, auth.NewDemoBSN())

	// Demo plugin geçersiz payload'ı 400 ile yanıtlar; guard bunu 500'e çevirmez
	req := httptest.NewRequest(fiber.MethodPost, "/auth/test-form/demo/return", nil)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("istek başarısız: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("400 bekleniyordu: %d", resp.StatusCode)
	}
}
