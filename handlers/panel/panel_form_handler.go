package handlers // handlers/panel paketi

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"formulier.link/configs/configslog"
	"formulier.link/models"
	"formulier.link/pkg/flashmessages"
	"formulier.link/pkg/queryparams"
	"formulier.link/pkg/renderer"
	"formulier.link/services"
)

// PanelFormHandler form yönetimi: listeleme, sürümler ve geri yükleme.
type PanelFormHandler struct {
	formService    services.IFormService
	versionService services.IFormVersionService
}

// NewPanelFormHandler yeni bir PanelFormHandler örneği oluşturur.
func NewPanelFormHandler(formService services.IFormService, versionService services.IFormVersionService) *PanelFormHandler {
	return &PanelFormHandler{
		formService:    formService,
		versionService: versionService,
	}
}

// ListForms formları sayfalayarak listeler.
func (h *PanelFormHandler) ListForms(c *fiber.Ctx) error {
	var params queryparams.ListParams
	if err := c.QueryParser(&params); err != nil {
		params = queryparams.DefaultListParams("created_at")
	}
	params.Validate()

	paginatedResult, err := h.formService.GetAllFormsPaginated(c.UserContext(), params)

	renderData := fiber.Map{
		"Title":  "Formlar",
		"Result": paginatedResult,
		"Params": params,
	}
	renderer.SetFlashMessages(renderData, flashmessages.GetFlashMessages(c))

	if err != nil {
		renderData[renderer.FlashErrorKeyView] = "Formlar listelenirken hata."
		renderData["Result"] = &queryparams.PaginatedResult{Data: []models.Form{}, Meta: queryparams.PaginationMeta{}}
		configslog.Log.Error("Panel - ListForms Error", zap.Error(err))
	}
	// View: panel/forms/list.html
	return renderer.Render(c, "panel/forms/list", "layouts/panel_layout", renderData)
}

// ListVersions formun sürüm geçmişini gösterir.
func (h *PanelFormHandler) ListVersions(c *fiber.Ctx) error {
	formID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return fiber.ErrNotFound
	}

	form, err := h.formService.GetFormByID(c.UserContext(), uint(formID))
	if err != nil {
		return fiber.ErrNotFound
	}

	versions, err := h.versionService.ListVersions(c.UserContext(), form.ID)

	renderData := fiber.Map{
		"Title":    "Sürümler: " + form.AdminName(),
		"Form":     form,
		"Versions": versions,
	}
	renderer.SetFlashMessages(renderData, flashmessages.GetFlashMessages(c))

	if err != nil {
		renderData[renderer.FlashErrorKeyView] = "Sürümler listelenirken hata."
		configslog.Log.Error("Panel - ListVersions Error", zap.Uint("formID", form.ID), zap.Error(err))
	}
	// View: panel/forms/versions.html
	return renderer.Render(c, "panel/forms/versions", "layouts/panel_layout", renderData)
}

// CreateVersion formun o anki halinin anlık görüntüsünü alır.
func (h *PanelFormHandler) CreateVersion(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok || userID == 0 {
		return c.Redirect("/auth/login")
	}

	formID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return fiber.ErrNotFound
	}
	form, err := h.formService.GetFormByID(c.UserContext(), uint(formID))
	if err != nil {
		return fiber.ErrNotFound
	}

	if _, err := h.versionService.CreateForVersion(c.UserContext(), userID, form); err != nil {
		configslog.Log.Error("Panel - CreateVersion Error", zap.Uint("formID", form.ID), zap.Error(err))
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Sürüm oluşturulamadı: "+err.Error())
	} else {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashSuccessKey, "Sürüm oluşturuldu.")
	}
	return c.Redirect("/panel/forms/"+c.Params("id")+"/versions", fiber.StatusFound)
}

// RestoreVersion formu seçilen sürüme geri yükler.
func (h *PanelFormHandler) RestoreVersion(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok || userID == 0 {
		return c.Redirect("/auth/login")
	}

	formID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return fiber.ErrNotFound
	}
	versionUUID, err := uuid.Parse(c.Params("uuid"))
	if err != nil {
		return fiber.ErrNotFound
	}

	if err := h.versionService.RestoreOldVersion(c.UserContext(), userID, uint(formID), versionUUID); err != nil {
		configslog.Log.Error("Panel - RestoreVersion Error",
			zap.Uint64("formID", formID), zap.String("versionUUID", versionUUID.String()), zap.Error(err))
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Geri yükleme başarısız: "+err.Error())
	} else {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashSuccessKey, "Form sürümü geri yüklendi.")
	}
	return c.Redirect("/panel/forms/"+c.Params("id")+"/versions", fiber.StatusFound)
}

// DeleteForm formu soft delete eder.
func (h *PanelFormHandler) DeleteForm(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok || userID == 0 {
		return c.Redirect("/auth/login")
	}

	formID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return fiber.ErrNotFound
	}

	if err := h.formService.DeleteForm(c.UserContext(), uint(formID), userID); err != nil {
		configslog.Log.Error("Panel - DeleteForm Error", zap.Uint64("formID", formID), zap.Error(err))
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashErrorKey, "Silme hatası: "+err.Error())
	} else {
		_ = flashmessages.SetFlashMessage(c, flashmessages.FlashSuccessKey, "Form silindi.")
	}
	return c.Redirect("/panel/forms", fiber.StatusFound)
}
