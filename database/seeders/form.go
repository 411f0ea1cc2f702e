package seeders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"formulier.link/configs/configslog"
	"formulier.link/models"
)

// SeedDemoForm demo auth ve e-posta kayıt backend'leriyle örnek bir form
// oluşturur. Form zaten varsa hiçbir şey yapılmaz.
func SeedDemoForm(db *gorm.DB) error {
	const slug = "demo-aanvraag"

	var existing models.Form
	result := db.Where("slug = ?", slug).First(&existing)
	if result.Error == nil {
		configslog.SLog.Debugf("Demo form '%s' zaten mevcut, oluşturma atlanıyor.", slug)
		return nil
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		configslog.Log.Error("Demo form kontrol edilirken veritabanı hatası", zap.Error(result.Error))
		return result.Error
	}

	systemUserID := uint(1)
	ctx := models.ContextWithUserID(context.Background(), systemUserID)

	configslog.SLog.Infof("Demo form '%s' oluşturuluyor...", slug)

	definition := models.FormDefinition{
		UUID: uuid.New(),
		Slug: "demo-aanvraag-stap-1",
		Name: "Gegevens",
		Configuration: datatypes.JSON([]byte(`{
			"components": [
				{"type": "textfield", "key": "naam", "label": "Naam"},
				{"type": "email", "key": "email", "label": "E-mailadres"},
				{"type": "currency", "key": "bedrag", "label": "Bedrag"}
			]
		}`)),
	}
	if err := db.WithContext(ctx).Create(&definition).Error; err != nil {
		configslog.Log.Error("Demo form tanımı oluşturulamadı", zap.Error(err))
		return err
	}

	form := models.Form{
		UUID:                   uuid.New(),
		Slug:                   slug,
		Name:                   "Demo aanvraag",
		CreatorUserID:          systemUserID,
		IsEnabled:              true,
		AuthenticationBackends: datatypes.JSON([]byte(`["demo", "demo-kvk"]`)),
		RegistrationBackend:    "email",
		RegistrationBackendOptions: datatypes.JSON(
			[]byte(`{"to_emails": ["behandelaars@formulier.link"], "attachment_formats": ["csv"]}`)),
		PaymentBackend: "demo",
		Steps: []models.FormStep{
			{UUID: uuid.New(), FormDefinitionID: definition.ID, Order: 0},
		},
	}
	if err := db.WithContext(ctx).Create(&form).Error; err != nil {
		configslog.Log.Error("Demo form oluşturulamadı", zap.Error(err))
		return err
	}

	configslog.SLog.Infof("Demo form oluşturuldu: %s (ID: %d)", slug, form.ID)
	return nil
}
