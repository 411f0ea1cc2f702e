package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"formulier.link/configs"
	"formulier.link/configs/configslog"
	"formulier.link/models"
	"formulier.link/repositories"
)

// FormVersionServiceError özel servis hataları
type FormVersionServiceError string

func (e FormVersionServiceError) Error() string { return string(e) }

const (
	ErrVersionNotFound       FormVersionServiceError = "form sürümü bulunamadı"
	ErrVersionFormNotFound   FormVersionServiceError = "sürümün formu bulunamadı"
	ErrVersionBlobInvalid    FormVersionServiceError = "sürüm içeriği çözülemedi"
	ErrVersionCreationFailed FormVersionServiceError = "form sürümü oluşturulamadı"
	ErrVersionRestoreFailed  FormVersionServiceError = "form sürümü geri yüklenemedi"
	ErrSlugConflictLimit     FormVersionServiceError = "slug çakışması çözülemedi, aday limiti aşıldı"
)

// slugConflictLimit geri yüklemede denenen aday slug sayısının üst sınırı.
// Limit aşıldığında işlem veri bozmak yerine hata ile durur.
const slugConflictLimit = 100

// ExportedDefinition sürüm bloğundaki form tanımı anlık görüntüsü.
type ExportedDefinition struct {
	UUID          uuid.UUID       `json:"uuid"`
	Slug          string          `json:"slug"`
	Name          string          `json:"name"`
	InternalName  string          `json:"internal_name"`
	Configuration json.RawMessage `json:"configuration"`
	IsReusable    bool            `json:"is_reusable"`
}

// ExportedStep sürüm bloğundaki sıralı adım; tanımını gömülü taşır.
type ExportedStep struct {
	UUID           uuid.UUID          `json:"uuid"`
	Order          int                `json:"order"`
	FormDefinition ExportedDefinition `json:"form_definition"`
}

// ExportedForm sürüm bloğundaki form skalerleri.
type ExportedForm struct {
	UUID                           uuid.UUID       `json:"uuid"`
	Slug                           string          `json:"slug"`
	Name                           string          `json:"name"`
	InternalName                   string          `json:"internal_name"`
	AuthenticationBackends         json.RawMessage `json:"authentication_backends,omitempty"`
	AutoLoginAuthenticationBackend string          `json:"auto_login_authentication_backend"`
	RegistrationBackend            string          `json:"registration_backend"`
	RegistrationBackendOptions     json.RawMessage `json:"registration_backend_options,omitempty"`
	PaymentBackend                 string          `json:"payment_backend"`
	PaymentBackendOptions          json.RawMessage `json:"payment_backend_options,omitempty"`
}

// ExportBlob bir FormVersion'un export_blob sütununun çözülmüş hali.
type ExportBlob struct {
	Form  ExportedForm   `json:"form"`
	Steps []ExportedStep `json:"steps"`
}

// IFormVersionService form sürümü işlemleri için arayüz.
type IFormVersionService interface {
	CreateForVersion(ctx context.Context, actingUserID uint, form *models.Form) (*models.FormVersion, error)
	ListVersions(ctx context.Context, formID uint) ([]models.FormVersion, error)
	RestoreOldVersion(ctx context.Context, actingUserID uint, formID uint, versionUUID uuid.UUID) error
}

// FormVersionService IFormVersionService arayüzünü uygular.
type FormVersionService struct {
	versionRepo repositories.IFormVersionRepository
	formRepo    repositories.IFormRepository
	db          *gorm.DB // Transaction için
}

// NewFormVersionService yeni bir FormVersionService örneği oluşturur.
func NewFormVersionService() IFormVersionService {
	return &FormVersionService{
		versionRepo: repositories.NewFormVersionRepository(),
		formRepo:    repositories.NewFormRepository(),
		db:          configs.GetDB(),
	}
}

// NewFormVersionServiceWithDB testlerin kendi bağlantısıyla kurduğu servis.
func NewFormVersionServiceWithDB(db *gorm.DB) IFormVersionService {
	return &FormVersionService{
		versionRepo: repositories.NewFormVersionRepositoryTx(db),
		formRepo:    repositories.NewFormRepositoryTx(db),
		db:          db,
	}
}

// exportForm canlı formu (adımları sıralı ve tanımları yüklü halde)
// serialize edilebilir bloğa çevirir.
func exportForm(form *models.Form) ExportBlob {
	blob := ExportBlob{
		Form: ExportedForm{
			UUID:                           form.UUID,
			Slug:                           form.Slug,
			Name:                           form.Name,
			InternalName:                   form.InternalName,
			AuthenticationBackends:         json.RawMessage(form.AuthenticationBackends),
			AutoLoginAuthenticationBackend: form.AutoLoginAuthenticationBackend,
			RegistrationBackend:            form.RegistrationBackend,
			RegistrationBackendOptions:     json.RawMessage(form.RegistrationBackendOptions),
			PaymentBackend:                 form.PaymentBackend,
			PaymentBackendOptions:          json.RawMessage(form.PaymentBackendOptions),
		},
	}
	for _, step := range form.Steps {
		blob.Steps = append(blob.Steps, ExportedStep{
			UUID:  step.UUID,
			Order: step.Order,
			FormDefinition: ExportedDefinition{
				UUID:          step.FormDefinition.UUID,
				Slug:          step.FormDefinition.Slug,
				Name:          step.FormDefinition.Name,
				InternalName:  step.FormDefinition.InternalName,
				Configuration: json.RawMessage(step.FormDefinition.Configuration),
				IsReusable:    step.FormDefinition.IsReusable,
			},
		})
	}
	return blob
}

// CreateForVersion formun o anki halinin değiştirilemez bir anlık
// görüntüsünü alır. Açıklama "Version N"; N, formun mevcut sürüm
// sayısının bir fazlasıdır.
func (s *FormVersionService) CreateForVersion(ctx context.Context, actingUserID uint, form *models.Form) (*models.FormVersion, error) {
	if form == nil || form.ID == 0 {
		return nil, ErrVersionFormNotFound
	}

	existingCount, err := s.versionRepo.CountForForm(ctx, form.ID)
	if err != nil {
		return nil, ErrVersionCreationFailed
	}

	blobBytes, err := json.Marshal(exportForm(form))
	if err != nil {
		configslog.Log.Error("CreateForVersion: blob serialize edilemedi", zap.Uint("form_id", form.ID), zap.Error(err))
		return nil, ErrVersionCreationFailed
	}

	version := &models.FormVersion{
		UUID:        uuid.New(),
		FormID:      form.ID,
		Description: fmt.Sprintf("Version %d", existingCount+1),
		ExportBlob:  datatypes.JSON(blobBytes),
	}
	txCtx := models.ContextWithUserID(ctx, actingUserID)
	if err := s.versionRepo.Create(txCtx, version); err != nil {
		configslog.Log.Error("CreateForVersion: sürüm oluşturulamadı", zap.Uint("form_id", form.ID), zap.Error(err))
		return nil, ErrVersionCreationFailed
	}

	configslog.SLog.Infof("Form sürümü oluşturuldu: Form %d, %s", form.ID, version.Description)
	return version, nil
}

// ListVersions formun sürümlerini en yeniden eskiye listeler.
func (s *FormVersionService) ListVersions(ctx context.Context, formID uint) ([]models.FormVersion, error) {
	if formID == 0 {
		return nil, ErrVersionFormNotFound
	}
	return s.versionRepo.ListForForm(ctx, formID)
}

// RestoreOldVersion bir formu geçmiş bir sürümüne döndürür. İşlemin tamamı
// tek transaction'dır; herhangi bir adım başarısız olursa hiçbir kısmi
// durum gözlemlenemez.
//
// Adımlar:
//  1. Sürüm bulunur, bloğu çözülür.
//  2. Bloktaki her form tanımı aday slug'lar (slug, slug-2, slug-3, ...)
//     üzerinden çözülür: slug boşsa YENİ uuid ile oluşturulur, doluysa ve
//     içerik yapısal olarak eşitse mevcut kayıt yeniden kullanılır,
//     değilse sıradaki aday denenir.
//  3. Formun adımları toptan silinir ve blok sırasıyla yeniden kurulur.
//  4. Blok skalerleri forma uygulanır; canlı slug korunur.
//  5. Geri yüklenen durum için yeni bir sürüm kaydı açılır.
func (s *FormVersionService) RestoreOldVersion(ctx context.Context, actingUserID uint, formID uint, versionUUID uuid.UUID) error {
	if formID == 0 {
		return ErrVersionFormNotFound
	}

	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		txCtx := models.ContextWithUserID(ctx, actingUserID)
		formRepoTx := repositories.NewFormRepositoryTx(tx)
		versionRepoTx := repositories.NewFormVersionRepositoryTx(tx)
		definitionRepoTx := repositories.NewFormDefinitionRepositoryTx(tx)

		form, err := formRepoTx.FindByID(txCtx, formID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrVersionFormNotFound
			}
			return err
		}

		version, err := versionRepoTx.FindByUUIDForForm(txCtx, form.ID, versionUUID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrVersionNotFound
			}
			return err
		}

		var blob ExportBlob
		if err := json.Unmarshal(version.ExportBlob, &blob); err != nil {
			configslog.Log.Error("RestoreOldVersion: blob çözülemedi",
				zap.Uint("form_id", form.ID), zap.String("version_uuid", versionUUID.String()), zap.Error(err))
			return ErrVersionBlobInvalid
		}

		// 2. Tanımları çöz
		resolvedDefinitionIDs := make([]uint, len(blob.Steps))
		for i, step := range blob.Steps {
			definitionID, err := resolveExportedDefinition(txCtx, definitionRepoTx, step.FormDefinition)
			if err != nil {
				return err
			}
			resolvedDefinitionIDs[i] = definitionID
		}

		// 3. Adımları toptan değiştir. Soft delete yeterli değil: slug
		// benzersizliği ve sıra numaraları temiz bir tablo ister.
		if err := tx.WithContext(txCtx).Unscoped().
			Where("form_id = ?", form.ID).
			Delete(&models.FormStep{}).Error; err != nil {
			return err
		}
		for i := range blob.Steps {
			step := models.FormStep{
				UUID:             uuid.New(),
				FormID:           form.ID,
				FormDefinitionID: resolvedDefinitionIDs[i],
				Order:            i,
			}
			if err := tx.WithContext(txCtx).Create(&step).Error; err != nil {
				return err
			}
		}

		// 4. Skalerleri uygula; canlı slug'a dokunulmaz.
		form.Name = blob.Form.Name
		form.InternalName = blob.Form.InternalName
		form.AuthenticationBackends = datatypes.JSON(blob.Form.AuthenticationBackends)
		form.AutoLoginAuthenticationBackend = blob.Form.AutoLoginAuthenticationBackend
		form.RegistrationBackend = blob.Form.RegistrationBackend
		form.RegistrationBackendOptions = datatypes.JSON(blob.Form.RegistrationBackendOptions)
		form.PaymentBackend = blob.Form.PaymentBackend
		form.PaymentBackendOptions = datatypes.JSON(blob.Form.PaymentBackendOptions)
		if err := formRepoTx.Update(txCtx, form); err != nil {
			return ErrVersionRestoreFailed
		}

		// 5. Geri yüklenen durum için yeni sürüm. Sıra numarası, kaynak
		// sürümden kesin olarak önce oluşturulmuş sürüm sayısının bir
		// fazlasıdır (oluşturma zamanına göre artan).
		ordinalBase, err := versionRepoTx.CountCreatedBefore(txCtx, form.ID, version.CreatedAt)
		if err != nil {
			return err
		}

		restoredForm, err := formRepoTx.FindByID(txCtx, form.ID)
		if err != nil {
			return err
		}
		blobBytes, err := json.Marshal(exportForm(restoredForm))
		if err != nil {
			return ErrVersionCreationFailed
		}
		newVersion := models.FormVersion{
			UUID:   uuid.New(),
			FormID: form.ID,
			Description: fmt.Sprintf("Restored form version %d (from %s).",
				ordinalBase+1, version.CreatedAt.UTC().Format(time.RFC3339)),
			ExportBlob: datatypes.JSON(blobBytes),
		}
		if err := versionRepoTx.Create(txCtx, &newVersion); err != nil {
			return ErrVersionCreationFailed
		}
		return nil
	})

	if txErr != nil {
		return txErr
	}
	configslog.SLog.Infof("Form sürümü geri yüklendi: Form %d, Sürüm %s", formID, versionUUID)
	return nil
}

// resolveExportedDefinition bloktaki tanımı veritabanındaki bir kayda
// bağlar. Aday slug'lar sırayla denenir: kayıt yoksa yeni uuid ile
// oluşturulur (bloktaki uuid asla yeniden kullanılmaz), varsa ve içerik
// yapısal olarak eşitse paylaşılır, değilse sıradaki aday denenir.
func resolveExportedDefinition(ctx context.Context, repo repositories.IFormDefinitionRepository, exported ExportedDefinition) (uint, error) {
	for attempt := 1; attempt <= slugConflictLimit; attempt++ {
		candidate := exported.Slug
		if attempt > 1 {
			candidate = fmt.Sprintf("%s-%d", exported.Slug, attempt)
		}

		existing, err := repo.FindBySlug(ctx, candidate)
		if errors.Is(err, repositories.ErrNotFound) {
			definition := models.FormDefinition{
				UUID:          uuid.New(),
				Slug:          candidate,
				Name:          exported.Name,
				InternalName:  exported.InternalName,
				Configuration: datatypes.JSON(exported.Configuration),
				IsReusable:    exported.IsReusable,
			}
			if err := repo.Create(ctx, &definition); err != nil {
				return 0, err
			}
			return definition.ID, nil
		}
		if err != nil {
			return 0, err
		}
		if jsonStructurallyEqual(json.RawMessage(existing.Configuration), json.RawMessage(exported.Configuration)) {
			return existing.ID, nil
		}
	}
	configslog.Log.Error("resolveExportedDefinition: aday limiti aşıldı", zap.String("slug", exported.Slug))
	return 0, ErrSlugConflictLimit
}

// jsonStructurallyEqual iki JSON dökümanını byte'larına değil çözülmüş
// yapılarına göre karşılaştırır (anahtar sırası ve boşluk farkları önemsiz).
func jsonStructurallyEqual(a, b json.RawMessage) bool {
	var decodedA, decodedB any
	if err := json.Unmarshal(a, &decodedA); err != nil {
		return false
	}
	if err := json.Unmarshal(b, &decodedB); err != nil {
		return false
	}
	return reflect.DeepEqual(decodedA, decodedB)
}

var _ IFormVersionService = (*FormVersionService)(nil)
