package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"formulier.link/configs"
	"formulier.link/configs/configslog"
	"formulier.link/models"
	"formulier.link/pkg/queryparams"
	"formulier.link/repositories"
)

// FormServiceError özel servis hataları
type FormServiceError string

func (e FormServiceError) Error() string { return string(e) }

const (
	ErrFormNotFound              FormServiceError = "form bulunamadı"
	ErrFormCreationFailed        FormServiceError = "form oluşturulamadı"
	ErrFormUpdateFailed          FormServiceError = "form güncellenemedi"
	ErrFormDeletionFailed        FormServiceError = "form silinemedi"
	ErrFormInvalidInput          FormServiceError = "geçersiz girdi verisi"
	ErrFormNameRequired          FormServiceError = "form adı zorunludur"
	ErrFormSlugRequired          FormServiceError = "form slug'ı zorunludur"
	ErrFormMaintenance           FormServiceError = "form bakımda"
	ErrFormDisabled              FormServiceError = "form aktif değil"
	ErrFormPasswordHashingFailed FormServiceError = "form şifresi oluşturulamadı"
)

// IFormService form işlemleri için arayüz.
type IFormService interface {
	CreateForm(ctx context.Context, creatorUserID uint, form *models.Form) (*models.Form, error)
	GetFormByID(ctx context.Context, id uint) (*models.Form, error)
	GetFormBySlug(ctx context.Context, slug string) (*models.Form, error)
	GetPublicFormBySlug(ctx context.Context, slug string) (*models.Form, error)
	GetAllFormsPaginated(ctx context.Context, params queryparams.ListParams) (*queryparams.PaginatedResult, error)
	UpdateForm(ctx context.Context, updatingUserID uint, form *models.Form) error
	DeleteForm(ctx context.Context, id uint, deletingUserID uint) error
	GetFormCount(ctx context.Context) (int64, error)
}

// FormService IFormService arayüzünü uygular.
type FormService struct {
	repo repositories.IFormRepository
	db   *gorm.DB // Transaction için
}

// NewFormService yeni bir FormService örneği oluşturur.
func NewFormService() IFormService {
	return &FormService{
		repo: repositories.NewFormRepository(),
		db:   configs.GetDB(),
	}
}

// NewFormServiceWithDB testlerin kendi bağlantısıyla kurduğu servis.
func NewFormServiceWithDB(db *gorm.DB) IFormService {
	return &FormService{
		repo: repositories.NewFormRepositoryTx(db),
		db:   db,
	}
}

// ValidateForm temel validasyonları yapar.
func ValidateForm(form *models.Form) error {
	if form == nil {
		return ErrFormInvalidInput
	}
	if form.Name == "" {
		return ErrFormNameRequired
	}
	if form.Slug == "" {
		return ErrFormSlugRequired
	}
	return nil
}

// CreateForm yeni bir form ve adımlarını tek transaction'da oluşturur.
func (s *FormService) CreateForm(ctx context.Context, creatorUserID uint, form *models.Form) (*models.Form, error) {
	if err := ValidateForm(form); err != nil {
		return nil, err
	}
	if creatorUserID == 0 {
		return nil, fmt.Errorf("%w: geçersiz oluşturan kullanıcı ID", ErrFormInvalidInput)
	}

	// Şifre (varsa) düz metin gelir, hash'lenerek saklanır.
	if form.PasswordHash != "" {
		hashedPasswordBytes, hashErr := bcrypt.GenerateFromPassword([]byte(form.PasswordHash), bcrypt.DefaultCost)
		if hashErr != nil {
			return nil, ErrFormPasswordHashingFailed
		}
		form.PasswordHash = string(hashedPasswordBytes)
	}

	form.CreatorUserID = creatorUserID
	if form.UUID == uuid.Nil {
		form.UUID = uuid.New()
	}
	for i := range form.Steps {
		if form.Steps[i].UUID == uuid.Nil {
			form.Steps[i].UUID = uuid.New()
		}
		form.Steps[i].Order = i
	}

	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		txCtx := models.ContextWithUserID(ctx, creatorUserID)
		formRepoTx := repositories.NewFormRepositoryTx(tx)
		if err := formRepoTx.Create(txCtx, form); err != nil {
			configslog.Log.Error("CreateForm: form oluşturulamadı", zap.Error(err))
			return ErrFormCreationFailed
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	configslog.SLog.Infof("Form başarıyla oluşturuldu: ID %d, Slug: %s", form.ID, form.Slug)
	return form, nil
}

// GetFormByID belirli bir formu adımlarıyla birlikte getirir.
func (s *FormService) GetFormByID(ctx context.Context, id uint) (*models.Form, error) {
	form, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrFormNotFound
		}
		return nil, err
	}
	return form, nil
}

// GetFormBySlug slug ile formu getirir (panel; aktiflik kontrolü yok).
func (s *FormService) GetFormBySlug(ctx context.Context, slug string) (*models.Form, error) {
	form, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrFormNotFound
		}
		return nil, err
	}
	return form, nil
}

// GetPublicFormBySlug public taraf için formu getirir; pasif form
// bulunamadı gibi davranır, bakımdaki form ayrı hata döndürür.
func (s *FormService) GetPublicFormBySlug(ctx context.Context, slug string) (*models.Form, error) {
	form, err := s.GetFormBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !form.IsEnabled {
		return nil, ErrFormDisabled
	}
	if form.Maintenance {
		return nil, ErrFormMaintenance
	}
	return form, nil
}

// GetAllFormsPaginated tüm formları sayfalayarak getirir (panel listesi).
func (s *FormService) GetAllFormsPaginated(ctx context.Context, params queryparams.ListParams) (*queryparams.PaginatedResult, error) {
	params.Validate() // Sayfalama limitleri

	forms, totalCount, err := s.repo.FindAllPaginated(ctx, params)
	if err != nil {
		return nil, err
	} // Repo loglar

	totalPages := queryparams.CalculateTotalPages(totalCount, params.PerPage)
	result := &queryparams.PaginatedResult{
		Data: forms,
		Meta: queryparams.PaginationMeta{
			CurrentPage: params.Page, PerPage: params.PerPage,
			TotalItems: totalCount, TotalPages: totalPages,
		},
	}
	return result, nil
}

// UpdateForm formun skaler alanlarını günceller (adımlar restore/ayrı
// akışlarla yönetilir).
func (s *FormService) UpdateForm(ctx context.Context, updatingUserID uint, form *models.Form) error {
	if err := ValidateForm(form); err != nil {
		return err
	}
	if form.ID == 0 {
		return fmt.Errorf("%w: geçersiz Form ID", ErrFormInvalidInput)
	}

	txCtx := models.ContextWithUserID(ctx, updatingUserID)
	if err := s.repo.Update(txCtx, form); err != nil {
		configslog.Log.Error("UpdateForm: form güncellenemedi", zap.Error(err))
		return ErrFormUpdateFailed
	}
	configslog.SLog.Infof("Form güncellendi: ID %d", form.ID)
	return nil
}

// DeleteForm formu soft delete eder.
func (s *FormService) DeleteForm(ctx context.Context, id uint, deletingUserID uint) error {
	form, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrFormNotFound
		}
		return err
	}

	txCtx := models.ContextWithUserID(ctx, deletingUserID)
	if err := s.repo.Delete(txCtx, form, deletingUserID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrFormNotFound
		}
		return ErrFormDeletionFailed
	}
	configslog.SLog.Infof("Form silindi: ID %d, Slug: %s", form.ID, form.Slug)
	return nil
}

// GetFormCount tüm formların sayısını döndürür.
func (s *FormService) GetFormCount(ctx context.Context) (int64, error) {
	return s.repo.CountAll(ctx)
}

var _ IFormService = (*FormService)(nil)
