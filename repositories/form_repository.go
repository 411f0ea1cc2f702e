package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"formulier.link/configs"
	"formulier.link/configs/configslog"
	"formulier.link/models"
	"formulier.link/pkg/queryparams"
	"formulier.link/pkg/textsearch"
)

// IFormRepository form veritabanı işlemleri için arayüz.
type IFormRepository interface {
	Create(ctx context.Context, form *models.Form) error
	FindByID(ctx context.Context, id uint) (*models.Form, error)
	FindByUUID(ctx context.Context, formUUID uuid.UUID) (*models.Form, error)
	FindBySlug(ctx context.Context, slug string) (*models.Form, error)
	FindAllPaginated(ctx context.Context, params queryparams.ListParams) ([]models.Form, int64, error)
	Update(ctx context.Context, form *models.Form) error
	Delete(ctx context.Context, form *models.Form, deletedByUserID uint) error
	CountAll(ctx context.Context) (int64, error)
}

// FormRepository IFormRepository arayüzünü uygular.
type FormRepository struct {
	db   *gorm.DB
	base *BaseRepository[models.Form]
}

// NewFormRepository yeni bir FormRepository örneği oluşturur.
func NewFormRepository() IFormRepository {
	return NewFormRepositoryTx(configs.GetDB())
}

// NewFormRepositoryTx transaction üzerinde çalışan repository oluşturur.
func NewFormRepositoryTx(tx *gorm.DB) IFormRepository {
	base := NewBaseRepository[models.Form](tx)
	base.SetAllowedSortColumns([]string{"id", "created_at", "name", "slug", "is_enabled"})
	return &FormRepository{db: tx, base: base}
}

func (r *FormRepository) getDB(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

// preloadSteps adımları sıra numarasına göre tanımlarıyla birlikte yükler.
func preloadSteps(db *gorm.DB) *gorm.DB {
	return db.Preload("Steps", func(db *gorm.DB) *gorm.DB {
		return db.Order("form_steps.step_order ASC")
	}).Preload("Steps.FormDefinition")
}

// Create yeni bir form oluşturur.
func (r *FormRepository) Create(ctx context.Context, form *models.Form) error {
	if form == nil || form.Slug == "" {
		return errors.New("slug'sız form oluşturulamaz")
	}
	if form.UUID == uuid.Nil {
		form.UUID = uuid.New()
	}
	return r.getDB(ctx).Create(form).Error
}

// FindByID belirli bir ID'ye sahip formu adımlarıyla birlikte bulur.
func (r *FormRepository) FindByID(ctx context.Context, id uint) (*models.Form, error) {
	if id == 0 {
		return nil, errors.New("geçersiz Form ID")
	}
	var form models.Form
	err := preloadSteps(r.getDB(ctx)).First(&form, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("FormRepository.FindByID: DB error", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return &form, nil
}

// FindByUUID public UUID ile formu bulur.
func (r *FormRepository) FindByUUID(ctx context.Context, formUUID uuid.UUID) (*models.Form, error) {
	var form models.Form
	err := preloadSteps(r.getDB(ctx)).Where("uuid = ?", formUUID).First(&form).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("FormRepository.FindByUUID: DB error", zap.String("uuid", formUUID.String()), zap.Error(err))
		return nil, err
	}
	return &form, nil
}

// FindBySlug public slug ile formu bulur.
func (r *FormRepository) FindBySlug(ctx context.Context, slug string) (*models.Form, error) {
	if slug == "" {
		return nil, ErrNotFound
	}
	var form models.Form
	err := preloadSteps(r.getDB(ctx)).Where("slug = ?", slug).First(&form).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("FormRepository.FindBySlug: DB error", zap.String("slug", slug), zap.Error(err))
		return nil, err
	}
	return &form, nil
}

// FindAllPaginated formları sayfalayarak bulur (panel listesi).
func (r *FormRepository) FindAllPaginated(ctx context.Context, params queryparams.ListParams) ([]models.Form, int64, error) {
	var forms []models.Form
	var totalCount int64
	db := r.getDB(ctx)

	query := db.Model(&models.Form{})
	if params.Name != "" {
		sqlFragment, args := textsearch.SQLFilter("forms.name", params.Name)
		query = query.Where(sqlFragment, args...)
	}
	if params.Status != "" {
		query = query.Where("forms.is_enabled = ?", params.Status == "true")
	}

	if err := query.Count(&totalCount).Error; err != nil {
		configslog.Log.Error("FormRepository.Count: DB error", zap.Error(err))
		return nil, 0, err
	}
	if totalCount == 0 {
		return forms, 0, nil
	}

	orderColumn := "created_at"
	if r.base.AllowedSortColumn(params.SortBy) {
		orderColumn = params.SortBy
	}
	query = query.Order("forms." + orderColumn + " " + params.OrderBy).
		Limit(params.PerPage).Offset(params.CalculateOffset())

	if err := query.Find(&forms).Error; err != nil {
		configslog.Log.Error("FormRepository.Find: DB error", zap.Error(err))
		return nil, totalCount, err
	}
	return forms, totalCount, nil
}

// Update formun tamamını kaydeder.
func (r *FormRepository) Update(ctx context.Context, form *models.Form) error {
	if form == nil || form.ID == 0 {
		return errors.New("güncellenecek form geçerli değil")
	}
	return r.getDB(ctx).Omit("Steps").Save(form).Error
}

// Delete formu soft delete eder. Submission'lar forma referans vermeye
// devam edebilsin diye hard delete yoktur.
func (r *FormRepository) Delete(ctx context.Context, form *models.Form, deletedByUserID uint) error {
	if form == nil || form.ID == 0 {
		return errors.New("silinecek form geçerli değil")
	}
	now := time.Now().UTC()
	result := r.getDB(ctx).Model(form).
		Where("id = ? AND deleted_at IS NULL", form.ID).
		Updates(map[string]any{"deleted_at": now, "deleted_by": &deletedByUserID})
	if result.Error != nil {
		configslog.Log.Error("FormRepository.Delete: DB error", zap.Uint("id", form.ID), zap.Error(result.Error))
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountAll tüm formların sayısını döndürür.
func (r *FormRepository) CountAll(ctx context.Context) (int64, error) {
	return r.base.Count(ctx)
}

var _ IFormRepository = (*FormRepository)(nil)
