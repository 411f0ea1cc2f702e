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
)

// IFormVersionRepository form sürümü veritabanı işlemleri için arayüz.
type IFormVersionRepository interface {
	Create(ctx context.Context, version *models.FormVersion) error
	FindByUUIDForForm(ctx context.Context, formID uint, versionUUID uuid.UUID) (*models.FormVersion, error)
	ListForForm(ctx context.Context, formID uint) ([]models.FormVersion, error)
	CountForForm(ctx context.Context, formID uint) (int64, error)
	CountCreatedBefore(ctx context.Context, formID uint, moment time.Time) (int64, error)
}

// FormVersionRepository IFormVersionRepository arayüzünü uygular.
type FormVersionRepository struct {
	db   *gorm.DB
	base *BaseRepository[models.FormVersion]
}

// NewFormVersionRepository yeni bir FormVersionRepository örneği oluşturur.
func NewFormVersionRepository() IFormVersionRepository {
	return NewFormVersionRepositoryTx(configs.GetDB())
}

// NewFormVersionRepositoryTx transaction üzerinde çalışan repository oluşturur.
func NewFormVersionRepositoryTx(tx *gorm.DB) IFormVersionRepository {
	base := NewBaseRepository[models.FormVersion](tx)
	base.SetAllowedSortColumns([]string{"id", "created_at"})
	return &FormVersionRepository{db: tx, base: base}
}

func (r *FormVersionRepository) getDB(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

// Create yeni bir sürüm kaydı ekler.
func (r *FormVersionRepository) Create(ctx context.Context, version *models.FormVersion) error {
	if version == nil || version.FormID == 0 {
		return errors.New("form'suz sürüm oluşturulamaz")
	}
	if version.UUID == uuid.Nil {
		version.UUID = uuid.New()
	}
	return r.getDB(ctx).Create(version).Error
}

// FindByUUIDForForm sürümü UUID ile bulur; sürümün verilen forma ait
// olduğunu da doğrular.
func (r *FormVersionRepository) FindByUUIDForForm(ctx context.Context, formID uint, versionUUID uuid.UUID) (*models.FormVersion, error) {
	var version models.FormVersion
	err := r.getDB(ctx).
		Where("form_id = ? AND uuid = ?", formID, versionUUID).
		First(&version).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("FormVersionRepository.FindByUUIDForForm: DB error",
			zap.Uint("form_id", formID), zap.String("uuid", versionUUID.String()), zap.Error(err))
		return nil, err
	}
	return &version, nil
}

// ListForForm formun sürümlerini en yeniden eskiye sıralı listeler.
func (r *FormVersionRepository) ListForForm(ctx context.Context, formID uint) ([]models.FormVersion, error) {
	var versions []models.FormVersion
	err := r.getDB(ctx).
		Where("form_id = ?", formID).
		Order("created_at DESC, id DESC").
		Find(&versions).Error
	if err != nil {
		configslog.Log.Error("FormVersionRepository.ListForForm: DB error", zap.Uint("form_id", formID), zap.Error(err))
		return nil, err
	}
	return versions, nil
}

// CountForForm formun toplam sürüm sayısını döndürür.
func (r *FormVersionRepository) CountForForm(ctx context.Context, formID uint) (int64, error) {
	var count int64
	err := r.getDB(ctx).Model(&models.FormVersion{}).
		Where("form_id = ?", formID).
		Count(&count).Error
	return count, err
}

// CountCreatedBefore verilen andan kesin olarak önce oluşturulmuş sürüm
// sayısını döndürür. Geri yükleme açıklamasındaki sıra numarası buradan gelir.
func (r *FormVersionRepository) CountCreatedBefore(ctx context.Context, formID uint, moment time.Time) (int64, error) {
	var count int64
	err := r.getDB(ctx).Model(&models.FormVersion{}).
		Where("form_id = ? AND created_at < ?", formID, moment).
		Count(&count).Error
	return count, err
}

var _ IFormVersionRepository = (*FormVersionRepository)(nil)
