package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"formulier.link/configs"
	"formulier.link/configs/configslog"
	"formulier.link/models"
)

// IFormDefinitionRepository form tanımı veritabanı işlemleri için arayüz.
type IFormDefinitionRepository interface {
	Create(ctx context.Context, definition *models.FormDefinition) error
	FindByID(ctx context.Context, id uint) (*models.FormDefinition, error)
	FindBySlug(ctx context.Context, slug string) (*models.FormDefinition, error)
	FindReusable(ctx context.Context) ([]models.FormDefinition, error)
	Update(ctx context.Context, definition *models.FormDefinition) error
	CountAll(ctx context.Context) (int64, error)
}

// FormDefinitionRepository IFormDefinitionRepository arayüzünü uygular.
type FormDefinitionRepository struct {
	db   *gorm.DB
	base *BaseRepository[models.FormDefinition]
}

// NewFormDefinitionRepository yeni bir FormDefinitionRepository örneği oluşturur.
func NewFormDefinitionRepository() IFormDefinitionRepository {
	return NewFormDefinitionRepositoryTx(configs.GetDB())
}

// NewFormDefinitionRepositoryTx transaction üzerinde çalışan repository oluşturur.
func NewFormDefinitionRepositoryTx(tx *gorm.DB) IFormDefinitionRepository {
	base := NewBaseRepository[models.FormDefinition](tx)
	base.SetAllowedSortColumns([]string{"id", "created_at", "name", "slug"})
	return &FormDefinitionRepository{db: tx, base: base}
}

func (r *FormDefinitionRepository) getDB(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

// Create yeni bir form tanımı oluşturur.
func (r *FormDefinitionRepository) Create(ctx context.Context, definition *models.FormDefinition) error {
	if definition == nil || definition.Slug == "" {
		return errors.New("slug'sız form tanımı oluşturulamaz")
	}
	if definition.UUID == uuid.Nil {
		definition.UUID = uuid.New()
	}
	return r.getDB(ctx).Create(definition).Error
}

// FindByID belirli bir ID'ye sahip form tanımını bulur.
func (r *FormDefinitionRepository) FindByID(ctx context.Context, id uint) (*models.FormDefinition, error) {
	if id == 0 {
		return nil, errors.New("geçersiz FormDefinition ID")
	}
	return r.base.FindByID(ctx, id)
}

// FindBySlug slug ile form tanımını bulur. Sürüm geri yükleme bu metodu
// aday slug'ları tararken kullanır.
func (r *FormDefinitionRepository) FindBySlug(ctx context.Context, slug string) (*models.FormDefinition, error) {
	if slug == "" {
		return nil, ErrNotFound
	}
	var definition models.FormDefinition
	err := r.getDB(ctx).Where("slug = ?", slug).First(&definition).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("FormDefinitionRepository.FindBySlug: DB error", zap.String("slug", slug), zap.Error(err))
		return nil, err
	}
	return &definition, nil
}

// FindReusable birden fazla formda kullanılabilir işaretli tanımları listeler.
func (r *FormDefinitionRepository) FindReusable(ctx context.Context) ([]models.FormDefinition, error) {
	var definitions []models.FormDefinition
	err := r.getDB(ctx).Where("is_reusable = ?", true).Order("name ASC").Find(&definitions).Error
	if err != nil {
		configslog.Log.Error("FormDefinitionRepository.FindReusable: DB error", zap.Error(err))
		return nil, err
	}
	return definitions, nil
}

// Update form tanımının tamamını kaydeder.
func (r *FormDefinitionRepository) Update(ctx context.Context, definition *models.FormDefinition) error {
	if definition == nil || definition.ID == 0 {
		return errors.New("güncellenecek form tanımı geçerli değil")
	}
	return r.getDB(ctx).Save(definition).Error
}

// CountAll tüm form tanımlarının sayısını döndürür.
func (r *FormDefinitionRepository) CountAll(ctx context.Context) (int64, error) {
	return r.base.Count(ctx)
}

var _ IFormDefinitionRepository = (*FormDefinitionRepository)(nil)
