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

// ISubmissionRepository gönderim veritabanı işlemleri için arayüz.
type ISubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	FindByID(ctx context.Context, id uint) (*models.Submission, error)
	FindByUUID(ctx context.Context, submissionUUID uuid.UUID) (*models.Submission, error)
	UpdateAuthFields(ctx context.Context, submission *models.Submission, columns []string) error
	MarkCompleted(ctx context.Context, submission *models.Submission, completedAt time.Time) error
	UpdateRegistrationFields(ctx context.Context, submission *models.Submission, columns []string) error
	SaveData(ctx context.Context, submission *models.Submission) error
	ReferenceExists(ctx context.Context, reference string) (bool, error)
	CountAll(ctx context.Context) (int64, error)
}

// SubmissionRepository ISubmissionRepository arayüzünü uygular.
type SubmissionRepository struct {
	db   *gorm.DB
	base *BaseRepository[models.Submission]
}

// NewSubmissionRepository yeni bir SubmissionRepository örneği oluşturur.
func NewSubmissionRepository() ISubmissionRepository {
	return NewSubmissionRepositoryTx(configs.GetDB())
}

// NewSubmissionRepositoryTx transaction üzerinde çalışan repository oluşturur.
func NewSubmissionRepositoryTx(tx *gorm.DB) ISubmissionRepository {
	base := NewBaseRepository[models.Submission](tx)
	base.SetAllowedSortColumns([]string{"id", "created_at", "completed_at", "registration_status"})
	return &SubmissionRepository{db: tx, base: base}
}

func (r *SubmissionRepository) getDB(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

// preloadSubmission gönderimi formu, adımları, ödemeleri ve raporuyla yükler.
func preloadSubmission(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Form").
		Preload("Form.Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("form_steps.step_order ASC")
		}).
		Preload("Form.Steps.FormDefinition").
		Preload("Payments").
		Preload("Report")
}

// Create yeni bir gönderim oluşturur.
func (r *SubmissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	if submission == nil || submission.FormID == 0 {
		return errors.New("form'suz gönderim oluşturulamaz")
	}
	if submission.UUID == uuid.Nil {
		submission.UUID = uuid.New()
	}
	return r.getDB(ctx).Create(submission).Error
}

// FindByID gönderimi ilişkileriyle birlikte bulur.
func (r *SubmissionRepository) FindByID(ctx context.Context, id uint) (*models.Submission, error) {
	if id == 0 {
		return nil, errors.New("geçersiz Submission ID")
	}
	var submission models.Submission
	err := preloadSubmission(r.getDB(ctx)).First(&submission, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("SubmissionRepository.FindByID: DB error", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return &submission, nil
}

// FindByUUID public UUID ile gönderimi bulur.
func (r *SubmissionRepository) FindByUUID(ctx context.Context, submissionUUID uuid.UUID) (*models.Submission, error) {
	var submission models.Submission
	err := preloadSubmission(r.getDB(ctx)).Where("uuid = ?", submissionUUID).First(&submission).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("SubmissionRepository.FindByUUID: DB error",
			zap.String("uuid", submissionUUID.String()), zap.Error(err))
		return nil, err
	}
	return &submission, nil
}

// UpdateAuthFields yalnızca verilen kimlik sütunlarını yazar. Kısmi yazım
// diğer alanlardaki eşzamanlı değişiklikleri ezmemek için şarttır.
func (r *SubmissionRepository) UpdateAuthFields(ctx context.Context, submission *models.Submission, columns []string) error {
	if submission == nil || submission.ID == 0 {
		return errors.New("güncellenecek gönderim geçerli değil")
	}
	if len(columns) == 0 {
		return errors.New("güncellenecek sütun verilmedi")
	}
	return r.getDB(ctx).Model(submission).Select(columns).Updates(submission).Error
}

// MarkCompleted gönderimi tamamlandı olarak işaretler.
func (r *SubmissionRepository) MarkCompleted(ctx context.Context, submission *models.Submission, completedAt time.Time) error {
	if submission == nil || submission.ID == 0 {
		return errors.New("güncellenecek gönderim geçerli değil")
	}
	submission.CompletedAt = &completedAt
	return r.getDB(ctx).Model(submission).Select("completed_at").Updates(submission).Error
}

// UpdateRegistrationFields yalnızca verilen kayıt (registration) sütunlarını yazar.
func (r *SubmissionRepository) UpdateRegistrationFields(ctx context.Context, submission *models.Submission, columns []string) error {
	if submission == nil || submission.ID == 0 {
		return errors.New("güncellenecek gönderim geçerli değil")
	}
	if len(columns) == 0 {
		return errors.New("güncellenecek sütun verilmedi")
	}
	return r.getDB(ctx).Model(submission).Select(columns).Updates(submission).Error
}

// SaveData gönderim verisini kaydeder.
func (r *SubmissionRepository) SaveData(ctx context.Context, submission *models.Submission) error {
	if submission == nil || submission.ID == 0 {
		return errors.New("güncellenecek gönderim geçerli değil")
	}
	return r.getDB(ctx).Model(submission).Select("data").Updates(submission).Error
}

// ReferenceExists public kayıt referansının başka bir gönderimde kullanılıp
// kullanılmadığını söyler (dahili referans üretiminde çakışma kontrolü).
func (r *SubmissionRepository) ReferenceExists(ctx context.Context, reference string) (bool, error) {
	if reference == "" {
		return false, nil
	}
	var count int64
	err := r.getDB(ctx).Model(&models.Submission{}).
		Where("public_registration_reference = ?", reference).
		Count(&count).Error
	if err != nil {
		configslog.Log.Error("SubmissionRepository.ReferenceExists: DB error", zap.Error(err))
		return false, err
	}
	return count > 0, nil
}

// CountAll tüm gönderimlerin sayısını döndürür.
func (r *SubmissionRepository) CountAll(ctx context.Context) (int64, error) {
	return r.base.Count(ctx)
}

var _ ISubmissionRepository = (*SubmissionRepository)(nil)
