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

// ISubmissionPaymentRepository ödeme kaydı veritabanı işlemleri için arayüz.
type ISubmissionPaymentRepository interface {
	Create(ctx context.Context, payment *models.SubmissionPayment) error
	FindByUUID(ctx context.Context, paymentUUID uuid.UUID) (*models.SubmissionPayment, error)
	MarkCompleted(ctx context.Context, payment *models.SubmissionPayment, publicOrderID string) error
	MarkRegistrationNotified(ctx context.Context, submissionID uint) error
	HasUnnotifiedCompleted(ctx context.Context, submissionID uint) (bool, error)
}

// SubmissionPaymentRepository ISubmissionPaymentRepository arayüzünü uygular.
type SubmissionPaymentRepository struct {
	db *gorm.DB
}

// NewSubmissionPaymentRepository yeni bir SubmissionPaymentRepository örneği oluşturur.
func NewSubmissionPaymentRepository() ISubmissionPaymentRepository {
	return NewSubmissionPaymentRepositoryTx(configs.GetDB())
}

// NewSubmissionPaymentRepositoryTx transaction üzerinde çalışan repository oluşturur.
func NewSubmissionPaymentRepositoryTx(tx *gorm.DB) ISubmissionPaymentRepository {
	return &SubmissionPaymentRepository{db: tx}
}

func (r *SubmissionPaymentRepository) getDB(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

// Create yeni bir ödeme kaydı ekler.
func (r *SubmissionPaymentRepository) Create(ctx context.Context, payment *models.SubmissionPayment) error {
	if payment == nil || payment.SubmissionID == 0 {
		return errors.New("gönderimsiz ödeme oluşturulamaz")
	}
	if payment.UUID == uuid.Nil {
		payment.UUID = uuid.New()
	}
	if payment.Status == "" {
		payment.Status = models.PaymentStatusStarted
	}
	return r.getDB(ctx).Create(payment).Error
}

// FindByUUID ödemeyi public UUID ile, gönderimiyle birlikte bulur.
func (r *SubmissionPaymentRepository) FindByUUID(ctx context.Context, paymentUUID uuid.UUID) (*models.SubmissionPayment, error) {
	var payment models.SubmissionPayment
	err := r.getDB(ctx).Preload("Submission").Where("uuid = ?", paymentUUID).First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("SubmissionPaymentRepository.FindByUUID: DB error",
			zap.String("uuid", paymentUUID.String()), zap.Error(err))
		return nil, err
	}
	return &payment, nil
}

// MarkCompleted ödemeyi tamamlandı olarak işaretleyip sağlayıcı sipariş
// numarasını yazar. Yalnızca iki sütun güncellenir.
func (r *SubmissionPaymentRepository) MarkCompleted(ctx context.Context, payment *models.SubmissionPayment, publicOrderID string) error {
	if payment == nil || payment.ID == 0 {
		return errors.New("güncellenecek ödeme geçerli değil")
	}
	payment.Status = models.PaymentStatusCompleted
	payment.PublicOrderID = publicOrderID
	return r.getDB(ctx).Model(payment).Select("status", "public_order_id").Updates(payment).Error
}

// MarkRegistrationNotified gönderimin tamamlanmış ödemelerini kayıt
// backend'ine bildirildi olarak işaretler. Tekrarlanan bildirimleri bu
// bayrak engeller.
func (r *SubmissionPaymentRepository) MarkRegistrationNotified(ctx context.Context, submissionID uint) error {
	return r.getDB(ctx).Model(&models.SubmissionPayment{}).
		Where("submission_id = ? AND status = ?", submissionID, models.PaymentStatusCompleted).
		Update("registration_notified", true).Error
}

// HasUnnotifiedCompleted bildirilmemiş tamamlanmış ödeme olup olmadığını söyler.
func (r *SubmissionPaymentRepository) HasUnnotifiedCompleted(ctx context.Context, submissionID uint) (bool, error) {
	var count int64
	err := r.getDB(ctx).Model(&models.SubmissionPayment{}).
		Where("submission_id = ? AND status = ? AND registration_notified = ?",
			submissionID, models.PaymentStatusCompleted, false).
		Count(&count).Error
	if err != nil {
		configslog.Log.Error("SubmissionPaymentRepository.HasUnnotifiedCompleted: DB error",
			zap.Uint("submission_id", submissionID), zap.Error(err))
		return false, err
	}
	return count > 0, nil
}

var _ ISubmissionPaymentRepository = (*SubmissionPaymentRepository)(nil)
