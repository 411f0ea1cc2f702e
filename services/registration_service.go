package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"formulier.link/configs"
	"formulier.link/configs/configslog"
	"formulier.link/models"
	"formulier.link/plugins/registration"
	"formulier.link/plugins/registry"
	"formulier.link/repositories"
)

// RegistrationServiceError özel servis hataları
type RegistrationServiceError string

func (e RegistrationServiceError) Error() string { return string(e) }

const (
	ErrRegistrationNotCompleted  RegistrationServiceError = "tamamlanmamış gönderim kaydedilemez"
	ErrRegistrationUnknownPlugin RegistrationServiceError = "kayıt backend'i tanınmıyor"
	ErrRegistrationFailed        RegistrationServiceError = "kayıt backend'i hata döndürdü"
	ErrReferenceGeneration       RegistrationServiceError = "kayıt referansı üretilemedi"
)

// referenceMaxAttempts dahili referans üretiminde çakışma denemesi üst sınırı.
const referenceMaxAttempts = 10

// IRegistrationService tamamlanan gönderimlerin kayıt backend'lerine
// iletilmesi için arayüz.
type IRegistrationService interface {
	RegisterSubmission(ctx context.Context, submissionID uint) error
	UpdatePaymentStatus(ctx context.Context, submissionID uint) error
}

// RegistrationService IRegistrationService arayüzünü uygular.
type RegistrationService struct {
	subRepo  repositories.ISubmissionRepository
	payRepo  repositories.ISubmissionPaymentRepository
	registry *registry.Registry[registration.Plugin]
	db       *gorm.DB
}

// NewRegistrationService yeni bir RegistrationService örneği oluşturur.
func NewRegistrationService(reg *registry.Registry[registration.Plugin]) IRegistrationService {
	return NewRegistrationServiceWithDB(configs.GetDB(), reg)
}

// NewRegistrationServiceWithDB testlerin kendi bağlantısıyla kurduğu servis.
func NewRegistrationServiceWithDB(db *gorm.DB, reg *registry.Registry[registration.Plugin]) IRegistrationService {
	return &RegistrationService{
		subRepo:  repositories.NewSubmissionRepositoryTx(db),
		payRepo:  repositories.NewSubmissionPaymentRepositoryTx(db),
		registry: reg,
		db:       db,
	}
}

// RegisterSubmission tamamlanmış bir gönderimi formunun kayıt backend'ine
// iletir. Durum makinesi: pending -> in_progress -> success | failed.
// Başarıyla kaydedilmiş bir gönderim için çağrı sessizce atlanır; böylece
// tekrar tetiklenen işler çift kayıt üretmez.
func (s *RegistrationService) RegisterSubmission(ctx context.Context, submissionID uint) error {
	submission, err := s.subRepo.FindByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrSubmissionNotFound
		}
		return err
	}

	if submission.RegistrationStatus == models.RegistrationStatusSuccess {
		configslog.SLog.Infof("Kayıt atlandı, gönderim %d zaten kaydedilmiş.", submission.ID)
		return nil
	}
	if !submission.IsCompleted() {
		return ErrRegistrationNotCompleted
	}

	now := time.Now().UTC()
	submission.RegistrationStatus = models.RegistrationStatusInProgress
	submission.LastRegisterDate = &now
	if err := s.subRepo.UpdateRegistrationFields(ctx, submission,
		[]string{"registration_status", "last_register_date"}); err != nil {
		return err
	}

	backend := submission.Form.RegistrationBackend

	// Backend yoksa iletilecek bir yer de yoktur; gönderim yine de bir
	// public referans alır ve başarılı sayılır.
	if backend == "" {
		reference, err := s.generateReference(ctx)
		if err != nil {
			return s.markFailed(ctx, submission, err)
		}
		return s.markSuccess(ctx, submission, reference)
	}

	plugin, err := s.registry.Get(backend)
	if err != nil {
		configslog.Log.Error("RegisterSubmission: backend tanınmıyor",
			zap.Uint("submission_id", submission.ID), zap.String("backend", backend))
		return s.markFailed(ctx, submission, ErrRegistrationUnknownPlugin)
	}

	result, err := plugin.RegisterSubmission(ctx, submission, submission.Form.RegistrationBackendOptions)
	if err != nil {
		configslog.Log.Error("RegisterSubmission: backend hata döndürdü",
			zap.Uint("submission_id", submission.ID), zap.String("backend", backend), zap.Error(err))
		return s.markFailed(ctx, submission, fmt.Errorf("%w: %v", ErrRegistrationFailed, err))
	}

	reference, err := plugin.ReferenceFromResult(result)
	if err != nil {
		if !errors.Is(err, registration.ErrNoSubmissionReference) {
			return s.markFailed(ctx, submission, fmt.Errorf("%w: %v", ErrRegistrationFailed, err))
		}
		// Beklenen durum: backend referans üretmiyor, dahili üretime düşülür.
		reference, err = s.generateReference(ctx)
		if err != nil {
			return s.markFailed(ctx, submission, err)
		}
	}

	return s.markSuccess(ctx, submission, reference)
}

// UpdatePaymentStatus tamamlanmış ödemeleri kayıt backend'ine bildirir.
// Ödemeler bildirildi olarak işaretlenir; aynı webhook'un tekrar teslimi
// ikinci bir bildirim üretmez.
func (s *RegistrationService) UpdatePaymentStatus(ctx context.Context, submissionID uint) error {
	submission, err := s.subRepo.FindByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrSubmissionNotFound
		}
		return err
	}

	pending, err := s.payRepo.HasUnnotifiedCompleted(ctx, submission.ID)
	if err != nil {
		return err
	}
	if !pending {
		configslog.SLog.Infof("Ödeme bildirimi atlandı, gönderim %d için bildirilecek ödeme yok.", submission.ID)
		return nil
	}

	backend := submission.Form.RegistrationBackend
	if backend == "" {
		return s.payRepo.MarkRegistrationNotified(ctx, submission.ID)
	}

	plugin, err := s.registry.Get(backend)
	if err != nil {
		return ErrRegistrationUnknownPlugin
	}
	if err := plugin.UpdatePaymentStatus(ctx, submission, submission.Form.RegistrationBackendOptions); err != nil {
		configslog.Log.Error("UpdatePaymentStatus: backend hata döndürdü",
			zap.Uint("submission_id", submission.ID), zap.String("backend", backend), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrRegistrationFailed, err)
	}

	return s.payRepo.MarkRegistrationNotified(ctx, submission.ID)
}

func (s *RegistrationService) markSuccess(ctx context.Context, submission *models.Submission, reference string) error {
	submission.RegistrationStatus = models.RegistrationStatusSuccess
	submission.PublicRegistrationReference = reference
	if err := s.subRepo.UpdateRegistrationFields(ctx, submission,
		[]string{"registration_status", "public_registration_reference"}); err != nil {
		return err
	}
	configslog.SLog.Infof("Gönderim kaydedildi: ID %d, referans %s", submission.ID, reference)
	return nil
}

func (s *RegistrationService) markFailed(ctx context.Context, submission *models.Submission, cause error) error {
	submission.RegistrationStatus = models.RegistrationStatusFailed
	if err := s.subRepo.UpdateRegistrationFields(ctx, submission, []string{"registration_status"}); err != nil {
		configslog.Log.Error("markFailed: durum yazılamadı", zap.Uint("submission_id", submission.ID), zap.Error(err))
	}
	return cause
}

// generateReference "OF-" + 6 rastgele rakamdan oluşan public referans
// üretir; mevcut bir gönderimle çakışırsa yeniden dener.
func (s *RegistrationService) generateReference(ctx context.Context) (string, error) {
	for attempt := 0; attempt < referenceMaxAttempts; attempt++ {
		n, err := rand.Int(rand.Reader, big.NewInt(1000000))
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrReferenceGeneration, err)
		}
		reference := fmt.Sprintf("OF-%06d", n.Int64())

		exists, err := s.subRepo.ReferenceExists(ctx, reference)
		if err != nil {
			return "", err
		}
		if !exists {
			return reference, nil
		}
	}
	return "", ErrReferenceGeneration
}

var _ IRegistrationService = (*RegistrationService)(nil)
