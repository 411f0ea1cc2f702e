package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"formulier.link/configs"
	"formulier.link/configs/configslog"
	"formulier.link/models"
	"formulier.link/pkg/workerpool"
	"formulier.link/plugins/auth"
	"formulier.link/repositories"
)

// SubmissionServiceError özel servis hataları
type SubmissionServiceError string

func (e SubmissionServiceError) Error() string { return string(e) }

const (
	ErrSubmissionNotFound         SubmissionServiceError = "gönderim bulunamadı"
	ErrSubmissionCreationFailed   SubmissionServiceError = "gönderim oluşturulamadı"
	ErrSubmissionAlreadyCompleted SubmissionServiceError = "gönderim zaten tamamlanmış"
	ErrSubmissionInvalidInput     SubmissionServiceError = "geçersiz girdi verisi"
)

// ISubmissionService gönderim yaşam döngüsü için arayüz.
type ISubmissionService interface {
	StartSubmission(ctx context.Context, form *models.Form, formURL string, formAuth *auth.FormAuth) (*models.Submission, error)
	GetSubmissionByUUID(ctx context.Context, submissionUUID uuid.UUID) (*models.Submission, error)
	ApplyFormAuth(ctx context.Context, submission *models.Submission, formAuth auth.FormAuth) error
	ApplyCoSignData(ctx context.Context, submission *models.Submission, coSign *auth.CoSignData) error
	MergeStepData(ctx context.Context, submission *models.Submission, stepData map[string]any) error
	CompleteSubmission(ctx context.Context, submission *models.Submission) error
}

// SubmissionService ISubmissionService arayüzünü uygular.
type SubmissionService struct {
	repo         repositories.ISubmissionRepository
	registration IRegistrationService
	pool         *workerpool.WorkerPool
	db           *gorm.DB
}

// NewSubmissionService yeni bir SubmissionService örneği oluşturur.
// pool nil olabilir; o durumda kayıt (registration) senkron çalışır.
func NewSubmissionService(registration IRegistrationService, pool *workerpool.WorkerPool) ISubmissionService {
	return NewSubmissionServiceWithDB(configs.GetDB(), registration, pool)
}

// NewSubmissionServiceWithDB testlerin kendi bağlantısıyla kurduğu servis.
func NewSubmissionServiceWithDB(db *gorm.DB, registration IRegistrationService, pool *workerpool.WorkerPool) ISubmissionService {
	return &SubmissionService{
		repo:         repositories.NewSubmissionRepositoryTx(db),
		registration: registration,
		pool:         pool,
		db:           db,
	}
}

// StartSubmission yeni bir gönderim başlatır. Session'da bekleyen bir
// kimlik doğrulama sonucu varsa hemen gönderime aktarılır; aktarım
// sonrası session temizliği çağıranın (handler) sorumluluğudur.
func (s *SubmissionService) StartSubmission(ctx context.Context, form *models.Form, formURL string, formAuth *auth.FormAuth) (*models.Submission, error) {
	if form == nil || form.ID == 0 {
		return nil, fmt.Errorf("%w: geçersiz form", ErrSubmissionInvalidInput)
	}

	submission := &models.Submission{
		UUID:               uuid.New(),
		FormID:             form.ID,
		FormURL:            formURL,
		RegistrationStatus: models.RegistrationStatusPending,
	}
	if err := s.repo.Create(ctx, submission); err != nil {
		configslog.Log.Error("StartSubmission: gönderim oluşturulamadı", zap.Uint("form_id", form.ID), zap.Error(err))
		return nil, ErrSubmissionCreationFailed
	}

	if formAuth != nil {
		if err := s.ApplyFormAuth(ctx, submission, *formAuth); err != nil {
			return nil, err
		}
	}

	submission.Form = *form
	return submission, nil
}

// GetSubmissionByUUID gönderimi ilişkileriyle birlikte getirir.
func (s *SubmissionService) GetSubmissionByUUID(ctx context.Context, submissionUUID uuid.UUID) (*models.Submission, error) {
	submission, err := s.repo.FindByUUID(ctx, submissionUUID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}
	return submission, nil
}

// ApplyFormAuth session'daki kimlik doğrulama sonucunu gönderime yazar.
// Yalnızca plugin sütunu ve ilgili kimlik sütunu güncellenir; kimlik
// değerinin kendisi loglanmaz.
//
// Bilinmeyen bir attribute programlama hatasıdır: FormAuth her zaman
// doğrulanmış bir plugin dönüşünden gelir, bu yüzden burada panic'lenir.
func (s *SubmissionService) ApplyFormAuth(ctx context.Context, submission *models.Submission, formAuth auth.FormAuth) error {
	if submission == nil || submission.ID == 0 {
		return fmt.Errorf("%w: geçersiz gönderim", ErrSubmissionInvalidInput)
	}

	submission.AuthPlugin = formAuth.Plugin
	var columns []string
	switch formAuth.Attribute {
	case auth.AttributeBSN:
		submission.BSN = formAuth.Value
		columns = []string{"auth_plugin", "bsn"}
	case auth.AttributeKvK:
		submission.KvK = formAuth.Value
		columns = []string{"auth_plugin", "kvk"}
	default:
		panic(fmt.Sprintf("ApplyFormAuth: bilinmeyen kimlik niteliği %q", formAuth.Attribute))
	}

	if err := s.repo.UpdateAuthFields(ctx, submission, columns); err != nil {
		configslog.Log.Error("ApplyFormAuth: kimlik aktarımı yazılamadı",
			zap.Uint("submission_id", submission.ID),
			zap.String("plugin", formAuth.Plugin),
			zap.String("attribute", string(formAuth.Attribute)),
			zap.Error(err))
		return err
	}

	configslog.SLog.Infof("Kimlik aktarıldı: gönderim %d, plugin %s, nitelik %s",
		submission.ID, formAuth.Plugin, formAuth.Attribute)
	return nil
}

// ApplyCoSignData co-sign sonucunu gönderimin meta verisine ekler.
// Primary session'a hiçbir şey yazılmaz.
func (s *SubmissionService) ApplyCoSignData(ctx context.Context, submission *models.Submission, coSign *auth.CoSignData) error {
	if submission == nil || submission.ID == 0 {
		return fmt.Errorf("%w: geçersiz gönderim", ErrSubmissionInvalidInput)
	}
	if coSign == nil {
		return fmt.Errorf("%w: co-sign verisi boş", ErrSubmissionInvalidInput)
	}

	blob, err := json.Marshal(coSign)
	if err != nil {
		return fmt.Errorf("%w: co-sign verisi serialize edilemedi", ErrSubmissionInvalidInput)
	}
	submission.CoSignData = datatypes.JSON(blob)
	return s.repo.UpdateRegistrationFields(ctx, submission, []string{"co_sign_data"})
}

// MergeStepData bir adımın verisini gönderimin birleşik verisine ekler.
// Aynı key'i yazan sonraki adım öncekini ezer.
func (s *SubmissionService) MergeStepData(ctx context.Context, submission *models.Submission, stepData map[string]any) error {
	if submission == nil || submission.ID == 0 {
		return fmt.Errorf("%w: geçersiz gönderim", ErrSubmissionInvalidInput)
	}
	if submission.IsCompleted() {
		return ErrSubmissionAlreadyCompleted
	}

	if submission.Data == nil {
		submission.Data = map[string]any{}
	}
	for key, value := range stepData {
		submission.Data[key] = value
	}
	return s.repo.SaveData(ctx, submission)
}

// CompleteSubmission gönderimi tamamlandı olarak işaretler ve kayıt
// (registration) işini arka plana atar. Havuz yoksa kayıt senkron denenir;
// kayıt hatası tamamlanmayı geri almaz, durum sütunlarından izlenir.
func (s *SubmissionService) CompleteSubmission(ctx context.Context, submission *models.Submission) error {
	if submission == nil || submission.ID == 0 {
		return fmt.Errorf("%w: geçersiz gönderim", ErrSubmissionInvalidInput)
	}
	if submission.IsCompleted() {
		return ErrSubmissionAlreadyCompleted
	}

	now := time.Now().UTC()
	if err := s.repo.MarkCompleted(ctx, submission, now); err != nil {
		configslog.Log.Error("CompleteSubmission: tamamlanma yazılamadı", zap.Uint("submission_id", submission.ID), zap.Error(err))
		return err
	}
	configslog.SLog.Infof("Gönderim tamamlandı: ID %d", submission.ID)

	if s.registration == nil {
		return nil
	}
	submissionID := submission.ID
	if s.pool != nil {
		s.pool.Submit(func(jobCtx context.Context) {
			if err := s.registration.RegisterSubmission(jobCtx, submissionID); err != nil {
				configslog.Log.Error("Kayıt işi başarısız", zap.Uint("submission_id", submissionID), zap.Error(err))
			}
		})
		return nil
	}
	if err := s.registration.RegisterSubmission(ctx, submissionID); err != nil {
		configslog.Log.Error("Kayıt başarısız", zap.Uint("submission_id", submissionID), zap.Error(err))
	}
	return nil
}

var _ ISubmissionService = (*SubmissionService)(nil)
