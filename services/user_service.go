package services

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"formulier.link/configs/configslog"
	"formulier.link/models"
	"formulier.link/repositories"
)

// UserServiceError özel servis hataları
type UserServiceError string

func (e UserServiceError) Error() string { return string(e) }

const (
	ErrUserNotFound           UserServiceError = "kullanıcı bulunamadı"
	ErrInvalidCredentials     UserServiceError = "e-posta veya şifre hatalı"
	ErrUserDisabled           UserServiceError = "kullanıcı hesabı pasif"
	ErrUserPasswordHashFailed UserServiceError = "şifre oluşturulamadı"
)

// IUserService kullanıcı işlemleri için arayüz.
type IUserService interface {
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	GetUserCount(ctx context.Context) (int64, error)
}

// UserService IUserService arayüzünü uygular.
type UserService struct {
	repo repositories.IUserRepository
}

// NewUserService yeni bir UserService örneği oluşturur.
func NewUserService() IUserService {
	return &UserService{repo: repositories.NewUserRepository()}
}

// GetUserByID belirli bir kullanıcıyı getirir.
func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// Authenticate e-posta ve şifre ile panel girişini doğrular. Bulunamayan
// kullanıcı ile yanlış şifre aynı hatayı döndürür.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		configslog.SLog.Warnf("Başarısız giriş denemesi: %s", email)
		return nil, ErrInvalidCredentials
	}
	if !user.IsEnabled {
		return nil, ErrUserDisabled
	}
	return user, nil
}

// GetUserCount tüm kullanıcıların sayısını döndürür.
func (s *UserService) GetUserCount(ctx context.Context) (int64, error) {
	return s.repo.CountAll(ctx)
}

var _ IUserService = (*UserService)(nil)
