package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound aranan kayıt bulunamadı (gorm hatasından soyutlanmış).
var ErrNotFound = errors.New("kayıt bulunamadı")

// IBaseRepository tüm repository'lerin paylaştığı generic temel işlemler.
type IBaseRepository[T any] interface {
	Create(ctx context.Context, entity *T) error
	FindByID(ctx context.Context, id uint) (*T, error)
	Count(ctx context.Context) (int64, error)
	SetAllowedSortColumns(columns []string)
	AllowedSortColumn(column string) bool
}

// BaseRepository IBaseRepository'nin gorm implementasyonu.
type BaseRepository[T any] struct {
	db                 *gorm.DB
	allowedSortColumns map[string]struct{}
}

// NewBaseRepository verilen bağlantı (veya transaction) üzerinde çalışan
// bir base repository oluşturur.
func NewBaseRepository[T any](db *gorm.DB) *BaseRepository[T] {
	return &BaseRepository[T]{
		db:                 db,
		allowedSortColumns: make(map[string]struct{}),
	}
}

// SetAllowedSortColumns sıralamaya izin verilen sütunları belirler.
func (r *BaseRepository[T]) SetAllowedSortColumns(columns []string) {
	r.allowedSortColumns = make(map[string]struct{}, len(columns))
	for _, column := range columns {
		r.allowedSortColumns[column] = struct{}{}
	}
}

// AllowedSortColumn sütunun sıralama için güvenli olup olmadığını söyler.
func (r *BaseRepository[T]) AllowedSortColumn(column string) bool {
	_, ok := r.allowedSortColumns[column]
	return ok
}

// Create yeni kaydı ekler.
func (r *BaseRepository[T]) Create(ctx context.Context, entity *T) error {
	return r.db.WithContext(ctx).Create(entity).Error
}

// FindByID ID ile tek kayıt bulur.
func (r *BaseRepository[T]) FindByID(ctx context.Context, id uint) (*T, error) {
	var entity T
	err := r.db.WithContext(ctx).First(&entity, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &entity, nil
}

// Count toplam kayıt sayısını döndürür.
func (r *BaseRepository[T]) Count(ctx context.Context) (int64, error) {
	var count int64
	var entity T
	err := r.db.WithContext(ctx).Model(&entity).Count(&count).Error
	return count, err
}

var _ IBaseRepository[struct{}] = (*BaseRepository[struct{}])(nil)
