package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"pairmap/internal/domain"
	"pairmap/internal/repository"
)

// GormPinRepository 是 PinRepository 接口的 GORM 实现
type GormPinRepository struct {
	db *gorm.DB
}

// NewGormPinRepository 创建 GormPinRepository 实例
func NewGormPinRepository(db *gorm.DB) *GormPinRepository {
	if db == nil {
		panic("database connection cannot be nil for GormPinRepository")
	}
	return &GormPinRepository{db: db}
}

func (r *GormPinRepository) FindByID(ctx context.Context, id string) (*domain.Pin, error) {
	var pin domain.Pin
	err := r.db.WithContext(ctx).
		Preload("Media").
		Where("id = ?", id).
		First(&pin).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrPinNotFound
		}
		return nil, fmt.Errorf("gorm: find pin by id %s: %w", id, err)
	}
	return &pin, nil
}

func (r *GormPinRepository) ListByMap(ctx context.Context, mapID string, bounds *repository.Bounds) ([]domain.Pin, error) {
	query := r.db.WithContext(ctx).
		Preload("Media").
		Where("map_id = ?", mapID)
	if bounds != nil {
		query = query.
			Where("lat BETWEEN ? AND ?", bounds.MinLat, bounds.MaxLat).
			Where("lng BETWEEN ? AND ?", bounds.MinLng, bounds.MaxLng)
	}

	var pins []domain.Pin
	if err := query.Order("created_at DESC").Find(&pins).Error; err != nil {
		return nil, fmt.Errorf("gorm: list pins for map %s: %w", mapID, err)
	}
	return pins, nil
}

func (r *GormPinRepository) Save(ctx context.Context, pin *domain.Pin) error {
	if err := r.db.WithContext(ctx).Save(pin).Error; err != nil {
		return fmt.Errorf("gorm: save pin (id: %s): %w", pin.ID, err)
	}
	return nil
}

// Delete 软删除图钉。DeletedAt 字段让 GORM 自动走软删除。
func (r *GormPinRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Pin{})
	if result.Error != nil {
		return fmt.Errorf("gorm: delete pin %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrPinNotFound
	}
	return nil
}
