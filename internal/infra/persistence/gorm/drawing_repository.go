package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"pairmap/internal/domain"
	"pairmap/internal/repository"
)

// GormDrawingRepository 是 DrawingRepository 接口的 GORM 实现
type GormDrawingRepository struct {
	db *gorm.DB
}

// NewGormDrawingRepository 创建 GormDrawingRepository 实例
func NewGormDrawingRepository(db *gorm.DB) *GormDrawingRepository {
	if db == nil {
		panic("database connection cannot be nil for GormDrawingRepository")
	}
	return &GormDrawingRepository{db: db}
}

func (r *GormDrawingRepository) FindByID(ctx context.Context, id string) (*domain.Drawing, error) {
	var drawing domain.Drawing
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&drawing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrDrawingNotFound
		}
		return nil, fmt.Errorf("gorm: find drawing by id %s: %w", id, err)
	}
	return &drawing, nil
}

func (r *GormDrawingRepository) ListByMap(ctx context.Context, mapID string) ([]domain.Drawing, error) {
	var drawings []domain.Drawing
	err := r.db.WithContext(ctx).
		Where("map_id = ?", mapID).
		Order("layer_order ASC, created_at ASC").
		Find(&drawings).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list drawings for map %s: %w", mapID, err)
	}
	return drawings, nil
}

func (r *GormDrawingRepository) Save(ctx context.Context, drawing *domain.Drawing) error {
	if err := r.db.WithContext(ctx).Save(drawing).Error; err != nil {
		return fmt.Errorf("gorm: save drawing (id: %s): %w", drawing.ID, err)
	}
	return nil
}

func (r *GormDrawingRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Drawing{})
	if result.Error != nil {
		return fmt.Errorf("gorm: delete drawing %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrDrawingNotFound
	}
	return nil
}

// ClearByMap 软删除地图内的全部笔迹，返回删除数量。
func (r *GormDrawingRepository) ClearByMap(ctx context.Context, mapID string) (int64, error) {
	result := r.db.WithContext(ctx).Where("map_id = ?", mapID).Delete(&domain.Drawing{})
	if result.Error != nil {
		return 0, fmt.Errorf("gorm: clear drawings for map %s: %w", mapID, result.Error)
	}
	return result.RowsAffected, nil
}

// ListHeavy 返回路径数据超过 minBytes 的笔迹，供后台压缩任务使用。
func (r *GormDrawingRepository) ListHeavy(ctx context.Context, minBytes int, limit int) ([]domain.Drawing, error) {
	var drawings []domain.Drawing
	err := r.db.WithContext(ctx).
		Where("LENGTH(path_data) > ?", minBytes).
		Order("LENGTH(path_data) DESC").
		Limit(limit).
		Find(&drawings).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list heavy drawings: %w", err)
	}
	return drawings, nil
}
