package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"pairmap/internal/domain"
	"pairmap/internal/repository"
)

// GormMapRepository 是 MapRepository 接口的 GORM 实现
type GormMapRepository struct {
	db *gorm.DB
}

// NewGormMapRepository 创建 GormMapRepository 实例
func NewGormMapRepository(db *gorm.DB) *GormMapRepository {
	if db == nil {
		panic("database connection cannot be nil for GormMapRepository")
	}
	return &GormMapRepository{db: db}
}

func (r *GormMapRepository) FindByID(ctx context.Context, id string) (*domain.Map, error) {
	var m domain.Map
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrMapNotFound
		}
		return nil, fmt.Errorf("gorm: find map by id %s: %w", id, err)
	}
	return &m, nil
}

// FindOwned 只返回属于指定配对的地图。
// 不存在和不属于该配对对调用方是同一个错误。
func (r *GormMapRepository) FindOwned(ctx context.Context, id, coupleID string) (*domain.Map, error) {
	var m domain.Map
	err := r.db.WithContext(ctx).
		Where("id = ? AND couple_id = ?", id, coupleID).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrMapNotFound
		}
		return nil, fmt.Errorf("gorm: find owned map %s for couple %s: %w", id, coupleID, err)
	}
	return &m, nil
}

func (r *GormMapRepository) ListByCouple(ctx context.Context, coupleID string) ([]domain.Map, error) {
	var maps []domain.Map
	err := r.db.WithContext(ctx).
		Where("couple_id = ?", coupleID).
		Order("created_at ASC").
		Find(&maps).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list maps for couple %s: %w", coupleID, err)
	}
	return maps, nil
}

func (r *GormMapRepository) Save(ctx context.Context, m *domain.Map) error {
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return fmt.Errorf("gorm: save map (id: %s): %w", m.ID, err)
	}
	return nil
}
