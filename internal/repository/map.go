package repository

import (
	"context"

	"pairmap/internal/domain"
)

// MapRepository 定义了共享画布（地图）的存储操作。
type MapRepository interface {
	// FindByID 根据地图 ID 查找地图。
	FindByID(ctx context.Context, id string) (*domain.Map, error)

	// FindOwned 查找属于指定配对的地图。
	// 地图不存在或不属于该配对时返回 repository.ErrMapNotFound；
	// 所有按地图作用域的读写都必须先经过这里。
	FindOwned(ctx context.Context, id, coupleID string) (*domain.Map, error)

	// ListByCouple 列出一个配对的全部地图。
	ListByCouple(ctx context.Context, coupleID string) ([]domain.Map, error)

	// Save 保存地图信息。
	Save(ctx context.Context, m *domain.Map) error
}
