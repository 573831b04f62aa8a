package repository

import (
	"context"

	"pairmap/internal/domain"
)

// DrawingRepository 定义了笔迹数据的存储操作。
type DrawingRepository interface {
	// FindByID 根据笔迹 ID 查找笔迹。
	FindByID(ctx context.Context, id string) (*domain.Drawing, error)

	// ListByMap 列出地图内的全部笔迹，按图层顺序和创建时间升序。
	ListByMap(ctx context.Context, mapID string) ([]domain.Drawing, error)

	// Save 保存笔迹。已存在（基于 ID）则更新，否则创建。
	Save(ctx context.Context, drawing *domain.Drawing) error

	// Delete 软删除单条笔迹。
	Delete(ctx context.Context, id string) error

	// ClearByMap 软删除地图内的全部笔迹，返回被清除的数量。
	ClearByMap(ctx context.Context, mapID string) (int64, error)

	// ListHeavy 列出路径数据超过 minBytes 的笔迹，供后台压缩任务使用。
	ListHeavy(ctx context.Context, minBytes int, limit int) ([]domain.Drawing, error)
}
