package repository

import (
	"context"

	"pairmap/internal/domain"
)

// Bounds 表示一个经纬度范围过滤条件。
type Bounds struct {
	MinLat float64
	MaxLat float64
	MinLng float64
	MaxLng float64
}

// PinRepository 定义了图钉数据的存储操作。
type PinRepository interface {
	// FindByID 根据图钉 ID 查找图钉（包含媒体列表）。
	// 不存在时返回 repository.ErrPinNotFound。
	FindByID(ctx context.Context, id string) (*domain.Pin, error)

	// ListByMap 列出地图内的全部图钉（包含媒体列表），按创建时间倒序。
	// bounds 非 nil 时只返回范围内的图钉。
	ListByMap(ctx context.Context, mapID string, bounds *Bounds) ([]domain.Pin, error)

	// Save 保存图钉。已存在（基于 ID）则更新，否则创建。
	Save(ctx context.Context, pin *domain.Pin) error

	// Delete 软删除图钉。
	Delete(ctx context.Context, id string) error
}
