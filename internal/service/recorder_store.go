package service

import (
	"context"

	"pairmap/internal/canvas"
	"pairmap/internal/geo"
)

// RecorderStore 把 DrawingService 适配为画布采集器的持久化协作方。
// 一个实例绑定一条连接的配对和用户身份；透明度使用服务端默认值。
type RecorderStore struct {
	drawings *DrawingService
	coupleID string
	userID   string
}

var _ canvas.DrawingStore = (*RecorderStore)(nil)

// NewRecorderStore 创建绑定到给定身份的 RecorderStore。
func NewRecorderStore(drawings *DrawingService, coupleID, userID string) *RecorderStore {
	if drawings == nil {
		panic("DrawingService cannot be nil for RecorderStore")
	}
	return &RecorderStore{drawings: drawings, coupleID: coupleID, userID: userID}
}

// Create 保存一条已简化的笔迹路径。
func (s *RecorderStore) Create(ctx context.Context, mapID string, path []geo.GeoPoint, color string, width int) error {
	_, err := s.drawings.Create(ctx, mapID, s.coupleID, s.userID, path, color, width, 0)
	return err
}

// Clear 删除画布上全部已提交的笔迹。
func (s *RecorderStore) Clear(ctx context.Context, mapID string) error {
	_, err := s.drawings.Clear(ctx, mapID, s.coupleID)
	return err
}
