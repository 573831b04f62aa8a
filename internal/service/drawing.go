package service

import (
	"context"
	"errors"

	"pairmap/internal/domain"
	"pairmap/internal/geo"
	"pairmap/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DrawingService 负责笔迹的业务逻辑。
type DrawingService struct {
	drawingRepo repository.DrawingRepository
	mapRepo     repository.MapRepository
}

// NewDrawingService 创建 DrawingService 实例。
func NewDrawingService(drawingRepo repository.DrawingRepository, mapRepo repository.MapRepository) *DrawingService {
	if drawingRepo == nil {
		panic("DrawingRepository cannot be nil for DrawingService")
	}
	if mapRepo == nil {
		panic("MapRepository cannot be nil for DrawingService")
	}
	return &DrawingService{drawingRepo: drawingRepo, mapRepo: mapRepo}
}

// Create 保存一条已完成的笔迹。路径至少要有两个点，单点是点按不是笔迹。
func (s *DrawingService) Create(ctx context.Context, mapID, coupleID, userID string, path []geo.GeoPoint, color string, width int, opacity float64) (*domain.Drawing, error) {
	logCtx := logrus.WithFields(logrus.Fields{"map_id": mapID, "user_id": userID})

	if len(path) < 2 {
		return nil, ErrInvalidInput
	}
	if err := s.authorizeMap(ctx, mapID, coupleID); err != nil {
		return nil, err
	}

	if color == "" {
		color = domain.DefaultStrokeColor
	}
	if width <= 0 {
		width = domain.DefaultStrokeWidth
	}
	if opacity <= 0 || opacity > 1 {
		opacity = 1.0
	}

	drawing := &domain.Drawing{
		ID:          uuid.NewString(),
		MapID:       mapID,
		CreatedBy:   userID,
		StrokeColor: color,
		StrokeWidth: width,
		Opacity:     opacity,
	}
	if err := drawing.SetPath(path); err != nil {
		logCtx.WithError(err).Error("Failed to encode stroke path")
		return nil, ErrInternalServer
	}

	if err := s.drawingRepo.Save(ctx, drawing); err != nil {
		logCtx.WithError(err).Error("Database error during drawing creation")
		return nil, ErrInternalServer
	}
	logCtx.WithFields(logrus.Fields{"drawing_id": drawing.ID, "point_count": len(path)}).Info("Drawing saved")
	return drawing, nil
}

// ListByMap 列出地图内的全部笔迹，按图层顺序升序。
func (s *DrawingService) ListByMap(ctx context.Context, mapID, coupleID string) ([]domain.Drawing, error) {
	if err := s.authorizeMap(ctx, mapID, coupleID); err != nil {
		return nil, err
	}
	drawings, err := s.drawingRepo.ListByMap(ctx, mapID)
	if err != nil {
		logrus.WithField("map_id", mapID).WithError(err).Error("Database error during drawing listing")
		return nil, ErrInternalServer
	}
	return drawings, nil
}

// Delete 软删除单条笔迹。
func (s *DrawingService) Delete(ctx context.Context, drawingID, coupleID string) error {
	drawing, err := s.drawingRepo.FindByID(ctx, drawingID)
	if err != nil {
		if errors.Is(err, repository.ErrDrawingNotFound) {
			return ErrDrawingNotFound
		}
		logrus.WithField("drawing_id", drawingID).WithError(err).Error("Database error during drawing lookup")
		return ErrInternalServer
	}
	if err := s.authorizeMap(ctx, drawing.MapID, coupleID); err != nil {
		if errors.Is(err, ErrMapNotFound) {
			return ErrDrawingNotFound
		}
		return err
	}
	if err := s.drawingRepo.Delete(ctx, drawingID); err != nil {
		logrus.WithField("drawing_id", drawingID).WithError(err).Error("Database error during drawing deletion")
		return ErrInternalServer
	}
	return nil
}

// Clear 软删除地图内的全部笔迹，返回清除数量。
// 清除不广播，对端通过重新拉取收敛。
func (s *DrawingService) Clear(ctx context.Context, mapID, coupleID string) (int64, error) {
	if err := s.authorizeMap(ctx, mapID, coupleID); err != nil {
		return 0, err
	}
	cleared, err := s.drawingRepo.ClearByMap(ctx, mapID)
	if err != nil {
		logrus.WithField("map_id", mapID).WithError(err).Error("Database error during drawing clear")
		return 0, ErrInternalServer
	}
	logrus.WithFields(logrus.Fields{"map_id": mapID, "cleared": cleared}).Info("Drawings cleared")
	return cleared, nil
}

func (s *DrawingService) authorizeMap(ctx context.Context, mapID, coupleID string) error {
	if _, err := s.mapRepo.FindOwned(ctx, mapID, coupleID); err != nil {
		if errors.Is(err, repository.ErrMapNotFound) {
			return ErrMapNotFound
		}
		logrus.WithField("map_id", mapID).WithError(err).Error("Database error during map ownership check")
		return ErrInternalServer
	}
	return nil
}
