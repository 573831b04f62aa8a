package service

import (
	"context"
	"errors"

	"pairmap/internal/domain"
	"pairmap/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// MapService 负责共享画布（地图）的业务逻辑。
// 所有操作都以配对为作用域：地图只对创建它的配对可见。
type MapService struct {
	mapRepo repository.MapRepository
}

// NewMapService 创建 MapService 实例。
func NewMapService(mapRepo repository.MapRepository) *MapService {
	if mapRepo == nil {
		panic("MapRepository cannot be nil for MapService")
	}
	return &MapService{mapRepo: mapRepo}
}

// Create 为配对创建一张新地图。
func (s *MapService) Create(ctx context.Context, coupleID, name, description string) (*domain.Map, error) {
	if coupleID == "" {
		return nil, ErrNotPaired
	}
	if name == "" {
		return nil, ErrInvalidInput
	}

	m := &domain.Map{
		ID:          uuid.NewString(),
		CoupleID:    coupleID,
		Name:        name,
		Description: description,
	}
	if err := s.mapRepo.Save(ctx, m); err != nil {
		logrus.WithField("couple_id", coupleID).WithError(err).Error("Database error during map creation")
		return nil, ErrInternalServer
	}

	logrus.WithFields(logrus.Fields{"couple_id": coupleID, "map_id": m.ID}).Info("Map created")
	return m, nil
}

// List 列出配对的全部地图。
func (s *MapService) List(ctx context.Context, coupleID string) ([]domain.Map, error) {
	if coupleID == "" {
		return nil, ErrNotPaired
	}
	maps, err := s.mapRepo.ListByCouple(ctx, coupleID)
	if err != nil {
		logrus.WithField("couple_id", coupleID).WithError(err).Error("Database error during map listing")
		return nil, ErrInternalServer
	}
	return maps, nil
}

// Get 返回属于该配对的一张地图。
func (s *MapService) Get(ctx context.Context, mapID, coupleID string) (*domain.Map, error) {
	m, err := s.mapRepo.FindOwned(ctx, mapID, coupleID)
	if err != nil {
		if errors.Is(err, repository.ErrMapNotFound) {
			return nil, ErrMapNotFound
		}
		logrus.WithField("map_id", mapID).WithError(err).Error("Database error during map lookup")
		return nil, ErrInternalServer
	}
	return m, nil
}

// Authorize 校验地图是否属于配对。Hub 在处理 join_map 时调用。
func (s *MapService) Authorize(ctx context.Context, mapID, coupleID string) error {
	_, err := s.Get(ctx, mapID, coupleID)
	return err
}
