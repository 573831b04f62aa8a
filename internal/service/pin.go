package service

import (
	"context"
	"errors"
	"time"

	"pairmap/internal/domain"
	"pairmap/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// CreatePinInput 是创建图钉的输入。零值字段填默认值。
type CreatePinInput struct {
	Title       string
	Description string
	Lat         float64
	Lng         float64
	PinType     string
	Icon        string
	Color       string
	MemoryDate  *time.Time
	IsPrivate   bool
}

// UpdatePinInput 是部分更新的输入，nil 字段保持不变。
type UpdatePinInput struct {
	Title       *string
	Description *string
	PinType     *string
	Icon        *string
	Color       *string
	MemoryDate  *time.Time
	IsPrivate   *bool
}

// PinService 负责图钉的业务逻辑。
// 每个操作都先通过 MapRepository.FindOwned 校验地图归属，
// 杜绝跨配对读写。
type PinService struct {
	pinRepo repository.PinRepository
	mapRepo repository.MapRepository
}

// NewPinService 创建 PinService 实例。
func NewPinService(pinRepo repository.PinRepository, mapRepo repository.MapRepository) *PinService {
	if pinRepo == nil {
		panic("PinRepository cannot be nil for PinService")
	}
	if mapRepo == nil {
		panic("MapRepository cannot be nil for PinService")
	}
	return &PinService{pinRepo: pinRepo, mapRepo: mapRepo}
}

// Create 在地图上创建图钉。
func (s *PinService) Create(ctx context.Context, mapID, coupleID, userID string, input CreatePinInput) (*domain.Pin, error) {
	logCtx := logrus.WithFields(logrus.Fields{"map_id": mapID, "user_id": userID})

	if input.Title == "" {
		return nil, ErrInvalidInput
	}
	if input.PinType != "" && !validPinType(input.PinType) {
		return nil, ErrInvalidInput
	}
	if err := s.authorizeMap(ctx, mapID, coupleID); err != nil {
		return nil, err
	}

	pin := &domain.Pin{
		ID:          uuid.NewString(),
		MapID:       mapID,
		CreatedBy:   userID,
		Title:       input.Title,
		Description: input.Description,
		Lat:         input.Lat,
		Lng:         input.Lng,
		PinType:     input.PinType,
		Icon:        input.Icon,
		Color:       input.Color,
		MemoryDate:  input.MemoryDate,
		IsPrivate:   input.IsPrivate,
	}
	if pin.PinType == "" {
		pin.PinType = domain.PinTypeMemory
	}
	if pin.Icon == "" {
		pin.Icon = domain.DefaultPinIcon
	}
	if pin.Color == "" {
		pin.Color = domain.DefaultPinColor
	}

	if err := s.pinRepo.Save(ctx, pin); err != nil {
		logCtx.WithError(err).Error("Database error during pin creation")
		return nil, ErrInternalServer
	}
	logCtx.WithField("pin_id", pin.ID).Info("Pin created")
	return pin, nil
}

// ListByMap 列出地图内的图钉，bounds 非 nil 时只返回范围内的。
func (s *PinService) ListByMap(ctx context.Context, mapID, coupleID string, bounds *repository.Bounds) ([]domain.Pin, error) {
	if err := s.authorizeMap(ctx, mapID, coupleID); err != nil {
		return nil, err
	}
	pinList, err := s.pinRepo.ListByMap(ctx, mapID, bounds)
	if err != nil {
		logrus.WithField("map_id", mapID).WithError(err).Error("Database error during pin listing")
		return nil, ErrInternalServer
	}
	return pinList, nil
}

// Get 返回属于该配对的一个图钉。
func (s *PinService) Get(ctx context.Context, pinID, coupleID string) (*domain.Pin, error) {
	return s.findOwnedPin(ctx, pinID, coupleID)
}

// Update 应用部分更新并保存。
func (s *PinService) Update(ctx context.Context, pinID, coupleID string, input UpdatePinInput) (*domain.Pin, error) {
	if input.PinType != nil && !validPinType(*input.PinType) {
		return nil, ErrInvalidInput
	}
	pin, err := s.findOwnedPin(ctx, pinID, coupleID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		if *input.Title == "" {
			return nil, ErrInvalidInput
		}
		pin.Title = *input.Title
	}
	if input.Description != nil {
		pin.Description = *input.Description
	}
	if input.PinType != nil {
		pin.PinType = *input.PinType
	}
	if input.Icon != nil {
		pin.Icon = *input.Icon
	}
	if input.Color != nil {
		pin.Color = *input.Color
	}
	if input.MemoryDate != nil {
		pin.MemoryDate = input.MemoryDate
	}
	if input.IsPrivate != nil {
		pin.IsPrivate = *input.IsPrivate
	}

	if err := s.pinRepo.Save(ctx, pin); err != nil {
		logrus.WithField("pin_id", pinID).WithError(err).Error("Database error during pin update")
		return nil, ErrInternalServer
	}
	return pin, nil
}

// Move 更新图钉的位置。
func (s *PinService) Move(ctx context.Context, pinID, coupleID string, lat, lng float64) (*domain.Pin, error) {
	pin, err := s.findOwnedPin(ctx, pinID, coupleID)
	if err != nil {
		return nil, err
	}
	pin.Lat = lat
	pin.Lng = lng
	if err := s.pinRepo.Save(ctx, pin); err != nil {
		logrus.WithField("pin_id", pinID).WithError(err).Error("Database error during pin move")
		return nil, ErrInternalServer
	}
	return pin, nil
}

// Delete 软删除图钉。
func (s *PinService) Delete(ctx context.Context, pinID, coupleID string) error {
	if _, err := s.findOwnedPin(ctx, pinID, coupleID); err != nil {
		return err
	}
	if err := s.pinRepo.Delete(ctx, pinID); err != nil {
		logrus.WithField("pin_id", pinID).WithError(err).Error("Database error during pin deletion")
		return ErrInternalServer
	}
	logrus.WithField("pin_id", pinID).Info("Pin deleted")
	return nil
}

// findOwnedPin 查找图钉并校验其所在地图属于该配对。
// 归属校验失败和图钉不存在对外都是 ErrPinNotFound，不泄露存在性。
func (s *PinService) findOwnedPin(ctx context.Context, pinID, coupleID string) (*domain.Pin, error) {
	pin, err := s.pinRepo.FindByID(ctx, pinID)
	if err != nil {
		if errors.Is(err, repository.ErrPinNotFound) {
			return nil, ErrPinNotFound
		}
		logrus.WithField("pin_id", pinID).WithError(err).Error("Database error during pin lookup")
		return nil, ErrInternalServer
	}
	if _, err := s.mapRepo.FindOwned(ctx, pin.MapID, coupleID); err != nil {
		if errors.Is(err, repository.ErrMapNotFound) {
			return nil, ErrPinNotFound
		}
		return nil, ErrInternalServer
	}
	return pin, nil
}

func (s *PinService) authorizeMap(ctx context.Context, mapID, coupleID string) error {
	if _, err := s.mapRepo.FindOwned(ctx, mapID, coupleID); err != nil {
		if errors.Is(err, repository.ErrMapNotFound) {
			return ErrMapNotFound
		}
		logrus.WithField("map_id", mapID).WithError(err).Error("Database error during map ownership check")
		return ErrInternalServer
	}
	return nil
}

func validPinType(pinType string) bool {
	switch pinType {
	case domain.PinTypeMemory, domain.PinTypeWishlist, domain.PinTypeMilestone, domain.PinTypeTrip:
		return true
	}
	return false
}
