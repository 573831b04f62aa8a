// Package mocks 提供 repository 接口的 testify mock 实现，供 service 层测试使用。
package mocks

import (
	"context"
	"time"

	"pairmap/internal/domain"
	"pairmap/internal/repository"

	"github.com/stretchr/testify/mock"
)

// UserRepository 是 repository.UserRepository 的 mock。
type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *UserRepository) Save(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepository) FindPartner(ctx context.Context, coupleID, selfID string) (*domain.User, error) {
	args := m.Called(ctx, coupleID, selfID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// CoupleRepository 是 repository.CoupleRepository 的 mock。
type CoupleRepository struct {
	mock.Mock
}

func (m *CoupleRepository) FindByID(ctx context.Context, id string) (*domain.Couple, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Couple), args.Error(1)
}

func (m *CoupleRepository) Save(ctx context.Context, couple *domain.Couple) error {
	args := m.Called(ctx, couple)
	return args.Error(0)
}

// MapRepository 是 repository.MapRepository 的 mock。
type MapRepository struct {
	mock.Mock
}

func (m *MapRepository) FindByID(ctx context.Context, id string) (*domain.Map, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Map), args.Error(1)
}

func (m *MapRepository) FindOwned(ctx context.Context, id, coupleID string) (*domain.Map, error) {
	args := m.Called(ctx, id, coupleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Map), args.Error(1)
}

func (m *MapRepository) ListByCouple(ctx context.Context, coupleID string) ([]domain.Map, error) {
	args := m.Called(ctx, coupleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Map), args.Error(1)
}

func (m *MapRepository) Save(ctx context.Context, mapModel *domain.Map) error {
	args := m.Called(ctx, mapModel)
	return args.Error(0)
}

// PinRepository 是 repository.PinRepository 的 mock。
type PinRepository struct {
	mock.Mock
}

func (m *PinRepository) FindByID(ctx context.Context, id string) (*domain.Pin, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Pin), args.Error(1)
}

func (m *PinRepository) ListByMap(ctx context.Context, mapID string, bounds *repository.Bounds) ([]domain.Pin, error) {
	args := m.Called(ctx, mapID, bounds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Pin), args.Error(1)
}

func (m *PinRepository) Save(ctx context.Context, pin *domain.Pin) error {
	args := m.Called(ctx, pin)
	return args.Error(0)
}

func (m *PinRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// DrawingRepository 是 repository.DrawingRepository 的 mock。
type DrawingRepository struct {
	mock.Mock
}

func (m *DrawingRepository) FindByID(ctx context.Context, id string) (*domain.Drawing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Drawing), args.Error(1)
}

func (m *DrawingRepository) ListByMap(ctx context.Context, mapID string) ([]domain.Drawing, error) {
	args := m.Called(ctx, mapID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Drawing), args.Error(1)
}

func (m *DrawingRepository) Save(ctx context.Context, drawing *domain.Drawing) error {
	args := m.Called(ctx, drawing)
	return args.Error(0)
}

func (m *DrawingRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *DrawingRepository) ClearByMap(ctx context.Context, mapID string) (int64, error) {
	args := m.Called(ctx, mapID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *DrawingRepository) ListHeavy(ctx context.Context, minBytes int, limit int) ([]domain.Drawing, error) {
	args := m.Called(ctx, minBytes, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Drawing), args.Error(1)
}

// ChatRepository 是 repository.ChatRepository 的 mock。
type ChatRepository struct {
	mock.Mock
}

func (m *ChatRepository) ListByMap(ctx context.Context, mapID string, limit int, before *time.Time) ([]repository.ChatMessageWithUser, error) {
	args := m.Called(ctx, mapID, limit, before)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.ChatMessageWithUser), args.Error(1)
}

func (m *ChatRepository) Save(ctx context.Context, msg *domain.ChatMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// PresenceRepository 是 repository.PresenceRepository 的 mock。
type PresenceRepository struct {
	mock.Mock
}

func (m *PresenceRepository) SetOnline(ctx context.Context, coupleID, userID string) error {
	args := m.Called(ctx, coupleID, userID)
	return args.Error(0)
}

func (m *PresenceRepository) SetOffline(ctx context.Context, coupleID, userID string) error {
	args := m.Called(ctx, coupleID, userID)
	return args.Error(0)
}

func (m *PresenceRepository) PartnerOnline(ctx context.Context, coupleID, selfID string) (bool, error) {
	args := m.Called(ctx, coupleID, selfID)
	return args.Bool(0), args.Error(1)
}
