package service_test

import (
	"context"
	"testing"

	"pairmap/internal/domain"
	"pairmap/internal/repository"
	"pairmap/internal/repository/mocks"
	"pairmap/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newPinService(pinRepo *mocks.PinRepository, mapRepo *mocks.MapRepository) *service.PinService {
	return service.NewPinService(pinRepo, mapRepo)
}

func ownedMap(mapRepo *mocks.MapRepository, mapID, coupleID string) {
	mapRepo.On("FindOwned", mock.Anything, mapID, coupleID).
		Return(&domain.Map{ID: mapID, CoupleID: coupleID}, nil)
}

func TestPinService_Create_AppliesDefaults(t *testing.T) {
	// Arrange
	mockPinRepo := new(mocks.PinRepository)
	mockMapRepo := new(mocks.MapRepository)
	pinService := newPinService(mockPinRepo, mockMapRepo)
	ctx := context.Background()
	ownedMap(mockMapRepo, "map-1", "couple-1")

	mockPinRepo.On("Save", ctx, mock.MatchedBy(func(pin *domain.Pin) bool {
		assert.Equal(t, domain.PinTypeMemory, pin.PinType)
		assert.Equal(t, domain.DefaultPinIcon, pin.Icon)
		assert.Equal(t, domain.DefaultPinColor, pin.Color)
		assert.Equal(t, "user-1", pin.CreatedBy)
		assert.NotEmpty(t, pin.ID)
		return true
	})).Return(nil).Once()

	// Act
	pin, err := pinService.Create(ctx, "map-1", "couple-1", "user-1", service.CreatePinInput{
		Title: "Our first date",
		Lat:   48.8584,
		Lng:   2.2945,
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Our first date", pin.Title)
	mockPinRepo.AssertExpectations(t)
}

func TestPinService_Create_ForeignMapRejected(t *testing.T) {
	mockPinRepo := new(mocks.PinRepository)
	mockMapRepo := new(mocks.MapRepository)
	pinService := newPinService(mockPinRepo, mockMapRepo)
	ctx := context.Background()

	mockMapRepo.On("FindOwned", mock.Anything, "map-1", "couple-2").
		Return(nil, repository.ErrMapNotFound).Once()

	_, err := pinService.Create(ctx, "map-1", "couple-2", "mallory", service.CreatePinInput{Title: "sneaky"})

	assert.ErrorIs(t, err, service.ErrMapNotFound)
	mockPinRepo.AssertNotCalled(t, "Save")
}

func TestPinService_Create_InvalidType(t *testing.T) {
	mockPinRepo := new(mocks.PinRepository)
	mockMapRepo := new(mocks.MapRepository)
	pinService := newPinService(mockPinRepo, mockMapRepo)

	_, err := pinService.Create(context.Background(), "map-1", "couple-1", "user-1", service.CreatePinInput{
		Title:   "bad",
		PinType: "treasure",
	})

	assert.ErrorIs(t, err, service.ErrInvalidInput)
	mockMapRepo.AssertNotCalled(t, "FindOwned")
}

func TestPinService_Update_PartialFields(t *testing.T) {
	mockPinRepo := new(mocks.PinRepository)
	mockMapRepo := new(mocks.MapRepository)
	pinService := newPinService(mockPinRepo, mockMapRepo)
	ctx := context.Background()
	ownedMap(mockMapRepo, "map-1", "couple-1")

	stored := &domain.Pin{ID: "pin-1", MapID: "map-1", Title: "old", Description: "keep me", Color: "#E11D48"}
	mockPinRepo.On("FindByID", ctx, "pin-1").Return(stored, nil).Once()

	title := "new title"
	mockPinRepo.On("Save", ctx, mock.MatchedBy(func(pin *domain.Pin) bool {
		return pin.Title == "new title" && pin.Description == "keep me"
	})).Return(nil).Once()

	pin, err := pinService.Update(ctx, "pin-1", "couple-1", service.UpdatePinInput{Title: &title})

	require.NoError(t, err)
	assert.Equal(t, "new title", pin.Title)
	assert.Equal(t, "keep me", pin.Description, "nil 字段必须保持不变")
	mockPinRepo.AssertExpectations(t)
}

func TestPinService_Update_ForeignCoupleSeesNotFound(t *testing.T) {
	mockPinRepo := new(mocks.PinRepository)
	mockMapRepo := new(mocks.MapRepository)
	pinService := newPinService(mockPinRepo, mockMapRepo)
	ctx := context.Background()

	mockPinRepo.On("FindByID", ctx, "pin-1").
		Return(&domain.Pin{ID: "pin-1", MapID: "map-1"}, nil).Once()
	mockMapRepo.On("FindOwned", mock.Anything, "map-1", "couple-2").
		Return(nil, repository.ErrMapNotFound).Once()

	title := "hijack"
	_, err := pinService.Update(ctx, "pin-1", "couple-2", service.UpdatePinInput{Title: &title})

	// 跨配对访问不泄露图钉存在性
	assert.ErrorIs(t, err, service.ErrPinNotFound)
	mockPinRepo.AssertNotCalled(t, "Save")
}

func TestPinService_Move_SavesNewPosition(t *testing.T) {
	mockPinRepo := new(mocks.PinRepository)
	mockMapRepo := new(mocks.MapRepository)
	pinService := newPinService(mockPinRepo, mockMapRepo)
	ctx := context.Background()
	ownedMap(mockMapRepo, "map-1", "couple-1")

	mockPinRepo.On("FindByID", ctx, "pin-1").
		Return(&domain.Pin{ID: "pin-1", MapID: "map-1", Lat: 1, Lng: 1}, nil).Once()
	mockPinRepo.On("Save", ctx, mock.MatchedBy(func(pin *domain.Pin) bool {
		return pin.Lat == 48.85 && pin.Lng == 2.35
	})).Return(nil).Once()

	pin, err := pinService.Move(ctx, "pin-1", "couple-1", 48.85, 2.35)

	require.NoError(t, err)
	assert.Equal(t, 48.85, pin.Lat)
	mockPinRepo.AssertExpectations(t)
}

func TestPinService_Delete_Success(t *testing.T) {
	mockPinRepo := new(mocks.PinRepository)
	mockMapRepo := new(mocks.MapRepository)
	pinService := newPinService(mockPinRepo, mockMapRepo)
	ctx := context.Background()
	ownedMap(mockMapRepo, "map-1", "couple-1")

	mockPinRepo.On("FindByID", ctx, "pin-1").
		Return(&domain.Pin{ID: "pin-1", MapID: "map-1"}, nil).Once()
	mockPinRepo.On("Delete", ctx, "pin-1").Return(nil).Once()

	err := pinService.Delete(ctx, "pin-1", "couple-1")

	assert.NoError(t, err)
	mockPinRepo.AssertExpectations(t)
}

func TestPinService_ListByMap_PassesBounds(t *testing.T) {
	mockPinRepo := new(mocks.PinRepository)
	mockMapRepo := new(mocks.MapRepository)
	pinService := newPinService(mockPinRepo, mockMapRepo)
	ctx := context.Background()
	ownedMap(mockMapRepo, "map-1", "couple-1")

	bounds := &repository.Bounds{MinLat: 48, MaxLat: 49, MinLng: 2, MaxLng: 3}
	mockPinRepo.On("ListByMap", ctx, "map-1", bounds).
		Return([]domain.Pin{{ID: "pin-1"}}, nil).Once()

	pinList, err := pinService.ListByMap(ctx, "map-1", "couple-1", bounds)

	require.NoError(t, err)
	assert.Len(t, pinList, 1)
	mockPinRepo.AssertExpectations(t)
}
