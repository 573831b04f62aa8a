package service_test

import (
	"context"
	"testing"

	"pairmap/internal/domain"
	"pairmap/internal/geo"
	"pairmap/internal/repository"
	"pairmap/internal/repository/mocks"
	"pairmap/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRecorderStore_CreateCarriesBoundIdentity(t *testing.T) {
	mockDrawingRepo := new(mocks.DrawingRepository)
	mockMapRepo := new(mocks.MapRepository)
	drawingService := service.NewDrawingService(mockDrawingRepo, mockMapRepo)
	store := service.NewRecorderStore(drawingService, "couple-1", "user-1")
	ctx := context.Background()
	ownedMap(mockMapRepo, "map-1", "couple-1")

	mockDrawingRepo.On("Save", ctx, mock.MatchedBy(func(d *domain.Drawing) bool {
		assert.Equal(t, "user-1", d.CreatedBy)
		assert.Equal(t, "#E11D48", d.StrokeColor)
		assert.Equal(t, 3, d.StrokeWidth)
		assert.Equal(t, 1.0, d.Opacity)
		return true
	})).Return(nil).Once()

	err := store.Create(ctx, "map-1", []geo.GeoPoint{{Lat: 1, Lng: 1}, {Lat: 2, Lng: 2}}, "#E11D48", 3)

	require.NoError(t, err)
	mockDrawingRepo.AssertExpectations(t)
}

func TestRecorderStore_CreateRejectedForForeignCouple(t *testing.T) {
	mockDrawingRepo := new(mocks.DrawingRepository)
	mockMapRepo := new(mocks.MapRepository)
	drawingService := service.NewDrawingService(mockDrawingRepo, mockMapRepo)
	store := service.NewRecorderStore(drawingService, "couple-2", "user-9")
	mockMapRepo.On("FindOwned", mock.Anything, "map-1", "couple-2").
		Return(nil, repository.ErrMapNotFound).Once()

	err := store.Create(context.Background(), "map-1",
		[]geo.GeoPoint{{Lat: 1, Lng: 1}, {Lat: 2, Lng: 2}}, "", 0)

	assert.ErrorIs(t, err, service.ErrMapNotFound)
	mockDrawingRepo.AssertNotCalled(t, "Save")
}

func TestRecorderStore_ClearScopedToCouple(t *testing.T) {
	mockDrawingRepo := new(mocks.DrawingRepository)
	mockMapRepo := new(mocks.MapRepository)
	drawingService := service.NewDrawingService(mockDrawingRepo, mockMapRepo)
	store := service.NewRecorderStore(drawingService, "couple-1", "user-1")
	ctx := context.Background()
	ownedMap(mockMapRepo, "map-1", "couple-1")

	mockDrawingRepo.On("ClearByMap", ctx, "map-1").Return(int64(2), nil).Once()

	err := store.Clear(ctx, "map-1")

	require.NoError(t, err)
	mockDrawingRepo.AssertExpectations(t)
}
