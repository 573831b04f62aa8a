package service_test

import (
	"context"
	"errors"
	"testing"

	"pairmap/internal/domain"
	"pairmap/internal/repository"
	"pairmap/internal/repository/mocks"
	"pairmap/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCoupleService(coupleRepo *mocks.CoupleRepository, userRepo *mocks.UserRepository, presence *mocks.PresenceRepository) *service.CoupleService {
	return service.NewCoupleService(coupleRepo, userRepo, presence)
}

func TestCoupleService_Status_ReturnsPartnerAndPresence(t *testing.T) {
	mockCoupleRepo := new(mocks.CoupleRepository)
	mockUserRepo := new(mocks.UserRepository)
	mockPresence := new(mocks.PresenceRepository)
	coupleService := newCoupleService(mockCoupleRepo, mockUserRepo, mockPresence)
	ctx := context.Background()

	mockCoupleRepo.On("FindByID", ctx, "couple-1").
		Return(&domain.Couple{ID: "couple-1", Name: "us"}, nil).Once()
	mockUserRepo.On("FindPartner", ctx, "couple-1", "user-1").
		Return(&domain.User{ID: "user-2", DisplayName: "Bob", Password: "hash"}, nil).Once()
	mockPresence.On("PartnerOnline", ctx, "couple-1", "user-1").
		Return(true, nil).Once()

	status, err := coupleService.Status(ctx, "couple-1", "user-1")

	require.NoError(t, err)
	assert.Equal(t, "couple-1", status.Couple.ID)
	require.NotNil(t, status.Partner)
	assert.Equal(t, "user-2", status.Partner.ID)
	assert.Empty(t, status.Partner.Password)
	assert.True(t, status.PartnerOnline)
	mockCoupleRepo.AssertExpectations(t)
	mockUserRepo.AssertExpectations(t)
	mockPresence.AssertExpectations(t)
}

func TestCoupleService_Status_UnpairedUser(t *testing.T) {
	mockCoupleRepo := new(mocks.CoupleRepository)
	mockUserRepo := new(mocks.UserRepository)
	mockPresence := new(mocks.PresenceRepository)
	coupleService := newCoupleService(mockCoupleRepo, mockUserRepo, mockPresence)

	_, err := coupleService.Status(context.Background(), "", "user-1")

	assert.ErrorIs(t, err, service.ErrNotPaired)
	mockCoupleRepo.AssertNotCalled(t, "FindByID")
}

func TestCoupleService_Status_PartnerMissingIsNotAnError(t *testing.T) {
	mockCoupleRepo := new(mocks.CoupleRepository)
	mockUserRepo := new(mocks.UserRepository)
	mockPresence := new(mocks.PresenceRepository)
	coupleService := newCoupleService(mockCoupleRepo, mockUserRepo, mockPresence)
	ctx := context.Background()

	mockCoupleRepo.On("FindByID", ctx, "couple-1").
		Return(&domain.Couple{ID: "couple-1"}, nil).Once()
	mockUserRepo.On("FindPartner", ctx, "couple-1", "user-1").
		Return(nil, repository.ErrUserNotFound).Once()

	status, err := coupleService.Status(ctx, "couple-1", "user-1")

	require.NoError(t, err)
	assert.Nil(t, status.Partner)
	assert.False(t, status.PartnerOnline)
	mockPresence.AssertNotCalled(t, "PartnerOnline")
}

func TestCoupleService_Status_PresenceFailureIsBestEffort(t *testing.T) {
	mockCoupleRepo := new(mocks.CoupleRepository)
	mockUserRepo := new(mocks.UserRepository)
	mockPresence := new(mocks.PresenceRepository)
	coupleService := newCoupleService(mockCoupleRepo, mockUserRepo, mockPresence)
	ctx := context.Background()

	mockCoupleRepo.On("FindByID", ctx, "couple-1").
		Return(&domain.Couple{ID: "couple-1"}, nil).Once()
	mockUserRepo.On("FindPartner", ctx, "couple-1", "user-1").
		Return(&domain.User{ID: "user-2"}, nil).Once()
	mockPresence.On("PartnerOnline", ctx, "couple-1", "user-1").
		Return(false, errors.New("redis down")).Once()

	status, err := coupleService.Status(ctx, "couple-1", "user-1")

	require.NoError(t, err)
	require.NotNil(t, status.Partner)
	assert.False(t, status.PartnerOnline)
}
