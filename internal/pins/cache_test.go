package pins_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"pairmap/internal/domain"
	"pairmap/internal/pins"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Create(ctx context.Context, mapID string, draft pins.Draft) (*domain.Pin, error) {
	args := m.Called(ctx, mapID, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Pin), args.Error(1)
}

func (m *mockStore) Update(ctx context.Context, pinID string, upd pins.Update) (*domain.Pin, error) {
	args := m.Called(ctx, pinID, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Pin), args.Error(1)
}

func (m *mockStore) Move(ctx context.Context, pinID string, lat, lng float64) (*domain.Pin, error) {
	args := m.Called(ctx, pinID, lat, lng)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Pin), args.Error(1)
}

func (m *mockStore) Delete(ctx context.Context, pinID string) error {
	args := m.Called(ctx, pinID)
	return args.Error(0)
}

func (m *mockStore) ListByMap(ctx context.Context, mapID string) ([]domain.Pin, error) {
	args := m.Called(ctx, mapID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Pin), args.Error(1)
}

type recordingEmitter struct {
	created []string
	updated []string
	deleted []string
	moved   []string
}

func (e *recordingEmitter) PinCreated(pin *domain.Pin) { e.created = append(e.created, pin.ID) }
func (e *recordingEmitter) PinUpdated(pin *domain.Pin) { e.updated = append(e.updated, pin.ID) }
func (e *recordingEmitter) PinDeleted(pinID string)    { e.deleted = append(e.deleted, pinID) }
func (e *recordingEmitter) PinMoved(pinID string, lat, lng float64) {
	e.moved = append(e.moved, pinID)
}

func newTestCache() (*pins.Cache, *mockStore, *recordingEmitter) {
	store := new(mockStore)
	emitter := &recordingEmitter{}
	return pins.NewCache("map-1", store, emitter), store, emitter
}

func serverPin(id, title string) *domain.Pin {
	return &domain.Pin{ID: id, MapID: "map-1", Title: title, Lat: 48.85, Lng: 2.35}
}

func TestCache_CreateReplacesTempWithServerCopy(t *testing.T) {
	cache, store, emitter := newTestCache()
	draft := pins.Draft{Title: "Eiffel Tower", Lat: 48.85, Lng: 2.35}
	store.On("Create", mock.Anything, "map-1", draft).Return(serverPin("pin-1", "Eiffel Tower"), nil).Once()

	pin, err := cache.Create(context.Background(), draft)

	require.NoError(t, err)
	assert.Equal(t, "pin-1", pin.ID)
	snapshot := cache.Pins()
	require.Len(t, snapshot, 1)
	assert.Equal(t, "pin-1", snapshot[0].ID, "the temporary pin must be gone")
	assert.Equal(t, []string{"pin-1"}, emitter.created, "broadcast only after durable success")
	store.AssertExpectations(t)
}

func TestCache_CreateFailureRemovesTempPin(t *testing.T) {
	cache, store, emitter := newTestCache()
	var sawTemp bool
	store.On("Create", mock.Anything, "map-1", mock.Anything).Run(func(mock.Arguments) {
		for _, p := range cache.Pins() {
			if strings.HasPrefix(p.ID, "local-") {
				sawTemp = true
			}
		}
	}).Return(nil, errors.New("validation failed")).Once()

	_, err := cache.Create(context.Background(), pins.Draft{Title: "nope"})

	require.Error(t, err)
	assert.True(t, sawTemp, "the pin must appear optimistically before the server answers")
	assert.Empty(t, cache.Pins())
	assert.Empty(t, emitter.created)
}

func TestCache_UpdateFailureRevertsByRefetch(t *testing.T) {
	cache, store, emitter := newTestCache()
	store.On("ListByMap", mock.Anything, "map-1").Return([]domain.Pin{*serverPin("pin-1", "original")}, nil)
	require.NoError(t, cache.Refresh(context.Background()))

	title := "renamed"
	store.On("Update", mock.Anything, "pin-1", mock.Anything).Return(nil, errors.New("conflict")).Once()

	_, err := cache.UpdateFields(context.Background(), "pin-1", pins.Update{Title: &title})

	require.Error(t, err)
	snapshot := cache.Pins()
	require.Len(t, snapshot, 1)
	assert.Equal(t, "original", snapshot[0].Title, "rejected mutation must be rolled back from server state")
	assert.Empty(t, emitter.updated)
	store.AssertNumberOfCalls(t, "ListByMap", 2)
}

func TestCache_UpdateSuccessKeepsServerCopy(t *testing.T) {
	cache, store, emitter := newTestCache()
	store.On("ListByMap", mock.Anything, "map-1").Return([]domain.Pin{*serverPin("pin-1", "original")}, nil).Once()
	require.NoError(t, cache.Refresh(context.Background()))

	title := "renamed"
	store.On("Update", mock.Anything, "pin-1", mock.Anything).Return(serverPin("pin-1", "renamed"), nil).Once()

	pin, err := cache.UpdateFields(context.Background(), "pin-1", pins.Update{Title: &title})

	require.NoError(t, err)
	assert.Equal(t, "renamed", pin.Title)
	assert.Equal(t, []string{"pin-1"}, emitter.updated)
	store.AssertExpectations(t)
}

func TestCache_MoveFailureRevertsByRefetch(t *testing.T) {
	cache, store, _ := newTestCache()
	store.On("ListByMap", mock.Anything, "map-1").Return([]domain.Pin{*serverPin("pin-1", "spot")}, nil)
	require.NoError(t, cache.Refresh(context.Background()))

	store.On("Move", mock.Anything, "pin-1", 10.0, 20.0).Return(nil, errors.New("gone")).Once()

	_, err := cache.Move(context.Background(), "pin-1", 10, 20)

	require.Error(t, err)
	snapshot := cache.Pins()
	require.Len(t, snapshot, 1)
	assert.Equal(t, 48.85, snapshot[0].Lat)
}

func TestCache_DeleteEmitsOnlyAfterSuccess(t *testing.T) {
	cache, store, emitter := newTestCache()
	store.On("ListByMap", mock.Anything, "map-1").Return([]domain.Pin{*serverPin("pin-1", "spot")}, nil).Once()
	require.NoError(t, cache.Refresh(context.Background()))

	store.On("Delete", mock.Anything, "pin-1").Return(nil).Once()

	require.NoError(t, cache.Delete(context.Background(), "pin-1"))

	assert.Empty(t, cache.Pins())
	assert.Equal(t, []string{"pin-1"}, emitter.deleted)
}

func TestCache_DeleteFailureRestoresPin(t *testing.T) {
	cache, store, emitter := newTestCache()
	store.On("ListByMap", mock.Anything, "map-1").Return([]domain.Pin{*serverPin("pin-1", "spot")}, nil)
	require.NoError(t, cache.Refresh(context.Background()))

	store.On("Delete", mock.Anything, "pin-1").Return(errors.New("forbidden")).Once()

	err := cache.Delete(context.Background(), "pin-1")

	require.Error(t, err)
	require.Len(t, cache.Pins(), 1)
	assert.Empty(t, emitter.deleted)
}

func TestCache_RemoteEventsUpsertAndRemove(t *testing.T) {
	cache, _, _ := newTestCache()

	cache.ApplyRemoteCreated(serverPin("pin-1", "from partner"))
	cache.ApplyRemoteCreated(serverPin("pin-1", "delivered twice"))
	cache.ApplyRemoteMoved("pin-1", 1, 2)
	cache.ApplyRemoteMoved("unknown", 9, 9)
	cache.ApplyRemoteDeleted("unknown")

	snapshot := cache.Pins()
	require.Len(t, snapshot, 1, "duplicate delivery must not duplicate the pin")
	assert.Equal(t, "delivered twice", snapshot[0].Title)
	assert.Equal(t, 1.0, snapshot[0].Lat)

	cache.ApplyRemoteDeleted("pin-1")
	assert.Empty(t, cache.Pins())
}
