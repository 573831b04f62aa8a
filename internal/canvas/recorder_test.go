package canvas_test

import (
	"context"
	"errors"
	"testing"

	"pairmap/internal/canvas"
	"pairmap/internal/geo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// scaleProjector 把屏幕像素线性映射为地理坐标，保持共线性。
type scaleProjector struct{}

func (scaleProjector) ToGeo(p geo.Point) geo.GeoPoint {
	return geo.GeoPoint{Lat: p.X / 1000, Lng: p.Y / 1000}
}

// recordingEmitter 记录所有发出的笔迹事件。
type recordingEmitter struct {
	started []string
	updates [][]geo.Point
	ended   []string
}

func (e *recordingEmitter) StrokeStarted(strokeID, color string, width int) {
	e.started = append(e.started, strokeID)
}

func (e *recordingEmitter) StrokeUpdated(strokeID string, points []geo.Point) {
	e.updates = append(e.updates, points)
}

func (e *recordingEmitter) StrokeEnded(strokeID string) {
	e.ended = append(e.ended, strokeID)
}

// mockStore 是 DrawingStore 的 testify mock。
type mockStore struct {
	mock.Mock
}

func (m *mockStore) Create(ctx context.Context, mapID string, path []geo.GeoPoint, color string, width int) error {
	args := m.Called(ctx, mapID, path, color, width)
	return args.Error(0)
}

func (m *mockStore) Clear(ctx context.Context, mapID string) error {
	args := m.Called(ctx, mapID)
	return args.Error(0)
}

func newTestRecorder() (*canvas.Recorder, *recordingEmitter, *mockStore) {
	emitter := &recordingEmitter{}
	store := new(mockStore)
	rec := canvas.NewRecorder("map-1", scaleProjector{}, emitter, store)
	return rec, emitter, store
}

func TestRecorder_TapIsDiscarded(t *testing.T) {
	rec, emitter, _ := newTestRecorder()

	rec.Begin(10, 10, "#E11D48", 4)
	kept := rec.End()

	assert.False(t, kept, "a single-point gesture is a tap, not a stroke")
	assert.Len(t, emitter.started, 1, "stroke_start is emitted before the tap is known")
	assert.Empty(t, emitter.ended, "discarded strokes must not emit stroke_end")
	assert.Empty(t, rec.VisibleStrokes())
	assert.Zero(t, rec.PendingCount())
}

func TestRecorder_UpdateCadence(t *testing.T) {
	rec, emitter, _ := newTestRecorder()

	rec.Begin(0, 0, "#E11D48", 4)
	for i := 1; i <= 6; i++ {
		rec.Move(float64(i), float64(i))
	}
	rec.End()

	// 第 3 和第 6 个点各触发一次，且每次都携带完整点列表
	require.Len(t, emitter.updates, 2)
	assert.Len(t, emitter.updates[0], 3)
	assert.Len(t, emitter.updates[1], 6)
	assert.Equal(t, geo.Point{X: 0, Y: 0}, emitter.updates[1][0])
	assert.Equal(t, geo.Point{X: 6, Y: 6}, emitter.updates[1][5])
}

func TestRecorder_EndPushesToBufferAndHistory(t *testing.T) {
	rec, emitter, _ := newTestRecorder()

	id := rec.Begin(0, 0, "#3B82F6", 2)
	rec.Move(5, 5)
	kept := rec.End()

	assert.True(t, kept)
	assert.Equal(t, []string{id}, emitter.ended)
	assert.Equal(t, 1, rec.PendingCount(), "closed strokes stay uncommitted until explicit commit")
	require.Len(t, rec.VisibleStrokes(), 1)
	assert.Equal(t, id, rec.VisibleStrokes()[0].ID)
}

func TestRecorder_UndoRedo(t *testing.T) {
	rec, _, _ := newTestRecorder()

	rec.Begin(0, 0, "#E11D48", 4)
	rec.Move(5, 5)
	rec.End()

	// 撤销隐藏笔迹，重做恢复
	assert.True(t, rec.Undo())
	assert.Empty(t, rec.VisibleStrokes())
	assert.True(t, rec.Redo())
	assert.Len(t, rec.VisibleStrokes(), 1)

	// 撤销后画一条新笔迹，重做尾部被截断
	assert.True(t, rec.Undo())
	rec.Begin(10, 10, "#E11D48", 4)
	rec.Move(20, 20)
	rec.End()
	assert.False(t, rec.CanRedo())
	assert.False(t, rec.Redo())
	assert.Len(t, rec.VisibleStrokes(), 1)

	// 空历史上撤销无效
	assert.True(t, rec.Undo())
	assert.False(t, rec.Undo())
}

func TestRecorder_CommitSimplifiesPath(t *testing.T) {
	rec, _, store := newTestRecorder()

	// 共线的点经过简化后只剩首尾
	rec.Begin(0, 0, "#E11D48", 4)
	rec.Move(10, 10)
	rec.Move(20, 20)
	rec.Move(30, 30)
	rec.End()

	store.On("Create", mock.Anything, "map-1", mock.MatchedBy(func(path []geo.GeoPoint) bool {
		return len(path) == 2
	}), "#E11D48", 4).Return(nil).Once()

	result, err := rec.Commit(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 1, result.Committed)
	assert.Empty(t, result.Failed)
	assert.Zero(t, rec.PendingCount())
	store.AssertExpectations(t)
}

func TestRecorder_CommitPartialFailure(t *testing.T) {
	rec, _, store := newTestRecorder()

	first := drawStroke(rec, 0)
	_ = drawStroke(rec, 100)

	// 第一条失败，第二条成功；失败不阻塞后续笔迹
	store.On("Create", mock.Anything, "map-1", mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("connection reset")).Once()
	store.On("Create", mock.Anything, "map-1", mock.Anything, mock.Anything, mock.Anything).
		Return(nil).Once()

	result, err := rec.Commit(context.Background())

	require.Error(t, err)
	assert.Equal(t, 1, result.Committed)
	assert.Equal(t, []string{first}, result.Failed)
	assert.Equal(t, 1, rec.PendingCount(), "failed strokes stay buffered for retry")

	// 下一次显式提交重试失败的笔迹
	store.On("Create", mock.Anything, "map-1", mock.Anything, mock.Anything, mock.Anything).
		Return(nil).Once()
	result, err = rec.Commit(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, result.Committed)
	assert.Zero(t, rec.PendingCount())
	store.AssertExpectations(t)
}

func TestRecorder_ClearResetsEverything(t *testing.T) {
	rec, _, store := newTestRecorder()

	drawStroke(rec, 0)
	rec.Undo()

	store.On("Clear", mock.Anything, "map-1").Return(nil).Once()

	err := rec.Clear(context.Background())

	assert.NoError(t, err)
	assert.Zero(t, rec.PendingCount())
	assert.Empty(t, rec.VisibleStrokes())
	assert.False(t, rec.CanRedo(), "clear must also reset undo/redo history")
	store.AssertExpectations(t)
}

// drawStroke 画一条两点笔迹并返回其 ID。
func drawStroke(rec *canvas.Recorder, offset float64) string {
	id := rec.Begin(offset, offset, "#E11D48", 4)
	rec.Move(offset+5, offset+5)
	rec.End()
	return id
}
