// Package canvas 实现手绘笔迹的采集管线：把连续的指针手势转换为 Stroke，
// 维护未提交缓冲与撤销/重做历史，并在提交前通过路径简化压缩存储体积。
// 该包是客户端侧的协调器，所有状态只被单个 UI 流程和网络回调触达。
package canvas

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"pairmap/internal/geo"
)

// 每累积 updateCadence 个点发送一次 stroke_update（携带完整点列表）。
const updateCadence = 3

// Stroke 表示一条笔迹，同时保存屏幕投影（易失）和地理投影（持久化形式）。
type Stroke struct {
	ID     string
	Screen []geo.Point
	Geo    []geo.GeoPoint
	Color  string
	Width  int
}

// Projector 把屏幕坐标换算为地理坐标。实现由地图视口提供，
// 每次平移/缩放后换算结果都会变化。
type Projector interface {
	ToGeo(p geo.Point) geo.GeoPoint
}

// Emitter 对外发送笔迹相关的实时事件。
type Emitter interface {
	StrokeStarted(strokeID, color string, width int)
	// StrokeUpdated 携带到目前为止的完整屏幕点列表（非增量），
	// 迟到或丢包的接收端凭最后一条消息即可渲染当前形状。
	StrokeUpdated(strokeID string, points []geo.Point)
	StrokeEnded(strokeID string)
}

// DrawingStore 是笔迹的持久化协作方。
type DrawingStore interface {
	Create(ctx context.Context, mapID string, path []geo.GeoPoint, color string, width int) error
	Clear(ctx context.Context, mapID string) error
}

// CommitResult 报告一次批量提交的结果。
type CommitResult struct {
	Committed int
	Failed    []string // 提交失败、仍留在缓冲区中的笔迹 ID
}

// Recorder 管理单个画布上的本地笔迹生命周期。
type Recorder struct {
	mu sync.Mutex

	mapID     string
	projector Projector
	emitter   Emitter
	store     DrawingStore

	geoTolerance float64

	current     *Stroke
	uncommitted []*Stroke
	history     *History
}

// NewRecorder 创建一个画布的笔迹采集器。
func NewRecorder(mapID string, projector Projector, emitter Emitter, store DrawingStore) *Recorder {
	if projector == nil || emitter == nil || store == nil {
		panic("projector, emitter and store must be non-nil for Recorder")
	}
	return &Recorder{
		mapID:        mapID,
		projector:    projector,
		emitter:      emitter,
		store:        store,
		geoTolerance: geo.GeoTolerance,
		history:      NewHistory(),
	}
}

// Begin 开始一条新笔迹（指针按下）。颜色和宽度在笔迹生命周期内固定。
// 返回分配的笔迹 ID。
func (r *Recorder) Begin(x, y float64, color string, width int) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	// 上一条笔迹未结束就开始新手势时，先按常规流程收尾
	if r.current != nil {
		r.finishLocked()
	}

	p := geo.Point{X: x, Y: y}
	r.current = &Stroke{
		ID:     uuid.NewString(),
		Screen: []geo.Point{p},
		Geo:    []geo.GeoPoint{r.projector.ToGeo(p)},
		Color:  color,
		Width:  width,
	}
	r.emitter.StrokeStarted(r.current.ID, color, width)
	return r.current.ID
}

// Move 追加一个点（指针移动）。每累积 3 个点广播一次完整点列表。
func (r *Recorder) Move(x, y float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current == nil {
		return
	}
	p := geo.Point{X: x, Y: y}
	r.current.Screen = append(r.current.Screen, p)
	r.current.Geo = append(r.current.Geo, r.projector.ToGeo(p))

	if len(r.current.Screen)%updateCadence == 0 {
		points := make([]geo.Point, len(r.current.Screen))
		copy(points, r.current.Screen)
		r.emitter.StrokeUpdated(r.current.ID, points)
	}
}

// End 结束当前笔迹（指针抬起）。不足 2 个点的笔迹视为点按并丢弃。
// 返回笔迹是否被保留。
func (r *Recorder) End() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.finishLocked()
}

func (r *Recorder) finishLocked() bool {
	stroke := r.current
	r.current = nil
	if stroke == nil {
		return false
	}
	if len(stroke.Screen) < 2 {
		// 点按不构成笔迹
		return false
	}

	r.uncommitted = append(r.uncommitted, stroke)
	r.history.Push(stroke)
	r.emitter.StrokeEnded(stroke.ID)
	return true
}

// Commit 把未提交缓冲区中的笔迹批量写入持久化协作方。
// 每条笔迹的地理路径先经过 RDP 简化以压缩存储体积；
// 单条写入失败不阻塞其余笔迹，失败的留在缓冲区等待下一次提交。
func (r *Recorder) Commit(ctx context.Context) (CommitResult, error) {
	r.mu.Lock()
	pending := r.uncommitted
	r.uncommitted = nil
	r.mu.Unlock()

	var result CommitResult
	var firstErr error
	var retained []*Stroke

	for _, stroke := range pending {
		simplified := geo.SimplifyGeo(stroke.Geo, r.geoTolerance)
		err := r.store.Create(ctx, r.mapID, simplified, stroke.Color, stroke.Width)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"map_id":    r.mapID,
				"stroke_id": stroke.ID,
			}).WithError(err).Warn("Failed to commit stroke, keeping in buffer for retry")
			result.Failed = append(result.Failed, stroke.ID)
			retained = append(retained, stroke)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		result.Committed++
		logrus.WithFields(logrus.Fields{
			"map_id":    r.mapID,
			"stroke_id": stroke.ID,
			"ratio_pct": geo.CompressionRatio(len(stroke.Geo), len(simplified)),
		}).Debug("Stroke committed")
	}

	if len(retained) > 0 {
		r.mu.Lock()
		// 保持失败笔迹在缓冲区最前，重试时仍按原顺序提交
		r.uncommitted = append(retained, r.uncommitted...)
		r.mu.Unlock()
	}

	if firstErr != nil {
		return result, fmt.Errorf("canvas: %d stroke(s) failed to commit: %w", len(result.Failed), firstErr)
	}
	return result, nil
}

// Clear 清空画布：丢弃进行中的手势、未提交缓冲和撤销/重做历史，
// 并删除画布上所有已提交的笔迹。这是一个破坏性的全画布操作。
func (r *Recorder) Clear(ctx context.Context) error {
	r.mu.Lock()
	r.current = nil
	r.uncommitted = nil
	r.history.Reset()
	r.mu.Unlock()

	if err := r.store.Clear(ctx, r.mapID); err != nil {
		return fmt.Errorf("canvas: failed to clear committed strokes: %w", err)
	}
	return nil
}

// Undo 隐藏最近一条可见笔迹。纯本地视图操作，不触发任何网络事件。
func (r *Recorder) Undo() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.history.Undo()
}

// Redo 恢复最近被撤销的笔迹。
func (r *Recorder) Redo() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.history.Redo()
}

// VisibleStrokes 返回当前应渲染的本地笔迹快照。
func (r *Recorder) VisibleStrokes() []*Stroke {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.history.Visible()
}

// CanRedo 报告当前是否存在可重做的笔迹。
func (r *Recorder) CanRedo() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.history.CanRedo()
}

// PendingCount 返回未提交缓冲区中的笔迹数。
func (r *Recorder) PendingCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.uncommitted)
}
