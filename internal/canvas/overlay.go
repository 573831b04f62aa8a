package canvas

import (
	"sync"

	"pairmap/internal/geo"
)

// Overlay 维护对方正在绘制和已完成的笔迹，按 strokeId 索引。
// 远端笔迹只渲染，从不进入本地历史，也从不由接收方提交持久化。
type Overlay struct {
	mu      sync.Mutex
	strokes map[string]*Stroke
	order   []string
}

// NewOverlay 创建一个空的远端笔迹叠加层。
func NewOverlay() *Overlay {
	return &Overlay{strokes: make(map[string]*Stroke)}
}

// ApplyStarted 处理 stroke_started：登记一条新的远端笔迹。
func (o *Overlay) ApplyStarted(strokeID, color string, width int) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, ok := o.strokes[strokeID]; ok {
		return
	}
	o.strokes[strokeID] = &Stroke{ID: strokeID, Color: color, Width: width}
	o.order = append(o.order, strokeID)
}

// ApplyUpdated 处理 stroke_updated：用消息中的完整点列表替换当前形状。
// 未知的 strokeId 也接受（迟到的接收端凭最后一条消息即可渲染）。
func (o *Overlay) ApplyUpdated(strokeID string, points []geo.Point) {
	o.mu.Lock()
	defer o.mu.Unlock()

	stroke, ok := o.strokes[strokeID]
	if !ok {
		stroke = &Stroke{ID: strokeID, Color: DefaultRemoteColor, Width: DefaultRemoteWidth}
		o.strokes[strokeID] = stroke
		o.order = append(o.order, strokeID)
	}
	stroke.Screen = make([]geo.Point, len(points))
	copy(stroke.Screen, points)
}

// ApplyEnded 处理 stroke_ended。已完成的笔迹继续渲染，
// 直到画布清除或本地视图重建。
func (o *Overlay) ApplyEnded(strokeID string) {
	// 结束事件不携带点数据，形状以最后一次 update 为准
}

// Strokes 返回远端笔迹快照，按到达顺序排列。
func (o *Overlay) Strokes() []*Stroke {
	o.mu.Lock()
	defer o.mu.Unlock()

	result := make([]*Stroke, 0, len(o.order))
	for _, id := range o.order {
		result = append(result, o.strokes[id])
	}
	return result
}

// Clear 清空叠加层。
func (o *Overlay) Clear() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.strokes = make(map[string]*Stroke)
	o.order = nil
}

// 没有收到 stroke_started 的远端笔迹使用的保底样式。
const (
	DefaultRemoteColor = "#E11D48"
	DefaultRemoteWidth = 3
)
