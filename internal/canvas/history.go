package canvas

// History 维护本次编辑会话内已闭合笔迹的有序列表和一个游标，
// 支持撤销（游标后移、笔迹从渲染集中隐藏）和重做（游标前移、恢复渲染）。
// 不变式：重做只在撤销之后且没有新笔迹插入时有效，新笔迹会截断重做尾部。
// History 本身不加锁，由 Recorder 串行访问。
type History struct {
	strokes []*Stroke
	cursor  int // 可见笔迹数量，[0, len(strokes)]
}

// NewHistory 创建一个空历史。
func NewHistory() *History {
	return &History{}
}

// Push 追加一条新闭合的笔迹，并截断游标之后的重做尾部。
func (h *History) Push(stroke *Stroke) {
	h.strokes = append(h.strokes[:h.cursor], stroke)
	h.cursor = len(h.strokes)
}

// Undo 隐藏最近一条可见笔迹。没有可撤销的笔迹时返回 false。
func (h *History) Undo() bool {
	if h.cursor == 0 {
		return false
	}
	h.cursor--
	return true
}

// Redo 恢复最近被撤销的笔迹。没有可重做的笔迹时返回 false。
func (h *History) Redo() bool {
	if h.cursor >= len(h.strokes) {
		return false
	}
	h.cursor++
	return true
}

// CanRedo 报告是否存在可重做的笔迹。
func (h *History) CanRedo() bool {
	return h.cursor < len(h.strokes)
}

// Visible 返回当前可见的笔迹快照。
func (h *History) Visible() []*Stroke {
	visible := make([]*Stroke, h.cursor)
	copy(visible, h.strokes[:h.cursor])
	return visible
}

// Reset 清空历史（用于画布清除）。
func (h *History) Reset() {
	h.strokes = nil
	h.cursor = 0
}
