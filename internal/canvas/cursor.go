package canvas

import (
	"sync"
	"time"

	"pairmap/internal/geo"
)

// CursorThrottleInterval 是光标广播的最小间隔（每秒至多 10 次）。
const CursorThrottleInterval = 100 * time.Millisecond

// CursorThrottle 对光标位置广播做节流：两次发送至少间隔 100ms，
// 间隔内到达的位置只保留最后一个，并在窗口结束时补发（trailing emit），
// 保证对端最终看到的是最新位置。
type CursorThrottle struct {
	mu       sync.Mutex
	interval time.Duration
	emit     func(lat, lng float64)
	now      func() time.Time

	last    time.Time
	pending *geo.GeoPoint
	timer   *time.Timer
}

// NewCursorThrottle 创建一个光标节流器。emit 在持锁外调用。
func NewCursorThrottle(emit func(lat, lng float64)) *CursorThrottle {
	if emit == nil {
		panic("emit callback must be non-nil for CursorThrottle")
	}
	return &CursorThrottle{
		interval: CursorThrottleInterval,
		emit:     emit,
		now:      time.Now,
	}
}

// Offer 提交一个新的光标位置。距上次发送已满一个间隔时立即发出，
// 否则暂存并调度一次补发。
func (t *CursorThrottle) Offer(lat, lng float64) {
	t.mu.Lock()
	now := t.now()
	elapsed := now.Sub(t.last)
	if elapsed >= t.interval {
		t.last = now
		t.pending = nil
		t.mu.Unlock()
		t.emit(lat, lng)
		return
	}

	t.pending = &geo.GeoPoint{Lat: lat, Lng: lng}
	if t.timer == nil {
		t.timer = time.AfterFunc(t.interval-elapsed, t.flushPending)
	}
	t.mu.Unlock()
}

// flushPending 发出窗口内暂存的最后一个位置。
func (t *CursorThrottle) flushPending() {
	t.mu.Lock()
	t.timer = nil
	p := t.pending
	t.pending = nil
	if p == nil {
		t.mu.Unlock()
		return
	}
	t.last = t.now()
	t.mu.Unlock()
	t.emit(p.Lat, p.Lng)
}
