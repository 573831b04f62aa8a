// Package pins 维护地图图钉的本地乐观缓存。
// 变更先应用到缓存再请求持久化；持久化失败时通过重新拉取
// 服务端状态回滚，不做逐字段逆操作。
package pins

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pairmap/internal/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Draft 是创建图钉时的输入。零值字段由服务端填默认值。
type Draft struct {
	Title       string
	Description string
	Lat         float64
	Lng         float64
	PinType     string
	Icon        string
	Color       string
	MemoryDate  *time.Time
	IsPrivate   bool
}

// Update 是部分更新的输入，nil 字段保持不变。
type Update struct {
	Title       *string
	Description *string
	PinType     *string
	Icon        *string
	Color       *string
	MemoryDate  *time.Time
	IsPrivate   *bool
}

// Store 是缓存背后的持久化端（REST 客户端或 service 层）。
type Store interface {
	Create(ctx context.Context, mapID string, draft Draft) (*domain.Pin, error)
	Update(ctx context.Context, pinID string, upd Update) (*domain.Pin, error)
	Move(ctx context.Context, pinID string, lat, lng float64) (*domain.Pin, error)
	Delete(ctx context.Context, pinID string) error
	ListByMap(ctx context.Context, mapID string) ([]domain.Pin, error)
}

// Emitter 把已持久化的变更通知对端（WebSocket 事件）。
// 只在持久化成功后调用，乐观状态从不对外广播。
type Emitter interface {
	PinCreated(pin *domain.Pin)
	PinUpdated(pin *domain.Pin)
	PinDeleted(pinID string)
	PinMoved(pinID string, lat, lng float64)
}

// Cache 是单个地图的图钉乐观缓存。
// UI 流程和网络 goroutine 都会访问，所有操作持锁。
type Cache struct {
	mu      sync.Mutex
	mapID   string
	store   Store
	emitter Emitter

	pins  map[string]*domain.Pin
	order []string
}

// NewCache 创建一个空缓存。
func NewCache(mapID string, store Store, emitter Emitter) *Cache {
	if store == nil {
		panic("Store cannot be nil for pins.Cache")
	}
	if emitter == nil {
		panic("Emitter cannot be nil for pins.Cache")
	}
	return &Cache{
		mapID:   mapID,
		store:   store,
		emitter: emitter,
		pins:    make(map[string]*domain.Pin),
	}
}

// Create 乐观插入一个临时图钉，随后请求持久化。
// 成功时用服务端副本替换临时项并广播；失败时移除临时项。
func (c *Cache) Create(ctx context.Context, draft Draft) (*domain.Pin, error) {
	tempID := "local-" + uuid.NewString()
	temp := &domain.Pin{
		ID:          tempID,
		MapID:       c.mapID,
		Title:       draft.Title,
		Description: draft.Description,
		Lat:         draft.Lat,
		Lng:         draft.Lng,
		PinType:     draft.PinType,
		Icon:        draft.Icon,
		Color:       draft.Color,
		MemoryDate:  draft.MemoryDate,
		IsPrivate:   draft.IsPrivate,
	}
	c.mu.Lock()
	c.insertLocked(temp)
	c.mu.Unlock()

	pin, err := c.store.Create(ctx, c.mapID, draft)
	if err != nil {
		c.mu.Lock()
		c.removeLocked(tempID)
		c.mu.Unlock()
		return nil, fmt.Errorf("create pin: %w", err)
	}

	c.mu.Lock()
	c.removeLocked(tempID)
	c.insertLocked(pin)
	c.mu.Unlock()

	c.emitter.PinCreated(pin)
	return pin, nil
}

// UpdateFields 乐观应用部分更新，随后请求持久化。
// 失败时整体回滚到服务端状态。
func (c *Cache) UpdateFields(ctx context.Context, pinID string, upd Update) (*domain.Pin, error) {
	c.mu.Lock()
	cached, ok := c.pins[pinID]
	if !ok {
		c.mu.Unlock()
		return nil, fmt.Errorf("update pin: %s not in cache", pinID)
	}
	applyUpdate(cached, upd)
	c.mu.Unlock()

	pin, err := c.store.Update(ctx, pinID, upd)
	if err != nil {
		c.revert(ctx)
		return nil, fmt.Errorf("update pin: %w", err)
	}

	c.mu.Lock()
	c.pins[pinID] = pin
	c.mu.Unlock()

	c.emitter.PinUpdated(pin)
	return pin, nil
}

// Move 乐观移动图钉位置，随后请求持久化。
func (c *Cache) Move(ctx context.Context, pinID string, lat, lng float64) (*domain.Pin, error) {
	c.mu.Lock()
	cached, ok := c.pins[pinID]
	if !ok {
		c.mu.Unlock()
		return nil, fmt.Errorf("move pin: %s not in cache", pinID)
	}
	cached.Lat = lat
	cached.Lng = lng
	c.mu.Unlock()

	pin, err := c.store.Move(ctx, pinID, lat, lng)
	if err != nil {
		c.revert(ctx)
		return nil, fmt.Errorf("move pin: %w", err)
	}

	c.mu.Lock()
	c.pins[pinID] = pin
	c.mu.Unlock()

	c.emitter.PinMoved(pinID, pin.Lat, pin.Lng)
	return pin, nil
}

// Delete 乐观移除图钉，随后请求持久化。
func (c *Cache) Delete(ctx context.Context, pinID string) error {
	c.mu.Lock()
	if _, ok := c.pins[pinID]; !ok {
		c.mu.Unlock()
		return fmt.Errorf("delete pin: %s not in cache", pinID)
	}
	c.removeLocked(pinID)
	c.mu.Unlock()

	if err := c.store.Delete(ctx, pinID); err != nil {
		c.revert(ctx)
		return fmt.Errorf("delete pin: %w", err)
	}

	c.emitter.PinDeleted(pinID)
	return nil
}

// Refresh 丢弃本地状态，整体拉取服务端当前列表。
func (c *Cache) Refresh(ctx context.Context) error {
	pins, err := c.store.ListByMap(ctx, c.mapID)
	if err != nil {
		return fmt.Errorf("refresh pins: %w", err)
	}

	c.mu.Lock()
	c.pins = make(map[string]*domain.Pin, len(pins))
	c.order = c.order[:0]
	for i := range pins {
		pin := pins[i]
		c.insertLocked(&pin)
	}
	c.mu.Unlock()
	return nil
}

// ApplyRemoteCreated 处理对端的 pin_created / pin_updated。
// 按 ID upsert，重复送达是幂等的。
func (c *Cache) ApplyRemoteCreated(pin *domain.Pin) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.pins[pin.ID]; ok {
		c.pins[pin.ID] = pin
		return
	}
	c.insertLocked(pin)
}

// ApplyRemoteUpdated 处理对端的 pin_updated。
func (c *Cache) ApplyRemoteUpdated(pin *domain.Pin) {
	c.ApplyRemoteCreated(pin)
}

// ApplyRemoteMoved 处理对端的 pin_moved。未知 ID 忽略。
func (c *Cache) ApplyRemoteMoved(pinID string, lat, lng float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if pin, ok := c.pins[pinID]; ok {
		pin.Lat = lat
		pin.Lng = lng
	}
}

// ApplyRemoteDeleted 处理对端的 pin_deleted。未知 ID 忽略。
func (c *Cache) ApplyRemoteDeleted(pinID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(pinID)
}

// Pins 按插入顺序返回缓存快照。
func (c *Cache) Pins() []*domain.Pin {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*domain.Pin, 0, len(c.order))
	for _, id := range c.order {
		if pin, ok := c.pins[id]; ok {
			out = append(out, pin)
		}
	}
	return out
}

// revert 用服务端状态覆盖本地缓存。刷新失败只记日志，
// 缓存保持乐观状态直到下一次成功的刷新。
func (c *Cache) revert(ctx context.Context) {
	if err := c.Refresh(ctx); err != nil {
		logrus.WithFields(logrus.Fields{
			"map_id": c.mapID,
		}).WithError(err).Error("Failed to re-fetch pins after rejected mutation")
	}
}

func (c *Cache) insertLocked(pin *domain.Pin) {
	c.pins[pin.ID] = pin
	c.order = append(c.order, pin.ID)
}

func (c *Cache) removeLocked(pinID string) {
	if _, ok := c.pins[pinID]; !ok {
		return
	}
	delete(c.pins, pinID)
	for i, id := range c.order {
		if id == pinID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

func applyUpdate(pin *domain.Pin, upd Update) {
	if upd.Title != nil {
		pin.Title = *upd.Title
	}
	if upd.Description != nil {
		pin.Description = *upd.Description
	}
	if upd.PinType != nil {
		pin.PinType = *upd.PinType
	}
	if upd.Icon != nil {
		pin.Icon = *upd.Icon
	}
	if upd.Color != nil {
		pin.Color = *upd.Color
	}
	if upd.MemoryDate != nil {
		pin.MemoryDate = upd.MemoryDate
	}
	if upd.IsPrivate != nil {
		pin.IsPrivate = *upd.IsPrivate
	}
}
