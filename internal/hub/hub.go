package hub

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"pairmap/internal/domain"
	"pairmap/internal/repository"

	"github.com/sirupsen/logrus"
)

// 包级别的 WebSocket 常量，供 hub 和 client 使用
const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	// stroke_update 携带完整点列表，需要比普通消息大得多的上限。
	maxMessageSize = 64 * 1024
)

// MapAuthorizer 校验某个地图是否属于给定配对。
type MapAuthorizer interface {
	Authorize(ctx context.Context, mapID, coupleID string) error
}

// ChatStore 持久化聊天消息。messageType 为空时落库为 "text"。
type ChatStore interface {
	Create(ctx context.Context, mapID, coupleID, userID, content, messageType string) (*domain.ChatMessage, error)
}

// HubMessage 定义了在 Hub 内部通道传递的消息类型
type HubMessage struct {
	Type    string  // "register", "unregister", "envelope"
	Client  *Client // 消息关联的客户端
	RawData []byte  // 仅用于 envelope（原始 WebSocket 消息）
}

// Hub 维护活跃客户端集合并协调事件转发。
// 所有入站事件都在 Run 的单循环里顺序处理，
// 因此同一发送者的事件按到达顺序转发给对端。
type Hub struct {
	messageChan chan HubMessage

	// 客户端集合，按地图房间组织 map[mapID]map[*Client]bool
	rooms map[string]map[*Client]bool
	// 同一配对的所有连接 map[coupleID]map[*Client]bool
	couples map[string]map[*Client]bool
	mu      sync.RWMutex

	maps     MapAuthorizer
	chats    ChatStore
	presence repository.PresenceRepository

	stopOnce sync.Once
}

// NewHub 创建并返回一个新的 Hub 实例
func NewHub(maps MapAuthorizer, chats ChatStore, presence repository.PresenceRepository) *Hub {
	if maps == nil {
		panic("MapAuthorizer cannot be nil for Hub")
	}
	if chats == nil {
		panic("ChatStore cannot be nil for Hub")
	}
	if presence == nil {
		panic("PresenceRepository cannot be nil for Hub")
	}
	return &Hub{
		messageChan: make(chan HubMessage, 512),
		rooms:       make(map[string]map[*Client]bool),
		couples:     make(map[string]map[*Client]bool),
		maps:        maps,
		chats:       chats,
		presence:    presence,
	}
}

// Run 启动 Hub 的主事件处理循环。
// 它应该在一个单独的 goroutine 中运行。
func (h *Hub) Run() {
	log := logrus.WithField("component", "hub")
	log.Info("Hub is running...")

	for msg := range h.messageChan {
		switch msg.Type {
		case "register":
			h.registerClient(msg.Client)
		case "unregister":
			h.unregisterClient(msg.Client)
		case "envelope":
			// 顺序处理，不开 goroutine，保证同一发送者的事件顺序
			h.handleEnvelope(msg.Client, msg.RawData)
		default:
			log.Warnf("Hub: Received unknown message type: %s", msg.Type)
		}
	}
	log.Info("Hub is shutting down...")
}

// Stop 关闭 Hub 的消息通道，使 Run 循环退出。
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.messageChan)
	})
}

// QueueMessage 将消息放入 Hub 的处理队列 (非阻塞)。
// 返回 true 如果消息成功入队，false 如果队列已满。
func (h *Hub) QueueMessage(msg HubMessage) bool {
	select {
	case h.messageChan <- msg:
		return true
	default:
		logrus.WithField("message_type", msg.Type).Warn("Hub message channel full, dropping message")
		return false
	}
}

// registerClient 处理客户端注册逻辑
func (h *Hub) registerClient(client *Client) {
	if client == nil {
		logrus.Error("Hub: Attempted to register a nil client")
		return
	}
	logCtx := logrus.WithFields(logrus.Fields{
		"user_id":   client.userID,
		"couple_id": client.coupleID,
		"action":    "registerClient",
	})

	h.mu.Lock()
	if _, ok := h.couples[client.coupleID]; !ok {
		h.couples[client.coupleID] = make(map[*Client]bool)
	}
	h.couples[client.coupleID][client] = true
	h.mu.Unlock()
	logCtx.Info("Client registered to Hub")

	// 在线标记写入 Redis，不阻塞主循环
	go func() {
		if err := h.presence.SetOnline(context.Background(), client.coupleID, client.userID); err != nil {
			logCtx.WithError(err).Warn("Failed to set presence online flag")
		}
	}()
}

// unregisterClient 处理客户端注销逻辑。
// 连接断开等价于隐式 leave_map：对每个已加入的房间广播 partner_left，
// 再向配对内其余连接广播 partner_offline。
func (h *Hub) unregisterClient(client *Client) {
	if client == nil {
		logrus.Error("Hub: Attempted to unregister a nil client")
		return
	}
	logCtx := logrus.WithFields(logrus.Fields{
		"user_id":   client.userID,
		"couple_id": client.coupleID,
		"action":    "unregisterClient",
	})

	for mapID := range client.joined {
		h.leaveRoom(client, mapID)
	}

	h.mu.Lock()
	if coupleClients, ok := h.couples[client.coupleID]; ok {
		if _, exists := coupleClients[client]; exists {
			delete(coupleClients, client)
			// 关闭 send 让 WritePump 退出；已缓冲的消息仍可被读出。
			// closed 标记防止重复注销时二次关闭。
			if !client.closed {
				client.closed = true
				close(client.send)
			}
			if len(coupleClients) == 0 {
				delete(h.couples, client.coupleID)
			}
		}
	}
	h.mu.Unlock()

	h.broadcastCouple(client.coupleID, marshalEvent(EventPartnerOffline, PresencePayload{
		UserID:      client.userID,
		Email:       client.email,
		DisplayName: client.displayName,
	}), client)

	go func() {
		if err := h.presence.SetOffline(context.Background(), client.coupleID, client.userID); err != nil {
			logCtx.WithError(err).Warn("Failed to clear presence online flag")
		}
	}()
	logCtx.Info("Client unregistered from Hub")
}

// handleEnvelope 解析并分发一条入站事件。
// 未加入房间的客户端发来的房间事件会被静默丢弃。
func (h *Hub) handleEnvelope(client *Client, raw []byte) {
	if client == nil {
		return
	}
	logCtx := logrus.WithFields(logrus.Fields{
		"user_id":   client.userID,
		"operation": "handleEnvelope",
	})

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		logCtx.WithError(err).Warn("Dropping malformed envelope")
		return
	}

	switch env.Event {
	case EventJoinMap:
		h.handleJoin(client, env.Data, logCtx)
	case EventLeaveMap:
		var p RoomPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			logCtx.WithError(err).Warn("Dropping malformed leave_map payload")
			return
		}
		if !client.joined[p.MapID] {
			return
		}
		h.leaveRoom(client, p.MapID)

	case EventCursorMove:
		var p CursorPayload
		if err := json.Unmarshal(env.Data, &p); err != nil || !client.joined[p.MapID] {
			return
		}
		h.broadcast(p.MapID, marshalEvent(EventPartnerCursor, PartnerCursorPayload{
			UserID: client.userID,
			Lat:    p.Lat,
			Lng:    p.Lng,
		}), client)

	case EventPinCreate, EventPinUpdate:
		var p PinPayload
		if err := json.Unmarshal(env.Data, &p); err != nil || !client.joined[p.MapID] {
			return
		}
		out := EventPinCreated
		if env.Event == EventPinUpdate {
			out = EventPinUpdated
		}
		h.broadcast(p.MapID, marshalEvent(out, PinBroadcastPayload{
			UserID: client.userID,
			MapID:  p.MapID,
			Pin:    p.Pin,
		}), client)

	case EventPinDelete:
		var p PinDeletePayload
		if err := json.Unmarshal(env.Data, &p); err != nil || !client.joined[p.MapID] {
			return
		}
		h.broadcast(p.MapID, marshalEvent(EventPinDeleted, PinDeletedPayload{
			UserID: client.userID,
			MapID:  p.MapID,
			PinID:  p.PinID,
		}), client)

	case EventPinMove:
		var p PinMovePayload
		if err := json.Unmarshal(env.Data, &p); err != nil || !client.joined[p.MapID] {
			return
		}
		h.broadcast(p.MapID, marshalEvent(EventPinMoved, PinMovedPayload{
			UserID: client.userID,
			MapID:  p.MapID,
			PinID:  p.PinID,
			Lat:    p.Lat,
			Lng:    p.Lng,
		}), client)

	case EventStrokeStart:
		var p StrokeStartPayload
		if err := json.Unmarshal(env.Data, &p); err != nil || !client.joined[p.MapID] {
			return
		}
		h.broadcast(p.MapID, marshalEvent(EventStrokeStarted, StrokeStartedPayload{
			UserID:   client.userID,
			MapID:    p.MapID,
			StrokeID: p.StrokeID,
			Color:    p.Color,
			Width:    p.Width,
		}), client)

	case EventStrokeUpdate:
		var p StrokeUpdatePayload
		if err := json.Unmarshal(env.Data, &p); err != nil || !client.joined[p.MapID] {
			return
		}
		h.broadcast(p.MapID, marshalEvent(EventStrokeUpdated, StrokeUpdatedPayload{
			UserID:   client.userID,
			MapID:    p.MapID,
			StrokeID: p.StrokeID,
			Points:   p.Points,
		}), client)

	case EventStrokeEnd:
		var p StrokeEndPayload
		if err := json.Unmarshal(env.Data, &p); err != nil || !client.joined[p.MapID] {
			return
		}
		h.broadcast(p.MapID, marshalEvent(EventStrokeEnded, StrokeEndedPayload{
			UserID:   client.userID,
			MapID:    p.MapID,
			StrokeID: p.StrokeID,
		}), client)

	case EventChatMessage:
		h.handleChat(client, env.Data, logCtx)

	case EventChatTyping:
		var p TypingPayload
		if err := json.Unmarshal(env.Data, &p); err != nil || !client.joined[p.MapID] {
			return
		}
		h.broadcast(p.MapID, marshalEvent(EventPartnerTyping, PartnerTypingPayload{
			UserID:   client.userID,
			MapID:    p.MapID,
			IsTyping: p.IsTyping,
		}), client)

	default:
		logCtx.Warnf("Dropping unknown event: %s", env.Event)
	}
}

// handleJoin 校验地图归属后把客户端加入房间并通知对端。
func (h *Hub) handleJoin(client *Client, data json.RawMessage, logCtx *logrus.Entry) {
	var p RoomPayload
	if err := json.Unmarshal(data, &p); err != nil {
		logCtx.WithError(err).Warn("Dropping malformed join_map payload")
		return
	}
	if client.joined[p.MapID] {
		return
	}

	if err := h.maps.Authorize(context.Background(), p.MapID, client.coupleID); err != nil {
		logCtx.WithFields(logrus.Fields{"map_id": p.MapID}).WithError(err).Warn("Join rejected: map not accessible for couple")
		return
	}

	h.mu.Lock()
	if _, ok := h.rooms[p.MapID]; !ok {
		h.rooms[p.MapID] = make(map[*Client]bool)
	}
	h.rooms[p.MapID][client] = true
	h.mu.Unlock()
	client.joined[p.MapID] = true
	logCtx.WithField("map_id", p.MapID).Info("Client joined map room")

	h.broadcast(p.MapID, marshalEvent(EventPartnerJoined, PresencePayload{
		UserID:      client.userID,
		Email:       client.email,
		DisplayName: client.displayName,
		MapID:       p.MapID,
	}), client)
}

// handleChat 持久化消息后把带发送者信息的副本转发给对端。
func (h *Hub) handleChat(client *Client, data json.RawMessage, logCtx *logrus.Entry) {
	var p ChatPayload
	if err := json.Unmarshal(data, &p); err != nil || !client.joined[p.MapID] {
		return
	}
	if p.Content == "" {
		return
	}

	msg, err := h.chats.Create(context.Background(), p.MapID, client.coupleID, client.userID, p.Content, p.MessageType)
	if err != nil {
		logCtx.WithField("map_id", p.MapID).WithError(err).Error("Failed to persist chat message")
		return
	}

	h.broadcast(p.MapID, marshalEvent(EventChatReceived, ChatReceivedPayload{
		ID:          msg.ID,
		UserID:      client.userID,
		DisplayName: client.displayName,
		MapID:       p.MapID,
		Content:     msg.Content,
		MessageType: msg.MessageType,
		CreatedAt:   msg.CreatedAt,
	}), client)
}

// leaveRoom 把客户端移出房间并向剩余成员广播 partner_left。
func (h *Hub) leaveRoom(client *Client, mapID string) {
	h.mu.Lock()
	if roomClients, ok := h.rooms[mapID]; ok {
		delete(roomClients, client)
		if len(roomClients) == 0 {
			delete(h.rooms, mapID)
		}
	}
	h.mu.Unlock()
	delete(client.joined, mapID)

	h.broadcast(mapID, marshalEvent(EventPartnerLeft, PresencePayload{
		UserID:      client.userID,
		Email:       client.email,
		DisplayName: client.displayName,
		MapID:       mapID,
	}), client)
}

// broadcast 将消息发送给指定房间的所有客户端，排除发送者
func (h *Hub) broadcast(mapID string, message []byte, sender *Client) {
	if message == nil {
		return
	}
	h.mu.RLock()
	roomClients, ok := h.rooms[mapID]
	// 复制接收者列表，避免发送期间持有锁
	clientsToSend := make([]*Client, 0, len(roomClients))
	if ok {
		for client := range roomClients {
			if client != sender {
				clientsToSend = append(clientsToSend, client)
			}
		}
	}
	h.mu.RUnlock()

	h.sendAll(clientsToSend, message, mapID)
}

// broadcastCouple 将消息发送给配对内的所有连接，排除发送者
func (h *Hub) broadcastCouple(coupleID string, message []byte, sender *Client) {
	if message == nil {
		return
	}
	h.mu.RLock()
	coupleClients, ok := h.couples[coupleID]
	clientsToSend := make([]*Client, 0, len(coupleClients))
	if ok {
		for client := range coupleClients {
			if client != sender {
				clientsToSend = append(clientsToSend, client)
			}
		}
	}
	h.mu.RUnlock()

	h.sendAll(clientsToSend, message, "")
}

// sendAll 用非阻塞发送把消息放入各客户端的发送队列，
// 避免单个慢客户端阻塞广播。
func (h *Hub) sendAll(clients []*Client, message []byte, mapID string) {
	for _, client := range clients {
		select {
		case client.send <- message:
		default:
			logrus.WithFields(logrus.Fields{
				"receiver_user_id": client.userID,
				"map_id":           mapID,
			}).Warn("Client send channel full during broadcast, skipping this client")
		}
	}
}
