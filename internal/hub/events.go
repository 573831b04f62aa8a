package hub

import (
	"encoding/json"
	"time"

	"pairmap/internal/geo"

	"github.com/sirupsen/logrus"
)

// 客户端发来的事件名
const (
	EventJoinMap      = "join_map"
	EventLeaveMap     = "leave_map"
	EventCursorMove   = "cursor_move"
	EventPinCreate    = "pin_create"
	EventPinUpdate    = "pin_update"
	EventPinDelete    = "pin_delete"
	EventPinMove      = "pin_move"
	EventStrokeStart  = "stroke_start"
	EventStrokeUpdate = "stroke_update"
	EventStrokeEnd    = "stroke_end"
	EventChatMessage  = "chat_message"
	EventChatTyping   = "chat_typing"
)

// 广播给对端的事件名
const (
	EventPartnerJoined  = "partner_joined"
	EventPartnerLeft    = "partner_left"
	EventPartnerOffline = "partner_offline"
	EventPartnerCursor  = "partner_cursor"
	EventPinCreated     = "pin_created"
	EventPinUpdated     = "pin_updated"
	EventPinDeleted     = "pin_deleted"
	EventPinMoved       = "pin_moved"
	EventStrokeStarted  = "stroke_started"
	EventStrokeUpdated  = "stroke_updated"
	EventStrokeEnded    = "stroke_ended"
	EventChatReceived   = "chat_received"
	EventPartnerTyping  = "partner_typing"
)

// Envelope 是 WebSocket 上所有消息的统一外壳。
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// --- 入站 payload ---

// RoomPayload 是 join_map / leave_map 的数据部分。
type RoomPayload struct {
	MapID string `json:"map_id"`
}

// CursorPayload 是 cursor_move 的数据部分。
type CursorPayload struct {
	MapID string  `json:"map_id"`
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
}

// PinPayload 承载 pin_create / pin_update 的数据。
// Pin 的具体字段由客户端与 REST 层约定，Hub 原样转发。
type PinPayload struct {
	MapID string          `json:"map_id"`
	Pin   json.RawMessage `json:"pin"`
}

// PinDeletePayload 是 pin_delete 的数据部分。
type PinDeletePayload struct {
	MapID string `json:"map_id"`
	PinID string `json:"pin_id"`
}

// PinMovePayload 是 pin_move 的数据部分。
type PinMovePayload struct {
	MapID string  `json:"map_id"`
	PinID string  `json:"pin_id"`
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
}

// StrokeStartPayload 是 stroke_start 的数据部分。
type StrokeStartPayload struct {
	MapID    string `json:"map_id"`
	StrokeID string `json:"stroke_id"`
	Color    string `json:"color"`
	Width    int    `json:"width"`
}

// StrokeUpdatePayload 携带该笔迹到目前为止的完整点列表。
type StrokeUpdatePayload struct {
	MapID    string      `json:"map_id"`
	StrokeID string      `json:"stroke_id"`
	Points   []geo.Point `json:"points"`
}

// StrokeEndPayload 是 stroke_end 的数据部分。
type StrokeEndPayload struct {
	MapID    string `json:"map_id"`
	StrokeID string `json:"stroke_id"`
}

// ChatPayload 是 chat_message 的数据部分。
// MessageType 可省略，省略时落库为 "text"。
type ChatPayload struct {
	MapID       string `json:"map_id"`
	Content     string `json:"content"`
	MessageType string `json:"message_type,omitempty"`
}

// TypingPayload 是 chat_typing 的数据部分。
type TypingPayload struct {
	MapID    string `json:"map_id"`
	IsTyping bool   `json:"is_typing"`
}

// --- 出站 payload ---

// PresencePayload 是 partner_joined / partner_left / partner_offline 的数据部分。
type PresencePayload struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	MapID       string `json:"map_id,omitempty"`
}

// PartnerCursorPayload 是 partner_cursor 的数据部分。
type PartnerCursorPayload struct {
	UserID string  `json:"user_id"`
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
}

// PinBroadcastPayload 是 pin_created / pin_updated 的数据部分。
type PinBroadcastPayload struct {
	UserID string          `json:"user_id"`
	MapID  string          `json:"map_id"`
	Pin    json.RawMessage `json:"pin"`
}

// PinDeletedPayload 是 pin_deleted 的数据部分。
type PinDeletedPayload struct {
	UserID string `json:"user_id"`
	MapID  string `json:"map_id"`
	PinID  string `json:"pin_id"`
}

// PinMovedPayload 是 pin_moved 的数据部分。
type PinMovedPayload struct {
	UserID string  `json:"user_id"`
	MapID  string  `json:"map_id"`
	PinID  string  `json:"pin_id"`
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
}

// StrokeStartedPayload 是 stroke_started 的数据部分。
type StrokeStartedPayload struct {
	UserID   string `json:"user_id"`
	MapID    string `json:"map_id"`
	StrokeID string `json:"stroke_id"`
	Color    string `json:"color"`
	Width    int    `json:"width"`
}

// StrokeUpdatedPayload 是 stroke_updated 的数据部分。
type StrokeUpdatedPayload struct {
	UserID   string      `json:"user_id"`
	MapID    string      `json:"map_id"`
	StrokeID string      `json:"stroke_id"`
	Points   []geo.Point `json:"points"`
}

// StrokeEndedPayload 是 stroke_ended 的数据部分。
type StrokeEndedPayload struct {
	UserID   string `json:"user_id"`
	MapID    string `json:"map_id"`
	StrokeID string `json:"stroke_id"`
}

// ChatReceivedPayload 是 chat_received 的数据部分。
type ChatReceivedPayload struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	MapID       string    `json:"map_id"`
	Content     string    `json:"content"`
	MessageType string    `json:"message_type"`
	CreatedAt   time.Time `json:"created_at"`
}

// PartnerTypingPayload 是 partner_typing 的数据部分。
type PartnerTypingPayload struct {
	UserID   string `json:"user_id"`
	MapID    string `json:"map_id"`
	IsTyping bool   `json:"is_typing"`
}

// marshalEvent 把事件名和 payload 封装成 Envelope 并序列化。
// 序列化失败返回 nil（payload 均为本包定义的结构体，正常不会失败）。
func marshalEvent(event string, payload interface{}) []byte {
	data, err := json.Marshal(payload)
	if err != nil {
		logrus.WithError(err).WithField("event", event).Error("Failed to marshal event payload")
		return nil
	}
	raw, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		logrus.WithError(err).WithField("event", event).Error("Failed to marshal event envelope")
		return nil
	}
	return raw
}
