package domain

import (
	"time"

	"gorm.io/gorm"
)

// 消息类型
const (
	MessageTypeText   = "text"
	MessageTypeImage  = "image"
	MessageTypeSystem = "system"
)

// ChatMessage 表示一条地图内聊天消息。实时投递走 relay，
// 持久化走这里；两条路径互不阻塞。
type ChatMessage struct {
	ID          string         `gorm:"type:char(36);primaryKey" json:"id"`
	MapID       string         `gorm:"type:char(36);index;not null" json:"mapId"`
	UserID      string         `gorm:"type:char(36);index;not null" json:"userId"`
	Content     string         `gorm:"type:text;not null" json:"content"`
	MessageType string         `gorm:"type:varchar(20);not null;default:text" json:"messageType"`
	CreatedAt   time.Time      `gorm:"autoCreateTime;index" json:"createdAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
