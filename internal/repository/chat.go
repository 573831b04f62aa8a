package repository

import (
	"context"
	"time"

	"pairmap/internal/domain"
)

// ChatMessageWithUser 是附带发送者展示信息的聊天消息。
type ChatMessageWithUser struct {
	domain.ChatMessage
	DisplayName string  `json:"displayName"`
	AvatarPath  *string `json:"avatarPath"`
}

// ChatRepository 定义了聊天消息的存储操作。
type ChatRepository interface {
	// ListByMap 列出地图内最近的消息（升序返回）。
	// before 非 nil 时只返回该时间之前的消息，用于向前翻页。
	ListByMap(ctx context.Context, mapID string, limit int, before *time.Time) ([]ChatMessageWithUser, error)

	// Save 保存一条消息。
	Save(ctx context.Context, msg *domain.ChatMessage) error
}
