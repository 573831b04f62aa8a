package gormpersistence

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"pairmap/internal/domain"
	"pairmap/internal/repository"
)

// GormChatRepository 是 ChatRepository 接口的 GORM 实现
type GormChatRepository struct {
	db *gorm.DB
}

// NewGormChatRepository 创建 GormChatRepository 实例
func NewGormChatRepository(db *gorm.DB) *GormChatRepository {
	if db == nil {
		panic("database connection cannot be nil for GormChatRepository")
	}
	return &GormChatRepository{db: db}
}

// ListByMap 返回地图内最近的 limit 条消息，升序排列。
// 先按时间倒序取最近的一页，再在内存里反转成升序，
// 这样翻页游标（before）语义简单且不用 OFFSET。
func (r *GormChatRepository) ListByMap(ctx context.Context, mapID string, limit int, before *time.Time) ([]repository.ChatMessageWithUser, error) {
	query := r.db.WithContext(ctx).
		Table("chat_messages").
		Select("chat_messages.*, users.display_name, users.avatar_path").
		Joins("JOIN users ON users.id = chat_messages.user_id").
		Where("chat_messages.map_id = ?", mapID).
		Where("chat_messages.deleted_at IS NULL")
	if before != nil {
		query = query.Where("chat_messages.created_at < ?", *before)
	}

	var messages []repository.ChatMessageWithUser
	err := query.
		Order("chat_messages.created_at DESC").
		Limit(limit).
		Scan(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list chat messages for map %s: %w", mapID, err)
	}

	// 反转为升序
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (r *GormChatRepository) Save(ctx context.Context, msg *domain.ChatMessage) error {
	if err := r.db.WithContext(ctx).Save(msg).Error; err != nil {
		return fmt.Errorf("gorm: save chat message (id: %s): %w", msg.ID, err)
	}
	return nil
}
