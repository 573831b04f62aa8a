package service

import (
	"context"
	"errors"
	"time"

	"pairmap/internal/domain"
	"pairmap/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	defaultChatPageSize = 50
	maxChatPageSize     = 200
	maxChatContentLen   = 2000
)

// ChatService 负责聊天消息的业务逻辑。
type ChatService struct {
	chatRepo repository.ChatRepository
	mapRepo  repository.MapRepository
}

// NewChatService 创建 ChatService 实例。
func NewChatService(chatRepo repository.ChatRepository, mapRepo repository.MapRepository) *ChatService {
	if chatRepo == nil {
		panic("ChatRepository cannot be nil for ChatService")
	}
	if mapRepo == nil {
		panic("MapRepository cannot be nil for ChatService")
	}
	return &ChatService{chatRepo: chatRepo, mapRepo: mapRepo}
}

// Create 持久化一条消息。Hub 在转发 chat_message 前调用。
// messageType 为空时落库为 "text"，不在枚举内则拒绝。
func (s *ChatService) Create(ctx context.Context, mapID, coupleID, userID, content, messageType string) (*domain.ChatMessage, error) {
	if content == "" || len(content) > maxChatContentLen {
		return nil, ErrInvalidInput
	}
	if messageType == "" {
		messageType = domain.MessageTypeText
	}
	switch messageType {
	case domain.MessageTypeText, domain.MessageTypeImage, domain.MessageTypeSystem:
	default:
		return nil, ErrInvalidInput
	}
	if _, err := s.mapRepo.FindOwned(ctx, mapID, coupleID); err != nil {
		if errors.Is(err, repository.ErrMapNotFound) {
			return nil, ErrMapNotFound
		}
		logrus.WithField("map_id", mapID).WithError(err).Error("Database error during map ownership check")
		return nil, ErrInternalServer
	}

	msg := &domain.ChatMessage{
		ID:          uuid.NewString(),
		MapID:       mapID,
		UserID:      userID,
		Content:     content,
		MessageType: messageType,
	}
	if err := s.chatRepo.Save(ctx, msg); err != nil {
		logrus.WithField("map_id", mapID).WithError(err).Error("Database error during chat message save")
		return nil, ErrInternalServer
	}
	return msg, nil
}

// List 返回地图内的消息历史（升序）。
// before 非 nil 时只返回该时间之前的消息，用于向前翻页。
func (s *ChatService) List(ctx context.Context, mapID, coupleID string, limit int, before *time.Time) ([]repository.ChatMessageWithUser, error) {
	if _, err := s.mapRepo.FindOwned(ctx, mapID, coupleID); err != nil {
		if errors.Is(err, repository.ErrMapNotFound) {
			return nil, ErrMapNotFound
		}
		logrus.WithField("map_id", mapID).WithError(err).Error("Database error during map ownership check")
		return nil, ErrInternalServer
	}

	if limit <= 0 {
		limit = defaultChatPageSize
	}
	if limit > maxChatPageSize {
		limit = maxChatPageSize
	}

	messages, err := s.chatRepo.ListByMap(ctx, mapID, limit, before)
	if err != nil {
		logrus.WithField("map_id", mapID).WithError(err).Error("Database error during chat listing")
		return nil, ErrInternalServer
	}
	return messages, nil
}
