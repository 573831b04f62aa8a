package http

import (
	"net/http"
	"strconv"
	"time"

	"pairmap/internal/service"

	"github.com/gin-gonic/gin"
)

// ChatHandler 封装了聊天历史相关的 HTTP 处理逻辑。
// 实时投递走 WebSocket，这里只提供历史查询。
type ChatHandler struct {
	chatService *service.ChatService
}

// NewChatHandler 创建 ChatHandler 实例
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// CreateChatRequest 定义发送消息请求的结构体
type CreateChatRequest struct {
	Content     string `json:"content" binding:"required,max=2000"`
	MessageType string `json:"message_type" binding:"omitempty,oneof=text image system"`
}

// Create 在地图内发送一条消息。POST /api/maps/:mapId/chat
// 常规路径走 WebSocket；这个端点给断连重试和非实时客户端用。
func (h *ChatHandler) Create(c *gin.Context) {
	var req CreateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "details": err.Error()})
		return
	}
	userID, coupleID := identity(c)

	msg, err := h.chatService.Create(c.Request.Context(), c.Param("mapId"), coupleID, userID, req.Content, req.MessageType)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, msg)
}

// List 返回地图内的消息历史。GET /api/maps/:mapId/chat
// 可选参数：limit（默认 50）、before（RFC3339 时间戳，向前翻页游标）。
func (h *ChatHandler) List(c *gin.Context) {
	_, coupleID := identity(c)

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
			return
		}
		limit = parsed
	}

	var before *time.Time
	if raw := c.Query("before"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid before parameter, expected RFC3339 timestamp"})
			return
		}
		before = &parsed
	}

	messages, err := h.chatService.List(c.Request.Context(), c.Param("mapId"), coupleID, limit, before)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, messages)
}
