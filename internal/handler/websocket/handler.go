package websocket

import (
	"net/http"

	"pairmap/internal/hub"
	"pairmap/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// WebSocketHandler 负责处理 WebSocket 升级请求和客户端注册
type WebSocketHandler struct {
	upgrader    websocket.Upgrader
	hub         *hub.Hub
	authService *service.AuthService
	mapService  *service.MapService
}

// NewWebSocketHandler 创建 WebSocketHandler 实例
func NewWebSocketHandler(h *hub.Hub, authService *service.AuthService, mapService *service.MapService) *WebSocketHandler {
	if h == nil {
		panic("Hub cannot be nil for WebSocketHandler")
	}
	if authService == nil {
		panic("AuthService cannot be nil for WebSocketHandler")
	}
	if mapService == nil {
		panic("MapService cannot be nil for WebSocketHandler")
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		// 允许所有来源连接 (生产环境应配置具体的允许来源)
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	return &WebSocketHandler{
		upgrader:    upgrader,
		hub:         h,
		authService: authService,
		mapService:  mapService,
	}
}

// HandleConnection 处理 WebSocket 连接请求。
// URL 格式: /ws/map/{mapId}，JWT 由认证中间件校验。
// 握手阶段先验证地图归属，拒绝发生在升级之前，客户端能收到 HTTP 错误码。
// 加入房间仍需显式发送 join_map 事件。
func (h *WebSocketHandler) HandleConnection(c *gin.Context) {
	userID := c.GetString("user_id")
	coupleID := c.GetString("couple_id")
	logCtx := logrus.WithFields(logrus.Fields{"user_id": userID, "couple_id": coupleID})

	if userID == "" {
		logCtx.Warn("WS Handler: User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	if coupleID == "" {
		// 未配对的用户没有可进入的画布
		logCtx.Warn("WS Handler: User has no couple")
		c.JSON(http.StatusForbidden, gin.H{"error": "Pairing required"})
		return
	}

	mapID := c.Param("mapId")
	logCtx = logCtx.WithField("map_id", mapID)

	if _, err := h.mapService.Get(c.Request.Context(), mapID, coupleID); err != nil {
		HandleMapError(c, err, logCtx)
		return
	}

	// 广播 payload 需要发送者的邮箱和展示名，连接建立时取一次
	user, err := h.authService.Profile(c.Request.Context(), userID)
	if err != nil {
		logCtx.WithError(err).Error("WS Handler: Failed to load user profile")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user profile"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade 失败时已经写了 HTTP 错误响应，这里只记录
		logCtx.WithError(err).Error("WS Handler: Failed to upgrade connection")
		return
	}
	logCtx.Info("WS Handler: Connection upgraded to WebSocket")

	client := hub.NewClient(h.hub, conn, userID, coupleID, user.Email, user.DisplayName)

	registerMsg := hub.HubMessage{
		Type:   "register",
		Client: client,
	}
	if !h.hub.QueueMessage(registerMsg) {
		logCtx.Error("WS Handler: Hub message channel full, failed to register client")
		client.CloseConn()
		return
	}

	client.Run()
	logCtx.Info("WS Handler: Client read/write pumps started")
}

// HandleMapError 把地图校验错误映射为升级前的 HTTP 响应。
func HandleMapError(c *gin.Context, err error, logCtx *logrus.Entry) {
	if err == service.ErrMapNotFound {
		logCtx.WithError(err).Warn("WS Handler: Map not found or not owned by couple")
		c.JSON(http.StatusNotFound, gin.H{"error": "Map not found"})
		return
	}
	logCtx.WithError(err).Error("WS Handler: Error validating map")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate map"})
}
