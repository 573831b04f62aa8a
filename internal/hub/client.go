package hub

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Client 代表一个连接到 Hub 的 WebSocket 客户端。
type Client struct {
	hub         *Hub
	conn        *websocket.Conn
	userID      string
	coupleID    string
	email       string
	displayName string

	// 向此客户端发送消息的缓冲通道
	send chan []byte

	// send 是否已被 Hub 关闭。只在 Hub 的 Run 循环里读写。
	closed bool

	// 该客户端已加入的地图房间集合。
	// 只在 Hub 的 Run 循环里读写，不需要加锁。
	joined map[string]bool
}

// NewClient 创建一个新的 Client 实例。
func NewClient(h *Hub, conn *websocket.Conn, userID, coupleID, email, displayName string) *Client {
	return &Client{
		hub:         h,
		conn:        conn,
		userID:      userID,
		coupleID:    coupleID,
		email:       email,
		displayName: displayName,
		send:        make(chan []byte, 256),
		joined:      make(map[string]bool),
	}
}

// Run 启动客户端的读写 goroutine。
func (c *Client) Run() {
	go c.WritePump()
	go c.ReadPump()
}

// ReadPump 把 WebSocket 连接上的消息泵送到 Hub 的 messageChan。
// 它在自己的 goroutine 中运行。
func (c *Client) ReadPump() {
	defer func() {
		// 连接断开即隐式离开所有房间，由 Hub 的注销逻辑统一处理
		unregisterMsg := HubMessage{Type: "unregister", Client: c}
		select {
		case c.hub.messageChan <- unregisterMsg:
		case <-time.After(1 * time.Second):
			logrus.WithField("user_id", c.userID).Warn("Timeout sending unregister message to Hub channel")
		}
		c.conn.Close()
		logrus.WithField("user_id", c.userID).Info("ReadPump exited, unregistered client")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			logCtx := logrus.WithField("user_id", c.userID)
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logCtx.WithError(err).Warn("WebSocket read error (unexpected close)")
			} else {
				logCtx.Debug("WebSocket connection closed normally or read error")
			}
			break
		}

		if messageType != websocket.TextMessage {
			logrus.WithField("user_id", c.userID).Debugf("Dropping non-text message type: %d", messageType)
			continue
		}

		// 在 Hub 的单循环里顺序处理，保证同一发送者的事件按到达顺序转发
		envelopeMsg := HubMessage{
			Type:    "envelope",
			Client:  c,
			RawData: message,
		}
		select {
		case c.hub.messageChan <- envelopeMsg:
		default:
			logrus.WithField("user_id", c.userID).Warn("Hub message channel full, dropping client message")
		}
	}
}

// WritePump 把 Client 的 send 通道里的消息泵送到 WebSocket 连接。
// 它在自己的 goroutine 中运行。
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		logrus.WithField("user_id", c.userID).Info("WritePump exited")
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// send 通道被 Hub 关闭（注销时），发送关闭帧后退出
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logrus.WithField("user_id", c.userID).WithError(err).Warn("Failed to write message to websocket")
				return
			}
			_ = c.conn.SetWriteDeadline(time.Time{})

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logrus.WithField("user_id", c.userID).WithError(err).Warn("Failed to send ping message")
				return
			}
			_ = c.conn.SetWriteDeadline(time.Time{})
		}
	}
}

func (c *Client) UserID() string      { return c.userID }
func (c *Client) CoupleID() string    { return c.coupleID }
func (c *Client) Email() string       { return c.email }
func (c *Client) DisplayName() string { return c.displayName }
func (c *Client) CloseConn()          { c.conn.Close() }
