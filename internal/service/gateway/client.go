package gateway

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"corre/internal/pkg/logger"
	"corre/internal/pkg/session"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	// 心跳等控制消息都很小
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool { // 简化处理，允许所有跨域
		return true
	},
}

// Client 是一个 WebSocket 连接的代表。
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	ownerID string
}

// writePump 把 send channel 中的消息写入 WebSocket，并定期发送 ping。
// 每个连接只有一个 writePump goroutine，保证写入串行。
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub 关闭了 channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump 读取客户端消息（主要是 pong 心跳），连接断开时触发注销。
func (c *Client) readPump(sessionMgr *session.Manager) {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
		if err := sessionMgr.RemoveUserGateway(context.Background(), c.ownerID); err != nil {
			logger.Logger.Error().Err(err).Str("owner_id", c.ownerID).Msg("failed to remove gateway session")
		}
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Logger.Warn().Err(err).Str("owner_id", c.ownerID).Msg("websocket read error")
			}
			return
		}
	}
}

// ServeWS 把 HTTP 请求升级为 WebSocket 连接并注册到 Hub。
func ServeWS(hub *Hub, sessionMgr *session.Manager, w http.ResponseWriter, r *http.Request) {
	ownerID := r.URL.Query().Get("owner_id")
	if ownerID == "" {
		http.Error(w, "owner_id is required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Logger.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &Client{hub: hub, conn: conn, send: make(chan []byte, 256), ownerID: ownerID}
	client.hub.register <- client

	// 会话映射写入 Redis，消息路由方据此定位节点
	if err := sessionMgr.SetUserGateway(r.Context(), ownerID, hub.nodeID); err != nil {
		logger.Logger.Error().Err(err).Str("owner_id", ownerID).Msg("failed to set gateway session")
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump(sessionMgr)
}
