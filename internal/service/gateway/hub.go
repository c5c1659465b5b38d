package gateway

import (
	"sync"

	"corre/internal/pkg/logger"
)

// Hub 维护所有活跃的 WebSocket 连接，并按用户投递消息。
type Hub struct {
	nodeID     string
	clients    map[string]*Client // key 为 OwnerID
	register   chan *Client
	unregister chan *Client
	lock       sync.RWMutex
}

// NewHub 创建连接中心。nodeID 标识本网关节点，写入会话映射。
func NewHub(nodeID string) *Hub {
	return &Hub{
		nodeID:     nodeID,
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run 处理连接的注册与注销。应在独立 goroutine 中运行。
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.lock.Lock()
			// 同一用户重复建连时踢掉旧连接
			if old, ok := h.clients[client.ownerID]; ok {
				close(old.send)
			}
			h.clients[client.ownerID] = client
			h.lock.Unlock()
			logger.Logger.Info().
				Str("owner_id", client.ownerID).
				Str("node_id", h.nodeID).
				Msg("client registered")
		case client := <-h.unregister:
			h.lock.Lock()
			if current, ok := h.clients[client.ownerID]; ok && current == client {
				delete(h.clients, client.ownerID)
				close(client.send)
			}
			h.lock.Unlock()
			logger.Logger.Info().Str("owner_id", client.ownerID).Msg("client unregistered")
		}
	}
}

// Deliver 把一条消息投递给指定用户。用户不在本节点时返回 false。
func (h *Hub) Deliver(ownerID string, payload []byte) bool {
	h.lock.RLock()
	client, ok := h.clients[ownerID]
	h.lock.RUnlock()
	if !ok {
		return false
	}
	select {
	case client.send <- payload:
		return true
	default:
		// 写缓冲已满说明连接不健康，放弃这条消息
		return false
	}
}

// OnlineCount 返回当前在线连接数。
func (h *Hub) OnlineCount() int {
	h.lock.RLock()
	defer h.lock.RUnlock()
	return len(h.clients)
}
