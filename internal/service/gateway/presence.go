package gateway

import (
	"context"
	"encoding/json"
	"net/http"
)

// SessionLookup 查询用户当前连接的网关节点。
// 由 session.Manager 满足；消息路由方与运维排障共用这条查询路径。
type SessionLookup interface {
	GetUserGateway(ctx context.Context, userID string) (string, error)
}

// PresenceResponse 是在线状态查询的响应体。
type PresenceResponse struct {
	OwnerID string `json:"owner_id"`
	NodeID  string `json:"node_id,omitempty"`
	Online  bool   `json:"online"`
}

// PresenceHandler 返回某个用户当前连接在哪个网关节点。
// 用户不在线时 node_id 为空、online 为 false。
func PresenceHandler(lookup SessionLookup) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID := r.URL.Query().Get("owner_id")
		if ownerID == "" {
			http.Error(w, "owner_id is required", http.StatusBadRequest)
			return
		}

		nodeID, err := lookup.GetUserGateway(r.Context(), ownerID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(PresenceResponse{
			OwnerID: ownerID,
			NodeID:  nodeID,
			Online:  nodeID != "",
		})
	}
}
