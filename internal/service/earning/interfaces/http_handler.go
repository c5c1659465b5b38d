package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"corre/internal/service/earning/application"
	"corre/internal/service/earning/domain"
)

// EarningHandler 提供活动事件的 HTTP 注入口，主要用于联调与测试。
// 生产流量走 Kafka 消费路径。
type EarningHandler struct {
	service *application.EarningService
}

// NewEarningHandler 创建处理器实例。
func NewEarningHandler(service *application.EarningService) *EarningHandler {
	return &EarningHandler{service: service}
}

// RegisterRoutes 在 ServeMux 上注册路由。
func (h *EarningHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/activity", h.handleActivity)
}

func (h *EarningHandler) handleActivity(w http.ResponseWriter, r *http.Request) {
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	var event domain.ActivityEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.HandleActivityEvent(ctx, &event); err != nil {
		var statusCode int
		switch {
		case errors.Is(err, domain.ErrMalformedEvent), errors.Is(err, domain.ErrUnknownActivity):
			statusCode = http.StatusBadRequest
		case errors.Is(err, domain.ErrNotEligible):
			statusCode = http.StatusForbidden
		default:
			statusCode = http.StatusInternalServerError
		}
		http.Error(w, err.Error(), statusCode)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"accepted": true})
}
