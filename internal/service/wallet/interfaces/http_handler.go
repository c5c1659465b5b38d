package interfaces

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"corre/internal/service/wallet/application"
	"corre/internal/service/wallet/domain"
)

// WalletHandler 封装钱包服务的 HTTP 处理器。
type WalletHandler struct {
	service *application.WalletService
}

// NewWalletHandler 创建一个新的 HTTP 处理器实例。
func NewWalletHandler(service *application.WalletService) *WalletHandler {
	return &WalletHandler{service: service}
}

// RegisterRoutes 在 ServeMux 上注册所有路由。
func (h *WalletHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/wallet/grant", h.handleGrant)
	mux.HandleFunc("/wallet/consume", h.handleConsume)
	mux.HandleFunc("/wallet/redeem_coupon", h.handleRedeemCoupon)
	mux.HandleFunc("/wallet/snapshot", h.handleSnapshot)
	mux.HandleFunc("/wallet/history", h.handleHistory)
	mux.HandleFunc("/wallet/xp", h.handleAddXP)
	mux.HandleFunc("/wallet/progress", h.handleProgress)
	mux.HandleFunc("/wallet/discount_quote", h.handleDiscountQuote)
}

func (h *WalletHandler) handleGrant(w http.ResponseWriter, r *http.Request) {
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	var req application.GrantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.service.Grant(ctx, &req)
	if err != nil {
		writeWalletError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *WalletHandler) handleConsume(w http.ResponseWriter, r *http.Request) {
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	var req application.ConsumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.service.Consume(ctx, &req)
	if err != nil {
		writeWalletError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *WalletHandler) handleRedeemCoupon(w http.ResponseWriter, r *http.Request) {
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	var req application.RedeemCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.service.RedeemCoupon(ctx, &req)
	if err != nil {
		writeWalletError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *WalletHandler) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	ownerID := r.URL.Query().Get("owner_id")
	if ownerID == "" {
		http.Error(w, "owner_id is required", http.StatusBadRequest)
		return
	}

	resp, err := h.service.Snapshot(ctx, ownerID)
	if err != nil {
		writeWalletError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *WalletHandler) handleHistory(w http.ResponseWriter, r *http.Request) {
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	ownerID := r.URL.Query().Get("owner_id")
	if ownerID == "" {
		http.Error(w, "owner_id is required", http.StatusBadRequest)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	resp, err := h.service.History(ctx, ownerID, limit)
	if err != nil {
		writeWalletError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *WalletHandler) handleAddXP(w http.ResponseWriter, r *http.Request) {
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	var req application.AddXPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.service.AddXP(ctx, &req)
	if err != nil {
		writeWalletError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *WalletHandler) handleProgress(w http.ResponseWriter, r *http.Request) {
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	ownerID := r.URL.Query().Get("owner_id")
	if ownerID == "" {
		http.Error(w, "owner_id is required", http.StatusBadRequest)
		return
	}

	resp, err := h.service.Progress(ctx, ownerID)
	if err != nil {
		writeWalletError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *WalletHandler) handleDiscountQuote(w http.ResponseWriter, r *http.Request) {
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	ownerID := r.URL.Query().Get("owner_id")
	tier := r.URL.Query().Get("tier")
	cartTotal, err := strconv.ParseInt(r.URL.Query().Get("cart_total"), 10, 64)
	if ownerID == "" || tier == "" || err != nil {
		http.Error(w, "owner_id, tier and cart_total are required", http.StatusBadRequest)
		return
	}

	resp, err := h.service.DiscountQuote(ctx, ownerID, cartTotal, tier)
	if err != nil {
		writeWalletError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// writeWalletError 按错误类型映射 HTTP 状态码。
func writeWalletError(w http.ResponseWriter, err error) {
	var statusCode int
	switch {
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrUnknownCause),
		errors.Is(err, domain.ErrMalformedEvent):
		statusCode = http.StatusBadRequest
	case errors.Is(err, domain.ErrInsufficientPoints):
		// 请求有效但余额不足，由调用方决定是否换个数额重试
		statusCode = http.StatusConflict
	case errors.Is(err, domain.ErrOwnerLocked):
		statusCode = http.StatusServiceUnavailable
	default:
		statusCode = http.StatusInternalServerError
	}
	http.Error(w, err.Error(), statusCode)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
