package adapter

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"corre/internal/pkg/httpclient"
	"corre/internal/pkg/nacos"
	"corre/internal/service/checkout/domain"
)

const walletServiceName = "wallet-service"

// WalletHTTPAdapter 是 port.WalletClient 的 HTTP 实现。
// 钱包实例地址优先从 Nacos 发现，未配置 Nacos 时退回静态地址。
type WalletHTTPAdapter struct {
	client   *httpclient.Client
	registry *nacos.Client
	baseURL  string // 静态兜底地址，如 http://localhost:8091
}

// NewWalletHTTPAdapter 创建钱包客户端适配器。registry 可以为 nil。
func NewWalletHTTPAdapter(client *httpclient.Client, registry *nacos.Client, baseURL string) *WalletHTTPAdapter {
	return &WalletHTTPAdapter{client: client, registry: registry, baseURL: baseURL}
}

func (a *WalletHTTPAdapter) resolveBase() (string, error) {
	if a.registry != nil {
		ip, port, err := a.registry.DiscoverServiceInstance(walletServiceName)
		if err == nil {
			return fmt.Sprintf("http://%s:%d", ip, port), nil
		}
		// 发现失败时退回静态地址
	}
	if a.baseURL == "" {
		return "", domain.ErrWalletUnavailable
	}
	return a.baseURL, nil
}

// DiscountQuote 实现 port.WalletClient。
func (a *WalletHTTPAdapter) DiscountQuote(ctx context.Context, ownerID string, cartTotal int64, tier string) (*domain.Quote, error) {
	base, err := a.resolveBase()
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("owner_id", ownerID)
	params.Set("cart_total", strconv.FormatInt(cartTotal, 10))
	params.Set("tier", tier)

	var out struct {
		MaxPoints      int64 `json:"max_points"`
		TotalAvailable int64 `json:"total_available"`
	}
	if _, err := a.client.GetJSON(ctx, base+"/wallet/discount_quote", params, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrWalletUnavailable, err)
	}
	return &domain.Quote{MaxPoints: out.MaxPoints, TotalAvailable: out.TotalAvailable}, nil
}

// Consume 实现 port.WalletClient。
// 钱包返回 409 表示余额不足，映射为领域错误供上层中止订单。
func (a *WalletHTTPAdapter) Consume(ctx context.Context, ownerID string, points int64) error {
	base, err := a.resolveBase()
	if err != nil {
		return err
	}

	body := map[string]interface{}{"owner_id": ownerID, "points": points}
	status, err := a.client.PostJSON(ctx, base+"/wallet/consume", body, nil)
	if err != nil && status == 0 {
		return fmt.Errorf("%w: %v", domain.ErrWalletUnavailable, err)
	}
	switch status {
	case http.StatusOK:
		return nil
	case http.StatusConflict:
		return domain.ErrInsufficientPoints
	default:
		return fmt.Errorf("%w: wallet returned status %d", domain.ErrWalletUnavailable, status)
	}
}
