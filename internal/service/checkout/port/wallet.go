package port

import (
	"context"

	"corre/internal/service/checkout/domain"
)

// WalletClient 是结算流程对钱包服务的出站端口。
type WalletClient interface {
	// DiscountQuote 查询这笔购物车最多可抵扣的积分数。
	DiscountQuote(ctx context.Context, ownerID string, cartTotal int64, tier string) (*domain.Quote, error)
	// Consume 扣减积分，全有或全无。余额不足返回 domain.ErrInsufficientPoints。
	Consume(ctx context.Context, ownerID string, points int64) error
}
