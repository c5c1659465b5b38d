package application

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"corre/internal/pkg/logger"
	"corre/internal/service/checkout/domain"
	"corre/internal/service/checkout/port"
)

// CheckoutService 编排积分抵扣的结算流程。
// 抵扣上限由钱包侧的档位策略裁决，这里只做编排与兜底校验。
type CheckoutService struct {
	wallet port.WalletClient
	tracer trace.Tracer
}

// NewCheckoutService 创建结算服务。
func NewCheckoutService(wallet port.WalletClient, tracer trace.Tracer) *CheckoutService {
	return &CheckoutService{wallet: wallet, tracer: tracer}
}

// Quote 报价：这笔购物车最多能用多少积分抵扣。
func (s *CheckoutService) Quote(ctx context.Context, req *QuoteRequest) (*QuoteResponse, error) {
	ctx, span := s.tracer.Start(ctx, "checkout.Quote")
	defer span.End()
	span.SetAttributes(
		attribute.String("checkout.owner_id", req.OwnerID),
		attribute.Int64("checkout.cart_total", req.CartTotal),
		attribute.String("checkout.tier", req.Tier),
	)

	if req.CartTotal <= 0 {
		return nil, domain.ErrInvalidCart
	}
	quote, err := s.wallet.DiscountQuote(ctx, req.OwnerID, req.CartTotal, req.Tier)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return &QuoteResponse{
		OwnerID:        req.OwnerID,
		MaxPoints:      quote.MaxPoints,
		TotalAvailable: quote.TotalAvailable,
	}, nil
}

// Commit 提交结算：先复核抵扣上限，再一次性扣减积分。
// 扣减失败（余额不足）时订单整体放弃，不存在半生效状态。
func (s *CheckoutService) Commit(ctx context.Context, req *CommitRequest) (*CommitResponse, error) {
	ctx, span := s.tracer.Start(ctx, "checkout.Commit")
	defer span.End()
	span.SetAttributes(
		attribute.String("checkout.order_id", req.OrderID),
		attribute.String("checkout.owner_id", req.OwnerID),
		attribute.Int64("checkout.points_to_use", req.PointsToUse),
	)

	if req.CartTotal <= 0 || req.PointsToUse < 0 {
		return nil, domain.ErrInvalidCart
	}

	if req.PointsToUse > 0 {
		// 提交前复核上限，防止客户端绕过报价直接提交超额抵扣
		quote, err := s.wallet.DiscountQuote(ctx, req.OwnerID, req.CartTotal, req.Tier)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		if req.PointsToUse > quote.MaxPoints {
			span.RecordError(domain.ErrDiscountExceedsCap)
			return nil, domain.ErrDiscountExceedsCap
		}
		if err := s.wallet.Consume(ctx, req.OwnerID, req.PointsToUse); err != nil {
			span.RecordError(err)
			return nil, err
		}
	}

	logger.Ctx(ctx).Info().
		Str("order_id", req.OrderID).
		Str("owner_id", req.OwnerID).
		Int64("points_used", req.PointsToUse).
		Msg("checkout committed")

	return &CommitResponse{
		OrderID:    req.OrderID,
		PointsUsed: req.PointsToUse,
		CashDue:    req.CartTotal - req.PointsToUse,
	}, nil
}
