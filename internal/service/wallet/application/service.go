package application

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"corre/internal/pkg/logger"
	"corre/internal/service/wallet/domain"
)

// SnapshotCache 是钱包聚合视图的读缓存端口。
// 缓存未命中返回 (nil, nil)；钱包发生变更后由服务主动失效。
type SnapshotCache interface {
	Get(ctx context.Context, ownerID string) (*domain.WalletSnapshot, error)
	Set(ctx context.Context, ownerID string, snap *domain.WalletSnapshot) error
	Invalidate(ctx context.Context, ownerID string) error
}

// WalletService 编排钱包的全部业务用例。
// 所有变更操作都在 owner 级互斥锁内执行，保证同一钱包串行化；
// 读操作（快照/历史）不加锁，读到的永远是已提交状态。
type WalletService struct {
	grants    domain.GrantRepository
	xp        domain.XPRepository
	locker    domain.OwnerLocker
	publisher domain.EventPublisher
	dedup     domain.CommandDeduplicator
	cache     SnapshotCache
	tracer    trace.Tracer

	snapshotGroup singleflight.Group

	// 测试中可替换的时钟
	now func() time.Time
}

// NewWalletService 创建钱包应用服务。cache 与 dedup 允许为 nil（直读/不去重）。
func NewWalletService(
	grants domain.GrantRepository,
	xp domain.XPRepository,
	locker domain.OwnerLocker,
	publisher domain.EventPublisher,
	dedup domain.CommandDeduplicator,
	cache SnapshotCache,
	tracer trace.Tracer,
) *WalletService {
	return &WalletService{
		grants:    grants,
		xp:        xp,
		locker:    locker,
		publisher: publisher,
		dedup:     dedup,
		cache:     cache,
		tracer:    tracer,
		now:       time.Now,
	}
}

// Grant 发放一笔积分。
func (s *WalletService) Grant(ctx context.Context, req *GrantRequest) (*GrantResponse, error) {
	ctx, span := s.tracer.Start(ctx, "wallet.Grant")
	defer span.End()
	span.SetAttributes(
		attribute.String("wallet.owner_id", req.OwnerID),
		attribute.Int64("wallet.points", req.Points),
		attribute.String("wallet.cause", req.Cause),
	)

	var resp *GrantResponse
	err := s.locker.WithOwnerLock(ctx, req.OwnerID, func(ctx context.Context) error {
		grant, err := domain.NewPointGrant(req.OwnerID, req.Points, domain.Cause(req.Cause), s.now())
		if err != nil {
			return err
		}
		if err := s.grants.Append(ctx, grant); err != nil {
			return err
		}
		s.invalidateSnapshot(ctx, req.OwnerID)
		s.publish(ctx, &domain.WalletEvent{
			Type:    domain.EventPointsGranted,
			OwnerID: req.OwnerID,
			Points:  grant.Amount,
			Cause:   grant.Cause,
			At:      grant.GrantedAt,
		})
		grantsTotal.WithLabelValues(string(grant.Cause)).Inc()
		resp = &GrantResponse{
			GrantID:   grant.ID,
			OwnerID:   grant.OwnerID,
			Points:    grant.Amount,
			Cause:     string(grant.Cause),
			GrantedAt: grant.GrantedAt,
			ExpiresAt: grant.ExpiresAt,
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return resp, nil
}

// Consume 按 "最先过期先花" 的顺序消费积分，全有或全无。
func (s *WalletService) Consume(ctx context.Context, req *ConsumeRequest) (*ConsumeResponse, error) {
	ctx, span := s.tracer.Start(ctx, "wallet.Consume")
	defer span.End()
	span.SetAttributes(
		attribute.String("wallet.owner_id", req.OwnerID),
		attribute.Int64("wallet.points", req.Points),
	)

	resp, err := s.debit(ctx, req.OwnerID, req.Points, domain.EventPointsConsumed)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return resp, nil
}

// RedeemCoupon 用固定积分成本兑换合作商家的券码。
// 复用与 Consume 完全相同的扣减顺序与全有或全无语义。
func (s *WalletService) RedeemCoupon(ctx context.Context, req *RedeemCouponRequest) (*ConsumeResponse, error) {
	ctx, span := s.tracer.Start(ctx, "wallet.RedeemCoupon")
	defer span.End()
	span.SetAttributes(
		attribute.String("wallet.owner_id", req.OwnerID),
		attribute.String("wallet.coupon_code", req.CouponCode),
		attribute.Int64("wallet.points", req.PointsCost),
	)

	if req.PointsCost <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	resp, err := s.debit(ctx, req.OwnerID, req.PointsCost, domain.EventCouponRedeemed)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	logger.Ctx(ctx).Info().
		Str("owner_id", req.OwnerID).
		Str("coupon_code", req.CouponCode).
		Int64("points_cost", req.PointsCost).
		Msg("coupon redeemed")
	return resp, nil
}

// debit 是 Consume 与 RedeemCoupon 共用的扣减核心。
func (s *WalletService) debit(ctx context.Context, ownerID string, points int64, eventType domain.WalletEventType) (*ConsumeResponse, error) {
	var resp *ConsumeResponse
	err := s.locker.WithOwnerLock(ctx, ownerID, func(ctx context.Context) error {
		grants, err := s.grants.FindByOwner(ctx, ownerID)
		if err != nil {
			return err
		}
		now := s.now()
		plan, err := domain.PlanConsumption(grants, points, now)
		if err != nil {
			if err == domain.ErrInsufficientPoints {
				insufficientTotal.Inc()
			}
			return err
		}
		if len(plan) > 0 {
			if err := s.grants.ApplyDebits(ctx, ownerID, plan); err != nil {
				return err
			}
			domain.ApplyPlan(grants, plan)
			s.invalidateSnapshot(ctx, ownerID)
			s.publish(ctx, &domain.WalletEvent{
				Type:    eventType,
				OwnerID: ownerID,
				Points:  points,
				At:      now,
			})
			consumesTotal.Inc()
			pointsConsumed.Add(float64(points))
		}
		resp = &ConsumeResponse{
			Consumed:       points,
			TotalAvailable: domain.TotalAvailable(grants, now),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Snapshot 返回钱包聚合视图。
// 读路径不加 owner 锁；缓存未命中时用 singleflight 合并并发重建。
func (s *WalletService) Snapshot(ctx context.Context, ownerID string) (*SnapshotResponse, error) {
	ctx, span := s.tracer.Start(ctx, "wallet.Snapshot")
	defer span.End()
	span.SetAttributes(attribute.String("wallet.owner_id", ownerID))

	if s.cache != nil {
		if snap, err := s.cache.Get(ctx, ownerID); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Msg("snapshot cache read failed, falling back to repository")
		} else if snap != nil {
			return toSnapshotResponse(ownerID, snap), nil
		}
	}

	v, err, _ := s.snapshotGroup.Do(ownerID, func() (interface{}, error) {
		grants, err := s.grants.FindByOwner(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		snap := domain.BuildSnapshot(grants, s.now())
		if s.cache != nil {
			if err := s.cache.Set(ctx, ownerID, snap); err != nil {
				logger.Ctx(ctx).Warn().Err(err).Msg("snapshot cache write failed")
			}
		}
		return snap, nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return toSnapshotResponse(ownerID, v.(*domain.WalletSnapshot)), nil
}

// History 返回发放历史，仅用于展示。
func (s *WalletService) History(ctx context.Context, ownerID string, limit int) (*HistoryResponse, error) {
	ctx, span := s.tracer.Start(ctx, "wallet.History")
	defer span.End()
	span.SetAttributes(attribute.String("wallet.owner_id", ownerID))

	grants, err := s.grants.History(ctx, ownerID, limit)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	resp := &HistoryResponse{OwnerID: ownerID, Grants: make([]GrantView, 0, len(grants))}
	for _, g := range grants {
		resp.Grants = append(resp.Grants, GrantView{
			GrantID:   g.ID,
			Points:    g.Amount,
			Remaining: g.Remaining,
			Cause:     string(g.Cause),
			GrantedAt: g.GrantedAt,
			ExpiresAt: g.ExpiresAt,
		})
	}
	return resp, nil
}

// AddXP 增加经验值。计数器只增不减，等级随后按门槛表重新推导。
func (s *WalletService) AddXP(ctx context.Context, req *AddXPRequest) (*ProgressResponse, error) {
	ctx, span := s.tracer.Start(ctx, "wallet.AddXP")
	defer span.End()
	span.SetAttributes(
		attribute.String("wallet.owner_id", req.OwnerID),
		attribute.Int64("wallet.xp_delta", req.Delta),
	)

	if req.Delta <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	var resp *ProgressResponse
	err := s.locker.WithOwnerLock(ctx, req.OwnerID, func(ctx context.Context) error {
		before, err := s.xp.CurrentXP(ctx, req.OwnerID)
		if err != nil {
			return err
		}
		after, err := s.xp.AddXP(ctx, req.OwnerID, req.Delta)
		if err != nil {
			return err
		}
		now := s.now()
		s.publish(ctx, &domain.WalletEvent{
			Type:    domain.EventXPAdded,
			OwnerID: req.OwnerID,
			Points:  req.Delta,
			At:      now,
		})
		progress := domain.Progress(after)
		if domain.Progress(before).Level != progress.Level {
			s.publish(ctx, &domain.WalletEvent{
				Type:    domain.EventLevelUp,
				OwnerID: req.OwnerID,
				Level:   progress.Level,
				At:      now,
			})
		}
		resp = toProgressResponse(req.OwnerID, progress)
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return resp, nil
}

// Progress 返回成长等级视图。
func (s *WalletService) Progress(ctx context.Context, ownerID string) (*ProgressResponse, error) {
	ctx, span := s.tracer.Start(ctx, "wallet.Progress")
	defer span.End()
	span.SetAttributes(attribute.String("wallet.owner_id", ownerID))

	currentXP, err := s.xp.CurrentXP(ctx, ownerID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return toProgressResponse(ownerID, domain.Progress(currentXP)), nil
}

// DiscountQuote 报价一笔购物车最多可抵扣多少积分。
func (s *WalletService) DiscountQuote(ctx context.Context, ownerID string, cartTotal int64, tier string) (*DiscountQuoteResponse, error) {
	ctx, span := s.tracer.Start(ctx, "wallet.DiscountQuote")
	defer span.End()
	span.SetAttributes(
		attribute.String("wallet.owner_id", ownerID),
		attribute.Int64("wallet.cart_total", cartTotal),
		attribute.String("wallet.tier", tier),
	)

	snap, err := s.Snapshot(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return &DiscountQuoteResponse{
		OwnerID:        ownerID,
		MaxPoints:      domain.MaxPointsDiscount(cartTotal, domain.Tier(tier), snap.TotalAvailable),
		TotalAvailable: snap.TotalAvailable,
	}, nil
}

// HandleGrantCommand 处理上游投递的入账命令（Kafka 驱动）。
// 同一 CommandID 只入账一次；重复命令静默跳过。
func (s *WalletService) HandleGrantCommand(ctx context.Context, cmd *domain.GrantCommand) error {
	ctx, span := s.tracer.Start(ctx, "wallet.HandleGrantCommand", trace.WithSpanKind(trace.SpanKindConsumer))
	defer span.End()
	span.SetAttributes(
		attribute.String("wallet.command_id", cmd.CommandID),
		attribute.String("wallet.owner_id", cmd.OwnerID),
	)

	if cmd.CommandID == "" || cmd.OwnerID == "" || (cmd.Points <= 0 && cmd.XP <= 0) {
		span.RecordError(domain.ErrMalformedEvent)
		return domain.ErrMalformedEvent
	}
	if cmd.Points > 0 && !cmd.Cause.Valid() {
		span.RecordError(domain.ErrUnknownCause)
		return domain.ErrUnknownCause
	}

	if s.dedup != nil {
		fresh, err := s.dedup.MarkProcessed(ctx, cmd.CommandID)
		if err != nil {
			return err
		}
		if !fresh {
			logger.Ctx(ctx).Info().Str("command_id", cmd.CommandID).Msg("duplicate grant command skipped")
			return nil
		}
	}

	if cmd.Points > 0 {
		if _, err := s.Grant(ctx, &GrantRequest{
			OwnerID: cmd.OwnerID,
			Points:  cmd.Points,
			Cause:   string(cmd.Cause),
		}); err != nil {
			return err
		}
	}
	if cmd.XP > 0 {
		if _, err := s.AddXP(ctx, &AddXPRequest{OwnerID: cmd.OwnerID, Delta: cmd.XP}); err != nil {
			return err
		}
	}
	return nil
}

func (s *WalletService) invalidateSnapshot(ctx context.Context, ownerID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, ownerID); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("owner_id", ownerID).Msg("snapshot cache invalidation failed")
	}
}

func (s *WalletService) publish(ctx context.Context, event *domain.WalletEvent) {
	if s.publisher == nil {
		return
	}
	// 事件发布失败不回滚账本变更，只记日志。推送属于尽力而为的下游。
	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("owner_id", event.OwnerID).Msg("failed to publish wallet event")
	}
}
