package application

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"corre/internal/pkg/logger"
	"corre/internal/service/earning/domain"
)

// EarningService 把活动事实结算为钱包入账命令。
type EarningService struct {
	ruleEngine domain.RuleEngine
	producer   domain.GrantCommandProducer
	tracer     trace.Tracer

	// 资格规则表达式。空串表示放行全部活动。
	eligibilityRule string
}

// NewEarningService 创建收益结算服务。
func NewEarningService(ruleEngine domain.RuleEngine, producer domain.GrantCommandProducer, tracer trace.Tracer, eligibilityRule string) *EarningService {
	return &EarningService{
		ruleEngine:      ruleEngine,
		producer:        producer,
		tracer:          tracer,
		eligibilityRule: eligibilityRule,
	}
}

// HandleActivityEvent 结算一次活动并投递入账命令。
// 命令 ID 由事件 ID 派生，同一事件重放不会导致重复入账（钱包侧去重）。
func (s *EarningService) HandleActivityEvent(ctx context.Context, event *domain.ActivityEvent) error {
	ctx, span := s.tracer.Start(ctx, "earning.HandleActivityEvent", trace.WithSpanKind(trace.SpanKindConsumer))
	defer span.End()
	span.SetAttributes(
		attribute.String("activity.event_id", event.EventID),
		attribute.String("activity.owner_id", event.OwnerID),
		attribute.String("activity.type", string(event.Type)),
	)

	award, err := domain.ComputeAward(event)
	if err != nil {
		span.RecordError(err)
		return err
	}

	if s.eligibilityRule != "" && s.ruleEngine != nil {
		eligible, err := s.ruleEngine.Evaluate(ctx, s.eligibilityRule, domain.Fact{
			OwnerID:    event.OwnerID,
			Type:       string(event.Type),
			Kind:       string(event.CheckinKind),
			DistanceKM: event.DistanceKM,
			Hour:       event.OccurredAt.Hour(),
		})
		if err != nil {
			span.RecordError(err)
			return fmt.Errorf("rule evaluation failed: %w", err)
		}
		if !eligible {
			span.AddEvent("activity rejected by eligibility rule")
			logger.Ctx(ctx).Info().
				Str("event_id", event.EventID).
				Str("owner_id", event.OwnerID).
				Msg("activity not eligible for award")
			return domain.ErrNotEligible
		}
	}

	cmd := &domain.GrantCommand{
		CommandID: "earn-" + event.EventID,
		OwnerID:   event.OwnerID,
		Points:    award.Points,
		XP:        award.XP,
		Cause:     award.Cause,
		Reason:    string(event.Type),
	}
	if err := s.producer.Produce(ctx, cmd); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to produce grant command: %w", err)
	}

	span.SetAttributes(
		attribute.Int64("award.points", award.Points),
		attribute.Int64("award.xp", award.XP),
	)
	logger.Ctx(ctx).Info().
		Str("event_id", event.EventID).
		Str("owner_id", event.OwnerID).
		Int64("points", award.Points).
		Int64("xp", award.XP).
		Msg("activity settled")
	return nil
}
