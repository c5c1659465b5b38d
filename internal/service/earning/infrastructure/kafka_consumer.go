package infrastructure

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"

	"corre/internal/pkg/logger"
	"corre/internal/pkg/mq"
	"corre/internal/service/earning/application"
	"corre/internal/service/earning/domain"
)

// ActivityConsumerAdapter 监听活动事件 topic 并驱动收益结算服务。
type ActivityConsumerAdapter struct {
	reader  mq.Reader
	appSvc  *application.EarningService
	wg      sync.WaitGroup
	stopped atomic.Bool
}

// NewActivityConsumerAdapter 创建活动事件消费者。
func NewActivityConsumerAdapter(reader mq.Reader, appSvc *application.EarningService) *ActivityConsumerAdapter {
	return &ActivityConsumerAdapter{reader: reader, appSvc: appSvc}
}

// Start 开始消费活动事件。
func (a *ActivityConsumerAdapter) Start(ctx context.Context) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		logger.Logger.Info().Str("topic", a.reader.Config().Topic).Msg("activity consumer started")
		for {
			if a.stopped.Load() {
				return
			}
			msg, err := a.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					logger.Logger.Info().Msg("activity consumer shutting down")
					return
				}
				logger.Logger.Error().Err(err).Msg("could not read activity event, retrying")
				time.Sleep(time.Second)
				continue
			}

			a.processMessage(ctx, msg)

			if err := a.reader.CommitMessages(ctx, msg); err != nil {
				logger.Logger.Error().Err(err).Msg("failed to commit activity offset")
			}
		}
	}()
}

// Stop 优雅地停止消费者。
func (a *ActivityConsumerAdapter) Stop() {
	a.stopped.Store(true)
	a.reader.Close()
	a.wg.Wait()
	logger.Logger.Info().Msg("activity consumer stopped")
}

func (a *ActivityConsumerAdapter) processMessage(parentCtx context.Context, msg kafka.Message) {
	propagator := otel.GetTextMapPropagator()
	headerCarrier := mq.KafkaHeaderCarrier(msg.Headers)
	ctx := propagator.Extract(parentCtx, &headerCarrier)

	var event domain.ActivityEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		logger.Ctx(ctx).Error().Err(err).Msg("malformed activity event skipped")
		return
	}

	if err := a.appSvc.HandleActivityEvent(ctx, &event); err != nil {
		// 不合格的活动不是故障，照常提交 offset
		if err == domain.ErrNotEligible {
			return
		}
		logger.Ctx(ctx).Error().Err(err).
			Str("event_id", event.EventID).
			Msg("failed to settle activity event")
	}
}
