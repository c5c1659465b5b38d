package gateway

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
	walletdomain "corre/internal/service/wallet/domain"
)

// WalletEventConsumer 消费钱包事件 topic，把属于在线用户的事件推送出去。
// 不在本节点的用户直接跳过：每个网关节点都消费全量事件（独立消费组），
// 各自只投递本节点持有的连接。
type WalletEventConsumer struct {
	reader      mq.Reader
	hub         *Hub
	pushEnabled func() bool // 功能开关，可随配置中心热更新
	wg          sync.WaitGroup
	stopped     atomic.Bool
}

// NewWalletEventConsumer 创建钱包事件消费者。pushEnabled 为 nil 时视为常开。
func NewWalletEventConsumer(reader mq.Reader, hub *Hub, pushEnabled func() bool) *WalletEventConsumer {
	return &WalletEventConsumer{reader: reader, hub: hub, pushEnabled: pushEnabled}
}

// Start 开始消费。长期运行，随服务生命周期启停。
func (c *WalletEventConsumer) Start(ctx context.Context) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		logger.Logger.Info().Str("topic", c.reader.Config().Topic).Msg("wallet event consumer started")
		for {
			if c.stopped.Load() {
				return
			}
			msg, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					logger.Logger.Info().Msg("wallet event consumer shutting down")
					return
				}
				logger.Logger.Error().Err(err).Msg("could not read wallet event, retrying")
				time.Sleep(time.Second)
				continue
			}

			c.processMessage(ctx, msg)

			if err := c.reader.CommitMessages(ctx, msg); err != nil {
				logger.Logger.Error().Err(err).Msg("failed to commit wallet event offset")
			}
		}
	}()
}

// Stop 优雅地停止消费者。
func (c *WalletEventConsumer) Stop() {
	c.stopped.Store(true)
	c.reader.Close()
	c.wg.Wait()
	logger.Logger.Info().Msg("wallet event consumer stopped")
}

func (c *WalletEventConsumer) processMessage(parentCtx context.Context, msg kafka.Message) {
	propagator := otel.GetTextMapPropagator()
	headerCarrier := mq.KafkaHeaderCarrier(msg.Headers)
	ctx := propagator.Extract(parentCtx, &headerCarrier)

	if c.pushEnabled != nil && !c.pushEnabled() {
		// 开关关闭时仍推进 offset，避免重新打开后洪峰回放
		return
	}

	var event walletdomain.WalletEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		logger.Ctx(ctx).Error().Err(err).Msg("malformed wallet event skipped")
		return
	}
	if event.OwnerID == "" {
		return
	}

	if c.hub.Deliver(event.OwnerID, msg.Value) {
		logger.Ctx(ctx).Debug().
			Str("owner_id", event.OwnerID).
			Str("type", string(event.Type)).
			Msg("wallet event pushed")
	}
}
