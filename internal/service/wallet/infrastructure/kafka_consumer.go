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
	"corre/internal/service/wallet/application"
	"corre/internal/service/wallet/domain"
)

// GrantCommandConsumerAdapter 监听入账命令 topic 并驱动钱包应用服务。
type GrantCommandConsumerAdapter struct {
	reader  mq.Reader
	appSvc  *application.WalletService
	wg      sync.WaitGroup
	stopped atomic.Bool
}

// NewGrantCommandConsumerAdapter 创建入账命令消费者。
func NewGrantCommandConsumerAdapter(reader mq.Reader, appSvc *application.WalletService) *GrantCommandConsumerAdapter {
	return &GrantCommandConsumerAdapter{reader: reader, appSvc: appSvc}
}

// Start 开始消费。长期运行，随服务生命周期启停。
func (a *GrantCommandConsumerAdapter) Start(ctx context.Context) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		logger.Logger.Info().Str("topic", a.reader.Config().Topic).Msg("grant command consumer started")
		for {
			if a.stopped.Load() {
				return
			}
			// FetchMessage 而不是 ReadMessage，便于控制提交时机与退出
			msg, err := a.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					logger.Logger.Info().Msg("grant command consumer shutting down")
					return
				}
				logger.Logger.Error().Err(err).Msg("could not read grant command, retrying")
				time.Sleep(time.Second)
				continue
			}

			a.processMessage(ctx, msg)

			if err := a.reader.CommitMessages(ctx, msg); err != nil {
				logger.Logger.Error().Err(err).Msg("failed to commit grant command offset")
			}
		}
	}()
}

// Stop 优雅地停止消费者。
func (a *GrantCommandConsumerAdapter) Stop() {
	a.stopped.Store(true)
	a.reader.Close()
	a.wg.Wait()
	logger.Logger.Info().Msg("grant command consumer stopped")
}

// processMessage 解码命令并交给应用服务。
// 解码失败的消息记日志后跳过（生产环境应进死信队列），不阻塞 offset。
func (a *GrantCommandConsumerAdapter) processMessage(parentCtx context.Context, msg kafka.Message) {
	propagator := otel.GetTextMapPropagator()
	headerCarrier := mq.KafkaHeaderCarrier(msg.Headers)
	ctx := propagator.Extract(parentCtx, &headerCarrier)

	var cmd domain.GrantCommand
	if err := json.Unmarshal(msg.Value, &cmd); err != nil {
		logger.Ctx(ctx).Error().Err(err).Msg("malformed grant command skipped")
		return
	}

	if err := a.appSvc.HandleGrantCommand(ctx, &cmd); err != nil {
		logger.Ctx(ctx).Error().Err(err).
			Str("command_id", cmd.CommandID).
			Str("owner_id", cmd.OwnerID).
			Msg("failed to handle grant command")
	}
}
