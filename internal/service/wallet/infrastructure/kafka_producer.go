package infrastructure

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"corre/internal/pkg/logger"
	"corre/internal/pkg/mq"
	"corre/internal/service/wallet/domain"
)

// WalletEventProducerAdapter 把已提交的钱包事件写入 Kafka。
// 以 owner_id 作为分区键，同一钱包的事件保持有序。
type WalletEventProducerAdapter struct {
	writer *kafka.Writer
}

// NewWalletEventProducerAdapter 创建事件生产者。
func NewWalletEventProducerAdapter(writer *kafka.Writer) *WalletEventProducerAdapter {
	return &WalletEventProducerAdapter{writer: writer}
}

// Publish 实现 domain.EventPublisher。
func (p *WalletEventProducerAdapter) Publish(ctx context.Context, event *domain.WalletEvent) error {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Msg("failed to marshal wallet event")
		return err
	}
	if err := mq.ProduceMessage(ctx, p.writer, []byte(event.OwnerID), eventBytes); err != nil {
		logger.Ctx(ctx).Error().Err(err).Msg("failed to produce wallet event to kafka")
		return err
	}
	return nil
}
