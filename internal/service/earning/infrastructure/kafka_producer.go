package infrastructure

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"corre/internal/pkg/logger"
	"corre/internal/pkg/mq"
	"corre/internal/service/earning/domain"
)

// GrantCommandProducerAdapter 把入账命令写入钱包 topic。
type GrantCommandProducerAdapter struct {
	writer *kafka.Writer
}

// NewGrantCommandProducerAdapter 创建入账命令生产者。
func NewGrantCommandProducerAdapter(writer *kafka.Writer) *GrantCommandProducerAdapter {
	return &GrantCommandProducerAdapter{writer: writer}
}

// Produce 实现 domain.GrantCommandProducer。按 owner_id 分区保证有序。
func (p *GrantCommandProducerAdapter) Produce(ctx context.Context, cmd *domain.GrantCommand) error {
	cmdBytes, err := json.Marshal(cmd)
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Msg("failed to marshal grant command")
		return err
	}
	if err := mq.ProduceMessage(ctx, p.writer, []byte(cmd.OwnerID), cmdBytes); err != nil {
		logger.Ctx(ctx).Error().Err(err).Msg("failed to produce grant command to kafka")
		return err
	}
	return nil
}
