package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"corre/internal/pkg/mq"
	"corre/internal/service/earning/application"
	"corre/internal/service/earning/domain"
)

type fakeActivityReader struct {
	msgs   chan kafka.Message
	closed chan struct{}
	once   sync.Once
}

var _ mq.Reader = (*fakeActivityReader)(nil)

func newFakeActivityReader() *fakeActivityReader {
	return &fakeActivityReader{
		msgs:   make(chan kafka.Message, 16),
		closed: make(chan struct{}),
	}
}

func (r *fakeActivityReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case msg := <-r.msgs:
		return msg, nil
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	case <-r.closed:
		return kafka.Message{}, errors.New("reader closed")
	}
}

func (r *fakeActivityReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	return nil
}

func (r *fakeActivityReader) Close() error {
	r.once.Do(func() { close(r.closed) })
	return nil
}

func (r *fakeActivityReader) Config() kafka.ReaderConfig {
	return kafka.ReaderConfig{Topic: "test-topic"}
}

type recordingProducer struct {
	mu   sync.Mutex
	cmds []*domain.GrantCommand
}

func (p *recordingProducer) Produce(ctx context.Context, cmd *domain.GrantCommand) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cmds = append(p.cmds, cmd)
	return nil
}

func (p *recordingProducer) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.cmds)
}

func TestActivityConsumerSettlesAndShutsDown(t *testing.T) {
	producer := &recordingProducer{}
	svc := application.NewEarningService(nil, producer, otel.Tracer("earning-consumer-test"), "")
	reader := newFakeActivityReader()
	consumer := NewActivityConsumerAdapter(reader, svc)

	ctx, cancel := context.WithCancel(context.Background())
	consumer.Start(ctx)

	payload, err := json.Marshal(domain.ActivityEvent{
		EventID: "evt-1",
		OwnerID: "owner-1",
		Type:    domain.ActivityRaceFinished,
	})
	require.NoError(t, err)
	reader.msgs <- kafka.Message{Value: payload}

	require.Eventually(t, func() bool {
		return producer.count() == 1
	}, 2*time.Second, 10*time.Millisecond)

	// 并发启停不得竞态，Stop 等待消费 goroutine 退出
	done := make(chan struct{})
	go func() {
		cancel()
		consumer.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("consumer did not shut down")
	}
}
