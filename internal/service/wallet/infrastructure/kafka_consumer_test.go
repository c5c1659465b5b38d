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
	"corre/internal/service/wallet/application"
	"corre/internal/service/wallet/domain"
)

// fakeReader 是 mq.Reader 的进程内实现，按队列投递消息。
type fakeReader struct {
	msgs   chan kafka.Message
	closed chan struct{}
	once   sync.Once

	mu        sync.Mutex
	committed []kafka.Message
}

var _ mq.Reader = (*fakeReader)(nil)

func newFakeReader() *fakeReader {
	return &fakeReader{
		msgs:   make(chan kafka.Message, 16),
		closed: make(chan struct{}),
	}
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case msg := <-r.msgs:
		return msg, nil
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	case <-r.closed:
		return kafka.Message{}, errors.New("reader closed")
	}
}

func (r *fakeReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *fakeReader) Close() error {
	r.once.Do(func() { close(r.closed) })
	return nil
}

func (r *fakeReader) Config() kafka.ReaderConfig {
	return kafka.ReaderConfig{Topic: "test-topic"}
}

func (r *fakeReader) committedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.committed)
}

func TestGrantCommandConsumerProcessesAndCommits(t *testing.T) {
	svc := application.NewWalletService(
		NewMemoryGrantRepository(),
		NewMemoryXPRepository(),
		NewKeyedOwnerLocker(),
		nil, nil, nil,
		otel.Tracer("consumer-test"),
	)
	reader := newFakeReader()
	consumer := NewGrantCommandConsumerAdapter(reader, svc)

	ctx, cancel := context.WithCancel(context.Background())
	consumer.Start(ctx)

	payload, err := json.Marshal(domain.GrantCommand{
		CommandID: "earn-evt-1",
		OwnerID:   "owner-1",
		Points:    10,
		XP:        1000,
		Cause:     domain.CauseRaceCompletion,
	})
	require.NoError(t, err)
	reader.msgs <- kafka.Message{Key: []byte("owner-1"), Value: payload}

	require.Eventually(t, func() bool {
		snap, err := svc.Snapshot(ctx, "owner-1")
		return err == nil && snap.TotalAvailable == 10
	}, 2*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool {
		return reader.committedCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	consumer.Stop()
}

func TestGrantCommandConsumerStopWhileFetching(t *testing.T) {
	svc := application.NewWalletService(
		NewMemoryGrantRepository(),
		NewMemoryXPRepository(),
		NewKeyedOwnerLocker(),
		nil, nil, nil,
		otel.Tracer("consumer-test"),
	)
	reader := newFakeReader()
	consumer := NewGrantCommandConsumerAdapter(reader, svc)

	ctx, cancel := context.WithCancel(context.Background())
	consumer.Start(ctx)

	// 与启停并发时不得出现竞态；Stop 必须在消费 goroutine 退出后才返回
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
