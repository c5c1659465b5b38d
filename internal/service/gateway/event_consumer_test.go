package gateway

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"corre/internal/pkg/mq"
)

type fakeEventReader struct {
	msgs   chan kafka.Message
	closed chan struct{}
	once   sync.Once

	mu        sync.Mutex
	committed int
}

var _ mq.Reader = (*fakeEventReader)(nil)

func newFakeEventReader() *fakeEventReader {
	return &fakeEventReader{
		msgs:   make(chan kafka.Message, 16),
		closed: make(chan struct{}),
	}
}

func (r *fakeEventReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case msg := <-r.msgs:
		return msg, nil
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	case <-r.closed:
		return kafka.Message{}, errors.New("reader closed")
	}
}

func (r *fakeEventReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed += len(msgs)
	return nil
}

func (r *fakeEventReader) Close() error {
	r.once.Do(func() { close(r.closed) })
	return nil
}

func (r *fakeEventReader) Config() kafka.ReaderConfig {
	return kafka.ReaderConfig{Topic: "test-topic"}
}

func (r *fakeEventReader) committedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.committed
}

func TestWalletEventConsumerDeliversToHub(t *testing.T) {
	hub := NewHub("node-test")
	go hub.Run()
	client := newConnectedClient(t, hub, "owner-1")

	reader := newFakeEventReader()
	consumer := NewWalletEventConsumer(reader, hub, nil)
	ctx, cancel := context.WithCancel(context.Background())
	consumer.Start(ctx)

	payload := []byte(`{"type":"points_granted","owner_id":"owner-1","points":10}`)
	reader.msgs <- kafka.Message{Key: []byte("owner-1"), Value: payload}

	select {
	case got := <-client.send:
		require.JSONEq(t, string(payload), string(got))
	case <-time.After(2 * time.Second):
		t.Fatal("event never delivered")
	}

	cancel()
	consumer.Stop()
}

func TestWalletEventConsumerHonorsFeatureFlag(t *testing.T) {
	hub := NewHub("node-test")
	go hub.Run()
	client := newConnectedClient(t, hub, "owner-1")

	reader := newFakeEventReader()
	consumer := NewWalletEventConsumer(reader, hub, func() bool { return false })
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	consumer.Start(ctx)

	reader.msgs <- kafka.Message{Value: []byte(`{"type":"points_granted","owner_id":"owner-1"}`)}

	// 开关关闭：消息被跳过但 offset 照常推进
	require.Eventually(t, func() bool {
		return reader.committedCount() == 1
	}, 2*time.Second, 10*time.Millisecond)
	select {
	case <-client.send:
		t.Fatal("event delivered despite disabled push")
	case <-time.After(100 * time.Millisecond):
	}

	cancel()
	consumer.Stop()
}
