package gateway

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newConnectedClient(t *testing.T, hub *Hub, ownerID string) *Client {
	t.Helper()
	client := &Client{hub: hub, send: make(chan []byte, 4), ownerID: ownerID}
	hub.register <- client
	waitForOnline(t, hub, ownerID)
	return client
}

func waitForOnline(t *testing.T, hub *Hub, ownerID string) {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		hub.lock.RLock()
		_, ok := hub.clients[ownerID]
		hub.lock.RUnlock()
		if ok {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("client %s never registered", ownerID)
		case <-time.After(time.Millisecond):
		}
	}
}

func TestHubDeliverToRegisteredClient(t *testing.T) {
	hub := NewHub("node-test")
	go hub.Run()

	client := newConnectedClient(t, hub, "owner-1")

	require.True(t, hub.Deliver("owner-1", []byte(`{"type":"points_granted"}`)))
	select {
	case payload := <-client.send:
		require.JSONEq(t, `{"type":"points_granted"}`, string(payload))
	case <-time.After(time.Second):
		t.Fatal("message never delivered")
	}

	require.False(t, hub.Deliver("owner-2", []byte("x")))
}

func TestHubUnregisterClosesSendChannel(t *testing.T) {
	hub := NewHub("node-test")
	go hub.Run()

	client := newConnectedClient(t, hub, "owner-1")
	require.Equal(t, 1, hub.OnlineCount())

	hub.unregister <- client
	select {
	case _, open := <-client.send:
		require.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("send channel never closed")
	}
	require.False(t, hub.Deliver("owner-1", []byte("x")))
}

func TestHubReplacesDuplicateConnection(t *testing.T) {
	hub := NewHub("node-test")
	go hub.Run()

	first := newConnectedClient(t, hub, "owner-1")
	second := &Client{hub: hub, send: make(chan []byte, 4), ownerID: "owner-1"}
	hub.register <- second

	// 旧连接的 send channel 被关闭，新连接接管投递
	select {
	case _, open := <-first.send:
		require.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("old connection never evicted")
	}

	require.True(t, hub.Deliver("owner-1", []byte("hello")))
	select {
	case payload := <-second.send:
		require.Equal(t, "hello", string(payload))
	case <-time.After(time.Second):
		t.Fatal("message never delivered to new connection")
	}
	require.Equal(t, 1, hub.OnlineCount())
}

func TestHubDropsWhenSendBufferFull(t *testing.T) {
	hub := NewHub("node-test")
	go hub.Run()

	client := &Client{hub: hub, send: make(chan []byte, 1), ownerID: "owner-1"}
	hub.register <- client
	waitForOnline(t, hub, "owner-1")

	require.True(t, hub.Deliver("owner-1", []byte("first")))
	require.False(t, hub.Deliver("owner-1", []byte("second")))
}
