package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/eventnotify/server/internal/notifier"
)

func startHub(t *testing.T) *Hub {
	t.Helper()

	hub := NewHub()
	go hub.Run()

	t.Cleanup(hub.Shutdown)
	return hub
}

func subscribe(t *testing.T, hub *Hub, id, channel, ip string) *Client {
	t.Helper()

	client := NewClient(id, channel, "", ip, nil, hub)
	require.NoError(t, hub.Subscribe(client))

	// the subscription confirmation is always the first frame
	msg := receive(t, client)
	require.Equal(t, TypeSubscribed, msg.Type)

	return client
}

func receive(t *testing.T, client *Client) *Message {
	t.Helper()

	select {
	case data, ok := <-client.send:
		require.True(t, ok, "send channel closed")

		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		return &msg

	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func assertNothingReceived(t *testing.T, client *Client) {
	t.Helper()

	select {
	case data := <-client.send:
		t.Fatalf("unexpected message: %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubCreation(t *testing.T) {
	hub := NewHub()

	require.NotNil(t, hub)
	assert.NotNil(t, hub.Register)
	assert.NotNil(t, hub.Unregister)
	assert.Equal(t, 0, hub.TotalClients())
}

func TestHubSubscribe(t *testing.T) {
	hub := startHub(t)

	subscribe(t, hub, "c1", "user-1", "10.0.0.1")

	assert.Equal(t, 1, hub.ClientCount("user-1"))
	assert.Equal(t, 1, hub.TotalClients())
}

func TestHubUnsubscribe(t *testing.T) {
	hub := startHub(t)
	client := subscribe(t, hub, "c1", "user-1", "10.0.0.1")

	hub.Unregister <- client

	assert.Eventually(t, func() bool { return hub.ClientCount("user-1") == 0 }, time.Second, 10*time.Millisecond)
	assert.True(t, client.IsClosed())
	assert.True(t, hub.CanAccept("10.0.0.1"))
}

func TestHubPublish_ChannelScoped(t *testing.T) {
	hub := startHub(t)
	alice := subscribe(t, hub, "a", "alice", "")
	bob := subscribe(t, hub, "b", "bob", "")

	require.NoError(t, hub.Publish("alice", notifier.New(notifier.KindDanger, "Page not found")))

	msg := receive(t, alice)
	assert.Equal(t, TypeNotification, msg.Type)
	assert.Equal(t, "alice", msg.Channel)
	assert.Equal(t, uint64(1), msg.Sequence)

	var n notifier.Notification
	require.NoError(t, json.Unmarshal(msg.Payload, &n))
	assert.Equal(t, "Page not found", n.Message)
	assert.Equal(t, notifier.KindDanger, n.Type)

	assertNothingReceived(t, bob)
}

func TestHubPublish_BroadcastReachesEveryone(t *testing.T) {
	hub := startHub(t)
	alice := subscribe(t, hub, "a", "alice", "")
	anon := subscribe(t, hub, "b", notifier.BroadcastChannel, "")

	require.NoError(t, hub.Publish("", notifier.New(notifier.KindSuccess, "Maintenance done")))

	assert.Equal(t, TypeNotification, receive(t, alice).Type)
	assert.Equal(t, TypeNotification, receive(t, anon).Type)
}

func TestHubPublish_SkipsClosedClients(t *testing.T) {
	hub := startHub(t)
	closed := subscribe(t, hub, "a", "alice", "")
	open := subscribe(t, hub, "b", "alice", "")

	// closed but not yet unregistered, as after a buffer overflow
	closed.Close()

	require.NoError(t, hub.Publish("alice", notifier.New(notifier.KindSuccess, "ok")))

	assert.Equal(t, TypeNotification, receive(t, open).Type)
	assert.Equal(t, 2, hub.ClientCount("alice"))
}

func TestHubPublish_SequencePerChannel(t *testing.T) {
	hub := startHub(t)
	alice := subscribe(t, hub, "a", "alice", "")

	for range 3 {
		require.NoError(t, hub.Publish("alice", notifier.New(notifier.KindSuccess, "ok")))
	}

	for want := uint64(1); want <= 3; want++ {
		assert.Equal(t, want, receive(t, alice).Sequence)
	}
}

func TestHubPublish_AfterShutdown(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	hub.Shutdown()
	<-hub.Done()

	err := hub.Publish("alice", notifier.New(notifier.KindSuccess, "late"))
	assert.ErrorIs(t, err, ErrHubClosed)
	assert.ErrorIs(t, hub.Subscribe(NewClient("c", "x", "", "", nil, hub)), ErrHubClosed)
}

func TestHubShutdown_NotifiesClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := subscribe(t, hub, "a", "alice", "")

	hub.Shutdown()
	<-hub.Done()

	msg := receive(t, client)
	assert.Equal(t, TypeServerShutdown, msg.Type)
	assert.True(t, client.IsClosed())
	assert.Equal(t, 0, hub.TotalClients())

	// shutting down twice is harmless
	assert.NotPanics(t, hub.Shutdown)
}

func TestHubConnectionLimitPerIP(t *testing.T) {
	hub := startHub(t)

	for i := range maxConnectionsPerIP {
		require.True(t, hub.CanAccept("10.0.0.9"))
		subscribe(t, hub, string(rune('a'+i)), "alice", "10.0.0.9")
	}

	assert.False(t, hub.CanAccept("10.0.0.9"))
	assert.True(t, hub.CanAccept("10.0.0.10"))
	assert.True(t, hub.CanAccept(""))
}

func TestHubPing(t *testing.T) {
	hub := startHub(t)
	hub.RegisterHandler(TypePing, PingHandler())

	client := subscribe(t, hub, "a", "alice", "")

	msg, err := client.parse([]byte(`{"type":"ping"}`))
	require.NoError(t, err)
	hub.inbound <- msg

	assert.Equal(t, TypePong, receive(t, client).Type)
}

func TestHubUnhandledType(t *testing.T) {
	hub := startHub(t)
	client := subscribe(t, hub, "a", "alice", "")

	msg, err := client.parse([]byte(`{"type":"play"}`))
	require.NoError(t, err)
	hub.inbound <- msg

	reply := receive(t, client)
	assert.Equal(t, TypeError, reply.Type)

	var payload ErrorPayload
	require.NoError(t, json.Unmarshal(reply.Payload, &payload))
	assert.Equal(t, "bad_request", payload.Error)
}

func TestHubDismiss(t *testing.T) {
	hub := startHub(t)

	dismissed := make(chan string, 1)
	hub.RegisterHandler(TypeDismiss, DismissHandler(func(_ *Client, id string) {
		dismissed <- id
	}))

	client := subscribe(t, hub, "a", "alice", "")

	msg, err := client.parse([]byte(`{"type":"dismiss","payload":{"notification_id":"n-1"}}`))
	require.NoError(t, err)
	hub.inbound <- msg

	select {
	case id := <-dismissed:
		assert.Equal(t, "n-1", id)
	case <-time.After(time.Second):
		t.Fatal("dismiss handler not called")
	}
}

func TestHubDismiss_InvalidPayload(t *testing.T) {
	hub := startHub(t)
	hub.RegisterHandler(TypeDismiss, DismissHandler(nil))

	client := subscribe(t, hub, "a", "alice", "")

	msg, err := client.parse([]byte(`{"type":"dismiss","payload":{}}`))
	require.NoError(t, err)
	hub.inbound <- msg

	assert.Equal(t, TypeError, receive(t, client).Type)
}
