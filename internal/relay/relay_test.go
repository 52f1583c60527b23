package relay

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/eventnotify/server/internal/notifier"
)

type localCapture struct {
	channel string
	n       notifier.Notification
	err     error
}

func (l *localCapture) Publish(channel string, n notifier.Notification) error {
	l.channel = channel
	l.n = n
	return l.err
}

type published struct {
	channel string
	n       notifier.Notification
}

// hands every published notification to a channel, for relays running in goroutines
type chanPublisher chan published

func (p chanPublisher) Publish(channel string, n notifier.Notification) error {
	p <- published{channel: channel, n: n}
	return nil
}

const testTopic = "eventnotify:test"

// starts Run in the background and waits until redis reports the subscription
func runRelay(t *testing.T, mr *miniredis.Miniredis, local notifier.Publisher, subscribers int) *Relay {
	t.Helper()

	r, err := Connect(context.Background(), "redis://"+mr.Addr(), testTopic, local)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() { done <- r.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
		assert.NoError(t, r.Close())
	})

	require.Eventually(t, func() bool {
		return mr.PubSubNumSub(testTopic)[testTopic] == subscribers
	}, time.Second, 10*time.Millisecond)

	return r
}

func expectPublished(t *testing.T, local chanPublisher) published {
	t.Helper()

	select {
	case p := <-local:
		return p
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for relayed notification")
		return published{}
	}
}

func newTestRelay(local notifier.Publisher) *Relay {
	// never dialed; dispatch does not touch redis
	return New(redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}), "test", local)
}

func TestDispatch_ForwardsToLocal(t *testing.T) {
	local := &localCapture{}
	r := newTestRelay(local)

	n := notifier.New(notifier.KindDanger, "Page not found")
	data, err := json.Marshal(Envelope{Channel: "alice", Notification: n})
	require.NoError(t, err)

	require.NoError(t, r.dispatch(string(data)))

	assert.Equal(t, "alice", local.channel)
	assert.Equal(t, n.ID, local.n.ID)
	assert.Equal(t, "Page not found", local.n.Message)
	assert.True(t, local.n.CreatedAt.Equal(n.CreatedAt))
}

func TestDispatch_EmptyChannelIsBroadcast(t *testing.T) {
	local := &localCapture{}
	r := newTestRelay(local)

	require.NoError(t, r.dispatch(`{"notification":{"message":"hi"}}`))
	assert.Equal(t, notifier.BroadcastChannel, local.channel)
}

func TestDispatch_Errors(t *testing.T) {
	r := newTestRelay(&localCapture{})
	assert.Error(t, r.dispatch("not json"))

	failing := newTestRelay(&localCapture{err: errors.New("hub is shut down")})
	assert.Error(t, failing.dispatch(`{"channel":"a","notification":{}}`))
}

func TestConnect_InvalidURL(t *testing.T) {
	_, err := Connect(context.Background(), "not-a-url", "topic", &localCapture{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse redis url")
}

func TestPublish_UnreachableRedis(t *testing.T) {
	r := newTestRelay(&localCapture{})
	defer r.Close() //nolint:errcheck // test cleanup

	err := r.Publish("alice", notifier.New(notifier.KindSuccess, "x"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to publish to redis")
}

func TestRun_ForwardsPublishedNotifications(t *testing.T) {
	mr := miniredis.RunT(t)
	local := make(chanPublisher, 1)
	r := runRelay(t, mr, local, 1)

	n := notifier.New(notifier.KindDanger, "Page not found")
	require.NoError(t, r.Publish("alice", n))

	got := expectPublished(t, local)
	assert.Equal(t, "alice", got.channel)
	assert.Equal(t, n.ID, got.n.ID)
	assert.Equal(t, "Page not found", got.n.Message)
}

func TestRun_FansOutAcrossInstances(t *testing.T) {
	mr := miniredis.RunT(t)
	first := make(chanPublisher, 1)
	second := make(chanPublisher, 1)

	sender := runRelay(t, mr, first, 1)
	runRelay(t, mr, second, 2)

	require.NoError(t, sender.Publish("", notifier.New(notifier.KindSuccess, "Maintenance done")))

	assert.Equal(t, notifier.BroadcastChannel, expectPublished(t, first).channel)
	assert.Equal(t, notifier.BroadcastChannel, expectPublished(t, second).channel)
}

func TestRun_SkipsInvalidEnvelopes(t *testing.T) {
	mr := miniredis.RunT(t)
	local := make(chanPublisher, 1)
	r := runRelay(t, mr, local, 1)

	mr.Publish(testTopic, "not json")
	require.NoError(t, r.Publish("bob", notifier.New(notifier.KindSuccess, "ok")))

	assert.Equal(t, "bob", expectPublished(t, local).channel)
}

func TestRun_SubscribeFailure(t *testing.T) {
	r := newTestRelay(&localCapture{})
	defer r.Close() //nolint:errcheck // test cleanup

	err := r.Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to subscribe")
}
