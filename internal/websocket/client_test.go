package websocket

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientParse(t *testing.T) {
	client := NewClient("c1", "alice", "alice", "", nil, NewHub())

	msg, err := client.parse([]byte(`{"type":"ping","channel":"someone-else"}`))
	require.NoError(t, err)

	assert.Equal(t, TypePing, msg.Type)
	assert.Equal(t, "alice", msg.Channel, "clients cannot address other channels")
	assert.Equal(t, "c1", msg.ClientID)
	assert.False(t, msg.Timestamp.IsZero())
}

func TestClientParse_Invalid(t *testing.T) {
	client := NewClient("c1", "alice", "", "", nil, NewHub())

	for _, frame := range []string{`not json`, `{}`, `{"type":""}`} {
		_, err := client.parse([]byte(frame))
		assert.ErrorIs(t, err, ErrInvalidMessage, frame)
	}
}

func TestClientParse_RateLimited(t *testing.T) {
	client := NewClient("c1", "alice", "", "", nil, NewHub())

	var limited int

	for range inboundBurst + 5 {
		if _, err := client.parse([]byte(`{"type":"ping"}`)); err == ErrRateLimitExceeded {
			limited++
		}
	}

	assert.GreaterOrEqual(t, limited, 4)
}

func TestClientSend_AfterClose(t *testing.T) {
	client := NewClient("c1", "alice", "", "", nil, NewHub())
	client.Close()

	msg, err := NewMessage(TypePong, "alice", nil)
	require.NoError(t, err)

	assert.ErrorIs(t, client.Send(msg), ErrConnectionClosed)
	assert.NotPanics(t, client.Close)
}

func TestClientSend_OverflowCloses(t *testing.T) {
	client := NewClient("c1", "alice", "", "", nil, NewHub())

	msg, err := NewMessage(TypePong, "alice", nil)
	require.NoError(t, err)

	for range sendBufferSize {
		require.NoError(t, client.Send(msg))
	}

	assert.ErrorIs(t, client.Send(msg), ErrConnectionClosed)
	assert.True(t, client.IsClosed())
}

func TestOriginChecker(t *testing.T) {
	req := httptest.NewRequest("GET", "/ws", nil)
	req.Header.Set("Origin", "https://events.example")

	assert.True(t, OriginChecker(nil, false)(req))
	assert.False(t, OriginChecker(nil, true)(req))
	assert.True(t, OriginChecker([]string{"https://events.example"}, true)(req))
	assert.False(t, OriginChecker([]string{"https://other.example"}, true)(req))

	noOrigin := httptest.NewRequest("GET", "/ws", nil)
	assert.True(t, OriginChecker(nil, false)(noOrigin))
	assert.False(t, OriginChecker([]string{"https://events.example"}, true)(noOrigin))
}

func TestGenerateClientID(t *testing.T) {
	a, err := GenerateClientID()
	require.NoError(t, err)

	b, err := GenerateClientID()
	require.NoError(t, err)

	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}
