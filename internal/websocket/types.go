package websocket

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

// message type constants for websocket communication
const (
	// is sent when a notification is published to the client's channel
	TypeNotification = "notification"

	// is sent to a connecting client to confirm its subscription
	TypeSubscribed = "subscribed"

	// is sent when an error occurs
	TypeError = "error"

	// is sent by clients to keep the connection alive
	TypePing = "ping"

	// is sent by server in response to ping
	TypePong = "pong"

	// is sent by clients to mark a notification as dismissed
	TypeDismiss = "dismiss"

	// is sent by server before shutdown
	TypeServerShutdown = "server_shutdown"
)

// client connection constants
const (
	// time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// clients only send small control messages
	maxMessageSize = 4 * 1024

	// outbound buffer per client
	sendBufferSize = 256

	// inbound messages per second, with burst
	inboundRate  = 5
	inboundBurst = 10
)

// hub connection limit constants
const (
	maxConnectionsPerIP = 10
)

// errors
var (
	ErrInvalidMessage    = errors.New("invalid message format")
	ErrConnectionClosed  = errors.New("connection closed")
	ErrHubClosed         = errors.New("hub is shut down")
	ErrTooManyClients    = errors.New("too many connections from this address")
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
)

// a websocket message with typed payload
type Message struct {
	Type      string          `json:"type"`
	Channel   string          `json:"channel"`
	ClientID  string          `json:"-"` // internal only, not sent to clients
	Timestamp time.Time       `json:"timestamp"`
	Sequence  uint64          `json:"seq,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// confirms the channels a client receives
type SubscribedPayload struct {
	ClientID string `json:"client_id"`
	Channel  string `json:"channel"`
}

// references a notification the user dismissed
type DismissPayload struct {
	NotificationID string `json:"notification_id"`
}

// contains information about server shutdown
type ServerShutdownPayload struct {
	Reason string `json:"reason"`
}

// an error sent to a client
type ErrorPayload struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// a websocket subscriber
type Client struct {
	// unique identifier for this client
	ID string

	// channel this client subscribed to, in addition to the broadcast channel
	Channel string

	// authenticated subject (empty for anonymous subscribers)
	Subject string

	// IP address of the client (for connection tracking)
	IPAddress string

	conn *websocket.Conn
	hub  *Hub

	// buffered channel of outbound messages
	send chan []byte

	// inbound message limiter
	limiter *rate.Limiter

	mu     sync.RWMutex
	closed bool
}

// maintains subscribed clients and delivers notifications to channels
type Hub struct {
	// clients by channel and client ID
	channels map[string]map[string]*Client

	// register requests from clients
	Register chan *Client

	// unregister requests from clients
	Unregister chan *Client

	// published notifications awaiting delivery
	broadcast chan *Message

	// messages received from clients
	inbound chan *Message

	mu sync.RWMutex

	// message handlers for client message types
	handlers map[string]MessageHandler

	shutdown     chan struct{}
	shutdownOnce sync.Once
	stopped      chan struct{}

	// connection tracking: IP address -> count of connections
	ipConnections map[string]int

	// sequence numbers per channel for message ordering
	sequences map[string]uint64
}

// processes a client message type
type MessageHandler func(hub *Hub, client *Client, msg *Message) error
