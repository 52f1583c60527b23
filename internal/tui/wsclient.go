package tui

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gorilla/websocket"

	"codeberg.org/eventnotify/server/internal/notifier"
	ws "codeberg.org/eventnotify/server/internal/websocket"
)

// subscribes to one notification channel and turns frames into tea messages
type WSClient struct {
	endpoint string
	mu       sync.Mutex
	conn     *websocket.Conn
	channel  string
	messages chan tea.Msg
}

// builds the websocket url from the http endpoint in opts
func NewWSClient(opts Options) (*WSClient, error) {
	endpoint, err := websocketURL(opts)
	if err != nil {
		return nil, err
	}

	return &WSClient{
		endpoint: endpoint,
		messages: make(chan tea.Msg, 64),
	}, nil
}

func websocketURL(opts Options) (string, error) {
	u, err := url.Parse(opts.Endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint: %w", err)
	}

	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("invalid endpoint scheme %q", u.Scheme)
	}

	u.Path = strings.TrimRight(u.Path, "/") + "/api/v1/ws"

	query := url.Values{}
	if opts.Channel != "" {
		query.Set("channel", opts.Channel)
	}

	if opts.Token != "" {
		query.Set("token", opts.Token)
	}

	u.RawQuery = query.Encode()

	return u.String(), nil
}

// dials the server and waits for the subscription confirmation
func (c *WSClient) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return nil
	}

	conn, resp, err := websocket.DefaultDialer.Dial(c.endpoint, nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("failed to connect: %s", resp.Status)
		}

		return fmt.Errorf("failed to connect: %w", err)
	}

	// server pings keep the read deadline moving
	conn.SetPingHandler(func(data string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck,gosec
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(time.Second))
	})

	conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck,gosec

	var first ws.Message
	if err := conn.ReadJSON(&first); err != nil {
		conn.Close() //nolint:errcheck,gosec
		return fmt.Errorf("failed to read subscription: %w", err)
	}

	if first.Type != ws.TypeSubscribed {
		conn.Close() //nolint:errcheck,gosec
		return fmt.Errorf("unexpected first message: %s", first.Type)
	}

	c.conn = conn
	c.channel = first.Channel

	go c.readPump(conn)

	return nil
}

// forwards frames until the connection drops
func (c *WSClient) readPump(conn *websocket.Conn) {
	defer func() {
		c.mu.Lock()
		if c.conn == conn {
			c.conn = nil
		}
		c.mu.Unlock()

		conn.Close() //nolint:errcheck,gosec
	}()

	for {
		var msg ws.Message
		if err := conn.ReadJSON(&msg); err != nil {
			c.messages <- DisconnectedMsg{err: err}
			return
		}

		conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck,gosec

		if out := translate(&msg); out != nil {
			c.messages <- out
		}
	}
}

// maps a server frame to a tea message; nil for frames the UI ignores
func translate(msg *ws.Message) tea.Msg {
	switch msg.Type {
	case ws.TypeNotification:
		var n notifier.Notification
		if err := json.Unmarshal(msg.Payload, &n); err != nil {
			return ServerErrorMsg{err: fmt.Errorf("invalid notification: %w", err)}
		}

		return NotificationMsg{notification: n}

	case ws.TypeServerShutdown:
		var payload ws.ServerShutdownPayload
		_ = json.Unmarshal(msg.Payload, &payload) //nolint:errcheck // reason is optional

		return ShutdownMsg{reason: payload.Reason}

	case ws.TypeError:
		var payload ws.ErrorPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return ServerErrorMsg{err: fmt.Errorf("invalid error frame: %w", err)}
		}

		return ServerErrorMsg{err: fmt.Errorf("%s: %s", payload.Error, payload.Message)}

	default:
		return nil
	}
}

// tells the server the user dismissed a notification
func (c *WSClient) Dismiss(notificationID string) error {
	msg, err := ws.NewMessage(ws.TypeDismiss, "", ws.DismissPayload{NotificationID: notificationID})
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return fmt.Errorf("not connected")
	}

	c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second)) //nolint:errcheck,gosec
	return c.conn.WriteJSON(msg)
}

func (c *WSClient) Channel() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.channel
}

func (c *WSClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

func (c *WSClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		c.conn.Close() //nolint:errcheck,gosec
		c.conn = nil
	}
}

// returns a tea.Cmd that connects to the websocket server
func (c *WSClient) ConnectCmd() tea.Cmd {
	return func() tea.Msg {
		if err := c.Connect(); err != nil {
			return DisconnectedMsg{err: err}
		}

		return ConnectedMsg{channel: c.Channel()}
	}
}

// returns a tea.Cmd that waits for the next server message
func (c *WSClient) Next() tea.Cmd {
	return func() tea.Msg {
		return <-c.messages
	}
}
