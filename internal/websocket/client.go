package websocket

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"codeberg.org/eventnotify/server/internal/logger"
)

// creates a subscriber for conn
func NewClient(id, channel, subject, ipAddress string, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		ID:        id,
		Channel:   channel,
		Subject:   subject,
		IPAddress: ipAddress,
		conn:      conn,
		hub:       hub,
		send:      make(chan []byte, sendBufferSize),
		limiter:   rate.NewLimiter(rate.Limit(inboundRate), inboundBurst),
	}
}

// reads messages from the connection and hands them to the hub
func (c *Client) ReadPump() {
	defer func() {
		c.unregister()
		c.conn.Close() //nolint:errcheck,gosec // G104: defer cleanup
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck,gosec // G104: websocket setup
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck,gosec // G104: pong handler
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("websocket error",
					"client_id", c.ID,
					"channel", c.Channel,
					"error", err,
				)
			}

			break
		}

		msg, err := c.parse(data)
		if err != nil {
			c.SendError("bad_request", err.Error())
			continue
		}

		select {
		case c.hub.inbound <- msg:
		case <-c.hub.stopped:
			return
		}
	}
}

// validates an inbound frame and stamps it with this client's identity
func (c *Client) parse(data []byte) (*Message, error) {
	if c.limiter != nil && !c.limiter.Allow() {
		return nil, ErrRateLimitExceeded
	}

	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil || msg.Type == "" {
		return nil, ErrInvalidMessage
	}

	msg.Channel = c.Channel
	msg.ClientID = c.ID
	msg.Timestamp = time.Now().UTC()

	return &msg, nil
}

func (c *Client) unregister() {
	select {
	case c.hub.Unregister <- c:
	case <-c.hub.stopped:
	}
}

// writes queued messages to the connection and keeps it alive with pings
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.conn.Close() //nolint:errcheck,gosec // G104: defer cleanup
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck,gosec // G104: websocket timing

			if !ok {
				// hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{}) //nolint:errcheck,gosec // G104: close message
				return
			}

			// one message per frame so clients can decode each frame on its own
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck,gosec // G104: websocket ping timing

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// queues a message for the client
func (c *Client) Send(msg *Message) (err error) {
	// recover from panic if channel is closed
	defer func() {
		if r := recover(); r != nil {
			err = ErrConnectionClosed
		}
	}()

	c.mu.RLock()

	if c.closed {
		c.mu.RUnlock()
		return ErrConnectionClosed
	}

	c.mu.RUnlock()

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	select {
	case c.send <- data:
		return nil
	default:
		// channel is full, tell the peer directly before closing
		c.sendBufferOverflowError()
		c.Close()
		return ErrConnectionClosed
	}
}

// tells the peer why it is being dropped. WriteControl may run alongside WritePump.
func (c *Client) sendBufferOverflowError() {
	if c.conn == nil {
		return
	}

	closeMsg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "message buffer full")
	c.conn.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(writeWait)) //nolint:errcheck,gosec
}

// sends an error message to the client
func (c *Client) SendError(code, message string) {
	msg, err := NewMessage(TypeError, c.Channel, ErrorPayload{
		Error:   code,
		Message: message,
	})
	if err != nil {
		logger.ErrorErr(err, "failed to create error message",
			"client_id", c.ID,
			"error_code", code,
		)
		return
	}

	c.Send(msg) //nolint:errcheck,gosec // G104: best effort error notification
}

// closes the outbound channel; WritePump then closes the connection
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Client) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.closed
}
