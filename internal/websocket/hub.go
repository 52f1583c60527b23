package websocket

import (
	"encoding/json"
	"time"

	"codeberg.org/eventnotify/server/internal/logger"
	"codeberg.org/eventnotify/server/internal/notifier"
)

func NewHub() *Hub {
	return &Hub{
		channels:      make(map[string]map[string]*Client),
		Register:      make(chan *Client),
		Unregister:    make(chan *Client),
		broadcast:     make(chan *Message, 256),
		inbound:       make(chan *Message, 256),
		handlers:      make(map[string]MessageHandler),
		shutdown:      make(chan struct{}),
		stopped:       make(chan struct{}),
		ipConnections: make(map[string]int),
		sequences:     make(map[string]uint64),
	}
}

// creates a message with a JSON payload
func NewMessage(msgType, channel string, payload any) (*Message, error) {
	var raw json.RawMessage

	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}

		raw = data
	}

	return &Message{
		Type:      msgType,
		Channel:   channel,
		Timestamp: time.Now().UTC(),
		Payload:   raw,
	}, nil
}

// registers a handler for a client message type
func (h *Hub) RegisterHandler(messageType string, handler MessageHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handlers[messageType] = handler
}

// starts the hub's main loop; returns after Shutdown
func (h *Hub) Run() {
	defer close(h.stopped)

	for {
		select {
		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.Unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.deliver(message)

		case message := <-h.inbound:
			h.handleMessage(message)

		case <-h.shutdown:
			h.closeAllConnections()
			return
		}
	}
}

// queues n for every subscriber of channel. publishing to the broadcast
// channel reaches every connected client.
func (h *Hub) Publish(channel string, n notifier.Notification) error {
	if channel == "" {
		channel = notifier.BroadcastChannel
	}

	msg, err := NewMessage(TypeNotification, channel, n)
	if err != nil {
		return err
	}

	select {
	case <-h.shutdown:
		return ErrHubClosed
	default:
	}

	select {
	case h.broadcast <- msg:
		return nil
	case <-h.shutdown:
		return ErrHubClosed
	}
}

// reports whether another connection from ip would stay within limits
func (h *Hub) CanAccept(ip string) bool {
	if ip == "" {
		return true
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.ipConnections[ip] < maxConnectionsPerIP
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()

	if h.channels[client.Channel] == nil {
		h.channels[client.Channel] = make(map[string]*Client)
	}

	h.channels[client.Channel][client.ID] = client

	if client.IPAddress != "" {
		h.ipConnections[client.IPAddress]++
	}

	h.mu.Unlock()

	logger.Info("client subscribed",
		"client_id", client.ID,
		"channel", client.Channel,
		"subject", client.Subject,
	)

	msg, err := NewMessage(TypeSubscribed, client.Channel, SubscribedPayload{
		ClientID: client.ID,
		Channel:  client.Channel,
	})
	if err == nil {
		if sendErr := client.Send(msg); sendErr != nil {
			logger.ErrorErr(sendErr, "failed to confirm subscription",
				"client_id", client.ID,
				"channel", client.Channel,
			)
		}
	}
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, exists := h.channels[client.Channel]
	if !exists {
		return
	}

	if _, exists := clients[client.ID]; !exists {
		return
	}

	delete(clients, client.ID)
	client.Close()

	if client.IPAddress != "" {
		h.ipConnections[client.IPAddress]--

		if h.ipConnections[client.IPAddress] <= 0 {
			delete(h.ipConnections, client.IPAddress)
		}
	}

	if len(clients) == 0 {
		delete(h.channels, client.Channel)
		delete(h.sequences, client.Channel)
	}

	logger.Info("client unsubscribed",
		"client_id", client.ID,
		"channel", client.Channel,
	)
}

// sends a published message to its channel's clients
func (h *Hub) deliver(msg *Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.sequences[msg.Channel]++
	msg.Sequence = h.sequences[msg.Channel]

	if msg.Channel == notifier.BroadcastChannel {
		for _, clients := range h.channels {
			h.sendAll(clients, msg)
		}

		return
	}

	h.sendAll(h.channels[msg.Channel], msg)
}

// must be called with lock held
func (h *Hub) sendAll(clients map[string]*Client, msg *Message) {
	for clientID, client := range clients {
		// closed clients are waiting for the run loop to unregister them
		if client.IsClosed() {
			continue
		}

		if err := client.Send(msg); err != nil {
			logger.ErrorErr(err, "failed to send message to client",
				"client_id", clientID,
				"channel", msg.Channel,
			)
		}
	}
}

// dispatches a client message to its handler
func (h *Hub) handleMessage(msg *Message) {
	h.mu.RLock()
	sender := h.findClient(msg.ClientID)
	handler, exists := h.handlers[msg.Type]
	h.mu.RUnlock()

	if sender == nil {
		logger.Warn("sender client not found for message",
			"client_id", msg.ClientID,
			"message_type", msg.Type,
		)
		return
	}

	if !exists {
		logger.Warn("unhandled message type received",
			"message_type", msg.Type,
			"client_id", sender.ID,
		)

		sender.SendError("bad_request", "unsupported message type")
		return
	}

	// run handler asynchronously to avoid blocking the hub
	go func() {
		if err := handler(h, sender, msg); err != nil {
			logger.ErrorErr(err, "handler error",
				"message_type", msg.Type,
				"client_id", sender.ID,
			)

			sender.SendError("server_error", "failed to process message")
		}
	}()
}

// must be called with lock held
func (h *Hub) findClient(clientID string) *Client {
	for _, clients := range h.channels {
		if client, ok := clients[clientID]; ok {
			return client
		}
	}

	return nil
}

// returns the number of clients subscribed to channel
func (h *Hub) ClientCount(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[channel])
}

// returns the number of connected clients
func (h *Hub) TotalClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, clients := range h.channels {
		total += len(clients)
	}

	return total
}

// stops the run loop after notifying and disconnecting every client
func (h *Hub) Shutdown() {
	h.shutdownOnce.Do(func() {
		close(h.shutdown)
	})
}

// closed once the run loop has exited
func (h *Hub) Done() <-chan struct{} {
	return h.stopped
}

func (h *Hub) closeAllConnections() {
	h.mu.Lock()
	defer h.mu.Unlock()

	logger.Info("notifying clients of server shutdown")

	for channel, clients := range h.channels {
		msg, err := NewMessage(TypeServerShutdown, channel, ServerShutdownPayload{
			Reason: "server is shutting down",
		})
		if err != nil {
			logger.ErrorErr(err, "failed to create shutdown message")
			continue
		}

		for _, client := range clients {
			if err := client.Send(msg); err != nil {
				logger.ErrorErr(err, "failed to send shutdown notification",
					"client_id", client.ID,
					"channel", channel,
				)
			}

			client.Close()
		}
	}

	h.channels = make(map[string]map[string]*Client)
	h.ipConnections = make(map[string]int)
}

// hands client to the run loop; fails once the hub has stopped
func (h *Hub) Subscribe(client *Client) error {
	select {
	case h.Register <- client:
		return nil
	case <-h.shutdown:
		return ErrHubClosed
	}
}
