// Package relay fans notifications out across server instances over Redis pub/sub.
//
// Every instance publishes to one Redis topic and forwards whatever it receives
// to its local hub, so a subscriber connected to any instance gets the notification.
package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"codeberg.org/eventnotify/server/internal/logger"
	"codeberg.org/eventnotify/server/internal/notifier"
)

const publishTimeout = 5 * time.Second

// the message carried on the Redis topic
type Envelope struct {
	Channel      string                `json:"channel"`
	Notification notifier.Notification `json:"notification"`
}

type Relay struct {
	client *redis.Client
	topic  string
	local  notifier.Publisher
}

// connects to redisURL and checks the connection
func Connect(ctx context.Context, redisURL, topic string, local notifier.Publisher) (*Relay, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close() //nolint:errcheck,gosec // best-effort cleanup on connect failure
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("connected to redis", "topic", topic)

	return New(client, topic, local), nil
}

// wraps an existing client
func New(client *redis.Client, topic string, local notifier.Publisher) *Relay {
	return &Relay{client: client, topic: topic, local: local}
}

// the underlying client, shared with other redis-backed components
func (r *Relay) Client() *redis.Client {
	return r.client
}

// sends n to every instance, including this one (via Run)
func (r *Relay) Publish(channel string, n notifier.Notification) error {
	if channel == "" {
		channel = notifier.BroadcastChannel
	}

	data, err := json.Marshal(Envelope{Channel: channel, Notification: n})
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := r.client.Publish(ctx, r.topic, data).Err(); err != nil {
		return fmt.Errorf("failed to publish to redis: %w", err)
	}

	return nil
}

// forwards notifications from the topic to the local publisher until ctx is done
func (r *Relay) Run(ctx context.Context) error {
	sub := r.client.Subscribe(ctx, r.topic)
	defer sub.Close() //nolint:errcheck // best-effort cleanup

	// wait for the subscription to be confirmed before consuming
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", r.topic, err)
	}

	messages := sub.Channel()

	for {
		select {
		case <-ctx.Done():
			return nil

		case msg, ok := <-messages:
			if !ok {
				return nil
			}

			if err := r.dispatch(msg.Payload); err != nil {
				logger.ErrorErr(err, "failed to relay notification", "topic", r.topic)
			}
		}
	}
}

// decodes one envelope and hands it to the local publisher
func (r *Relay) dispatch(payload string) error {
	var env Envelope

	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		return fmt.Errorf("invalid envelope: %w", err)
	}

	if env.Channel == "" {
		env.Channel = notifier.BroadcastChannel
	}

	return r.local.Publish(env.Channel, env.Notification)
}

func (r *Relay) Close() error {
	return r.client.Close()
}
