package websocket

import (
	"encoding/json"
	"fmt"
)

// answers ping with pong
func PingHandler() MessageHandler {
	return func(_ *Hub, client *Client, _ *Message) error {
		msg, err := NewMessage(TypePong, client.Channel, nil)
		if err != nil {
			return err
		}

		return client.Send(msg)
	}
}

// passes dismissed notification ids to onDismiss
func DismissHandler(onDismiss func(client *Client, notificationID string)) MessageHandler {
	return func(_ *Hub, client *Client, msg *Message) error {
		var payload DismissPayload

		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return fmt.Errorf("invalid dismiss payload: %w", err)
		}

		if payload.NotificationID == "" {
			return fmt.Errorf("invalid dismiss payload: %w", ErrInvalidMessage)
		}

		if onDismiss != nil {
			onDismiss(client, payload.NotificationID)
		}

		return nil
	}
}
