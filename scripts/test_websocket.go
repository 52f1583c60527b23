//go:build ignore

// subscribes to a notification channel and prints every frame.
//
//	go run scripts/test_websocket.go [channel] [token]
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/websocket"
)

func main() {
	var channel, token string

	if len(os.Args) > 1 {
		channel = os.Args[1]
	}

	if len(os.Args) > 2 {
		token = os.Args[2]
	}

	u := url.URL{
		Scheme: "ws",
		Host:   "localhost:8080",
		Path:   "/api/v1/ws",
	}

	q := u.Query()
	if channel != "" {
		q.Set("channel", channel)
	}
	if token != "" {
		q.Set("token", token)
	}
	u.RawQuery = q.Encode()

	fmt.Printf("Connecting to %s\n", u.String())

	c, resp, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		if resp != nil {
			log.Fatalf("dial: %v (%s)", err, resp.Status)
		}
		log.Fatal("dial:", err)
	}
	defer c.Close()

	fmt.Println("✅ Connected to WebSocket!")

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	done := make(chan struct{})
	lastID := make(chan string, 16)

	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Println("read:", err)
				return
			}
			fmt.Printf("📨 Received: %s\n", message)

			var frame struct {
				Type    string `json:"type"`
				Payload struct {
					ID string `json:"id"`
				} `json:"payload"`
			}
			if json.Unmarshal(message, &frame) == nil && frame.Type == "notification" {
				select {
				case lastID <- frame.Payload.ID:
				default:
				}
			}
		}
	}()

	ping, _ := json.Marshal(map[string]string{"type": "ping"})
	fmt.Printf("📤 Sending ping: %s\n", ping)
	if err := c.WriteMessage(websocket.TextMessage, ping); err != nil {
		log.Println("write:", err)
		return
	}

	for {
		select {
		case id := <-lastID:
			// acknowledge every notification so the server logs the dismissal
			dismiss, _ := json.Marshal(map[string]any{
				"type":    "dismiss",
				"payload": map[string]string{"notification_id": id},
			})
			fmt.Printf("📤 Dismissing: %s\n", id)
			if err := c.WriteMessage(websocket.TextMessage, dismiss); err != nil {
				log.Println("write:", err)
				return
			}

		case <-done:
			return

		case <-interrupt:
			fmt.Println("\n🛑 Interrupt received, closing connection...")

			err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			if err != nil {
				log.Println("write close:", err)
				return
			}
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return
		}
	}
}
