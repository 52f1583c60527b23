package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"codeberg.org/eventnotify/server/internal/notifier"
)

const (
	requestTimeout = 10 * time.Second
	reconnectDelay = 2 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxToasts      = 200
)

// where the watcher connects and who it connects as
type Options struct {
	Endpoint string // http(s) base url of the server
	Token    string // optional, anonymous watchers only see broadcasts
	Channel  string
	Locale   string
}

// main TUI application model
type Model struct {
	opts      Options
	ws        *WSClient
	api       *APIClient
	width     int
	height    int
	connected bool
	channel   string
	status    string
	toasts    []toast
	rules     string // rendered rule table, empty when hidden
	spinner   spinner.Model
	input     textinput.Model
	viewport  viewport.Model
	ready     bool
	resolving bool
}

// one line in the feed
type toast struct {
	id      string
	kind    notifier.Kind
	message string
	at      time.Time
	local   bool // resolved from input rather than received
}

// sent once the websocket subscription is confirmed
type ConnectedMsg struct {
	channel string
}

// sent when the connection is lost or cannot be established
type DisconnectedMsg struct {
	err error
}

// sent after reconnectDelay to try again
type reconnectMsg struct{}

// a notification pushed by the server
type NotificationMsg struct {
	notification notifier.Notification
}

// sent when the server is going away
type ShutdownMsg struct {
	reason string
}

// result of resolving typed input through the api
type ResolvedMsg struct {
	raw      string
	response ResolveResponse
}

// the rendered rule table for the current locale
type RulesMsg struct {
	rendered string
}

// an error frame or undecodable message from the websocket
type ServerErrorMsg struct {
	err error
}

// sent when an api request fails
type ErrorMsg struct {
	err error
}
