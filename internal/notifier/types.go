package notifier

import (
	"time"

	"github.com/google/uuid"
)

// visual style of a notification
type Kind string

const (
	KindSuccess Kind = "is-success"
	KindDanger  Kind = "is-danger"
)

// display defaults shared by every notification
const (
	DefaultDurationMS = 5000
	DefaultPosition   = "is-bottom-right"
)

// the channel every subscriber receives
const BroadcastChannel = "broadcast"

// a transient, dismissible message shown by a UI client
type Notification struct {
	ID             string    `json:"id"`
	Type           Kind      `json:"type"`
	Message        string    `json:"message"`
	Duration       int       `json:"duration"` // milliseconds
	Position       string    `json:"position"`
	HasIcon        bool      `json:"has_icon"`
	SuggestRefresh bool      `json:"suggest_refresh,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// creates a notification with the display defaults applied
func New(kind Kind, message string) Notification {
	return Notification{
		ID:        uuid.NewString(),
		Type:      kind,
		Message:   message,
		Duration:  DefaultDurationMS,
		Position:  DefaultPosition,
		HasIcon:   true,
		CreatedAt: time.Now().UTC(),
	}
}

// parses the wire names accepted by the API ("success", "error") and the style names
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "success", string(KindSuccess):
		return KindSuccess, true
	case "error", "danger", string(KindDanger):
		return KindDanger, true
	}

	return "", false
}
