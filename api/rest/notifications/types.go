package notifications

import "codeberg.org/eventnotify/server/internal/notifier"

type PublishRequest struct {
	Channel string `json:"channel"`
	Type    string `json:"type" binding:"required"`
	Message string `json:"message" binding:"required"`
}

// a raw backend error to resolve and deliver. a missing error delivers the default message.
type ReportRequest struct {
	Channel string  `json:"channel"`
	Error   *string `json:"error"`
	Locale  string  `json:"locale,omitempty"`
}

type PublishResponse struct {
	Channel      string                `json:"channel"`
	Notification notifier.Notification `json:"notification"`
}

type ReportResponse struct {
	Channel        string `json:"channel"`
	Message        string `json:"message"`
	SuggestRefresh bool   `json:"suggest_refresh"`
	Display        string `json:"display"`
	Locale         string `json:"locale"`
}
