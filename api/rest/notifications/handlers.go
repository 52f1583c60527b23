package notifications

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"codeberg.org/eventnotify/server/api/rest/resolve"
	"codeberg.org/eventnotify/server/internal/auth"
	"codeberg.org/eventnotify/server/internal/errors"
	"codeberg.org/eventnotify/server/internal/logger"
	"codeberg.org/eventnotify/server/internal/notifier"
	"codeberg.org/eventnotify/server/internal/resolver"
)

// PublishHandler godoc
// @Summary Publish a notification
// @Description Sends a success or error notification to every subscriber of a channel
// @Tags notifications
// @Accept json
// @Produce json
// @Param request body PublishRequest true "Notification"
// @Success 202 {object} PublishResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/notifications [post]
// @Security BearerAuth
func PublishHandler(publisher notifier.Publisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PublishRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		kind, ok := notifier.ParseKind(req.Type)
		if !ok {
			errors.BadRequest(c, "type must be success or error", nil)
			return
		}

		channel := channelOrBroadcast(req.Channel)
		n := notifier.New(kind, req.Message)

		if err := publisher.Publish(channel, n); err != nil {
			errors.InternalError(c, "failed to publish notification", err)
			return
		}

		subject, _ := auth.GetSubject(c)

		logger.Debug("notification published",
			"channel", channel,
			"notification_id", n.ID,
			"type", n.Type,
			"publisher", subject,
		)

		c.JSON(http.StatusAccepted, PublishResponse{Channel: channel, Notification: n})
	}
}

// ReportHandler godoc
// @Summary Report a raw backend error to a user
// @Description Resolves the error to a localized message and publishes it as an error notification
// @Tags notifications
// @Accept json
// @Produce json
// @Param request body ReportRequest true "Raw error"
// @Success 202 {object} ReportResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/notifications/report [post]
// @Security BearerAuth
func ReportHandler(publisher notifier.Publisher, registry *resolver.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ReportRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		res, locale, ok := resolve.Select(c, registry, req.Locale)
		if !ok {
			return
		}

		channel := channelOrBroadcast(req.Channel)
		subject, _ := auth.GetSubject(c)

		sink := notifier.Multi{
			notifier.NewNotifier(publisher, channel),
			notifier.NewLogSink(logger.With("channel", channel, "publisher", subject)),
		}
		reporter := notifier.NewReporter(res, sink)

		var (
			result resolver.Result
			err    error
		)

		if req.Error == nil {
			result, err = reporter.ReportErr(nil)
		} else {
			result, err = reporter.ReportError(*req.Error)
		}

		if err != nil {
			errors.InternalError(c, "failed to publish notification", err)
			return
		}

		c.JSON(http.StatusAccepted, ReportResponse{
			Channel:        channel,
			Message:        result.Message,
			SuggestRefresh: result.SuggestRefresh,
			Display:        result.Display(res.RefreshSuggestion()),
			Locale:         locale,
		})
	}
}

func channelOrBroadcast(channel string) string {
	if channel == "" {
		return notifier.BroadcastChannel
	}

	return channel
}
