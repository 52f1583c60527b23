package websocket

import (
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"codeberg.org/eventnotify/server/internal/auth"
	"codeberg.org/eventnotify/server/internal/errors"
	"codeberg.org/eventnotify/server/internal/logger"
	"codeberg.org/eventnotify/server/internal/notifier"
	ws "codeberg.org/eventnotify/server/internal/websocket"
)

// WebSocketHandler godoc
// @Summary Subscribe to notifications
// @Description Upgrades to a websocket that streams notifications for one channel.
// @Description Users are pinned to their own channel, service tokens may pick any channel,
// @Description and anonymous clients only receive broadcasts.
// @Tags notifications
// @Param channel query string false "Channel to subscribe to"
// @Param token query string false "JWT"
// @Success 101
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Router /api/v1/ws [get]
func WebSocketHandler(hub *ws.Hub, upgrader websocket.Upgrader) gin.HandlerFunc {
	return func(c *gin.Context) {
		var params ConnectParams
		if err := c.ShouldBindQuery(&params); err != nil {
			errors.BadRequest(c, "invalid parameters", err)
			return
		}

		channel, subject, ok := authorizeChannel(c, params.Channel)
		if !ok {
			return
		}

		ipAddress := c.ClientIP()
		if !hub.CanAccept(ipAddress) {
			errors.TooManyRequests(c, "too many connections from this address")
			return
		}

		clientID, err := ws.GenerateClientID()
		if err != nil {
			errors.InternalError(c, "failed to generate client ID", err)
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.ErrorErr(err, "failed to upgrade connection",
				"channel", channel,
				"ip", ipAddress,
			)

			return
		}

		client := ws.NewClient(clientID, channel, subject, ipAddress, conn, hub)

		if err := hub.Subscribe(client); err != nil {
			logger.Warn("rejecting websocket connection",
				"client_id", clientID,
				"error", err,
			)

			_ = conn.Close()
			return
		}

		go client.WritePump()
		go client.ReadPump()

		logger.Info("websocket connection established",
			"client_id", clientID,
			"channel", channel,
			"subject", subject,
			"ip", ipAddress,
		)
	}
}

// picks the channel the caller may subscribe to, using the claims stored by
// auth.OptionalAuthMiddleware. writes the error response and returns false when
// the request is not allowed.
func authorizeChannel(c *gin.Context, requested string) (channel, subject string, ok bool) {
	subject, authenticated := auth.GetSubject(c)

	if !authenticated {
		if requested != "" && requested != notifier.BroadcastChannel {
			errors.Unauthorized(c, "authentication required for private channels")
			return "", "", false
		}

		return notifier.BroadcastChannel, "", true
	}

	switch {
	case requested == "":
		return subject, subject, true
	case auth.IsService(c), requested == subject, requested == notifier.BroadcastChannel:
		return requested, subject, true
	default:
		errors.Forbidden(c, "cannot subscribe to another user's channel")
		return "", "", false
	}
}
