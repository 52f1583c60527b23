package websocket

import (
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"codeberg.org/eventnotify/server/internal/auth"
	ws "codeberg.org/eventnotify/server/internal/websocket"
)

func RegisterRoutes(router *gin.RouterGroup, hub *ws.Hub, allowedOrigins []string, production bool) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     ws.OriginChecker(allowedOrigins, production),
	}

	router.GET("/ws", auth.OptionalAuthMiddleware(), WebSocketHandler(hub, upgrader))
}
