package main

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/eventnotify/server/internal/config"
	"codeberg.org/eventnotify/server/internal/notifier"
	"codeberg.org/eventnotify/server/internal/relay"
	"codeberg.org/eventnotify/server/internal/resolver"
	ws "codeberg.org/eventnotify/server/internal/websocket"
)

// holds all dependencies and state for the API server
type Server struct {
	config    *config.Config
	registry  *resolver.Registry
	hub       *ws.Hub
	relay     *relay.Relay // nil without REDIS_URL
	publisher notifier.Publisher
	router    *gin.Engine
}
