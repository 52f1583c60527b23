package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"

	"codeberg.org/eventnotify/server/internal/config"
	"codeberg.org/eventnotify/server/internal/i18n"
	"codeberg.org/eventnotify/server/internal/logger"
	"codeberg.org/eventnotify/server/internal/notifier"
	"codeberg.org/eventnotify/server/internal/relay"
	"codeberg.org/eventnotify/server/internal/resolver"
	ws "codeberg.org/eventnotify/server/internal/websocket"
)

// creates and configures a new server instance with all dependencies
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	catalog, err := i18n.LoadEmbedded()
	if err != nil {
		return nil, fmt.Errorf("failed to load locales: %w", err)
	}

	var rulesDoc []byte
	if cfg.RulesFile != "" {
		rulesDoc, err = os.ReadFile(cfg.RulesFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read rules file: %w", err)
		}
	}

	registry, err := resolver.NewRegistry(catalog, cfg.DefaultLocale, rulesDoc)
	if err != nil {
		return nil, err
	}

	logger.Info("error rules loaded",
		"locales", registry.Locales(),
		"default_locale", registry.DefaultLocale(),
		"rules", registry.Default().Rules().Len(),
		"custom", len(rulesDoc) > 0,
	)

	hub := ws.NewHub()

	hub.RegisterHandler(ws.TypePing, ws.PingHandler())
	hub.RegisterHandler(ws.TypeDismiss, ws.DismissHandler(func(client *ws.Client, notificationID string) {
		logger.Debug("notification dismissed",
			"client_id", client.ID,
			"channel", client.Channel,
			"notification_id", notificationID,
		)
	}))

	server := &Server{
		config:    cfg,
		registry:  registry,
		hub:       hub,
		publisher: hub,
	}

	// with redis every instance publishes through the relay and delivers what it receives locally
	if cfg.RedisURL != "" {
		r, err := relay.Connect(ctx, cfg.RedisURL, cfg.RedisChannel, hub)
		if err != nil {
			return nil, err
		}

		server.relay = r
		server.publisher = r
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	server.router = gin.Default()

	if err := RegisterRoutes(server.router, server); err != nil {
		server.Close()
		return nil, err
	}

	return server, nil
}

// the publisher handlers should use; the relay when redis is configured
func (s *Server) Publisher() notifier.Publisher {
	return s.publisher
}

func (s *Server) Close() {
	if s.relay != nil {
		s.relay.Close() //nolint:errcheck,gosec // best-effort cleanup on shutdown
	}
}
