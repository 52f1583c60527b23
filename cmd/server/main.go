package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/eventnotify/server/internal/config"
	"codeberg.org/eventnotify/server/internal/logger"
)

// @title EventNotify API
// @version 1.0
// @description Translates raw backend errors into localized user-facing messages
// @description and delivers toast notifications to connected clients.
// @description
// @description Features:
// @description - Ordered pattern rules that map backend errors to friendly messages
// @description - Localized messages with a refresh hint when retrying may help
// @description - Real-time notification delivery over WebSockets
// @description - Cross-instance fan-out via Redis

// @contact.name API Support
// @contact.url https://codeberg.org/eventnotify/server

// @license.name GPL-3.0
// @license.url https://www.gnu.org/licenses/gpl-3.0.html

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authenticated requests. Format: Bearer {token}

func main() {
	cfg, err := config.LoadEnvironmentVariables()
	if err != nil {
		logger.Fatal("failed to load configuration", "error", err)
	}

	logger.Configure(cfg.Environment, cfg.LogLevel)
	logger.Info("starting eventnotify server", "environment", cfg.Environment)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv, err := NewServer(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to create server", "error", err)
	}

	httpServer := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.Port),
		Handler:     srv.router,
		ReadTimeout: 15 * time.Second,
		// no WriteTimeout, it would cut off long-lived websocket connections
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed to start", "error", err)
		}
	}()

	go srv.hub.Run()

	if srv.relay != nil {
		go func() {
			if err := srv.relay.Run(ctx); err != nil && ctx.Err() == nil {
				logger.ErrorErr(err, "redis relay stopped")
			}
		}()
	}

	// wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	// stop relaying before the hub goes away
	cancel()

	// notify websocket clients and close connections first
	srv.hub.Shutdown()

	select {
	case <-srv.hub.Done():
	case <-time.After(5 * time.Second):
		logger.Warn("websocket hub did not stop in time")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	srv.Close()

	logger.Info("server stopped")
}
