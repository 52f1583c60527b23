package main

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"codeberg.org/eventnotify/server/api/rest/health"
	"codeberg.org/eventnotify/server/api/rest/notifications"
	"codeberg.org/eventnotify/server/api/rest/resolve"
	"codeberg.org/eventnotify/server/api/websocket"
	"codeberg.org/eventnotify/server/internal/errors"
)

// sets up all API routes and middleware
func RegisterRoutes(router *gin.Engine, server *Server) error {
	router.Use(CORSMiddleware(server.config.AllowedOrigins, server.config.IsProduction()))
	router.GET("/health", health.Handler(server.hub))
	router.NoRoute(func(c *gin.Context) {
		errors.NotFound(c, "route")
	})

	var redisClient *redis.Client
	if server.relay != nil {
		redisClient = server.relay.Client()
	}

	rateLimit, err := RateLimitMiddleware(server.config.RateLimit, redisClient)
	if err != nil {
		return err
	}

	v1 := router.Group("/api/v1")
	v1.Use(rateLimit)

	{
		v1.GET("/ping", health.PingHandler)

		resolve.RegisterRoutes(v1, server.registry)
		notifications.RegisterRoutes(v1, server.Publisher(), server.registry)
		websocket.RegisterRoutes(v1, server.hub, server.config.AllowedOrigins, server.config.IsProduction())
	}

	return nil
}
