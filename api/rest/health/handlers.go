package health

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const version = "1.0.0"

// reports connected websocket subscribers
type ClientCounter interface {
	TotalClients() int
}

// returns the server health status
//
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} Response
// @Router /health [get]
func Handler(counter ClientCounter) gin.HandlerFunc {
	return func(c *gin.Context) {
		clients := 0
		if counter != nil {
			clients = counter.TotalClients()
		}

		c.JSON(http.StatusOK, Response{
			Status:  "healthy",
			Service: "eventnotify",
			Version: version,
			Clients: clients,
		})
	}
}

// responds with pong for testing
//
// @Summary Ping
// @Tags health
// @Produce json
// @Success 200 {object} PingResponse
// @Router /api/v1/ping [get]
func PingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, PingResponse{Message: "pong"})
}
