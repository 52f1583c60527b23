package notifications

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/eventnotify/server/internal/auth"
	"codeberg.org/eventnotify/server/internal/notifier"
	"codeberg.org/eventnotify/server/internal/resolver"
)

func RegisterRoutes(router *gin.RouterGroup, publisher notifier.Publisher, registry *resolver.Registry) {
	// publishing is reserved for backend services
	group := router.Group("/notifications")
	group.Use(auth.ServiceMiddleware())
	{
		group.POST("", PublishHandler(publisher))
		group.POST("/report", ReportHandler(publisher, registry))
	}
}
