package resolve

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/eventnotify/server/internal/resolver"
)

func RegisterRoutes(router *gin.RouterGroup, registry *resolver.Registry) {
	router.POST("/errors/resolve", ResolveHandler(registry))
	router.GET("/errors/rules", ListRulesHandler(registry))
	router.GET("/locales", ListLocalesHandler(registry))
}
