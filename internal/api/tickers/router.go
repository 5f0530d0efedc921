package tickers

import (
	"github.com/gin-gonic/gin"

	"github.com/gobapps/gob-api/internal/api/middleware"
)

// RegisterRoutes mounts the public team list and the token-protected
// registry mutations.
func RegisterRoutes(router *gin.RouterGroup, store Store, adminToken string) {
	service := NewService(store)
	controller := NewController(service)
	admin := middleware.AdminAuth(adminToken)

	router.GET("/team-tickers", controller.Team)
	router.POST("/team-tickers", admin, controller.AddToTeam)
	router.DELETE("/team-tickers", admin, controller.RemoveFromTeam)

	registry := router.Group("/admin/tickers", admin)
	registry.GET("", controller.List)
	registry.POST("", controller.Upsert)
	registry.DELETE("", controller.Deactivate)
}
