package appconfig

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts /app-config. The service is returned for the
// features that keep their settings in app_config.
func RegisterRoutes(router *gin.RouterGroup, store Store) *Service {
	service := NewService(store)
	controller := NewController(service)
	router.GET("/app-config", controller.Get)
	router.POST("/app-config", controller.Upsert)
	router.PUT("/app-config", controller.Upsert)
	router.DELETE("/app-config", controller.Delete)
	return service
}
