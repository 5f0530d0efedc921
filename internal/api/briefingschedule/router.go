package briefingschedule

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup, store ConfigStore) *Service {
	service := NewService(store)
	controller := NewController(service)
	router.GET("/briefing-schedule", controller.Get)
	router.PUT("/briefing-schedule", controller.Update)
	router.POST("/briefing-schedule", controller.Update)
	return service
}
