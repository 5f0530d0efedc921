package emaildesign

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup, store ConfigStore) *Service {
	service := NewService(store)
	controller := NewController(service)
	router.GET("/email-design", controller.Get)
	router.POST("/email-design", controller.Update)
	return service
}
