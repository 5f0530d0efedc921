package dailycache

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup, store Store) {
	service := NewService(store)
	controller := NewController(service)
	router.GET("/supabase-daily-cache", controller.Get)
	router.POST("/supabase-daily-cache", controller.Save)
}
