package emaillogs

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup, logs LogReader) {
	controller := NewController(logs)
	router.GET("/email-logs", controller.List)
}
