package emma

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup, processor Processor) {
	controller := NewController(processor)
	router.POST("/sms", controller.HandleSMS)
}
