package briefings

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup, runner Runner) {
	controller := NewController(runner)
	router.POST("/briefing", controller.Run)
}
