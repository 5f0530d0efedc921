package marketdata

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup, store TickerReader) {
	service := NewService(store)
	controller := NewController(service)
	router.GET("/market-data-batch", controller.Batch)
}
