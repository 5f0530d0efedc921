package companydata

import (
	"github.com/gin-gonic/gin"

	"github.com/gobapps/gob-api/internal/config"
)

func RegisterRoutes(router *gin.RouterGroup, provider Provider, cfg *config.Config) {
	service := NewService(provider, cfg.InternalBaseURL)
	controller := NewController(service)
	router.GET("/fmp-company-data", controller.Company)
	router.GET("/fmp-company-data-batch", controller.Batch)
}
