package health

import (
	"github.com/gin-gonic/gin"

	"github.com/gobapps/gob-api/internal/metrics"
)

// RegisterRoutes mounts /health and /metrics at the engine root.
func RegisterRoutes(router gin.IRoutes, db Pinger, service string) {
	controller := NewController(db, service)
	router.GET("/health", controller.Check)
	router.GET("/metrics", metrics.Handler())
}
