// Package health reports liveness and database reachability.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gobapps/gob-api/internal/utils"
)

const pingTimeout = 3 * time.Second

type Pinger interface {
	Ping(ctx context.Context) error
}

type Controller struct {
	db      Pinger
	service string
	started time.Time
}

func NewController(db Pinger, service string) *Controller {
	return &Controller{db: db, service: service, started: time.Now()}
}

func (ctrl *Controller) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
	defer cancel()

	body := gin.H{
		"service":   ctrl.service,
		"uptime":    time.Since(ctrl.started).Round(time.Second).String(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if err := ctrl.db.Ping(ctx); err != nil {
		utils.Zlog.Warn("Health check failed", zap.Error(err))
		body["status"] = "degraded"
		body["database"] = "unreachable"
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}
	body["status"] = "ok"
	body["database"] = "ok"
	c.JSON(http.StatusOK, body)
}
