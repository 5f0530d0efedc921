package tickersync

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gobapps/gob-api/internal/utils"
)

type Controller struct {
	service *Service
}

func NewController(service *Service) *Controller {
	return &Controller{service: service}
}

// Sync accepts an optional ticker list and answers 202 once the job is queued.
func (ctrl *Controller) Sync(c *gin.Context) {
	var req SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.Zlog.Error("Invalid sync request", zap.Error(err))
		utils.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	tickers, err := req.normalize()
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	job, err := ctrl.service.Enqueue(c.Request.Context(), tickers)
	switch {
	case errors.Is(err, ErrNoTickers):
		utils.RespondError(c, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, ErrQueueFull):
		utils.RespondError(c, http.StatusServiceUnavailable, err.Error())
		return
	case err != nil:
		utils.Zlog.Error("Failed to trigger sync", zap.Error(err))
		utils.RespondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusAccepted, SyncResponse{
		Success: true,
		JobID:   job.JobID,
		Tickers: job.Tickers,
		Message: "Sync job queued",
	})
}
