package briefingschedule

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gobapps/gob-api/internal/scheduler"
	"github.com/gobapps/gob-api/internal/utils"
)

type Controller struct {
	service *Service
}

func NewController(service *Service) *Controller {
	return &Controller{service: service}
}

type ScheduleResponse struct {
	Success  bool               `json:"success"`
	Schedule scheduler.Schedule `json:"schedule"`
}

func (ctrl *Controller) Get(c *gin.Context) {
	schedule, err := ctrl.service.Load(c.Request.Context())
	if err != nil {
		utils.Zlog.Error("Failed to load briefing schedule", zap.Error(err))
		utils.RespondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, ScheduleResponse{Success: true, Schedule: schedule})
}

func (ctrl *Controller) Update(c *gin.Context) {
	var overrides scheduler.Overrides
	if err := c.ShouldBindJSON(&overrides); err != nil {
		utils.Zlog.Error("Invalid briefing schedule payload", zap.Error(err))
		utils.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	schedule, err := ctrl.service.Update(c.Request.Context(), overrides)
	if errors.Is(err, ErrInvalidSchedule) {
		utils.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		utils.Zlog.Error("Failed to save briefing schedule", zap.Error(err))
		utils.RespondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, ScheduleResponse{Success: true, Schedule: schedule})
}
