package emaildesign

import (
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

func (ctrl *Controller) Get(c *gin.Context) {
	design, err := ctrl.service.Merged(c.Request.Context())
	if err != nil {
		utils.Zlog.Error("Failed to load email design", zap.Error(err))
		utils.RespondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, design)
}

func (ctrl *Controller) Update(c *gin.Context) {
	var patch map[string]interface{}
	if err := c.ShouldBindJSON(&patch); err != nil {
		utils.Zlog.Error("Invalid email design payload", zap.Error(err))
		utils.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	design, err := ctrl.service.Update(c.Request.Context(), patch)
	if err != nil {
		utils.Zlog.Error("Failed to save email design", zap.Error(err))
		utils.RespondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, design)
}
