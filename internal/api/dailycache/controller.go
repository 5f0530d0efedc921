package dailycache

import (
	"net/http"
	"strings"

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
	cacheType := strings.TrimSpace(c.Query("type"))
	if cacheType == "" {
		utils.RespondError(c, http.StatusBadRequest, ErrTypeRequired.Error())
		return
	}
	date, err := resolveDate(c.Query("date"), ctrl.service.now())
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := ctrl.service.Lookup(c.Request.Context(), cacheType, date)
	if err != nil {
		utils.Zlog.Error("Failed to read daily cache",
			zap.String("type", cacheType),
			zap.String("date", date),
			zap.Error(err))
		utils.RespondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (ctrl *Controller) Save(c *gin.Context) {
	var req SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Zlog.Error("Invalid daily cache payload", zap.Error(err))
		utils.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}
	date, err := resolveDate(req.Date, ctrl.service.now())
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := ctrl.service.Save(c.Request.Context(), req.Type, date, req.Data); err != nil {
		utils.Zlog.Error("Failed to write daily cache",
			zap.String("type", req.Type),
			zap.String("date", date),
			zap.Error(err))
		utils.RespondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, SaveResponse{Success: true, Cached: true, Date: date, Type: req.Type})
}
