package tickers

import (
	"errors"
	"net/http"
	"strconv"

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

// respondServiceError maps service errors onto status codes.
func respondServiceError(c *gin.Context, action string, err error) {
	switch {
	case errors.Is(err, ErrInvalidTicker):
		utils.RespondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		utils.RespondError(c, http.StatusNotFound, err.Error())
	default:
		utils.Zlog.Error("Ticker registry operation failed", zap.String("action", action), zap.Error(err))
		utils.RespondError(c, http.StatusInternalServerError, err.Error())
	}
}

func (ctrl *Controller) Team(c *gin.Context) {
	resp, err := ctrl.service.Team(c.Request.Context())
	if err != nil {
		respondServiceError(c, "team", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (ctrl *Controller) AddToTeam(c *gin.Context) {
	var req TeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}
	row, created, err := ctrl.service.AddToTeam(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, "add", err)
		return
	}
	status, message := http.StatusOK, "Ticker updated successfully"
	if created {
		status, message = http.StatusCreated, "Ticker added successfully"
	}
	c.JSON(status, gin.H{"success": true, "ticker": row, "message": message})
}

func (ctrl *Controller) RemoveFromTeam(c *gin.Context) {
	message, err := ctrl.service.RemoveFromTeam(c.Request.Context(), c.Query("ticker"))
	if err != nil {
		respondServiceError(c, "remove", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message})
}

func (ctrl *Controller) List(c *gin.Context) {
	includeInactive, _ := strconv.ParseBool(c.Query("includeInactive"))
	rows, err := ctrl.service.List(c.Request.Context(), !includeInactive)
	if err != nil {
		respondServiceError(c, "list", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "tickers": rows, "count": len(rows)})
}

func (ctrl *Controller) Upsert(c *gin.Context) {
	var req RegistryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}
	row, err := ctrl.service.Upsert(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, "upsert", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "ticker": row})
}

func (ctrl *Controller) Deactivate(c *gin.Context) {
	ticker := c.Query("ticker")
	if err := ctrl.service.Deactivate(c.Request.Context(), ticker); err != nil {
		respondServiceError(c, "deactivate", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Ticker " + ticker + " deactivated"})
}
