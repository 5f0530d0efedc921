package appconfig

import (
	"errors"
	"net/http"
	"strconv"
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

// Get serves ?key=K (one row) and ?all=true[&category=C] (active rows).
func (ctrl *Controller) Get(c *gin.Context) {
	ctx := c.Request.Context()

	if key := strings.TrimSpace(c.Query("key")); key != "" {
		includeInactive, _ := strconv.ParseBool(c.Query("includeInactive"))
		entry, err := ctrl.service.Get(ctx, key, includeInactive)
		if errors.Is(err, ErrNotFound) {
			utils.RespondError(c, http.StatusNotFound, "Config key "+key+" not found")
			return
		}
		if err != nil {
			utils.Zlog.Error("Failed to read config", zap.String("key", key), zap.Error(err))
			utils.RespondError(c, http.StatusInternalServerError, err.Error())
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": entry})
		return
	}

	if all, _ := strconv.ParseBool(c.Query("all")); all {
		category := strings.TrimSpace(c.Query("category"))
		entries, err := ctrl.service.List(ctx, category)
		if err != nil {
			utils.Zlog.Error("Failed to list config", zap.String("category", category), zap.Error(err))
			utils.RespondError(c, http.StatusInternalServerError, err.Error())
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": entries, "count": len(entries)})
		return
	}

	utils.RespondError(c, http.StatusBadRequest, "key or all=true parameter is required")
}

func (ctrl *Controller) Upsert(c *gin.Context) {
	var req UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Zlog.Error("Invalid config payload", zap.Error(err))
		utils.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := ctrl.service.Upsert(c.Request.Context(), req)
	if err != nil {
		utils.Zlog.Error("Failed to upsert config", zap.String("key", req.ConfigKey), zap.Error(err))
		utils.RespondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": entry})
}

func (ctrl *Controller) Delete(c *gin.Context) {
	key := strings.TrimSpace(c.Query("key"))
	if key == "" {
		utils.RespondError(c, http.StatusBadRequest, "key parameter is required")
		return
	}

	err := ctrl.service.Delete(c.Request.Context(), key)
	if errors.Is(err, ErrNotFound) {
		utils.RespondError(c, http.StatusNotFound, "Config key "+key+" not found")
		return
	}
	if err != nil {
		utils.Zlog.Error("Failed to delete config", zap.String("key", key), zap.Error(err))
		utils.RespondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Config " + key + " deactivated"})
}
