package emaillogs

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gobapps/gob-api/internal/notify"
	"github.com/gobapps/gob-api/internal/utils"
)

const DefaultLimit = 50

type LogReader interface {
	Recent(limit int) []notify.LogEntry
	Len() int
	Cap() int
}

type Controller struct {
	logs LogReader
}

func NewController(logs LogReader) *Controller {
	return &Controller{logs: logs}
}

func (ctrl *Controller) List(c *gin.Context) {
	limit := DefaultLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			utils.RespondError(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries := ctrl.logs.Recent(limit)
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"logs":     entries,
		"count":    len(entries),
		"total":    ctrl.logs.Len(),
		"capacity": ctrl.logs.Cap(),
	})
}
