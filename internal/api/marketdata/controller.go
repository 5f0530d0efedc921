package marketdata

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gobapps/gob-api/internal/cache"
	"github.com/gobapps/gob-api/internal/utils"
)

type Controller struct {
	service *Service
}

func NewController(service *Service) *Controller {
	return &Controller{service: service}
}

type BatchResponse struct {
	Success bool `json:"success"`
	cache.BatchResult
}

// Batch godoc
// @Summary Read cached market data for up to 100 tickers
// @Param tickers query string true "Comma-separated tickers"
// @Router /api/market-data-batch [get]
func (ctrl *Controller) Batch(c *gin.Context) {
	tickers := cache.NormalizeTickers(c.Query("tickers"))

	result, err := ctrl.service.Batch(c.Request.Context(), tickers)
	if err != nil {
		if errors.Is(err, ErrNoTickers) || errors.Is(err, ErrTooManyTickers) {
			utils.RespondError(c, http.StatusBadRequest, err.Error())
			return
		}
		utils.Zlog.Error("Failed to read ticker cache",
			zap.Int("tickers", len(tickers)),
			zap.Error(err))
		utils.RespondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, BatchResponse{Success: true, BatchResult: *result})
}
