package companydata

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gobapps/gob-api/internal/fmp"
	"github.com/gobapps/gob-api/internal/utils"
)

type Controller struct {
	service *Service
}

func NewController(service *Service) *Controller {
	return &Controller{service: service}
}

// Company godoc
// @Summary Company profile, quote and annual key metrics
// @Param symbol query string true "Ticker symbol"
// @Router /api/fmp-company-data [get]
func (ctrl *Controller) Company(c *gin.Context) {
	symbol := strings.ToUpper(strings.TrimSpace(c.Query("symbol")))
	if symbol == "" {
		utils.RespondError(c, http.StatusBadRequest, ErrSymbolRequired.Error())
		return
	}

	data, err := ctrl.service.Company(c.Request.Context(), symbol)
	if err != nil {
		if errors.Is(err, fmp.ErrNotFound) {
			utils.RespondError(c, http.StatusNotFound, "Symbol "+symbol+" not found")
			return
		}
		utils.Zlog.Error("Failed to fetch company data", zap.String("symbol", symbol), zap.Error(err))
		utils.RespondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, data)
}

// Batch godoc
// @Summary Fan out to the single-symbol endpoint for up to 10 symbols
// @Param symbols query string true "Comma-separated symbols"
// @Router /api/fmp-company-data-batch [get]
func (ctrl *Controller) Batch(c *gin.Context) {
	symbols := parseSymbols(c.Query("symbols"))

	resp, err := ctrl.service.Batch(c.Request.Context(), symbols)
	if err != nil {
		if errors.Is(err, ErrNoSymbols) || errors.Is(err, ErrTooManySymbols) {
			utils.RespondError(c, http.StatusBadRequest, err.Error())
			return
		}
		utils.Zlog.Error("Company data batch failed", zap.Int("symbols", len(symbols)), zap.Error(err))
		utils.RespondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, resp)
}
