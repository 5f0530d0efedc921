package briefings

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gobapps/gob-api/internal/briefing"
	"github.com/gobapps/gob-api/internal/utils"
)

type Runner interface {
	Run(ctx context.Context, req briefing.Request) (*briefing.Result, error)
}

type Controller struct {
	runner Runner
}

func NewController(runner Runner) *Controller {
	return &Controller{runner: runner}
}

// Run godoc
// @Summary Generate a briefing and optionally email it
// @Router /api/briefing [post]
func (ctrl *Controller) Run(c *gin.Context) {
	var body BriefingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.Zlog.Error("Invalid briefing request", zap.Error(err))
		utils.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}
	req, err := body.toRequest()
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := ctrl.runner.Run(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, briefing.ErrPromptRequired) || errors.Is(err, briefing.ErrNoRecipients) {
			utils.RespondError(c, http.StatusBadRequest, err.Error())
			return
		}
		utils.Zlog.Error("Briefing failed",
			zap.String("type", string(req.Type)),
			zap.Bool("previewOnly", req.PreviewOnly),
			zap.Error(err))
		utils.RespondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, BriefingResponse{Success: true, Result: result})
}
