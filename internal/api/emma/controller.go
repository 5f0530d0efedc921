package emma

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gobapps/gob-api/internal/sms"
	"github.com/gobapps/gob-api/internal/utils"
)

// MaxMessageLength bounds inbound SMS bodies.
const MaxMessageLength = 1600

type Processor interface {
	Process(ctx context.Context, message string, conv sms.Conversation) sms.Reply
}

type SMSRequest struct {
	Message string           `json:"message" binding:"required,max=1600"`
	From    string           `json:"from"`
	Context sms.Conversation `json:"context"`
}

type Controller struct {
	processor Processor
}

func NewController(processor Processor) *Controller {
	return &Controller{processor: processor}
}

// HandleSMS answers one message. Handling failures come back as a friendly
// reply with success=false and status 200; only malformed requests get 400.
func (ctrl *Controller) HandleSMS(c *gin.Context) {
	var req SMSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Zlog.Error("Invalid SMS request", zap.Error(err))
		utils.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		utils.RespondError(c, http.StatusBadRequest, "message is required")
		return
	}

	reply := ctrl.processor.Process(c.Request.Context(), req.Message, req.Context)
	utils.Zlog.Info("SMS processed",
		zap.String("intent", string(reply.Metadata.Intent)),
		zap.Bool("success", reply.Success),
		zap.Int("segments", len(reply.Segments)),
		zap.Int64("latencyMs", reply.Metadata.LatencyMs))
	c.JSON(http.StatusOK, reply)
}
