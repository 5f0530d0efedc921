package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gobapps/gob-api/internal/utils"
)

const AdminTokenHeader = "X-Admin-Token"

// AdminAuth accepts the token as "Authorization: Bearer <token>" or in
// X-Admin-Token. Without a configured token the routes are unavailable.
func AdminAuth(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			utils.RespondError(c, http.StatusServiceUnavailable, "ADMIN_TOKEN not configured")
			return
		}
		presented := c.GetHeader(AdminTokenHeader)
		if auth := c.GetHeader("Authorization"); presented == "" && strings.HasPrefix(auth, "Bearer ") {
			presented = strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
		}
		if presented == "" || subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
			utils.Zlog.Warn("Rejected admin request",
				zap.String("path", c.Request.URL.Path),
				zap.String("clientIp", c.ClientIP()))
			utils.RespondError(c, http.StatusUnauthorized, "Unauthorized")
			return
		}
		c.Next()
	}
}
