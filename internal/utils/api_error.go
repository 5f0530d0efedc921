package utils

import (
	"time"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the JSON body of every failed API call.
type ErrorResponse struct {
	Success   bool      `json:"success"`
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

// RespondError writes the error envelope and aborts the handler chain.
func RespondError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Success:   false,
		Error:     message,
		Timestamp: time.Now().UTC(),
	})
}
