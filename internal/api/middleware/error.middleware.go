package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/platformbuilds/search-gateway/internal/gatewayerr"
	"github.com/platformbuilds/search-gateway/pkg/logger"
)

// ErrorResponse is the one error shape the gateway ever returns
// (spec.md §7). Handlers render it themselves via gatewayerr; this
// middleware only catches whatever they didn't — a handler that called
// c.Error instead of aborting directly, or a status the router set with
// no body (404 route miss, 405 method mismatch).
type ErrorResponse struct {
	Error string `json:"error"`
}

// ErrorHandler centralizes the gatewayerr-aware error response and logs
// every 4xx/5xx once, regardless of which handler produced it.
func ErrorHandler(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last().Err
			status := http.StatusInternalServerError
			message := err.Error()
			if ge, ok := gatewayerr.As(err); ok {
				status = ge.Status()
				message = ge.Message
			}
			logError(log, status, message, c)
			if !c.Writer.Written() {
				c.JSON(status, ErrorResponse{Error: message})
			}
			return
		}

		if c.Writer.Status() >= http.StatusBadRequest && !c.Writer.Written() {
			status := c.Writer.Status()
			message := http.StatusText(status)
			logError(log, status, message, c)
			c.JSON(status, ErrorResponse{Error: message})
		}
	}
}

func logError(log logger.Logger, status int, message string, c *gin.Context) {
	fields := []interface{}{
		"status", status,
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"client_ip", c.ClientIP(),
		"error", message,
	}
	if status >= http.StatusInternalServerError {
		log.Error("http error", fields...)
	} else {
		log.Warn("http error", fields...)
	}
}
