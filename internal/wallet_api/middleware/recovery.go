package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
)

// Recovery turns a handler panic into the standard 500 envelope.
// A panic after the response was started is only logged.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			attrs := []any{
				"panic", r,
				"stack", string(debug.Stack()),
				"route", c.FullPath(),
				"method", c.Request.Method,
				"correlation_id", GetCorrelationID(c),
			}
			if principal, ok := GetPrincipal(c); ok {
				attrs = append(attrs, "user_id", principal.UserID.String())
			}
			logger.Error("Handler panicked", attrs...)

			if c.Writer.Written() {
				c.Abort()
				return
			}
			abortWithError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal server error occurred")
		}()

		c.Next()
	}
}
