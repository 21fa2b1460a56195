package middleware

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/aminebenkeroum/tiks-straumur/internal/shared/apperr"
)

// Fail records the error and stops the chain; the trailing ErrorHandler
// turns it into the response.
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// ErrorHandler maps apperr kinds to HTTP statuses and a short JSON body.
// Upstream response bodies stay in the log; the caller only sees the
// public message.
func ErrorHandler(l *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}
		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		status := apperr.HTTPStatus(err)
		rid := GetRequestID(c)

		l.LogAttrs(c.Request.Context(), slog.LevelError, "request_failed",
			slog.String("request_id", rid),
			slog.Int("status", status),
			slog.Any("err", err),
		)

		c.AbortWithStatusJSON(status, gin.H{
			"error":      apperr.PublicMessage(err),
			"request_id": rid,
		})
	}
}
