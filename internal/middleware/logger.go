package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"

	"picshare/internal/pkg/logger"
	"picshare/internal/pkg/response"
)

// RequestLogger logs every request after it finishes and recovers from
// handler panics with a JSON 500.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		defer func() {
			log := logger.Get()

			if recovered := recover(); recovered != nil {
				log.Error().
					Str("method", c.Request.Method).
					Str("path", c.Request.URL.Path).
					Str("panic", fmt.Sprintf("%v", recovered)).
					Bytes("stack", debug.Stack()).
					Msg("request panicked")

				response.Error(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal Server Error")
				c.Abort()
				return
			}

			status := c.Writer.Status()
			evt := log.Info()
			if status >= http.StatusInternalServerError {
				evt = log.Error()
			}
			evt.
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Str("query", c.Request.URL.RawQuery).
				Str("client_ip", c.ClientIP()).
				Int("status", status).
				Int64("user_id", c.GetInt64("user_id")).
				Dur("latency", time.Since(start)).
				Msg("request")
		}()

		c.Next()
	}
}
