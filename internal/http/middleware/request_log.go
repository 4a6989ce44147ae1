package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/levelup-backend/internal/platform/ctxutil"
	"github.com/yungbote/levelup-backend/internal/platform/logger"
)

// RequestLogger writes one access line per request. Probes log at debug; 4xx at warn; 5xx at error.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if log == nil {
			return
		}

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()
		kv := []any{
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", ctxutil.RequestID(c.Request.Context()),
		}
		for _, p := range c.Params {
			kv = append(kv, p.Key, p.Value)
		}
		if rd := ctxutil.GetRequestData(c.Request.Context()); rd != nil && rd.UserID != "" {
			kv = append(kv, "user_id", rd.UserID)
		}
		if len(c.Errors) > 0 {
			kv = append(kv, "errors", c.Errors.String())
		}

		switch {
		case status >= 500:
			log.Error("request", kv...)
		case status >= 400:
			log.Warn("request", kv...)
		case isProbe(c.Request.URL.Path):
			log.Debug("request", kv...)
		default:
			log.Info("request", kv...)
		}
	}
}
