package middleware

import (
	"net/http"
	"time"

	"github.com/suhasnidgundi/ace-hrm-backend-v2/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ContextLogger attaches a request scoped logger and writes one access log line
// per request. It must run after RequestID; AuthMiddleware later adds the
// caller identity to the same logger.
func ContextLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		ctx := c.Request.Context()
		rid := contextutil.GetRequestID(ctx)

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		reqLogger := logger.With(
			zap.String("request_id", rid),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
		)
		c.Request = c.Request.WithContext(contextutil.WithLogger(ctx, reqLogger))

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.Int("bytes", c.Writer.Size()),
		}
		accessLogger := contextutil.GetLogger(c.Request.Context(), reqLogger)
		if status >= http.StatusInternalServerError {
			accessLogger.Error("request completed", fields...)
			return
		}
		accessLogger.Info("request completed", fields...)
	}
}
