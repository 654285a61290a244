package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Audit logs successful admin mutations with the acting username.
func Audit(log *zap.Logger, action string) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("audit")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if c.Writer.Status() >= 400 {
			return
		}
		log.Info(action,
			zap.String("admin", CurrentAdmin(c)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.String("ip", c.ClientIP()),
			zap.Int64("latency_ms", time.Since(start).Milliseconds()),
		)
	}
}
