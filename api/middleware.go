package api

import (
	"time"

	"github.com/SlpAus/guo-backend/internal/platform/logger"
	"github.com/gin-gonic/gin"
)

// RequestLogger 用 zap 记录每个请求的方法、路径、状态码与耗时。
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		kv := []interface{}{
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		}
		if query != "" {
			kv = append(kv, "query", query)
		}
		if len(c.Errors) > 0 {
			kv = append(kv, "errors", c.Errors.String())
			log.Error("请求处理失败", kv...)
			return
		}
		log.Debug("请求完成", kv...)
	}
}
