package middleware

import (
	"time"

	"pmo_roadmap_go/pkg/log"

	"github.com/gin-gonic/gin"
)

// RequestLogger 作为 gin.HandlerFunc 记录每个请求的访问日志。
// 数据接口的响应体可达数 MB，不记录 body，只记录请求行级信息。
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		c.Next()

		log.Infow("HTTP request",
			"latency", time.Since(startTime),
			"status", c.Writer.Status(),
			"client_ip", c.ClientIP(),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"query", c.Request.URL.RawQuery,
			"request_id", c.GetString(RequestIDKey),
		)
	}
}
