package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDKey 是请求 ID 在 gin 上下文和响应头中的键名。
const RequestIDKey = "X-Request-ID"

// RequestID 给每个请求分配一个 ID，没带则生成，并回写到响应头。
// 排障时用它串起访问日志和下游调用。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDKey)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDKey, id)
		c.Writer.Header().Set(RequestIDKey, id)
		c.Next()
	}
}
