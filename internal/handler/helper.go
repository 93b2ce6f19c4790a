package handler

import (
	"errors"
	"net/http"
	"strconv"

	"pmo_roadmap_go/internal/service"
	"pmo_roadmap_go/internal/upstream"

	"github.com/gin-gonic/gin"
)

// mapServiceError 把 Service 层错误转换为 HTTP 状态码和对外消息。
// 统一映射的价值：
// 1. Handler 不必散落大量 if/else 判断。
// 2. 对外返回口径稳定，避免泄露内部实现细节。
func mapServiceError(err error) (httpStatus int, message string) {
	var transport *upstream.TransportError
	var envelope *upstream.EnvelopeError
	var shape *upstream.ShapeError

	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest, "Invalid request parameters"
	case errors.Is(err, service.ErrSourceUnavailable):
		return http.StatusBadGateway, "Data source unavailable"
	case errors.As(err, &transport):
		return http.StatusBadGateway, "Upstream service unavailable"
	case errors.As(err, &envelope):
		return http.StatusBadGateway, "Upstream reported failure"
	case errors.As(err, &shape):
		return http.StatusBadGateway, "Upstream returned invalid payload"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// fail 按统一信封写错误响应：{"status":"error","message":...}。
func fail(c *gin.Context, err error) {
	status, msg := mapServiceError(err)
	c.JSON(status, gin.H{
		"status":  "error",
		"message": msg,
	})
}

// queryInt 读取整型 query 参数，缺失或非法时返回 fallback。
func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
