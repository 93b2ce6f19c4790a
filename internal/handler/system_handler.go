package handler

import (
	"net/http"

	"pmo_roadmap_go/internal/cache"
	"pmo_roadmap_go/internal/service"
	"pmo_roadmap_go/pkg/log"

	"github.com/gin-gonic/gin"
)

// SystemHandler 负责运维类接口：健康检查、连通性测试、缓存管理。
type SystemHandler struct {
	dataService service.DataService
	store       cache.Store
}

func NewSystemHandler(dataService service.DataService, store cache.Store) *SystemHandler {
	return &SystemHandler{dataService: dataService, store: store}
}

// Health 进程级健康检查，不触碰数据源。
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"mode":   h.dataService.Mode(),
	})
}

// TestConnection 探测数据源连通性（仓库或上游服务）。
func (h *SystemHandler) TestConnection(c *gin.Context) {
	if err := h.dataService.Ping(c.Request.Context()); err != nil {
		log.Warnf("SystemHandler.TestConnection: source unreachable: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "error",
			"mode":    h.dataService.Mode(),
			"message": "Data source unreachable",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"mode":   h.dataService.Mode(),
	})
}

// CacheStats 返回缓存后端的运行统计。
func (h *SystemHandler) CacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   h.store.Stats(c.Request.Context()),
	})
}

// CacheClear 清理缓存。请求体 {"pattern": "..."} 指定时只清匹配条目，
// 否则退到 query 参数，两处都没有就全清。
func (h *SystemHandler) CacheClear(c *gin.Context) {
	var req struct {
		Pattern string `json:"pattern"`
	}
	// 空请求体或非 JSON 请求体不报错，走 query 参数
	if err := c.ShouldBindJSON(&req); err != nil {
		req.Pattern = ""
	}
	pattern := req.Pattern
	if pattern == "" {
		pattern = c.Query("pattern")
	}
	removed := h.store.ClearPattern(c.Request.Context(), pattern)
	log.Infof("cache clear: pattern=%q removed=%d", pattern, removed)
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"removed": removed,
	})
}
