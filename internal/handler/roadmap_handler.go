package handler

import (
	"net/http"

	"pmo_roadmap_go/internal/service"
	"pmo_roadmap_go/pkg/log"

	"github.com/gin-gonic/gin"
)

// RoadmapHandler 负责 /api/view 系列接口：输出投影后的显示模型，
// 渲染器直接消费，不再做任何业务加工。
type RoadmapHandler struct {
	portfolioService  service.PortfolioService
	programService    service.ProgramService
	subProgramService service.SubProgramService
	regionService     service.RegionService
}

func NewRoadmapHandler(
	portfolioService service.PortfolioService,
	programService service.ProgramService,
	subProgramService service.SubProgramService,
	regionService service.RegionService,
) *RoadmapHandler {
	return &RoadmapHandler{
		portfolioService:  portfolioService,
		programService:    programService,
		subProgramService: subProgramService,
		regionService:     regionService,
	}
}

// PortfolioView 返回一页 Portfolio 视图行。
func (h *RoadmapHandler) PortfolioView(c *gin.Context) {
	page := queryInt(c, "page", 1)

	view, err := h.portfolioService.View(c.Request.Context(), page)
	if err != nil {
		log.Warnf("RoadmapHandler.PortfolioView: %v", err)
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   view,
	})
}

// ProgramView 返回一页 Program 视图行，portfolio_id 可选。
func (h *RoadmapHandler) ProgramView(c *gin.Context) {
	page := queryInt(c, "page", 1)
	portfolioID := c.Query("portfolio_id")

	view, err := h.programService.View(c.Request.Context(), portfolioID, page)
	if err != nil {
		log.Warnf("RoadmapHandler.ProgramView: %v", err)
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   view,
	})
}

// SubProgramView 返回一页 Sub-Program 视图，program_id 可选。
func (h *RoadmapHandler) SubProgramView(c *gin.Context) {
	page := queryInt(c, "page", 1)
	programID := c.Query("program_id")

	view, err := h.subProgramService.View(c.Request.Context(), programID, page)
	if err != nil {
		log.Warnf("RoadmapHandler.SubProgramView: %v", err)
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   view,
	})
}

// RegionView 返回筛选后的一页 Region 视图。
func (h *RoadmapHandler) RegionView(c *gin.Context) {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 0)
	filters := service.RegionFilters{
		Region:   c.DefaultQuery("region", "All"),
		Market:   c.DefaultQuery("market", "All"),
		Function: c.DefaultQuery("function", "All"),
		Tier:     c.DefaultQuery("tier", "All"),
	}

	view, err := h.regionService.View(c.Request.Context(), filters, page, limit)
	if err != nil {
		log.Warnf("RoadmapHandler.RegionView: %v", err)
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   view,
	})
}

// RegionFilterOptions 返回 Region 视图筛选项。
// 数据源失败时服务层已降级为空列表，这里永远 200。
func (h *RoadmapHandler) RegionFilterOptions(c *gin.Context) {
	opts := h.regionService.FilterOptions(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   opts,
	})
}

// RegionDebug 返回 Region 候选数据的计数与样例，排障用。
func (h *RoadmapHandler) RegionDebug(c *gin.Context) {
	summary, err := h.regionService.Debug(c.Request.Context())
	if err != nil {
		log.Warnf("RoadmapHandler.RegionDebug: %v", err)
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   summary,
	})
}
