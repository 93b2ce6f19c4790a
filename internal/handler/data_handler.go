package handler

import (
	"net/http"

	"pmo_roadmap_go/internal/model"
	"pmo_roadmap_go/internal/service"
	"pmo_roadmap_go/pkg/log"

	"github.com/gin-gonic/gin"
)

// DataHandler 负责 /api/data 系列接口：对外输出原始数据快照的统一信封，
// 下游实例（upstream 模式）和前端的数据层都消费这套契约。
type DataHandler struct {
	dataService service.DataService
}

func NewDataHandler(dataService service.DataService) *DataHandler {
	return &DataHandler{dataService: dataService}
}

// envelope 把快照和分页元信息包进统一信封。
func (h *DataHandler) envelope(ds *model.Dataset, p *model.SourcePagination) model.Envelope {
	return model.Envelope{
		Status: "success",
		Data: &model.EnvelopeData{
			Hierarchy:  &ds.Hierarchy,
			Investment: &ds.Investment,
			Pagination: p,
		},
		Mode: h.dataService.Mode(),
	}
}

// Full 返回全量快照（兼容端点，响应体大，缓存时间更长）。
func (h *DataHandler) Full(c *gin.Context) {
	ds, err := h.dataService.FullDataset(c.Request.Context())
	if err != nil {
		log.Warnf("DataHandler.Full: failed to load dataset: %v", err)
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.envelope(ds, nil))
}

// Portfolio 返回一页 Portfolio 快照。
func (h *DataHandler) Portfolio(c *gin.Context) {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 50)

	ds, p, err := h.dataService.PortfolioPage(c.Request.Context(), page, limit)
	if err != nil {
		log.Warnf("DataHandler.Portfolio: failed to load page %d: %v", page, err)
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.envelope(ds, p))
}

// Program 返回一页 Program/SubProgram 快照，portfolio_id 可选。
func (h *DataHandler) Program(c *gin.Context) {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 50)
	portfolioID := c.Query("portfolio_id")

	ds, p, err := h.dataService.ProgramPage(c.Request.Context(), portfolioID, page, limit)
	if err != nil {
		log.Warnf("DataHandler.Program: failed to load page %d: %v", page, err)
		fail(c, err)
		return
	}
	if p != nil {
		p.PortfolioID = portfolioID
	}
	c.JSON(http.StatusOK, h.envelope(ds, p))
}

// SubProgram 返回一页 Sub-Program 快照，program_id 可选。
func (h *DataHandler) SubProgram(c *gin.Context) {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 50)
	programID := c.Query("program_id")

	ds, p, err := h.dataService.SubProgramPage(c.Request.Context(), programID, page, limit)
	if err != nil {
		log.Warnf("DataHandler.SubProgram: failed to load page %d: %v", page, err)
		fail(c, err)
		return
	}
	if p != nil {
		p.ProgramID = programID
	}
	c.JSON(http.StatusOK, h.envelope(ds, p))
}

// Region 返回一页 Region 候选快照。
func (h *DataHandler) Region(c *gin.Context) {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 50)

	ds, p, err := h.dataService.RegionPage(c.Request.Context(), page, limit)
	if err != nil {
		log.Warnf("DataHandler.Region: failed to load page %d: %v", page, err)
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.envelope(ds, p))
}

// RegionFilters 返回 Region 视图的筛选项。
func (h *DataHandler) RegionFilters(c *gin.Context) {
	opts, err := h.dataService.FilterOptions(c.Request.Context())
	if err != nil {
		log.Warnf("DataHandler.RegionFilters: failed to load options: %v", err)
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   opts,
		"mode":   h.dataService.Mode(),
	})
}
