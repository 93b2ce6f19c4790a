package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"pmo_roadmap_go/internal/model"
	"pmo_roadmap_go/internal/service"

	"github.com/gin-gonic/gin"
)

type fakePortfolioService struct {
	viewFn func(page int) (service.Page[model.DisplayRow], error)
}

func (f *fakePortfolioService) View(ctx context.Context, page int) (service.Page[model.DisplayRow], error) {
	if f.viewFn != nil {
		return f.viewFn(page)
	}
	return service.Page[model.DisplayRow]{}, nil
}

type fakeProgramService struct {
	viewFn func(portfolioID string, page int) (service.Page[model.DisplayRow], error)
}

func (f *fakeProgramService) View(ctx context.Context, portfolioID string, page int) (service.Page[model.DisplayRow], error) {
	if f.viewFn != nil {
		return f.viewFn(portfolioID, page)
	}
	return service.Page[model.DisplayRow]{}, nil
}

type fakeSubProgramService struct {
	viewFn func(programID string, page int) (service.SubProgramView, error)
}

func (f *fakeSubProgramService) View(ctx context.Context, programID string, page int) (service.SubProgramView, error) {
	if f.viewFn != nil {
		return f.viewFn(programID, page)
	}
	return service.SubProgramView{}, nil
}

type fakeRegionService struct {
	viewFn   func(filters service.RegionFilters, page, limit int) (service.RegionView, error)
	filterFn func() *model.RegionFilterOptions
	debugFn  func() (map[string]any, error)
}

func (f *fakeRegionService) View(ctx context.Context, filters service.RegionFilters, page, limit int) (service.RegionView, error) {
	if f.viewFn != nil {
		return f.viewFn(filters, page, limit)
	}
	return service.RegionView{}, nil
}

func (f *fakeRegionService) FilterOptions(ctx context.Context) *model.RegionFilterOptions {
	if f.filterFn != nil {
		return f.filterFn()
	}
	return &model.RegionFilterOptions{}
}

func (f *fakeRegionService) Debug(ctx context.Context) (map[string]any, error) {
	if f.debugFn != nil {
		return f.debugFn()
	}
	return map[string]any{}, nil
}

func newViewRouter(h *RoadmapHandler) *gin.Engine {
	r := gin.New()
	r.GET("/api/view/portfolio", h.PortfolioView)
	r.GET("/api/view/program", h.ProgramView)
	r.GET("/api/view/region", h.RegionView)
	r.GET("/api/view/region/filters", h.RegionFilterOptions)
	return r
}

func newRoadmapHandlerWith(pf *fakePortfolioService, pg *fakeProgramService, sp *fakeSubProgramService, rg *fakeRegionService) *RoadmapHandler {
	if pf == nil {
		pf = &fakePortfolioService{}
	}
	if pg == nil {
		pg = &fakeProgramService{}
	}
	if sp == nil {
		sp = &fakeSubProgramService{}
	}
	if rg == nil {
		rg = &fakeRegionService{}
	}
	return NewRoadmapHandler(pf, pg, sp, rg)
}

func TestRoadmapHandler_PortfolioView(t *testing.T) {
	pf := &fakePortfolioService{
		viewFn: func(page int) (service.Page[model.DisplayRow], error) {
			if page != 2 {
				t.Fatalf("page = %d, want 2", page)
			}
			return service.Page[model.DisplayRow]{
				Data:        []model.DisplayRow{{ID: "PF1", Status: "Green"}},
				TotalPages:  3,
				CurrentPage: 2,
				HasNext:     true,
				HasPrev:     true,
			}, nil
		},
	}
	r := newViewRouter(newRoadmapHandlerWith(pf, nil, nil, nil))

	w := doReq(r, http.MethodGet, "/api/view/portfolio?page=2", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expect 200, got %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Status string                         `json:"status"`
		Data   service.Page[model.DisplayRow] `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if resp.Status != "success" || resp.Data.CurrentPage != 2 || len(resp.Data.Data) != 1 {
		t.Fatalf("response = %+v", resp)
	}
}

// TestRoadmapHandler_ProgramView_PassesPortfolioID 验证 portfolio_id 透传到服务层。
func TestRoadmapHandler_ProgramView_PassesPortfolioID(t *testing.T) {
	pg := &fakeProgramService{
		viewFn: func(portfolioID string, page int) (service.Page[model.DisplayRow], error) {
			if portfolioID != "PF1" {
				t.Fatalf("portfolioID = %q, want PF1", portfolioID)
			}
			return service.Page[model.DisplayRow]{}, nil
		},
	}
	r := newViewRouter(newRoadmapHandlerWith(nil, pg, nil, nil))

	if w := doReq(r, http.MethodGet, "/api/view/program?portfolio_id=PF1", ""); w.Code != http.StatusOK {
		t.Fatalf("expect 200, got %d", w.Code)
	}
}

// TestRoadmapHandler_RegionView_DefaultsFiltersToAll 验证筛选参数缺省为 "All"。
func TestRoadmapHandler_RegionView_DefaultsFiltersToAll(t *testing.T) {
	rg := &fakeRegionService{
		viewFn: func(filters service.RegionFilters, page, limit int) (service.RegionView, error) {
			want := service.RegionFilters{Region: "Europe", Market: "All", Function: "All", Tier: "All"}
			if filters != want {
				t.Fatalf("filters = %+v, want %+v", filters, want)
			}
			return service.RegionView{TotalCount: 0, Page: page, Limit: limit}, nil
		},
	}
	r := newViewRouter(newRoadmapHandlerWith(nil, nil, nil, rg))

	if w := doReq(r, http.MethodGet, "/api/view/region?region=Europe", ""); w.Code != http.StatusOK {
		t.Fatalf("expect 200, got %d", w.Code)
	}
}

func TestRoadmapHandler_PortfolioView_ServiceError(t *testing.T) {
	pf := &fakePortfolioService{
		viewFn: func(page int) (service.Page[model.DisplayRow], error) {
			return service.Page[model.DisplayRow]{}, errors.New("boom")
		},
	}
	r := newViewRouter(newRoadmapHandlerWith(pf, nil, nil, nil))

	w := doReq(r, http.MethodGet, "/api/view/portfolio", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expect 500, got %d", w.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if resp["status"] != "error" {
		t.Fatalf("error envelope = %v", resp)
	}
}

// TestRoadmapHandler_RegionFilterOptions_AlwaysOK 验证筛选项端点永远 200：
// 降级行为在服务层完成，Handler 不再区分成败。
func TestRoadmapHandler_RegionFilterOptions_AlwaysOK(t *testing.T) {
	rg := &fakeRegionService{
		filterFn: func() *model.RegionFilterOptions {
			return &model.RegionFilterOptions{Regions: []string{}, Markets: []string{}, Functions: []string{}, Tiers: []string{}}
		},
	}
	r := newViewRouter(newRoadmapHandlerWith(nil, nil, nil, rg))

	w := doReq(r, http.MethodGet, "/api/view/region/filters", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expect 200, got %d", w.Code)
	}
}
