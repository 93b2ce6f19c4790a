package service

import (
	"context"
	"errors"
	"testing"

	"pmo_roadmap_go/internal/index"
	"pmo_roadmap_go/internal/model"
)

// TestBuildRegionProjects_PhasedBounds 验证有标准阶段的项目：
// 条形边界取最早阶段起点和最晚阶段终点，阶段按起始日升序。
func TestBuildRegionProjects_PhasedBounds(t *testing.T) {
	ds := &model.Dataset{
		Investment: []model.InvestmentRow{
			{ExtID: "P1", RoadmapElement: model.ElementInvestment, InvestmentName: "Phased Project",
				ClarityInvType: model.ClarityTypeProject, Market: "Europe/UK", Function: "Supply", Tier: 2, OverallStatus: "Green"},
			{ExtID: "P1", RoadmapElement: model.ElementPhases, TaskName: "Deploy", TaskStart: "2024-06-01", TaskFinish: "2024-09-30", ClarityInvType: model.ClarityTypeProject},
			{ExtID: "P1", RoadmapElement: model.ElementPhases, TaskName: "Initiate", TaskStart: "2024-01-01", TaskFinish: "2024-02-28", ClarityInvType: model.ClarityTypeProject},
			// 非标准阶段名不参与边界
			{ExtID: "P1", RoadmapElement: model.ElementPhases, TaskName: "Custom step", TaskStart: "2023-01-01", TaskFinish: "2025-01-01", ClarityInvType: model.ClarityTypeProject},
		},
	}

	projects := BuildRegionProjects(index.New(ds))
	if len(projects) != 1 {
		t.Fatalf("projects = %d, want 1", len(projects))
	}
	p := projects[0]

	if p.IsUnphased {
		t.Fatal("project with standard phases should not be unphased")
	}
	if len(p.Phases) != 2 || p.Phases[0].Name != "Initiate" || p.Phases[1].Name != "Deploy" {
		t.Fatalf("phases = %+v", p.Phases)
	}
	if p.StartDate == nil || *p.StartDate != "2024-01-01" {
		t.Fatalf("StartDate = %v, want first phase start", p.StartDate)
	}
	if p.EndDate == nil || *p.EndDate != "2024-09-30" {
		t.Fatalf("EndDate = %v, want last phase finish", p.EndDate)
	}
	if p.Region != "Europe" || p.Market != "UK" || p.Tier != "2" {
		t.Fatalf("region/market/tier = %s/%s/%s", p.Region, p.Market, p.Tier)
	}
}

// TestBuildRegionProjects_Unphased 验证无标准阶段的项目标记 isUnphased，
// 用主行日期做边界。
func TestBuildRegionProjects_Unphased(t *testing.T) {
	ds := &model.Dataset{
		Investment: []model.InvestmentRow{
			{ExtID: "P1", RoadmapElement: model.ElementInvestment, InvestmentName: "Simple",
				ClarityInvType: model.ClarityTypeNonClarity, TaskStart: "2024-03-01", TaskFinish: "2024-08-31", Market: "Asia/Japan"},
		},
	}

	p := BuildRegionProjects(index.New(ds))[0]
	if !p.IsUnphased {
		t.Fatal("project without phases should be unphased")
	}
	if p.StartDate == nil || *p.StartDate != "2024-03-01" || p.EndDate == nil || *p.EndDate != "2024-08-31" {
		t.Fatalf("bounds = %v / %v", p.StartDate, p.EndDate)
	}
	if p.Status != model.StatusUnknown {
		t.Fatalf("empty status should fall back to %q, got %q", model.StatusUnknown, p.Status)
	}
}

// TestBuildRegionProjects_CandidateFilter 验证只有三种 CLRTY_INV_TYPE 参与视图。
func TestBuildRegionProjects_CandidateFilter(t *testing.T) {
	ds := &model.Dataset{
		Investment: []model.InvestmentRow{
			{ExtID: "P1", RoadmapElement: model.ElementInvestment, InvestmentName: "Keep 1", ClarityInvType: model.ClarityTypeProject},
			{ExtID: "P2", RoadmapElement: model.ElementInvestment, InvestmentName: "Keep 2", ClarityInvType: model.ClarityTypePrograms},
			{ExtID: "P3", RoadmapElement: model.ElementInvestment, InvestmentName: "Keep 3", ClarityInvType: model.ClarityTypeNonClarity},
			{ExtID: "P4", RoadmapElement: model.ElementInvestment, InvestmentName: "Drop", ClarityInvType: "Idea"},
			{ExtID: "", RoadmapElement: model.ElementInvestment, InvestmentName: "Drop empty id", ClarityInvType: model.ClarityTypeProject},
		},
	}

	projects := BuildRegionProjects(index.New(ds))
	if len(projects) != 3 {
		t.Fatalf("projects = %d, want 3", len(projects))
	}
	for _, p := range projects {
		if p.ID == "P4" || p.ID == "" {
			t.Fatalf("non-candidate %q leaked into region view", p.ID)
		}
	}
}

func TestParseMarket(t *testing.T) {
	cases := []struct {
		in     string
		region string
		market string
	}{
		{"Europe/UK", "Europe", "UK"},
		// 没有斜杠时只有地区，市场归 Unknown
		{"Europe", "Europe", "Unknown"},
		{"", "Unknown", "Unknown"},
		{"-Unrecognised-", "Unrecognised", "Unrecognised"},
		{"/UK", "Unknown", "UK"},
		{"Europe/", "Europe", "Unknown"},
		{" Asia / Japan ", "Asia", "Japan"},
	}
	for _, c := range cases {
		region, market := parseMarket(c.in)
		if region != c.region || market != c.market {
			t.Errorf("parseMarket(%q) = %s/%s, want %s/%s", c.in, region, market, c.region, c.market)
		}
	}
}

// TestRegionService_View_FiltersAndPaging 验证筛选维度与分页元信息。
func TestRegionService_View_FiltersAndPaging(t *testing.T) {
	ds := &model.Dataset{
		Investment: []model.InvestmentRow{
			{ExtID: "P1", RoadmapElement: model.ElementInvestment, InvestmentName: "A", ClarityInvType: model.ClarityTypeProject, Market: "Europe/UK", Function: "IT"},
			{ExtID: "P2", RoadmapElement: model.ElementInvestment, InvestmentName: "B", ClarityInvType: model.ClarityTypeProject, Market: "Asia/Japan", Function: "IT"},
			{ExtID: "P3", RoadmapElement: model.ElementInvestment, InvestmentName: "C", ClarityInvType: model.ClarityTypeProject, Market: "Europe/France", Function: "HR"},
		},
	}
	svc := NewRegionService(&fakeDataService{dataset: ds}, 13)

	view, err := svc.View(context.Background(), RegionFilters{Region: "Europe", Market: "All", Function: "All", Tier: "All"}, 1, 10)
	if err != nil {
		t.Fatalf("View() error = %v", err)
	}
	if view.TotalCount != 2 || len(view.Data) != 2 || view.HasMore {
		t.Fatalf("filtered view = %+v", view)
	}

	view, err = svc.View(context.Background(), RegionFilters{}, 1, 2)
	if err != nil {
		t.Fatalf("View() error = %v", err)
	}
	if view.TotalCount != 3 || len(view.Data) != 2 || !view.HasMore {
		t.Fatalf("paged view: total=%d len=%d hasMore=%v", view.TotalCount, len(view.Data), view.HasMore)
	}
}

// TestRegionService_FilterOptions_DegradesToEmpty 验证数据源失败时
// 筛选项降级为空列表而不是报错。
func TestRegionService_FilterOptions_DegradesToEmpty(t *testing.T) {
	svc := NewRegionService(&fakeDataService{err: errors.New("source down")}, 13)

	opts := svc.FilterOptions(context.Background())
	if opts == nil {
		t.Fatal("options should never be nil")
	}
	if len(opts.Regions) != 0 || len(opts.Markets) != 0 || len(opts.Functions) != 0 || len(opts.Tiers) != 0 {
		t.Fatalf("degraded options should be empty, got %+v", opts)
	}
}

func TestBuildFilterOptions(t *testing.T) {
	rows := []model.InvestmentRow{
		{Market: "Europe/UK", Function: "IT", Tier: 1},
		{Market: "Europe/France", Function: "IT", Tier: 2},
		{Market: "Asia/Japan", Function: "", Tier: 0},
	}

	opts := BuildFilterOptions(rows)
	if len(opts.Regions) != 2 || opts.Regions[0] != "Asia" || opts.Regions[1] != "Europe" {
		t.Fatalf("regions = %v", opts.Regions)
	}
	if len(opts.Markets) != 3 {
		t.Fatalf("markets = %v", opts.Markets)
	}
	if len(opts.Functions) != 1 || opts.Functions[0] != "IT" {
		t.Fatalf("functions = %v", opts.Functions)
	}
	// Tier 0 归为 Unknown
	if len(opts.Tiers) != 3 || opts.Tiers[2] != "Unknown" {
		t.Fatalf("tiers = %v", opts.Tiers)
	}
}
