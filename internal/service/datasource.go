package service

import (
	"context"

	"pmo_roadmap_go/internal/model"
	"pmo_roadmap_go/internal/repository"
	"pmo_roadmap_go/internal/upstream"
)

// DataSource 抽象路线图原始数据的来源。两个实现：
//   - warehouseSource：直连数据仓库（原始部署形态）。
//   - upstreamSource：消费另一个实例的 /api/data 系列接口。
//
// 投影引擎只认快照，不关心数据从哪来。
type DataSource interface {
	// PortfolioPage 返回一页 Portfolio 快照。hasMore 表示后面还有页。
	PortfolioPage(ctx context.Context, page, limit int) (*model.Dataset, bool, error)
	// ProgramPage 返回一页 Program/SubProgram 快照。warehouse 模式忽略
	// portfolioID（按 Portfolio 过滤在投影层做，与原始实现一致）。
	ProgramPage(ctx context.Context, portfolioID string, page, limit int) (*model.Dataset, bool, error)
	// SubProgramPage 返回一页 Sub-Program 快照，programID 可为空。
	SubProgramPage(ctx context.Context, programID string, page, limit int) (*model.Dataset, bool, error)
	// RegionPage 返回一页 Region 候选快照。
	RegionPage(ctx context.Context, page, limit int) (*model.Dataset, bool, error)
	// FullDataset 返回全量快照（/api/data 兼容端点用）。
	FullDataset(ctx context.Context) (*model.Dataset, error)
	// FilterOptions 返回 Region 视图的四组筛选项。
	FilterOptions(ctx context.Context) (*model.RegionFilterOptions, error)
	// Ping 探活。
	Ping(ctx context.Context) error
	// Mode 返回来源标识（响应里的 mode 字段）。
	Mode() string
}

// warehouseSource 直连仓库的数据源。
// 每个视图的抓取都是两步：先按类型取一页层级行，再只取这页实体的投资行，
// 避免把整张投资表拉回来。
type warehouseSource struct {
	repo           repository.RoadmapRepository
	programTypes   []string
	subProgramType string
	ping           func() error
}

// NewWarehouseSource 创建仓库数据源。programTypes/subProgramType 来自配置，
// 承载 SubProgram 两种拼写的选择。
func NewWarehouseSource(repo repository.RoadmapRepository, programTypes []string, subProgramType string, ping func() error) DataSource {
	return &warehouseSource{
		repo:           repo,
		programTypes:   programTypes,
		subProgramType: subProgramType,
		ping:           ping,
	}
}

// pageWithInvestments 通用两步抓取：层级页 + 该页实体的投资行。
func (s *warehouseSource) pageWithInvestments(rows []model.HierarchyRow, limit int) (*model.Dataset, bool, error) {
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ChildID)
	}

	inv, err := s.repo.FindInvestmentsByExtIDs(ids)
	if err != nil {
		return nil, false, err
	}
	return &model.Dataset{Hierarchy: rows, Investment: inv}, len(rows) == limit, nil
}

func (s *warehouseSource) PortfolioPage(ctx context.Context, page, limit int) (*model.Dataset, bool, error) {
	rows, err := s.repo.FindHierarchyByTypes([]string{model.TypePortfolio}, page, limit)
	if err != nil {
		return nil, false, err
	}
	return s.pageWithInvestments(rows, limit)
}

func (s *warehouseSource) ProgramPage(ctx context.Context, _ string, page, limit int) (*model.Dataset, bool, error) {
	rows, err := s.repo.FindHierarchyByTypes(s.programTypes, page, limit)
	if err != nil {
		return nil, false, err
	}
	return s.pageWithInvestments(rows, limit)
}

func (s *warehouseSource) SubProgramPage(ctx context.Context, programID string, page, limit int) (*model.Dataset, bool, error) {
	rows, err := s.repo.FindHierarchyByTypesAndParent([]string{s.subProgramType}, programID, page, limit)
	if err != nil {
		return nil, false, err
	}
	return s.pageWithInvestments(rows, limit)
}

func (s *warehouseSource) RegionPage(ctx context.Context, page, limit int) (*model.Dataset, bool, error) {
	// Region 视图的候选层级类型沿用原始实现：Sub-Program + Project
	rows, err := s.repo.FindHierarchyByTypes([]string{model.TypeSubProgramHyphens, "Project"}, page, limit)
	if err != nil {
		return nil, false, err
	}
	return s.pageWithInvestments(rows, limit)
}

func (s *warehouseSource) FullDataset(ctx context.Context) (*model.Dataset, error) {
	hier, err := s.repo.FindAllHierarchy()
	if err != nil {
		return nil, err
	}
	inv, err := s.repo.FindAllInvestments()
	if err != nil {
		return nil, err
	}
	return &model.Dataset{Hierarchy: hier, Investment: inv}, nil
}

func (s *warehouseSource) FilterOptions(ctx context.Context) (*model.RegionFilterOptions, error) {
	rows, err := s.repo.FindFilterRows()
	if err != nil {
		return nil, err
	}
	return BuildFilterOptions(rows), nil
}

func (s *warehouseSource) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping()
}

func (s *warehouseSource) Mode() string { return "warehouse" }

// upstreamSource 消费另一个实例 /api/data 系列接口的数据源。
type upstreamSource struct {
	client *upstream.Client
}

func NewUpstreamSource(client *upstream.Client) DataSource {
	return &upstreamSource{client: client}
}

func hasMoreFrom(p *model.SourcePagination, rows int, limit int) bool {
	if p != nil {
		return p.HasMore
	}
	return rows == limit
}

func (s *upstreamSource) PortfolioPage(ctx context.Context, page, limit int) (*model.Dataset, bool, error) {
	ds, p, err := s.client.FetchPortfolio(ctx, page, limit)
	if err != nil {
		return nil, false, err
	}
	return ds, hasMoreFrom(p, len(ds.Hierarchy), limit), nil
}

func (s *upstreamSource) ProgramPage(ctx context.Context, portfolioID string, page, limit int) (*model.Dataset, bool, error) {
	ds, p, err := s.client.FetchProgram(ctx, portfolioID, page, limit)
	if err != nil {
		return nil, false, err
	}
	return ds, hasMoreFrom(p, len(ds.Hierarchy), limit), nil
}

func (s *upstreamSource) SubProgramPage(ctx context.Context, programID string, page, limit int) (*model.Dataset, bool, error) {
	ds, p, err := s.client.FetchSubProgram(ctx, programID, page, limit)
	if err != nil {
		return nil, false, err
	}
	return ds, hasMoreFrom(p, len(ds.Hierarchy), limit), nil
}

func (s *upstreamSource) RegionPage(ctx context.Context, page, limit int) (*model.Dataset, bool, error) {
	ds, p, err := s.client.FetchRegion(ctx, page, limit)
	if err != nil {
		return nil, false, err
	}
	return ds, hasMoreFrom(p, len(ds.Hierarchy), limit), nil
}

func (s *upstreamSource) FullDataset(ctx context.Context) (*model.Dataset, error) {
	return s.client.FetchData(ctx)
}

func (s *upstreamSource) FilterOptions(ctx context.Context) (*model.RegionFilterOptions, error) {
	return s.client.FetchRegionFilters(ctx)
}

func (s *upstreamSource) Ping(ctx context.Context) error {
	return s.client.Health(ctx)
}

func (s *upstreamSource) Mode() string { return "upstream" }
