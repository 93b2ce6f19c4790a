package service

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"pmo_roadmap_go/internal/index"
	"pmo_roadmap_go/internal/model"
	"pmo_roadmap_go/pkg/log"
	"pmo_roadmap_go/pkg/timeline"
)

// RegionFilters 是 Region 视图的四个筛选维度，"All" 或空串表示不过滤。
type RegionFilters struct {
	Region   string
	Market   string
	Function string
	Tier     string
}

func (f RegionFilters) matches(p model.RegionProject) bool {
	return filterMatch(f.Region, p.Region) &&
		filterMatch(f.Market, p.Market) &&
		filterMatch(f.Function, p.Function) &&
		filterMatch(f.Tier, p.Tier)
}

func filterMatch(want, got string) bool {
	return want == "" || want == "All" || want == got
}

// RegionView 是 Region 视图的一页响应。
type RegionView struct {
	Data       []model.RegionProject `json:"data"`
	TotalCount int                   `json:"totalCount"`
	Page       int                   `json:"page"`
	Limit      int                   `json:"limit"`
	HasMore    bool                  `json:"hasMore"`
}

// RegionService 生成 Region 视图（按市场拆分的项目 + 标准阶段 + SG3 里程碑）。
type RegionService interface {
	// View 返回筛选后的第 page 页项目，limit 小于 1 时用默认页大小。
	View(ctx context.Context, filters RegionFilters, page, limit int) (RegionView, error)
	// FilterOptions 返回四组筛选项；数据源失败时降级为空列表，不报错。
	FilterOptions(ctx context.Context) *model.RegionFilterOptions
	// Debug 返回候选数据的计数与样例，排障用。
	Debug(ctx context.Context) (map[string]any, error)
}

type regionService struct {
	data         DataService
	itemsPerPage int
}

func NewRegionService(data DataService, itemsPerPage int) RegionService {
	if itemsPerPage < 1 {
		itemsPerPage = DefaultItemsPerPage
	}
	return &regionService{data: data, itemsPerPage: itemsPerPage}
}

func (s *regionService) View(ctx context.Context, filters RegionFilters, page, limit int) (RegionView, error) {
	ds, err := s.data.RegionAll(ctx)
	if err != nil {
		return RegionView{}, err
	}
	if limit < 1 {
		limit = s.itemsPerPage
	}
	if page < 1 {
		page = 1
	}

	all := BuildRegionProjects(index.New(ds))
	filtered := make([]model.RegionProject, 0, len(all))
	for _, p := range all {
		if filters.matches(p) {
			filtered = append(filtered, p)
		}
	}

	start := (page - 1) * limit
	end := start + limit
	if start > len(filtered) {
		start = len(filtered)
	}
	if end > len(filtered) {
		end = len(filtered)
	}
	return RegionView{
		Data:       filtered[start:end],
		TotalCount: len(filtered),
		Page:       page,
		Limit:      limit,
		HasMore:    end < len(filtered),
	}, nil
}

func (s *regionService) FilterOptions(ctx context.Context) *model.RegionFilterOptions {
	opts, err := s.data.FilterOptions(ctx)
	if err != nil {
		log.Warnf("region filter options unavailable, falling back to empty lists: %v", err)
		return &model.RegionFilterOptions{
			Regions:   []string{},
			Markets:   []string{},
			Functions: []string{},
			Tiers:     []string{},
		}
	}
	return opts
}

func (s *regionService) Debug(ctx context.Context) (map[string]any, error) {
	ds, err := s.data.RegionAll(ctx)
	if err != nil {
		return nil, err
	}
	projects := BuildRegionProjects(index.New(ds))

	sample := projects
	if len(sample) > 5 {
		sample = sample[:5]
	}
	unphased := 0
	for _, p := range projects {
		if p.IsUnphased {
			unphased++
		}
	}
	return map[string]any{
		"hierarchy_rows":    len(ds.Hierarchy),
		"investment_rows":   len(ds.Investment),
		"projects":          len(projects),
		"unphased_projects": unphased,
		"sample":            sample,
	}, nil
}

// regionClarityTypes 参与 Region 视图的 CLRTY_INV_TYPE 取值。
var regionClarityTypes = map[string]struct{}{
	model.ClarityTypeNonClarity: {},
	model.ClarityTypeProject:    {},
	model.ClarityTypePrograms:   {},
}

// BuildRegionProjects 是 Region 视图的投影：
//  1. 候选是 CLRTY_INV_TYPE 为 Non-Clarity item / Project / Programs 的投资行，
//     按 INV_EXT_ID 分组，组顺序为首次出现顺序。
//  2. 每组选主行：Investment 元素 > 投资名非空 > 任务名不是标准阶段名 > 首行
//     （最后一档是脏数据兜底，记一条告警）。
//  3. INV_MARKET 按 "Region/Market" 拆分；空值落 Unknown，占位串
//     "-Unrecognised-" 落 Unrecognised。
//  4. 阶段只认六个标准阶段名，按起始日升序；有阶段的项目用首尾阶段做条形
//     边界，没有的标记 isUnphased 并用主行日期。
//  5. 里程碑只取部署类 SG3。
//  6. 结果按名称排序（地区规则、忽略大小写）。
func BuildRegionProjects(idx *index.Index) []model.RegionProject {
	source := idx.AllInvestments()

	groupOrder := make([]string, 0)
	groups := make(map[string][]model.InvestmentRow)
	for _, row := range source {
		if _, ok := regionClarityTypes[row.ClarityInvType]; !ok {
			continue
		}
		if row.ExtID == "" {
			continue
		}
		if _, ok := groups[row.ExtID]; !ok {
			groupOrder = append(groupOrder, row.ExtID)
		}
		groups[row.ExtID] = append(groups[row.ExtID], row)
	}

	projects := make([]model.RegionProject, 0, len(groupOrder))
	for _, extID := range groupOrder {
		projects = append(projects, makeRegionProject(idx, extID, groups[extID]))
	}

	col := newNameCollator()
	sort.SliceStable(projects, func(i, j int) bool {
		return col.CompareString(projects[i].Name, projects[j].Name) < 0
	})
	return projects
}

// regionMainRow 按优先级从组内选代表行。
func regionMainRow(rows []model.InvestmentRow) model.InvestmentRow {
	for _, row := range rows {
		if row.RoadmapElement == model.ElementInvestment {
			return row
		}
	}
	for _, row := range rows {
		if row.InvestmentName != "" {
			return row
		}
	}
	for _, row := range rows {
		if !model.IsStandardPhaseName(row.TaskName) {
			return row
		}
	}
	log.Warnf("region project %s has only phase rows, using first row as representative", rows[0].ExtID)
	return rows[0]
}

// parseMarket 把 INV_MARKET 拆成 (region, market)。
func parseMarket(raw string) (string, string) {
	raw = strings.TrimSpace(raw)
	switch raw {
	case "":
		return model.StatusUnknown, model.StatusUnknown
	case "-Unrecognised-":
		return "Unrecognised", "Unrecognised"
	}

	parts := strings.SplitN(raw, "/", 2)
	region := strings.TrimSpace(parts[0])
	if region == "" {
		region = model.StatusUnknown
	}
	// 没有 "/" 的值只有地区，市场归为 Unknown
	market := model.StatusUnknown
	if len(parts) == 2 {
		market = strings.TrimSpace(parts[1])
		if market == "" {
			market = model.StatusUnknown
		}
	}
	return region, market
}

func tierLabel(tier int) string {
	if tier <= 0 {
		return model.StatusUnknown
	}
	return strconv.Itoa(tier)
}

func makeRegionProject(idx *index.Index, extID string, rows []model.InvestmentRow) model.RegionProject {
	main := regionMainRow(rows)
	region, market := parseMarket(main.Market)

	p := model.RegionProject{
		ID:       extID,
		Name:     main.InvestmentName,
		Region:   region,
		Market:   market,
		Function: main.Function,
		Tier:     tierLabel(main.Tier),
		Status:   main.OverallStatus,
		Phases:   make([]model.RegionPhase, 0),
	}
	if p.Name == "" {
		p.Name = main.TaskName
	}
	if p.Status == "" {
		p.Status = model.StatusUnknown
	}

	// 标准阶段，按起始日升序
	type datedPhase struct {
		row  model.InvestmentRow
		when string
	}
	phases := make([]datedPhase, 0)
	for _, row := range rows {
		if row.RoadmapElement != model.ElementPhases || !model.IsStandardPhaseName(row.TaskName) {
			continue
		}
		t := timeline.ParseDate(row.TaskStart)
		if t == nil {
			continue
		}
		phases = append(phases, datedPhase{row: row, when: t.Format("2006-01-02")})
	}
	sort.SliceStable(phases, func(i, j int) bool { return phases[i].when < phases[j].when })

	for _, ph := range phases {
		end := ph.row.TaskFinish
		if t := timeline.ParseDate(end); t != nil {
			end = t.Format("2006-01-02")
		}
		p.Phases = append(p.Phases, model.RegionPhase{
			Name:      ph.row.TaskName,
			StartDate: ph.when,
			EndDate:   end,
		})
	}

	if len(p.Phases) > 0 {
		start := p.Phases[0].StartDate
		end := p.Phases[len(p.Phases)-1].EndDate
		p.StartDate = &start
		if end != "" {
			p.EndDate = &end
		}
	} else {
		p.IsUnphased = true
		p.StartDate = datePtr(main.TaskStart)
		p.EndDate = datePtr(main.TaskFinish)
	}

	p.Milestones = idx.SG3Milestones(extID, model.ElementMilestoneDeployment)
	return p
}

// BuildFilterOptions 从筛选候选行（Investment 元素且 INV_MARKET 非空）
// 聚合出四组去重排序的筛选项。
func BuildFilterOptions(rows []model.InvestmentRow) *model.RegionFilterOptions {
	regions := make(map[string]struct{})
	markets := make(map[string]struct{})
	functions := make(map[string]struct{})
	tiers := make(map[string]struct{})

	for _, row := range rows {
		region, market := parseMarket(row.Market)
		regions[region] = struct{}{}
		markets[market] = struct{}{}
		if row.Function != "" {
			functions[row.Function] = struct{}{}
		}
		tiers[tierLabel(row.Tier)] = struct{}{}
	}

	return &model.RegionFilterOptions{
		Regions:   sortedKeys(regions),
		Markets:   sortedKeys(markets),
		Functions: sortedKeys(functions),
		Tiers:     sortedKeys(tiers),
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
