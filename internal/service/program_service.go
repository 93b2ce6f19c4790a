package service

import (
	"context"
	"sort"

	"pmo_roadmap_go/internal/index"
	"pmo_roadmap_go/internal/model"

	"golang.org/x/text/collate"
)

// ProgramService 生成 Program 视图（父程序 + 直接子程序）的显示模型。
type ProgramService interface {
	// View 返回第 page 页的 Program 行，portfolioID 为空时是 "全部 Program" 视图。
	View(ctx context.Context, portfolioID string, page int) (Page[model.DisplayRow], error)
}

type programService struct {
	data         DataService
	programTypes []string
	itemsPerPage int
}

// NewProgramService 创建 Program 视图服务。programTypes 来自配置
//（默认 ["Program","SubProgram"]，SubProgram 的拼写见配置说明）。
func NewProgramService(data DataService, programTypes []string, itemsPerPage int) ProgramService {
	if itemsPerPage < 1 {
		itemsPerPage = DefaultItemsPerPage
	}
	return &programService{data: data, programTypes: programTypes, itemsPerPage: itemsPerPage}
}

func (s *programService) View(ctx context.Context, portfolioID string, page int) (Page[model.DisplayRow], error) {
	ds, err := s.data.ProgramAll(ctx, portfolioID)
	if err != nil {
		return Page[model.DisplayRow]{}, err
	}
	rows := BuildProgramRows(index.New(ds), s.programTypes, portfolioID)
	return Paginate(rows, page, s.itemsPerPage), nil
}

// programGroup 是排序用的中间结构：一个父程序和它的直接子程序。
// parent 为 nil 时是孤儿组（子行的父程序不在数据里）。
type programGroup struct {
	parentID string
	parent   *model.DisplayRow
	children []model.DisplayRow
}

// BuildProgramRows 是 Program 视图的投影：
//  1. 取 Program/SubProgram 层级行；指定 portfolioID 时保留直属该组合的行，
//     以及父程序直属该组合的行（父程序或其父匹配任一即保留）。
//  2. 自引用且类型为 Program 的行是父程序根；父程序行数据优先取投资行，
//     缺投资时回落到层级表自带的日期/状态。子行只看投资，缺了带哨兵状态。
//  3. 排序采用稳定多遍：先把父程序和它的子行分成组，组间按父程序的
//     (sortOrder, name) 排，孤儿组排在后面按 parentId 升序；组内子行按
//     (sortOrder, name) 排，最后摊平。名称比较按地区规则、忽略大小写。
//     这样父程序永远先于自己的子行，同父子行相邻，且比较器没有传递性陷阱。
//  4. 过滤后没有任何父程序时退化为平铺列表（无子行）。
func BuildProgramRows(idx *index.Index, programTypes []string, portfolioID string) []model.DisplayRow {
	progs := idx.HierarchyByTypes(programTypes)

	if portfolioID != "" {
		byChild := make(map[string]model.HierarchyRow, len(progs))
		for _, r := range progs {
			if _, ok := byChild[r.ChildID]; !ok {
				byChild[r.ChildID] = r
			}
		}
		kept := make([]model.HierarchyRow, 0, len(progs))
		for _, r := range progs {
			if r.ParentID == portfolioID {
				kept = append(kept, r)
				continue
			}
			if p, ok := byChild[r.ParentID]; ok && p.ParentID == portfolioID {
				kept = append(kept, r)
			}
		}
		progs = kept
	}

	parentIDs := make(map[string]struct{})
	var parents []model.HierarchyRow
	for _, r := range progs {
		if r.Kind() == model.NodeRoot && r.Type == model.TypeProgram {
			if _, ok := parentIDs[r.ChildID]; ok {
				continue
			}
			parentIDs[r.ChildID] = struct{}{}
			parents = append(parents, r)
		}
	}

	col := newNameCollator()

	// 退化路径：没有父程序时平铺输出
	if len(parents) == 0 {
		flat := make([]model.DisplayRow, 0, len(progs))
		seen := make(map[string]struct{}, len(progs))
		for _, r := range progs {
			if _, ok := seen[r.ChildID]; ok {
				continue
			}
			seen[r.ChildID] = struct{}{}
			flat = append(flat, makeProgramRow(idx, r, true, r.ChildID, r.ParentName))
		}
		sortRowsByOrderAndName(flat, col)
		return flat
	}

	var groups []programGroup
	for _, p := range parents {
		row := makeProgramRow(idx, p, true, p.ChildID, p.ParentName)
		g := programGroup{parentID: p.ChildID, parent: &row}
		for _, c := range progs {
			if c.ParentID != p.ChildID || c.ChildID == p.ChildID {
				continue
			}
			g.children = append(g.children, makeProgramRow(idx, c, false, p.ChildID, c.ParentName))
		}
		groups = append(groups, g)
	}

	// 孤儿子行：父程序不在父集合里，按 parentId 聚组
	orphanOrder := make([]string, 0)
	orphans := make(map[string][]model.DisplayRow)
	for _, c := range progs {
		if _, isParent := parentIDs[c.ChildID]; isParent {
			continue
		}
		if _, hasParent := parentIDs[c.ParentID]; hasParent {
			continue
		}
		if _, ok := orphans[c.ParentID]; !ok {
			orphanOrder = append(orphanOrder, c.ParentID)
		}
		orphans[c.ParentID] = append(orphans[c.ParentID], makeProgramRow(idx, c, false, c.ParentID, c.ParentName))
	}

	// 组间排序：父程序组按 (sortOrder, name)
	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i].parent, groups[j].parent
		if a.SortOrder != b.SortOrder {
			return a.SortOrder < b.SortOrder
		}
		return col.CompareString(a.Name, b.Name) < 0
	})
	// 孤儿组按 parentId 升序
	sort.Strings(orphanOrder)

	rows := make([]model.DisplayRow, 0, len(progs))
	seen := make(map[string]struct{}, len(progs))
	emit := func(r model.DisplayRow) {
		if _, ok := seen[r.ID]; ok {
			return
		}
		seen[r.ID] = struct{}{}
		rows = append(rows, r)
	}

	for _, g := range groups {
		emit(*g.parent)
		sortRowsByOrderAndName(g.children, col)
		for _, c := range g.children {
			emit(c)
		}
	}
	for _, pid := range orphanOrder {
		children := orphans[pid]
		sortRowsByOrderAndName(children, col)
		for _, c := range children {
			emit(c)
		}
	}
	return rows
}

func sortRowsByOrderAndName(rows []model.DisplayRow, col *collate.Collator) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].SortOrder != rows[j].SortOrder {
			return rows[i].SortOrder < rows[j].SortOrder
		}
		return col.CompareString(rows[i].Name, rows[j].Name) < 0
	})
}

// makeProgramRow 把一条层级行变成 Program 视图的显示行。
// 父程序行缺投资数据时回落层级表的日期/状态；子行只看投资数据，
// 缺了带哨兵状态出行（与渲染器对子行的占位约定一致）。
func makeProgramRow(idx *index.Index, h model.HierarchyRow, isProgram bool, parentID, parentName string) model.DisplayRow {
	inv := idx.MainInvestment(h.ChildID)

	row := model.DisplayRow{
		ID:           h.ChildID,
		Name:         h.ChildName,
		ParentID:     parentID,
		ParentName:   parentName,
		Status:       model.StatusNoInvestmentData,
		IsProgram:    isProgram,
		IsSubProgram: h.Type != model.TypeProgram,
		Milestones:   idx.AllMilestones(h.ChildID),
	}

	if inv != nil {
		if inv.InvestmentName != "" {
			row.Name = inv.InvestmentName
		}
		row.StartDate = datePtr(inv.TaskStart)
		row.EndDate = datePtr(inv.TaskFinish)
		if inv.OverallStatus != "" {
			row.Status = inv.OverallStatus
		}
		row.SortOrder = inv.SortOrder
		row.HasInvestmentData = true
	}

	if isProgram {
		// 父程序行：逐字段回落层级表
		if row.StartDate == nil {
			row.StartDate = datePtr(h.StartDate)
		}
		if row.EndDate == nil {
			row.EndDate = datePtr(h.EndDate)
		}
		if (inv == nil || inv.OverallStatus == "") && h.Status != "" {
			row.Status = h.Status
		}
	}
	return row
}
