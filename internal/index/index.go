// Package index 在一次抓取的原始快照上建立内存索引，供各投影引擎查询。
// 索引构建是 O(N) 的一次性工作，之后所有查询都是 O(1) 均摊的 map 命中；
// 构建完成后不再修改。
package index

import "pmo_roadmap_go/internal/model"

type invKey struct {
	extID   string
	element string
}

// Index 是原始快照的只读索引。
type Index struct {
	investments  []model.InvestmentRow
	hierByType   map[string][]model.HierarchyRow
	hierByParent map[string][]model.HierarchyRow
	invByExtID   map[string][]model.InvestmentRow
	invByElement map[invKey][]model.InvestmentRow

	// 按判别分类预分桶，投影层取阶段/里程碑时不再扫全量行
	invPhases     map[string][]model.InvestmentRow
	invMilestones map[string][]model.InvestmentRow

	// Program / SubProgram（含两种拼写）行引用到的父 ID 集合，驱动钻取标记
	programParentIDs map[string]struct{}
}

// programLikeTypes 参与父 ID 集合统计的层级类型。两种 SubProgram 拼写都算，
// 规范拼写未定，漏掉任何一种都会丢钻取标记。
var programLikeTypes = map[string]struct{}{
	model.TypeProgram:           {},
	model.TypeSubProgramNoDash:  {},
	model.TypeSubProgramHyphens: {},
}

// New 在快照上构建索引。
func New(ds *model.Dataset) *Index {
	x := &Index{
		hierByType:       make(map[string][]model.HierarchyRow),
		hierByParent:     make(map[string][]model.HierarchyRow),
		invByExtID:       make(map[string][]model.InvestmentRow),
		invByElement:     make(map[invKey][]model.InvestmentRow),
		invPhases:        make(map[string][]model.InvestmentRow),
		invMilestones:    make(map[string][]model.InvestmentRow),
		programParentIDs: make(map[string]struct{}),
	}
	if ds == nil {
		return x
	}

	for _, row := range ds.Hierarchy {
		x.hierByType[row.Type] = append(x.hierByType[row.Type], row)
		if row.ParentID != "" {
			x.hierByParent[row.ParentID] = append(x.hierByParent[row.ParentID], row)
		}
		if _, ok := programLikeTypes[row.Type]; ok && row.ParentID != "" {
			x.programParentIDs[row.ParentID] = struct{}{}
		}
	}

	x.investments = ds.Investment
	for _, row := range ds.Investment {
		x.invByExtID[row.ExtID] = append(x.invByExtID[row.ExtID], row)
		key := invKey{extID: row.ExtID, element: row.RoadmapElement}
		x.invByElement[key] = append(x.invByElement[key], row)

		// 判别分类在建索引时做一次（Investment | Phase | Milestone）
		switch row.ElementKind() {
		case model.KindPhase:
			x.invPhases[row.ExtID] = append(x.invPhases[row.ExtID], row)
		case model.KindMilestone:
			x.invMilestones[row.ExtID] = append(x.invMilestones[row.ExtID], row)
		}
	}

	return x
}

// HierarchyByType 返回指定 COE_ROADMAP_TYPE 的全部层级行，保持输入顺序。
func (x *Index) HierarchyByType(typ string) []model.HierarchyRow {
	return x.hierByType[typ]
}

// HierarchyByTypes 按给定类型顺序拼接层级行。
func (x *Index) HierarchyByTypes(types []string) []model.HierarchyRow {
	var rows []model.HierarchyRow
	for _, t := range types {
		rows = append(rows, x.hierByType[t]...)
	}
	return rows
}

// HierarchyByParent 返回指定父 ID 下的全部层级行。
func (x *Index) HierarchyByParent(parentID string) []model.HierarchyRow {
	return x.hierByParent[parentID]
}

// AllInvestments 返回快照中的全部投资行，保持输入顺序。
func (x *Index) AllInvestments() []model.InvestmentRow {
	return x.investments
}

// InvestmentsByExtID 返回某个 INV_EXT_ID 的全部投资行（所有元素类型）。
func (x *Index) InvestmentsByExtID(extID string) []model.InvestmentRow {
	return x.invByExtID[extID]
}

// InvestmentsByElement 返回某个 INV_EXT_ID 下指定 ROADMAP_ELEMENT 的投资行。
func (x *Index) InvestmentsByElement(extID, element string) []model.InvestmentRow {
	return x.invByElement[invKey{extID: extID, element: element}]
}

// MainInvestment 返回某个实体的总体信息行（ROADMAP_ELEMENT="Investment" 的首行），
// 没有时返回 nil。
func (x *Index) MainInvestment(extID string) *model.InvestmentRow {
	rows := x.InvestmentsByElement(extID, model.ElementInvestment)
	if len(rows) == 0 {
		return nil
	}
	row := rows[0]
	return &row
}

// Phases 返回某个实体的全部阶段行。
func (x *Index) Phases(extID string) []model.InvestmentRow {
	return x.invPhases[extID]
}

// MilestoneRows 返回某个实体的全部里程碑行（未过滤、未排序）。
func (x *Index) MilestoneRows(extID string) []model.InvestmentRow {
	return x.invMilestones[extID]
}

// IsProgramParent 判断 ID 是否被至少一条 Program / SubProgram 行引用为父节点。
// Portfolio 视图据此设置 isDrillable。
func (x *Index) IsProgramParent(id string) bool {
	_, ok := x.programParentIDs[id]
	return ok
}
