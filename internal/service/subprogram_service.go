package service

import (
	"context"

	"pmo_roadmap_go/internal/index"
	"pmo_roadmap_go/internal/model"
)

// SubProgramView 是 Sub-Program 视图的一页：项目列表 + 当页项目的
// 全局扁平里程碑列表（渲染器的泳道图两部分分别消费）。
type SubProgramView struct {
	Page[model.SubProgramProject]
	Milestones []model.FlatMilestone `json:"milestones"`
}

// SubProgramService 生成 Sub-Program 视图（项目 + 阶段 + SG3 里程碑）。
type SubProgramService interface {
	// View 返回第 page 页的 Sub-Program 项目，programID 为空时不过滤父程序。
	View(ctx context.Context, programID string, page int) (SubProgramView, error)
}

type subProgramService struct {
	data           DataService
	subProgramType string
	itemsPerPage   int
}

func NewSubProgramService(data DataService, subProgramType string, itemsPerPage int) SubProgramService {
	if itemsPerPage < 1 {
		itemsPerPage = DefaultItemsPerPage
	}
	return &subProgramService{data: data, subProgramType: subProgramType, itemsPerPage: itemsPerPage}
}

func (s *subProgramService) View(ctx context.Context, programID string, page int) (SubProgramView, error) {
	ds, err := s.data.SubProgramAll(ctx, programID)
	if err != nil {
		return SubProgramView{}, err
	}
	projects := BuildSubProgramProjects(index.New(ds), s.subProgramType, programID)
	paged := Paginate(projects, page, s.itemsPerPage)

	// 扁平里程碑只覆盖当页项目
	flat := make([]model.FlatMilestone, 0)
	for _, p := range paged.Data {
		for _, m := range p.Milestones {
			flat = append(flat, model.FlatMilestone{
				ProjectID:       p.ProjectID,
				MilestoneDate:   m.MilestoneDate,
				MilestoneType:   "SG3",
				MilestoneName:   m.TaskName,
				MilestoneStatus: m.Status,
			})
		}
	}
	return SubProgramView{Page: paged, Milestones: flat}, nil
}

// BuildSubProgramProjects 是 Sub-Program 视图的投影：
//  1. 取配置拼写的 Sub-Program 层级行，丢弃自引用行（既当自己的父又当子
//     的脏数据），按 CHILD_ID 去重，保持首次出现顺序；programID 非空时只
//     保留直属该程序的行。
//  2. 主行优先级：Investment 元素且任务名为 "Start/Finish Dates" 的行 >
//     任意 Investment 行 > 首条投资数据行。完全无投资数据的项目照常出行，
//     日期为空、状态带哨兵值，父名缺失时落 "Unassigned"。
//  3. 阶段取 Phases 元素且任务名非空的行，字段名保持源表列名。
//  4. 里程碑只取 SG3（两种里程碑元素都查），MILESTONE_DATE 与 TARGET_DATE
//     同取任务起始日。
func BuildSubProgramProjects(idx *index.Index, subProgramType, programID string) []model.SubProgramProject {
	rows := idx.HierarchyByType(subProgramType)

	projects := make([]model.SubProgramProject, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))
	for _, h := range rows {
		if h.IsSelfParent() {
			continue
		}
		if programID != "" && h.ParentID != programID {
			continue
		}
		if _, ok := seen[h.ChildID]; ok {
			continue
		}
		seen[h.ChildID] = struct{}{}
		projects = append(projects, makeSubProgramProject(idx, h))
	}
	return projects
}

// subProgramMainRow 选主行：Investment + "Start/Finish Dates" 优先，
// 其次任意 Investment 行，都没有时取该项目的首条投资数据行。
func subProgramMainRow(idx *index.Index, extID string) *model.InvestmentRow {
	invRows := idx.InvestmentsByElement(extID, model.ElementInvestment)
	for _, row := range invRows {
		if row.TaskName == model.TaskNameStartFinish {
			r := row
			return &r
		}
	}
	if len(invRows) > 0 {
		r := invRows[0]
		return &r
	}
	if rows := idx.InvestmentsByExtID(extID); len(rows) > 0 {
		r := rows[0]
		return &r
	}
	return nil
}

func makeSubProgramProject(idx *index.Index, h model.HierarchyRow) model.SubProgramProject {
	p := model.SubProgramProject{
		ProjectID:    h.ChildID,
		ProjectName:  h.ChildName,
		Status:       model.StatusNoData,
		ParentName:   h.ParentName,
		IsSubProgram: true,
		PhaseData:    make([]model.SubProgramPhase, 0),
		Milestones:   make([]model.SubProgramMilestone, 0),
	}
	if p.ParentName == "" {
		p.ParentName = "Unassigned"
	}

	if main := subProgramMainRow(idx, h.ChildID); main != nil {
		if main.InvestmentName != "" {
			p.ProjectName = main.InvestmentName
		}
		p.StartDate = datePtr(main.TaskStart)
		p.EndDate = datePtr(main.TaskFinish)
		if main.OverallStatus != "" {
			p.Status = main.OverallStatus
		}
		p.Function = main.Function
	}

	for _, row := range idx.Phases(h.ChildID) {
		if row.TaskName == "" {
			continue
		}
		p.PhaseData = append(p.PhaseData, model.SubProgramPhase{
			TaskName:   row.TaskName,
			TaskStart:  row.TaskStart,
			TaskFinish: row.TaskFinish,
			Status:     row.MilestoneStatus,
		})
	}

	for _, row := range idx.SG3Rows(h.ChildID, model.ElementMilestoneDeployment, model.ElementMilestoneOther) {
		p.Milestones = append(p.Milestones, model.SubProgramMilestone{
			TaskName:       row.TaskName,
			MilestoneName:  row.TaskName,
			MilestoneDate:  row.TaskStart,
			TargetDate:     row.TaskStart,
			Status:         row.MilestoneStatus,
			RoadmapElement: row.RoadmapElement,
		})
	}
	return p
}
