package service

import (
	"context"

	"pmo_roadmap_go/internal/index"
	"pmo_roadmap_go/internal/model"
)

// PortfolioService 生成 Portfolio 视图（顶层组合）的显示模型。
type PortfolioService interface {
	// View 返回第 page 页的 Portfolio 行。
	View(ctx context.Context, page int) (Page[model.DisplayRow], error)
}

type portfolioService struct {
	data         DataService
	itemsPerPage int
}

func NewPortfolioService(data DataService, itemsPerPage int) PortfolioService {
	if itemsPerPage < 1 {
		itemsPerPage = DefaultItemsPerPage
	}
	return &portfolioService{data: data, itemsPerPage: itemsPerPage}
}

func (s *portfolioService) View(ctx context.Context, page int) (Page[model.DisplayRow], error) {
	ds, err := s.data.PortfolioAll(ctx)
	if err != nil {
		return Page[model.DisplayRow]{}, err
	}
	rows := BuildPortfolioRows(index.New(ds))
	return Paginate(rows, page, s.itemsPerPage), nil
}

// BuildPortfolioRows 是 Portfolio 视图的投影：
//  1. 取全部 Portfolio 层级行，按 PTF id（COE_ROADMAP_PARENT_ID）分组，
//     组顺序为首次出现顺序，组内保持输入顺序。
//  2. 每行关联总体信息行补名称、日期、状态；没有投资数据的组合照常出行，
//     带哨兵状态（数据缺失不是错误）。
//  3. 第二遍扫描设置 isDrillable：该组合被任何 Program/SubProgram 行引用为父
//     节点时可钻取。
//
// 层级为空时返回空列表，不报错。
func BuildPortfolioRows(idx *index.Index) []model.DisplayRow {
	portfolios := idx.HierarchyByType(model.TypePortfolio)

	groupOrder := make([]string, 0)
	groups := make(map[string][]model.HierarchyRow)
	for _, row := range portfolios {
		if _, ok := groups[row.ParentID]; !ok {
			groupOrder = append(groupOrder, row.ParentID)
		}
		groups[row.ParentID] = append(groups[row.ParentID], row)
	}

	rows := make([]model.DisplayRow, 0, len(portfolios))
	for _, ptfID := range groupOrder {
		for _, h := range groups[ptfID] {
			inv := idx.MainInvestment(h.ChildID)

			row := model.DisplayRow{
				ID:         h.ChildID,
				Name:       h.ChildName,
				ParentID:   h.ParentID,
				ParentName: h.ParentName,
				Status:     model.StatusNoInvestmentData,
				IsProgram:  true,
				Milestones: idx.AllMilestones(h.ChildID),
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
			rows = append(rows, row)
		}
	}

	// 第二遍：钻取标记
	for i := range rows {
		rows[i].IsDrillable = idx.IsProgramParent(rows[i].ID)
	}
	return rows
}
