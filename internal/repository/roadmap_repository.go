package repository

import (
	"fmt"

	"pmo_roadmap_go/internal/model"

	"gorm.io/gorm"
)

// RoadmapRepository 定义数据仓库侧的只读查询接口。
// 两张源表（层级表 / 投资表）由上游管道维护，本服务只查不写。
// 分页统一按 CHILD_ID 升序 + LIMIT/OFFSET，保证翻页结果可复现。
type RoadmapRepository interface {
	// FindHierarchyByTypes 按 COE_ROADMAP_TYPE 过滤并分页返回层级行。
	FindHierarchyByTypes(types []string, page, limit int) ([]model.HierarchyRow, error)

	// FindHierarchyByTypesAndParent 在类型过滤的基础上再按父 ID 过滤（子程序钻取）。
	FindHierarchyByTypesAndParent(types []string, parentID string, page, limit int) ([]model.HierarchyRow, error)

	// FindInvestmentsByExtIDs 取给定实体集合的全部投资行。
	// 只取当前页涉及的实体，避免把整张投资表拉回来。
	FindInvestmentsByExtIDs(ids []string) ([]model.InvestmentRow, error)

	// FindAllHierarchy / FindAllInvestments 全量读取，仅供 /api/data 兼容端点使用。
	FindAllHierarchy() ([]model.HierarchyRow, error)
	FindAllInvestments() ([]model.InvestmentRow, error)

	// FindFilterRows 返回筛选项扫描用的行：总体信息行且 INV_MARKET 非空。
	FindFilterRows() ([]model.InvestmentRow, error)
}

// roadmapRepository 基于 GORM 的仓库实现
type roadmapRepository struct {
	db *gorm.DB
}

func NewRoadmapRepository(db *gorm.DB) RoadmapRepository {
	return &roadmapRepository{db: db}
}

// normalizePaging 把页码和页大小收敛到合法区间后换算偏移量。
func normalizePaging(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}
	return (page - 1) * limit, limit
}

func (r *roadmapRepository) FindHierarchyByTypes(types []string, page, limit int) ([]model.HierarchyRow, error) {
	if len(types) == 0 {
		return nil, fmt.Errorf("hierarchy types are required")
	}

	offset, limit := normalizePaging(page, limit)
	var rows []model.HierarchyRow
	if err := r.db.
		Where("COE_ROADMAP_TYPE IN ?", types).
		Order("CHILD_ID ASC").
		Limit(limit).Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *roadmapRepository) FindHierarchyByTypesAndParent(types []string, parentID string, page, limit int) ([]model.HierarchyRow, error) {
	if len(types) == 0 {
		return nil, fmt.Errorf("hierarchy types are required")
	}
	if parentID == "" {
		return r.FindHierarchyByTypes(types, page, limit)
	}

	offset, limit := normalizePaging(page, limit)
	var rows []model.HierarchyRow
	if err := r.db.
		Where("COE_ROADMAP_TYPE IN ? AND COE_ROADMAP_PARENT_ID = ?", types, parentID).
		Order("CHILD_ID ASC").
		Limit(limit).Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *roadmapRepository) FindInvestmentsByExtIDs(ids []string) ([]model.InvestmentRow, error) {
	if len(ids) == 0 {
		return []model.InvestmentRow{}, nil
	}

	var rows []model.InvestmentRow
	if err := r.db.
		Where("INV_EXT_ID IN ?", ids).
		Order("INV_EXT_ID ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *roadmapRepository) FindAllHierarchy() ([]model.HierarchyRow, error) {
	var rows []model.HierarchyRow
	if err := r.db.Order("CHILD_ID ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *roadmapRepository) FindAllInvestments() ([]model.InvestmentRow, error) {
	var rows []model.InvestmentRow
	if err := r.db.Order("INV_EXT_ID ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindFilterRows 只扫总体信息行，且跳过 INV_MARKET 为空的行：
// 空市场行进筛选项只会产生噪音（原始实现同样在 SQL 里排除）。
func (r *roadmapRepository) FindFilterRows() ([]model.InvestmentRow, error) {
	var rows []model.InvestmentRow
	if err := r.db.
		Where("ROADMAP_ELEMENT = ? AND INV_MARKET IS NOT NULL AND INV_MARKET <> ''", model.ElementInvestment).
		Order("INV_EXT_ID ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
