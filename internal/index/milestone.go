package index

import (
	"sort"
	"strings"
	"time"

	"pmo_roadmap_go/internal/model"
	"pmo_roadmap_go/pkg/timeline"
)

// 里程碑提取器。两种模式：
//   - 全量模式（AllMilestones）：Portfolio / Program 视图用，取实体下所有里程碑行。
//   - SG3 模式（SG3Rows / SG3Milestones）：Sub-Program / Region 视图用，
//     只取任务名包含 sg3（忽略大小写）的行，且可限定元素类型。
//
// 两种模式都丢弃没有 TASK_START 的行，按日期升序稳定排序（同日保持输入顺序）。

// dated 把投资行和解析好的日期捆在一起参与排序，避免比较函数里反复解析。
type dated struct {
	row  model.InvestmentRow
	when time.Time
}

func sortByDate(rows []model.InvestmentRow) []dated {
	ds := make([]dated, 0, len(rows))
	for _, row := range rows {
		t := timeline.ParseDate(row.TaskStart)
		if t == nil {
			continue
		}
		ds = append(ds, dated{row: row, when: *t})
	}
	sort.SliceStable(ds, func(i, j int) bool {
		return ds[i].when.Before(ds[j].when)
	})
	return ds
}

// normalizeDate 把日期统一成 YYYY-MM-DD 输出。
func normalizeDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// AllMilestones 全量模式：返回实体下所有里程碑行映射成的里程碑序列，按日期升序。
// isSG3 的判定：TASK_NAME 含 "SG3"（区分大小写）或 ROADMAP_ELEMENT 含 "SG3"。
func (x *Index) AllMilestones(extID string) []model.Milestone {
	ms := make([]model.Milestone, 0)
	for _, d := range sortByDate(x.MilestoneRows(extID)) {
		ms = append(ms, model.Milestone{
			Date:   normalizeDate(d.when),
			Status: d.row.MilestoneStatus,
			Label:  d.row.TaskName,
			IsSG3:  strings.Contains(d.row.TaskName, "SG3") || strings.Contains(d.row.RoadmapElement, "SG3"),
		})
	}
	return ms
}

// SG3Rows SG3 模式：返回任务名含 sg3（忽略大小写）的里程碑行，
// 限定在给定的 ROADMAP_ELEMENT 集合内，按日期升序。
func (x *Index) SG3Rows(extID string, elements ...string) []model.InvestmentRow {
	allowed := make(map[string]struct{}, len(elements))
	for _, e := range elements {
		allowed[e] = struct{}{}
	}

	var candidates []model.InvestmentRow
	for _, row := range x.MilestoneRows(extID) {
		if _, ok := allowed[row.RoadmapElement]; !ok {
			continue
		}
		if !strings.Contains(strings.ToLower(row.TaskName), "sg3") {
			continue
		}
		candidates = append(candidates, row)
	}

	rows := make([]model.InvestmentRow, 0, len(candidates))
	for _, d := range sortByDate(candidates) {
		row := d.row
		row.TaskStart = normalizeDate(d.when)
		rows = append(rows, row)
	}
	return rows
}

// SG3Milestones SG3 模式的里程碑形态：每个结果都标记 isSG3=true。
func (x *Index) SG3Milestones(extID string, elements ...string) []model.Milestone {
	rows := x.SG3Rows(extID, elements...)
	ms := make([]model.Milestone, 0, len(rows))
	for _, row := range rows {
		ms = append(ms, model.Milestone{
			Date:   row.TaskStart,
			Status: row.MilestoneStatus,
			Label:  row.TaskName,
			IsSG3:  true,
		})
	}
	return ms
}
