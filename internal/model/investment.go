package model

import "strings"

// InvestmentRow 对应仓库中投资明细表的一行。一个 INV_EXT_ID 下通常有多行：
// 一行总体信息（Investment）、多行阶段（Phases）、多行里程碑（Milestones - *），
// 由 ROADMAP_ELEMENT 区分。
type InvestmentRow struct {
	ExtID           string `gorm:"column:INV_EXT_ID" json:"INV_EXT_ID"`
	InvestmentName  string `gorm:"column:INVESTMENT_NAME" json:"INVESTMENT_NAME"`
	RoadmapElement  string `gorm:"column:ROADMAP_ELEMENT" json:"ROADMAP_ELEMENT"`
	TaskName        string `gorm:"column:TASK_NAME" json:"TASK_NAME"`
	TaskStart       string `gorm:"column:TASK_START" json:"TASK_START"`
	TaskFinish      string `gorm:"column:TASK_FINISH" json:"TASK_FINISH"`
	MilestoneStatus string `gorm:"column:MILESTONE_STATUS" json:"MILESTONE_STATUS"`
	OverallStatus   string `gorm:"column:INV_OVERALL_STATUS" json:"INV_OVERALL_STATUS"`
	ClarityInvType  string `gorm:"column:CLRTY_INV_TYPE" json:"CLRTY_INV_TYPE"`
	Market          string `gorm:"column:INV_MARKET" json:"INV_MARKET"`
	Function        string `gorm:"column:INV_FUNCTION" json:"INV_FUNCTION"`
	Tier            int    `gorm:"column:INV_TIER" json:"INV_TIER"`
	SortOrder       int    `gorm:"column:SortOrder" json:"SortOrder"`
}

// TableName 指定 GORM 使用的表名
func (InvestmentRow) TableName() string {
	return "coe_roadmap_investment"
}

// ROADMAP_ELEMENT 的已知取值。
const (
	ElementInvestment          = "Investment"
	ElementPhases              = "Phases"
	ElementMilestoneDeployment = "Milestones - Deployment"
	ElementMilestoneOther      = "Milestones - Other"
)

// CLRTY_INV_TYPE 中参与 Region 视图的取值。
const (
	ClarityTypeProject    = "Project"
	ClarityTypePrograms   = "Programs"
	ClarityTypeNonClarity = "Non-Clarity item"
)

// TaskNameStartFinish 是总体信息行的约定任务名，Sub-Program 视图优先选它做主行。
const TaskNameStartFinish = "Start/Finish Dates"

// ElementKind 把动态的 ROADMAP_ELEMENT 字符串归约为三类判别值，
// 行在建索引时分类一次，投影层不再做字符串匹配。
type ElementKind int

const (
	KindInvestment ElementKind = iota
	KindPhase
	KindMilestone
	KindOther
)

// ElementKind 返回该行的判别分类。
// 里程碑判定用子串匹配（源数据存在 "Milestones - Deployment" / "Milestones - Other" 等变体）。
func (r InvestmentRow) ElementKind() ElementKind {
	switch {
	case r.RoadmapElement == ElementInvestment:
		return KindInvestment
	case r.RoadmapElement == ElementPhases:
		return KindPhase
	case strings.Contains(r.RoadmapElement, "Milestones"):
		return KindMilestone
	default:
		return KindOther
	}
}

// PhaseNames 是六个标准阶段名，顺序即业务顺序。
var PhaseNames = []string{"Initiate", "Evaluate", "Develop", "Deploy", "Sustain", "Close"}

var phaseNameSet = func() map[string]struct{} {
	s := make(map[string]struct{}, len(PhaseNames))
	for _, n := range PhaseNames {
		s[n] = struct{}{}
	}
	return s
}()

// IsStandardPhaseName 判断任务名是否是六个标准阶段名之一。
func IsStandardPhaseName(name string) bool {
	_, ok := phaseNameSet[name]
	return ok
}
