package model

// 本文件定义投影引擎的输出实体（派生模型）。
// 与源表行不同，这些结构按请求生成、不可变，JSON 字段名即渲染器的契约。

// 缺数据时的哨兵状态值。数据缺失从不报错，而是带哨兵状态出行。
const (
	StatusNoInvestmentData = "No Investment Data"
	StatusNoData           = "No Data"
	StatusUnknown          = "Unknown"
)

// Milestone 是时间轴上的一个里程碑标记。
// IsSG3 表示该里程碑是 SG3（三号关卡/部署检查点）。
type Milestone struct {
	Date   string `json:"date"`
	Status string `json:"status"`
	Label  string `json:"label"`
	IsSG3  bool   `json:"isSG3"`
}

// DisplayRow 是 Portfolio / Program 视图的一行（一条甘特条 + 里程碑序列）。
// StartDate/EndDate 用指针表达 "无数据"：渲染器据此决定画条还是画占位。
type DisplayRow struct {
	ID                string      `json:"id"`
	Name              string      `json:"name"`
	ParentID          string      `json:"parentId"`
	ParentName        string      `json:"parentName"`
	StartDate         *string     `json:"startDate"`
	EndDate           *string     `json:"endDate"`
	Status            string      `json:"status"`
	SortOrder         int         `json:"sortOrder"`
	IsProgram         bool        `json:"isProgram"`
	IsSubProgram      bool        `json:"isSubProgram"`
	HasInvestmentData bool        `json:"hasInvestmentData"`
	IsDrillable       bool        `json:"isDrillable"`
	Milestones        []Milestone `json:"milestones"`
}

// SubProgramPhase 是 Sub-Program 视图里一个阶段条目，字段名保持源表列名。
type SubProgramPhase struct {
	TaskName   string `json:"TASK_NAME"`
	TaskStart  string `json:"TASK_START"`
	TaskFinish string `json:"TASK_FINISH"`
	Status     string `json:"MILESTONE_STATUS"`
}

// SubProgramMilestone 是 Sub-Program 视图里挂在单个项目下的里程碑。
// MILESTONE_DATE 与 TARGET_DATE 当前都取 TASK_START，两个字段并存是渲染器契约。
type SubProgramMilestone struct {
	TaskName       string `json:"TASK_NAME"`
	MilestoneName  string `json:"MILESTONE_NAME"`
	MilestoneDate  string `json:"MILESTONE_DATE"`
	TargetDate     string `json:"TARGET_DATE"`
	Status         string `json:"STATUS"`
	RoadmapElement string `json:"ROADMAP_ELEMENT"`
}

// SubProgramProject 是 Sub-Program 视图的一个项目。
type SubProgramProject struct {
	ProjectID    string                `json:"PROJECT_ID"`
	ProjectName  string                `json:"PROJECT_NAME"`
	StartDate    *string               `json:"START_DATE"`
	EndDate      *string               `json:"END_DATE"`
	Status       string                `json:"STATUS"`
	ParentName   string                `json:"COE_ROADMAP_PARENT_NAME"`
	Function     string                `json:"INV_FUNCTION"`
	IsSubProgram bool                  `json:"isSubProgram"`
	PhaseData    []SubProgramPhase     `json:"phaseData"`
	Milestones   []SubProgramMilestone `json:"milestones"`
}

// FlatMilestone 是 Sub-Program 视图附带的全局扁平里程碑列表的一项，
// 用 PROJECT_ID 关联回项目。
type FlatMilestone struct {
	ProjectID       string `json:"PROJECT_ID"`
	MilestoneDate   string `json:"MILESTONE_DATE"`
	MilestoneType   string `json:"MILESTONE_TYPE"`
	MilestoneName   string `json:"MILESTONE_NAME"`
	MilestoneStatus string `json:"MILESTONE_STATUS"`
}

// RegionPhase 是 Region 视图里一个标准阶段（六阶段之一）。
type RegionPhase struct {
	Name      string `json:"name"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// RegionProject 是 Region 视图的一个项目。
// IsUnphased=false 时，StartDate/EndDate 等于最早阶段起点和最晚阶段终点。
type RegionProject struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Region     string        `json:"region"`
	Market     string        `json:"market"`
	Function   string        `json:"function"`
	Tier       string        `json:"tier"`
	StartDate  *string       `json:"startDate"`
	EndDate    *string       `json:"endDate"`
	Status     string        `json:"status"`
	IsUnphased bool          `json:"isUnphased"`
	Phases     []RegionPhase `json:"phases"`
	Milestones []Milestone   `json:"milestones"`
}

// RegionFilterOptions 是 Region 视图的四组筛选项，均已排序去重。
type RegionFilterOptions struct {
	Regions   []string `json:"regions"`
	Markets   []string `json:"markets"`
	Functions []string `json:"functions"`
	Tiers     []string `json:"tiers"`
}

// statusColors 是状态到渲染颜色的固定映射。
var statusColors = map[string]string{
	"Red":    "#ef4444",
	"Amber":  "#f59e0b",
	"Green":  "#10b981",
	"Grey":   "#9ca3af",
	"Yellow": "#E5DE00",
}

// StatusColor 返回状态对应的颜色，未知状态落在灰色。
func StatusColor(status string) string {
	if c, ok := statusColors[status]; ok {
		return c
	}
	return statusColors["Grey"]
}
