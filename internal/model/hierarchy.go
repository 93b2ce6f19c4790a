package model

// HierarchyRow 对应仓库中路线图层级表的一行，描述 Portfolio / Program / Sub-Program
// 三级结构中的一个节点。字段名保持仓库列名原样（大写下划线），JSON 输出同名，
// 与原始 /api/data 响应逐字段对齐。
type HierarchyRow struct {
	ChildID    string `gorm:"column:CHILD_ID" json:"CHILD_ID"`
	ChildName  string `gorm:"column:CHILD_NAME" json:"CHILD_NAME"`
	ParentID   string `gorm:"column:COE_ROADMAP_PARENT_ID" json:"COE_ROADMAP_PARENT_ID"`
	ParentName string `gorm:"column:COE_ROADMAP_PARENT_NAME" json:"COE_ROADMAP_PARENT_NAME"`
	Type       string `gorm:"column:COE_ROADMAP_TYPE" json:"COE_ROADMAP_TYPE"`
	StartDate  string `gorm:"column:COE_ROADMAP_START_DATE" json:"COE_ROADMAP_START_DATE"`
	EndDate    string `gorm:"column:COE_ROADMAP_END_DATE" json:"COE_ROADMAP_END_DATE"`
	Status     string `gorm:"column:COE_ROADMAP_STATUS" json:"COE_ROADMAP_STATUS"`
}

// TableName 指定 GORM 使用的表名
func (HierarchyRow) TableName() string {
	return "coe_roadmap_hierarchy"
}

// 层级类型的已知取值。SubProgram 同时存在带连字符和不带连字符两种拼写，
// 两种写法在源数据里并存，投影层通过配置决定各视图使用哪一种。
const (
	TypePortfolio         = "Portfolio"
	TypeProgram           = "Program"
	TypeSubProgramNoDash  = "SubProgram"
	TypeSubProgramHyphens = "Sub-Program"
)

// IsSelfParent 判断该行是否自引用（CHILD_ID == COE_ROADMAP_PARENT_ID）。
// 源数据用自引用行标记 "根" 节点；Sub-Program 视图里自引用行是重复数据需要剔除。
func (r HierarchyRow) IsSelfParent() bool {
	return r.ChildID != "" && r.ChildID == r.ParentID
}

// NodeKind 把自引用哨兵约定转换为显式标签，下游不再比较 ID。
type NodeKind int

const (
	NodeRoot NodeKind = iota
	NodeChild
)

// Kind 返回该行在层级中的角色。
func (r HierarchyRow) Kind() NodeKind {
	if r.IsSelfParent() {
		return NodeRoot
	}
	return NodeChild
}
