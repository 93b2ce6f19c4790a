package model

// Dataset 是一次抓取得到的原始数据快照：层级行 + 投资行。
// 快照构建后只读，投影引擎对同一快照的重复计算结果完全一致。
type Dataset struct {
	Hierarchy  []HierarchyRow  `json:"hierarchy"`
	Investment []InvestmentRow `json:"investment"`
}

// SourcePagination 是 /api/data 系列接口返回的分页元信息。
// has_more 采用 "本页行数等于 limit" 的判定，与原始服务一致。
type SourcePagination struct {
	Page        int    `json:"page"`
	Limit       int    `json:"limit"`
	TotalItems  int    `json:"total_items"`
	HasMore     bool   `json:"has_more"`
	PortfolioID string `json:"portfolio_id,omitempty"`
	ProgramID   string `json:"program_id,omitempty"`
	Region      string `json:"region,omitempty"`
}

// Envelope 是 /api/data 系列接口的响应信封。
type Envelope struct {
	Status  string        `json:"status"`
	Message string        `json:"message,omitempty"`
	Data    *EnvelopeData `json:"data,omitempty"`
	Mode    string        `json:"mode,omitempty"`
}

// EnvelopeData 是信封内的数据体。Hierarchy/Investment 用指针切片字段以便
// 区分 "字段缺失"（形状错误）和 "空列表"（合法的空数据）。
type EnvelopeData struct {
	Hierarchy  *[]HierarchyRow   `json:"hierarchy"`
	Investment *[]InvestmentRow  `json:"investment"`
	Pagination *SourcePagination `json:"pagination,omitempty"`
}
