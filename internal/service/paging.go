package service

// 分页切片器：把排好序的投影结果切成渲染器一次消费的固定大小页。
// 与视图无关，任何投影的输出都用同一套切片逻辑。

// DefaultItemsPerPage 渲染器每页的行数。
const DefaultItemsPerPage = 13

// Page 是一页投影结果及其分页元信息。
type Page[T any] struct {
	Data               []T  `json:"data"`
	TotalPages         int  `json:"totalPages"`
	CurrentPage        int  `json:"currentPage"`
	HasNext            bool `json:"hasNext"`
	HasPrev            bool `json:"hasPrev"`
	ItemsOnCurrentPage int  `json:"itemsOnCurrentPage"`
}

// Paginate 切出第 page 页（1 起）。页码越界时收敛到 [1, totalPages]；
// 空输入返回 totalPages=0 的空页。
func Paginate[T any](items []T, page, perPage int) Page[T] {
	if perPage < 1 {
		perPage = DefaultItemsPerPage
	}
	if len(items) == 0 {
		return Page[T]{Data: []T{}, TotalPages: 0, CurrentPage: 1}
	}

	totalPages := (len(items) + perPage - 1) / perPage
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * perPage
	end := start + perPage
	if end > len(items) {
		end = len(items)
	}

	return Page[T]{
		Data:               items[start:end],
		TotalPages:         totalPages,
		CurrentPage:        page,
		HasNext:            page < totalPages,
		HasPrev:            page > 1,
		ItemsOnCurrentPage: end - start,
	}
}
