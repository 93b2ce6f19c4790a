package service

import "errors"

var (
	// ErrInvalidInput 请求参数非法（页码、selector 等）
	ErrInvalidInput = errors.New("invalid input")
	// ErrSourceUnavailable 数据源（仓库或上游服务）不可用
	ErrSourceUnavailable = errors.New("data source unavailable")
	// ErrInternal 内部错误（对外不暴露细节）
	ErrInternal = errors.New("internal server error")
)
