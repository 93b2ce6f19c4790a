// Package upstream 消费另一个实例的 /api/data 系列接口（upstream 数据源模式）。
// 错误分三类：
//   - TransportError：网络失败或非 2xx 响应，原样上抛。
//   - EnvelopeError：JSON 可解析但 status != "success"，消息取自 message 字段。
//   - ShapeError：响应缺少 data.hierarchy / data.investment 等必要字段。
//
// 投影层从不因数据内容报错，HTTP 边界是唯一的错误来源。
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"pmo_roadmap_go/internal/model"
)

// TransportError 表示 HTTP 层失败：网络错误或非 2xx 状态码。
type TransportError struct {
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream transport error: %v", e.Err)
	}
	return fmt.Sprintf("upstream returned status %d", e.StatusCode)
}

func (e *TransportError) Unwrap() error { return e.Err }

// EnvelopeError 表示信封状态不是 success。
type EnvelopeError struct {
	Message string
}

func (e *EnvelopeError) Error() string {
	if e.Message == "" {
		return "upstream reported failure"
	}
	return "upstream reported failure: " + e.Message
}

// ShapeError 表示响应缺少必要字段。
type ShapeError struct {
	Reason string
}

func (e *ShapeError) Error() string {
	return "invalid upstream payload: " + e.Reason
}

// Client 是 /api/data 系列接口的 HTTP 客户端。
type Client struct {
	baseURL string
	httpc   *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: timeout},
	}
}

// get 发起请求并完成信封级校验，返回已验证 status 的信封。
func (c *Client) get(ctx context.Context, path string, query url.Values) (*model.Envelope, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// 非 2xx 也尽量带出上游的 message，方便定位
		var env model.Envelope
		if json.Unmarshal(body, &env) == nil && env.Message != "" {
			return nil, &TransportError{StatusCode: resp.StatusCode, Err: fmt.Errorf("%s", env.Message)}
		}
		return nil, &TransportError{StatusCode: resp.StatusCode}
	}

	var env model.Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &ShapeError{Reason: "malformed json body"}
	}
	if env.Status != "success" {
		return nil, &EnvelopeError{Message: env.Message}
	}
	return &env, nil
}

// dataset 校验信封内的数据体形状并转换为快照。
func dataset(env *model.Envelope) (*model.Dataset, *model.SourcePagination, error) {
	if env.Data == nil {
		return nil, nil, &ShapeError{Reason: "missing data"}
	}
	if env.Data.Hierarchy == nil {
		return nil, nil, &ShapeError{Reason: "missing data.hierarchy"}
	}
	if env.Data.Investment == nil {
		return nil, nil, &ShapeError{Reason: "missing data.investment"}
	}
	return &model.Dataset{
		Hierarchy:  *env.Data.Hierarchy,
		Investment: *env.Data.Investment,
	}, env.Data.Pagination, nil
}

func pagingQuery(page, limit int) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	return q
}

// FetchData 拉取全量快照（GET /api/data）。
func (c *Client) FetchData(ctx context.Context) (*model.Dataset, error) {
	env, err := c.get(ctx, "/api/data", nil)
	if err != nil {
		return nil, err
	}
	ds, _, err := dataset(env)
	return ds, err
}

// FetchPortfolio 拉取一页 Portfolio 快照。
func (c *Client) FetchPortfolio(ctx context.Context, page, limit int) (*model.Dataset, *model.SourcePagination, error) {
	env, err := c.get(ctx, "/api/data/portfolio", pagingQuery(page, limit))
	if err != nil {
		return nil, nil, err
	}
	return dataset(env)
}

// FetchProgram 拉取一页 Program 快照，portfolioID 可为空（全量 Program 视图）。
func (c *Client) FetchProgram(ctx context.Context, portfolioID string, page, limit int) (*model.Dataset, *model.SourcePagination, error) {
	q := pagingQuery(page, limit)
	if portfolioID != "" {
		q.Set("portfolioId", portfolioID)
	}
	env, err := c.get(ctx, "/api/data/program", q)
	if err != nil {
		return nil, nil, err
	}
	return dataset(env)
}

// FetchSubProgram 拉取一页 Sub-Program 快照，programID 可为空。
func (c *Client) FetchSubProgram(ctx context.Context, programID string, page, limit int) (*model.Dataset, *model.SourcePagination, error) {
	q := pagingQuery(page, limit)
	if programID != "" {
		q.Set("programId", programID)
	}
	env, err := c.get(ctx, "/api/data/subprogram", q)
	if err != nil {
		return nil, nil, err
	}
	return dataset(env)
}

// FetchRegion 拉取一页 Region 快照。region/market 等筛选在投影层做，
// 与原始实现一致（上游只按类型过滤）。
func (c *Client) FetchRegion(ctx context.Context, page, limit int) (*model.Dataset, *model.SourcePagination, error) {
	env, err := c.get(ctx, "/api/data/region", pagingQuery(page, limit))
	if err != nil {
		return nil, nil, err
	}
	return dataset(env)
}

// filterEnvelope 是 /api/data/region/filters 的响应体。
type filterEnvelope struct {
	Status  string                     `json:"status"`
	Message string                     `json:"message,omitempty"`
	Data    *model.RegionFilterOptions `json:"data"`
}

// FetchRegionFilters 拉取筛选项。任何错误都上抛，调用方自行降级为空列表。
func (c *Client) FetchRegionFilters(ctx context.Context) (*model.RegionFilterOptions, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/data/region/filters", nil)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{StatusCode: resp.StatusCode}
	}

	var env filterEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, &ShapeError{Reason: "malformed json body"}
	}
	if env.Status != "success" {
		return nil, &EnvelopeError{Message: env.Message}
	}
	if env.Data == nil {
		return nil, &ShapeError{Reason: "missing data"}
	}
	return env.Data, nil
}

// Health 探测上游健康端点，/api/test-connection 在 upstream 模式下用它。
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return &TransportError{Err: err}
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &TransportError{StatusCode: resp.StatusCode}
	}
	return nil
}
