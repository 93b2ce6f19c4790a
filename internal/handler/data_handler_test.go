package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pmo_roadmap_go/internal/cache"
	"pmo_roadmap_go/internal/model"
	"pmo_roadmap_go/internal/upstream"
	applog "pmo_roadmap_go/pkg/log"

	"github.com/gin-gonic/gin"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	applog.Init("error", "console", "")
	m.Run()
}

func doReq(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// fakeDataService 按函数字段编程的数据服务替身。
type fakeDataService struct {
	fullFn          func() (*model.Dataset, error)
	portfolioPageFn func(page, limit int) (*model.Dataset, *model.SourcePagination, error)
	filterFn        func() (*model.RegionFilterOptions, error)
	pingFn          func() error
}

func (f *fakeDataService) PortfolioPage(ctx context.Context, page, limit int) (*model.Dataset, *model.SourcePagination, error) {
	if f.portfolioPageFn != nil {
		return f.portfolioPageFn(page, limit)
	}
	return &model.Dataset{}, nil, nil
}
func (f *fakeDataService) ProgramPage(ctx context.Context, portfolioID string, page, limit int) (*model.Dataset, *model.SourcePagination, error) {
	return &model.Dataset{}, nil, nil
}
func (f *fakeDataService) SubProgramPage(ctx context.Context, programID string, page, limit int) (*model.Dataset, *model.SourcePagination, error) {
	return &model.Dataset{}, nil, nil
}
func (f *fakeDataService) RegionPage(ctx context.Context, page, limit int) (*model.Dataset, *model.SourcePagination, error) {
	return &model.Dataset{}, nil, nil
}
func (f *fakeDataService) FullDataset(ctx context.Context) (*model.Dataset, error) {
	if f.fullFn != nil {
		return f.fullFn()
	}
	return &model.Dataset{}, nil
}
func (f *fakeDataService) PortfolioAll(ctx context.Context) (*model.Dataset, error) {
	return &model.Dataset{}, nil
}
func (f *fakeDataService) ProgramAll(ctx context.Context, portfolioID string) (*model.Dataset, error) {
	return &model.Dataset{}, nil
}
func (f *fakeDataService) SubProgramAll(ctx context.Context, programID string) (*model.Dataset, error) {
	return &model.Dataset{}, nil
}
func (f *fakeDataService) RegionAll(ctx context.Context) (*model.Dataset, error) {
	return &model.Dataset{}, nil
}
func (f *fakeDataService) FilterOptions(ctx context.Context) (*model.RegionFilterOptions, error) {
	if f.filterFn != nil {
		return f.filterFn()
	}
	return &model.RegionFilterOptions{}, nil
}
func (f *fakeDataService) Ping(ctx context.Context) error {
	if f.pingFn != nil {
		return f.pingFn()
	}
	return nil
}
func (f *fakeDataService) Mode() string { return "warehouse" }

func newDataRouter(h *DataHandler) *gin.Engine {
	r := gin.New()
	r.GET("/api/data", h.Full)
	r.GET("/api/data/portfolio", h.Portfolio)
	r.GET("/api/data/region/filters", h.RegionFilters)
	return r
}

// TestDataHandler_Portfolio_Envelope 验证数据端点的信封契约：
// status/data.hierarchy/data.investment/data.pagination/mode 逐字段在位。
func TestDataHandler_Portfolio_Envelope(t *testing.T) {
	svc := &fakeDataService{
		portfolioPageFn: func(page, limit int) (*model.Dataset, *model.SourcePagination, error) {
			if page != 3 || limit != 20 {
				t.Fatalf("page/limit = %d/%d, want 3/20", page, limit)
			}
			return &model.Dataset{
					Hierarchy:  []model.HierarchyRow{{ChildID: "PF1"}},
					Investment: []model.InvestmentRow{},
				}, &model.SourcePagination{Page: 3, Limit: 20, HasMore: true}, nil
		},
	}
	r := newDataRouter(NewDataHandler(svc))

	w := doReq(r, http.MethodGet, "/api/data/portfolio?page=3&limit=20", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expect 200, got %d, body=%s", w.Code, w.Body.String())
	}

	var env model.Envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("invalid envelope: %v", err)
	}
	if env.Status != "success" || env.Mode != "warehouse" {
		t.Fatalf("envelope = %+v", env)
	}
	if env.Data == nil || env.Data.Hierarchy == nil || len(*env.Data.Hierarchy) != 1 {
		t.Fatalf("hierarchy missing: %+v", env.Data)
	}
	if env.Data.Investment == nil {
		t.Fatal("empty investment must serialize as [], not be omitted")
	}
	if env.Data.Pagination == nil || !env.Data.Pagination.HasMore {
		t.Fatalf("pagination = %+v", env.Data.Pagination)
	}
}

// TestDataHandler_Full_UpstreamErrorMapsTo502 验证上游错误统一映射为 502 错误信封。
func TestDataHandler_Full_UpstreamErrorMapsTo502(t *testing.T) {
	svc := &fakeDataService{
		fullFn: func() (*model.Dataset, error) {
			return nil, &upstream.TransportError{StatusCode: http.StatusInternalServerError}
		},
	}
	r := newDataRouter(NewDataHandler(svc))

	w := doReq(r, http.MethodGet, "/api/data", "")
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expect 502, got %d, body=%s", w.Code, w.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if resp["status"] != "error" {
		t.Fatalf("error envelope = %v", resp)
	}
}

func TestDataHandler_Portfolio_BadPagingFallsBack(t *testing.T) {
	svc := &fakeDataService{
		portfolioPageFn: func(page, limit int) (*model.Dataset, *model.SourcePagination, error) {
			if page != 1 || limit != 50 {
				t.Fatalf("bad paging should fall back to 1/50, got %d/%d", page, limit)
			}
			return &model.Dataset{}, nil, nil
		},
	}
	r := newDataRouter(NewDataHandler(svc))

	w := doReq(r, http.MethodGet, "/api/data/portfolio?page=abc&limit=-5", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expect 200, got %d", w.Code)
	}
}

func TestSystemHandler_TestConnection(t *testing.T) {
	store := cache.NewMemoryStore(nil)

	healthy := NewSystemHandler(&fakeDataService{}, store)
	r := gin.New()
	r.GET("/api/test-connection", healthy.TestConnection)
	if w := doReq(r, http.MethodGet, "/api/test-connection", ""); w.Code != http.StatusOK {
		t.Fatalf("healthy source: expect 200, got %d", w.Code)
	}

	down := NewSystemHandler(&fakeDataService{pingFn: func() error {
		return &upstream.TransportError{StatusCode: 500}
	}}, store)
	r = gin.New()
	r.GET("/api/test-connection", down.TestConnection)
	if w := doReq(r, http.MethodGet, "/api/test-connection", ""); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("down source: expect 503, got %d", w.Code)
	}
}

func TestSystemHandler_CacheClear(t *testing.T) {
	store := cache.NewMemoryStore(nil)
	store.Set(context.Background(), "pmo_query_abc", []byte("1"), time.Minute)

	h := NewSystemHandler(&fakeDataService{}, store)
	r := gin.New()
	r.POST("/api/cache/clear", h.CacheClear)

	w := doReq(r, http.MethodPost, "/api/cache/clear", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expect 200, got %d", w.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if resp["removed"] != float64(1) {
		t.Fatalf("removed = %v, want 1", resp["removed"])
	}
	if store.Stats(context.Background()).Keys != 0 {
		t.Fatal("cache should be empty after clear")
	}
}

// TestSystemHandler_CacheClear_PatternBody 验证请求体里的 pattern 只清匹配条目，
// 不会整库清空。
func TestSystemHandler_CacheClear_PatternBody(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemoryStore(nil)
	store.Set(ctx, "region_page_1", []byte("1"), time.Minute)
	store.Set(ctx, "portfolio_page_1", []byte("1"), time.Minute)

	h := NewSystemHandler(&fakeDataService{}, store)
	r := gin.New()
	r.POST("/api/cache/clear", h.CacheClear)

	w := doReq(r, http.MethodPost, "/api/cache/clear", `{"pattern":"region"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expect 200, got %d", w.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if resp["removed"] != float64(1) {
		t.Fatalf("removed = %v, want 1", resp["removed"])
	}
	if store.Stats(ctx).Keys != 1 {
		t.Fatal("non-matching entries must survive a pattern clear")
	}
}
