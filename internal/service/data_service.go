package service

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"pmo_roadmap_go/internal/cache"
	"pmo_roadmap_go/internal/model"
	"pmo_roadmap_go/pkg/log"
)

// DataOptions 是数据服务的运行参数（来自配置）。
type DataOptions struct {
	// PageLimit 累积抓取时每页的行数
	PageLimit int
	// MaxPages 累积抓取的页数上限，防止异常数据导致无界循环
	MaxPages int
	// DatasetTTL 数据快照的缓存时长
	DatasetTTL time.Duration
	// FilterTTL 筛选项的缓存时长（筛选项变化慢，缓存更久）
	FilterTTL time.Duration
	// LegacyFullTTL /api/data 全量快照的缓存时长
	LegacyFullTTL time.Duration
}

// DataService 在 DataSource 之上加两件事：
//  1. TTL 缓存：同一查询在 TTL 内复用快照，旧快照整引用替换、构建后只读，
//     晚到的读取方拿到的是一致（偏旧）的数据。
//  2. 累积抓取（*All 方法）：沿 has_more 翻页聚合出某视图的完整快照，
//     投影引擎在完整快照上工作。
type DataService interface {
	PortfolioPage(ctx context.Context, page, limit int) (*model.Dataset, *model.SourcePagination, error)
	ProgramPage(ctx context.Context, portfolioID string, page, limit int) (*model.Dataset, *model.SourcePagination, error)
	SubProgramPage(ctx context.Context, programID string, page, limit int) (*model.Dataset, *model.SourcePagination, error)
	RegionPage(ctx context.Context, page, limit int) (*model.Dataset, *model.SourcePagination, error)
	FullDataset(ctx context.Context) (*model.Dataset, error)

	PortfolioAll(ctx context.Context) (*model.Dataset, error)
	ProgramAll(ctx context.Context, portfolioID string) (*model.Dataset, error)
	SubProgramAll(ctx context.Context, programID string) (*model.Dataset, error)
	RegionAll(ctx context.Context) (*model.Dataset, error)

	FilterOptions(ctx context.Context) (*model.RegionFilterOptions, error)
	Ping(ctx context.Context) error
	Mode() string
}

type dataService struct {
	source DataSource
	store  cache.Store
	opts   DataOptions
}

func NewDataService(source DataSource, store cache.Store, opts DataOptions) DataService {
	if opts.PageLimit < 1 {
		opts.PageLimit = 50
	}
	if opts.MaxPages < 1 {
		opts.MaxPages = 40
	}
	return &dataService{source: source, store: store, opts: opts}
}

// pagedPayload 是分页快照的缓存形态。
type pagedPayload struct {
	Dataset    *model.Dataset          `json:"dataset"`
	Pagination *model.SourcePagination `json:"pagination"`
}

// cachedFetch 先查缓存，未命中时执行抓取并回填。
// 缓存读写失败只降级不报错，快照永远能从源头重建。
func (s *dataService) cachedFetch(ctx context.Context, key string, ttl time.Duration, fetch func() (*pagedPayload, error)) (*pagedPayload, error) {
	if raw, ok := s.store.Get(ctx, key); ok {
		var payload pagedPayload
		if err := json.Unmarshal(raw, &payload); err == nil {
			return &payload, nil
		}
		log.Warnf("cache entry %s is corrupt, refetching", key)
	}

	payload, err := fetch()
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(payload); err == nil {
		s.store.Set(ctx, key, raw, ttl)
	}
	return payload, nil
}

func (s *dataService) cachedPage(ctx context.Context, kind, selector string, page, limit int,
	fetch func() (*model.Dataset, bool, error)) (*model.Dataset, *model.SourcePagination, error) {

	key := cache.Key("dataset", kind, selector, strconv.Itoa(page), strconv.Itoa(limit))
	payload, err := s.cachedFetch(ctx, key, s.opts.DatasetTTL, func() (*pagedPayload, error) {
		ds, hasMore, err := fetch()
		if err != nil {
			return nil, err
		}
		return &pagedPayload{
			Dataset: ds,
			Pagination: &model.SourcePagination{
				Page:       page,
				Limit:      limit,
				TotalItems: len(ds.Hierarchy),
				HasMore:    hasMore,
			},
		}, nil
	})
	if err != nil {
		return nil, nil, err
	}
	return payload.Dataset, payload.Pagination, nil
}

func (s *dataService) PortfolioPage(ctx context.Context, page, limit int) (*model.Dataset, *model.SourcePagination, error) {
	return s.cachedPage(ctx, "portfolio", "", page, limit, func() (*model.Dataset, bool, error) {
		return s.source.PortfolioPage(ctx, page, limit)
	})
}

func (s *dataService) ProgramPage(ctx context.Context, portfolioID string, page, limit int) (*model.Dataset, *model.SourcePagination, error) {
	return s.cachedPage(ctx, "program", portfolioID, page, limit, func() (*model.Dataset, bool, error) {
		return s.source.ProgramPage(ctx, portfolioID, page, limit)
	})
}

func (s *dataService) SubProgramPage(ctx context.Context, programID string, page, limit int) (*model.Dataset, *model.SourcePagination, error) {
	return s.cachedPage(ctx, "subprogram", programID, page, limit, func() (*model.Dataset, bool, error) {
		return s.source.SubProgramPage(ctx, programID, page, limit)
	})
}

func (s *dataService) RegionPage(ctx context.Context, page, limit int) (*model.Dataset, *model.SourcePagination, error) {
	return s.cachedPage(ctx, "region", "", page, limit, func() (*model.Dataset, bool, error) {
		return s.source.RegionPage(ctx, page, limit)
	})
}

func (s *dataService) FullDataset(ctx context.Context) (*model.Dataset, error) {
	key := cache.Key("dataset", "legacy_full")
	payload, err := s.cachedFetch(ctx, key, s.opts.LegacyFullTTL, func() (*pagedPayload, error) {
		ds, err := s.source.FullDataset(ctx)
		if err != nil {
			return nil, err
		}
		return &pagedPayload{Dataset: ds}, nil
	})
	if err != nil {
		return nil, err
	}
	return payload.Dataset, nil
}

// accumulate 沿 has_more 翻页聚合完整快照。
func (s *dataService) accumulate(ctx context.Context, fetch func(page int) (*model.Dataset, bool, error)) (*model.Dataset, error) {
	combined := &model.Dataset{}
	for page := 1; page <= s.opts.MaxPages; page++ {
		ds, hasMore, err := fetch(page)
		if err != nil {
			return nil, err
		}
		combined.Hierarchy = append(combined.Hierarchy, ds.Hierarchy...)
		combined.Investment = append(combined.Investment, ds.Investment...)
		if !hasMore {
			return combined, nil
		}
	}
	log.Warnf("dataset accumulation stopped at max pages (%d), snapshot may be truncated", s.opts.MaxPages)
	return combined, nil
}

func (s *dataService) cachedAll(ctx context.Context, kind, selector string,
	fetch func(page int) (*model.Dataset, bool, error)) (*model.Dataset, error) {

	key := cache.Key("dataset", kind+"_all", selector)
	payload, err := s.cachedFetch(ctx, key, s.opts.DatasetTTL, func() (*pagedPayload, error) {
		ds, err := s.accumulate(ctx, fetch)
		if err != nil {
			return nil, err
		}
		return &pagedPayload{Dataset: ds}, nil
	})
	if err != nil {
		return nil, err
	}
	return payload.Dataset, nil
}

func (s *dataService) PortfolioAll(ctx context.Context) (*model.Dataset, error) {
	return s.cachedAll(ctx, "portfolio", "", func(page int) (*model.Dataset, bool, error) {
		return s.source.PortfolioPage(ctx, page, s.opts.PageLimit)
	})
}

func (s *dataService) ProgramAll(ctx context.Context, portfolioID string) (*model.Dataset, error) {
	return s.cachedAll(ctx, "program", portfolioID, func(page int) (*model.Dataset, bool, error) {
		return s.source.ProgramPage(ctx, portfolioID, page, s.opts.PageLimit)
	})
}

func (s *dataService) SubProgramAll(ctx context.Context, programID string) (*model.Dataset, error) {
	return s.cachedAll(ctx, "subprogram", programID, func(page int) (*model.Dataset, bool, error) {
		return s.source.SubProgramPage(ctx, programID, page, s.opts.PageLimit)
	})
}

func (s *dataService) RegionAll(ctx context.Context) (*model.Dataset, error) {
	return s.cachedAll(ctx, "region", "", func(page int) (*model.Dataset, bool, error) {
		return s.source.RegionPage(ctx, page, s.opts.PageLimit)
	})
}

func (s *dataService) FilterOptions(ctx context.Context) (*model.RegionFilterOptions, error) {
	key := cache.Key("region_filter_options")
	if raw, ok := s.store.Get(ctx, key); ok {
		var opts model.RegionFilterOptions
		if err := json.Unmarshal(raw, &opts); err == nil {
			return &opts, nil
		}
	}

	opts, err := s.source.FilterOptions(ctx)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(opts); err == nil {
		s.store.Set(ctx, key, raw, s.opts.FilterTTL)
	}
	return opts, nil
}

func (s *dataService) Ping(ctx context.Context) error {
	return s.source.Ping(ctx)
}

func (s *dataService) Mode() string {
	return s.source.Mode()
}
