package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pmo_roadmap_go/internal/cache"
	"pmo_roadmap_go/internal/config"
	"pmo_roadmap_go/internal/handler"
	"pmo_roadmap_go/internal/middleware"
	"pmo_roadmap_go/internal/repository"
	"pmo_roadmap_go/internal/service"
	"pmo_roadmap_go/internal/upstream"
	"pmo_roadmap_go/pkg/database"
	"pmo_roadmap_go/pkg/log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	config.Init("configs/config.yaml")
	cfg := config.Conf

	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync()

	log.Infof("Server starting, source mode: %s", cfg.Source.Mode)

	// 数据源：warehouse 直连仓库，upstream 消费另一个实例
	var source service.DataSource
	switch cfg.Source.Mode {
	case "upstream":
		client := upstream.NewClient(cfg.Upstream.BaseURL, time.Duration(cfg.Upstream.TimeoutSeconds)*time.Second)
		source = service.NewUpstreamSource(client)
	default:
		database.InitWarehouse(cfg.Database.MySQL.DSN)
		repo := repository.NewRoadmapRepository(database.DB)
		source = service.NewWarehouseSource(repo, cfg.Roadmap.ProgramTypes, cfg.Roadmap.SubProgramType, database.Ping)
	}

	// 缓存：Redis 优先，不可用时降级为进程内缓存
	var store cache.Store
	if cfg.Cache.Backend == "redis" && database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB) {
		store = cache.NewRedisStore(database.RDB)
	} else {
		store = cache.NewMemoryStore(nil)
	}

	dataService := service.NewDataService(source, store, service.DataOptions{
		PageLimit:     cfg.Roadmap.PageLimit,
		MaxPages:      cfg.Roadmap.MaxPages,
		DatasetTTL:    time.Duration(cfg.Cache.DatasetTTLSec) * time.Second,
		FilterTTL:     time.Duration(cfg.Cache.FilterTTLSec) * time.Second,
		LegacyFullTTL: time.Duration(cfg.Cache.LegacyFullTTLSec) * time.Second,
	})

	portfolioService := service.NewPortfolioService(dataService, cfg.Roadmap.ItemsPerPage)
	programService := service.NewProgramService(dataService, cfg.Roadmap.ProgramTypes, cfg.Roadmap.ItemsPerPage)
	subProgramService := service.NewSubProgramService(dataService, cfg.Roadmap.SubProgramType, cfg.Roadmap.ItemsPerPage)
	regionService := service.NewRegionService(dataService, cfg.Roadmap.ItemsPerPage)

	dataHandler := handler.NewDataHandler(dataService)
	roadmapHandler := handler.NewRoadmapHandler(portfolioService, programService, subProgramService, regionService)
	systemHandler := handler.NewSystemHandler(dataService, store)

	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.RequestLogger(), gin.Recovery())

	corsCfg := cors.DefaultConfig()
	if len(cfg.Server.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.Server.AllowedOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	r.Use(cors.New(corsCfg))

	api := r.Group("/api")
	{
		api.GET("/health", systemHandler.Health)
		api.GET("/test-connection", systemHandler.TestConnection)
		api.GET("/cache/stats", systemHandler.CacheStats)
		api.POST("/cache/clear", systemHandler.CacheClear)

		api.GET("/data", dataHandler.Full)
		api.GET("/data/portfolio", dataHandler.Portfolio)
		api.GET("/data/program", dataHandler.Program)
		api.GET("/data/subprogram", dataHandler.SubProgram)
		api.GET("/data/region", dataHandler.Region)
		api.GET("/data/region/filters", dataHandler.RegionFilters)
		api.GET("/data/region/debug", roadmapHandler.RegionDebug)

		api.GET("/view/portfolio", roadmapHandler.PortfolioView)
		api.GET("/view/program", roadmapHandler.ProgramView)
		api.GET("/view/subprogram", roadmapHandler.SubProgramView)
		api.GET("/view/region", roadmapHandler.RegionView)
		api.GET("/view/region/filters", roadmapHandler.RegionFilterOptions)
		api.GET("/view/region/debug", roadmapHandler.RegionDebug)
	}

	// 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP 服务器关闭失败: %v", err)
	}

	log.Info("服务已优雅关闭")
}
