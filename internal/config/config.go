// Package config 负责加载和管理应用程序的配置。
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// 全局配置变量，存储从配置文件加载的所有设置。
var Conf Config

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	Source   SourceConfig   `mapstructure:"source"`
	Upstream UpstreamConfig `mapstructure:"upstream"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Roadmap  RoadmapConfig  `mapstructure:"roadmap"`
}

// ServerConfig 存储服务器相关的配置。
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type LogConfig struct {
	Level           string `mapstructure:"level"`
	Format          string `mapstructure:"format"`
	OutputPath      string `mapstructure:"output_path"`
	ErrorOutputPath string `mapstructure:"error_output_path"`
	TimeFormat      string `mapstructure:"time_format"`
}

type DatabaseConfig struct {
	MySQL MySQLConfig `mapstructure:"mysql"`
	Redis RedisConfig `mapstructure:"redis"`
}

type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SourceConfig 决定路线图数据从哪里来：
//   - warehouse：直连数据仓库（MySQL 协议），对应原始部署形态。
//   - upstream：消费另一个实例的 /api/data 系列接口。
type SourceConfig struct {
	Mode string `mapstructure:"mode"`
}

// UpstreamConfig 存储 upstream 模式下被消费服务的地址和超时。
type UpstreamConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// CacheConfig 存储缓存后端与各类条目的 TTL（秒）。
// dataset/filter 两档 TTL 对应原始服务的 5 分钟数据缓存和 30 分钟筛选项缓存。
type CacheConfig struct {
	Backend          string `mapstructure:"backend"` // memory 或 redis
	DatasetTTLSec    int    `mapstructure:"dataset_ttl_seconds"`
	FilterTTLSec     int    `mapstructure:"filter_ttl_seconds"`
	LegacyFullTTLSec int    `mapstructure:"legacy_full_ttl_seconds"`
}

// RoadmapConfig 存储投影引擎的可调参数。
// ProgramTypes / SubProgramType 把 "SubProgram" 与 "Sub-Program" 两种拼写
// 做成配置项：上游数据里两种写法并存，正确的规范拼写无法从数据推断。
type RoadmapConfig struct {
	ProgramTypes   []string `mapstructure:"program_types"`
	SubProgramType string   `mapstructure:"subprogram_type"`
	ItemsPerPage   int      `mapstructure:"items_per_page"`
	PageLimit      int      `mapstructure:"page_limit"`
	MaxPages       int      `mapstructure:"max_pages"`
}

// Init 初始化配置加载，从指定的路径读取 YAML 配置文件并解析导入到 Conf 变量中
func Init(configPath string) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}

	if err := viper.Unmarshal(&Conf); err != nil {
		panic(fmt.Errorf("fatal error unmarshalling config: %w", err))
	}
}

// setDefaults 设置关键配置的默认值，配置文件缺项时服务仍可按原始行为运行。
func setDefaults() {
	viper.SetDefault("server.port", "5000")
	viper.SetDefault("server.mode", "release")
	viper.SetDefault("source.mode", "warehouse")
	viper.SetDefault("upstream.timeout_seconds", 30)
	viper.SetDefault("cache.backend", "memory")
	viper.SetDefault("cache.dataset_ttl_seconds", 300)
	viper.SetDefault("cache.filter_ttl_seconds", 1800)
	viper.SetDefault("cache.legacy_full_ttl_seconds", 600)
	viper.SetDefault("roadmap.program_types", []string{"Program", "SubProgram"})
	viper.SetDefault("roadmap.subprogram_type", "Sub-Program")
	viper.SetDefault("roadmap.items_per_page", 13)
	viper.SetDefault("roadmap.page_limit", 50)
	viper.SetDefault("roadmap.max_pages", 40)
}
