// Package database 提供数据仓库（MySQL 协议）连接与 GORM 实例的初始化。
package database

import (
	"time"

	"pmo_roadmap_go/pkg/log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"moul.io/zapgorm2"
)

// DB 全局 GORM 数据库实例，在 InitWarehouse 成功后业务层通过 database.DB 查询源表。
// 路线图源表（hierarchy / investment）是只读的，本服务不建表、不迁移。
var DB *gorm.DB

// InitWarehouse 根据 DSN 连接数据仓库并初始化全局 DB。
// GORM 日志桥接到 zap，SQL 慢查询和错误统一进应用日志。失败时 log.Fatal 退出进程。
func InitWarehouse(dsn string) {
	gormLogger := zapgorm2.New(log.GetLogger())
	gormLogger.SetAsDefault()

	var err error
	DB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: gormLogger})
	if err != nil {
		log.Fatal("Failed to connect to warehouse", err)
	}
	log.Info("Connected to warehouse")

	// 获取底层 *sql.DB 以配置连接池
	sqlDB, err := DB.DB()
	if err != nil {
		log.Fatal("Failed to get SQL DB", err)
	}
	sqlDB.SetMaxIdleConns(10)           // 最大空闲连接数
	sqlDB.SetMaxOpenConns(100)          // 最大打开连接数
	sqlDB.SetConnMaxLifetime(time.Hour) // 连接最大存活时间，超时连接会被回收

	log.Info("Warehouse connection initialized successfully")
}

// Ping 检查仓库连接是否可用，/api/test-connection 用它做探活。
func Ping() error {
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
