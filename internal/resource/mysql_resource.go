package resource

import (
	"fmt"
	"sync"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"streamforge/ddd/infrastructure/database/po"
	"streamforge/pkg/config"
	"streamforge/pkg/logger"
)

var (
	mysqlResourceOnce      sync.Once
	singletonMysqlResource *MysqlResource
)

// MysqlResource MySQL资源管理器
type MysqlResource struct {
	db *gorm.DB
}

// DefaultMysqlResource 获取MySQL资源单例
func DefaultMysqlResource() *MysqlResource {
	mysqlResourceOnce.Do(func() {
		singletonMysqlResource = &MysqlResource{}
	})
	return singletonMysqlResource
}

// MustOpen 初始化MySQL连接并迁移表结构
func (r *MysqlResource) MustOpen() {
	cfg := config.GetGlobalConfig()
	if cfg == nil {
		panic("global config not initialized before MysqlResource")
	}

	db, err := gorm.Open(mysql.Open(cfg.Database.GetDSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		panic(fmt.Sprintf("failed to connect mysql: %v", err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		panic(fmt.Sprintf("failed to get sql.DB: %v", err))
	}
	if cfg.Database.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	}
	if cfg.Database.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	}
	if cfg.Database.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	}

	if err := db.AutoMigrate(&po.VideoPO{}, &po.VideoQualityPO{}, &po.VideoSegmentPO{}); err != nil {
		panic(fmt.Sprintf("failed to migrate schema: %v", err))
	}

	r.db = db
	logger.Info("MySQL resource initialized", map[string]interface{}{
		"host":     cfg.Database.Host,
		"database": cfg.Database.Database,
	})
}

// MainDB 获取数据库连接
func (r *MysqlResource) MainDB() *gorm.DB {
	return r.db
}

// Close 释放资源
func (r *MysqlResource) Close() {
	if r.db == nil {
		return
	}
	if sqlDB, err := r.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
