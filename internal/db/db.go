package db

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	case DriverMySQL:
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unknown driver %q", driver)
	}
	return gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
}

// OpenStore 打开本地存储数据库并迁移 kv_entries
func OpenStore(cfg Config, logger *zap.Logger) (*gorm.DB, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Print(logger)

	conn, err := open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect store database: %w", err)
	}
	if err := conn.AutoMigrate(&KVEntry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate store database: %w", err)
	}
	logger.Info("store database connected", zap.String("driver", cfg.Driver))
	return conn, nil
}

// OpenSource 打开爬虫写入的 sqlite 数据库, 文件不存在直接报错, 不新建
func OpenSource(path string) (*gorm.DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("数据库文件不存在: %s: %w", path, err)
	}
	return open(DriverSQLite, path)
}

// MigrateSource 在爬虫数据库中建出四张通知表
func MigrateSource(conn *gorm.DB, tables ...string) error {
	for _, table := range tables {
		if err := conn.Table(table).AutoMigrate(&NoticeRow{}); err != nil {
			return fmt.Errorf("migrate %s: %w", table, err)
		}
	}
	return nil
}

// CreateSource 新建爬虫数据库文件并建表, 供初始化和测试使用
func CreateSource(path string, tables ...string) (*gorm.DB, error) {
	conn, err := open(DriverSQLite, path)
	if err != nil {
		return nil, err
	}
	if err := MigrateSource(conn, tables...); err != nil {
		return nil, err
	}
	return conn, nil
}

// Close 关闭底层连接
func Close(conn *gorm.DB) error {
	if conn == nil {
		return nil
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
