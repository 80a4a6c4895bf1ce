package db

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// 存储驱动
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
	DriverMemory = "memory"
)

// Config 本地存储数据库配置
type Config struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// Validate 检查驱动与 DSN
func (c *Config) Validate() error {
	switch c.Driver {
	case DriverSQLite, DriverMySQL:
		if c.DSN == "" {
			return fmt.Errorf("store dsn is empty for driver %s", c.Driver)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown store driver %q", c.Driver)
	}
	return nil
}

// Print 打印配置, 隐藏 mysql 密码
func (c *Config) Print(logger *zap.Logger) {
	logger.Info("store config", zap.String("driver", c.Driver), zap.String("dsn", maskDSN(c.DSN)))
}

func maskDSN(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	colon := strings.Index(dsn, ":")
	if at < 0 || colon < 0 || colon > at {
		return dsn
	}
	return dsn[:colon+1] + "***" + dsn[at:]
}
