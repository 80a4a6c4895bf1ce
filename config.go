package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"campus-notice/internal/db"
	"campus-notice/internal/logic"
)

// Config 三个服务的配置, 优先级: 命令行 > 环境变量 > 配置文件 > 默认值
type Config struct {
	APIAddr      string `yaml:"api_addr"`
	SnapshotAddr string `yaml:"snapshot_addr"`
	AppAddr      string `yaml:"app_addr"`

	QQDBPath  string `yaml:"qq_db_path"`
	WebDBPath string `yaml:"web_db_path"`

	StoreDriver string `yaml:"store_driver"`
	StoreDSN    string `yaml:"store_dsn"`

	RemoteBaseURL string `yaml:"remote_base_url"`
	SnapshotURL   string `yaml:"snapshot_url"`
	SnapshotFile  string `yaml:"snapshot_file"`
}

// DefaultConfig 本机开发时的默认端口和路径
func DefaultConfig() *Config {
	return &Config{
		APIAddr:       ":5000",
		SnapshotAddr:  ":3001",
		AppAddr:       ":8080",
		QQDBPath:      "qq_groups.db",
		WebDBPath:     "website.db",
		StoreDriver:   db.DriverSQLite,
		StoreDSN:      "campus_store.db",
		RemoteBaseURL: "http://localhost:5000/api",
		SnapshotURL:   "http://localhost:3001",
		SnapshotFile:  "web/src/data/mockNotices.ts",
	}
}

// 环境变量与字段的对应
var envBindings = []struct {
	name  string
	field func(*Config) *string
}{
	{"CAMPUS_API_ADDR", func(c *Config) *string { return &c.APIAddr }},
	{"CAMPUS_SNAPSHOT_ADDR", func(c *Config) *string { return &c.SnapshotAddr }},
	{"CAMPUS_APP_ADDR", func(c *Config) *string { return &c.AppAddr }},
	{"CAMPUS_QQ_DB", func(c *Config) *string { return &c.QQDBPath }},
	{"CAMPUS_WEB_DB", func(c *Config) *string { return &c.WebDBPath }},
	{"CAMPUS_STORE_DRIVER", func(c *Config) *string { return &c.StoreDriver }},
	{"CAMPUS_STORE_DSN", func(c *Config) *string { return &c.StoreDSN }},
	{"CAMPUS_REMOTE_URL", func(c *Config) *string { return &c.RemoteBaseURL }},
	{"CAMPUS_SNAPSHOT_URL", func(c *Config) *string { return &c.SnapshotURL }},
	{"CAMPUS_SNAPSHOT_FILE", func(c *Config) *string { return &c.SnapshotFile }},
}

// 命令行参数与字段的对应
var flagBindings = []struct {
	name  string
	usage string
	field func(*Config) *string
}{
	{"api-addr", "数据 API 监听地址", func(c *Config) *string { return &c.APIAddr }},
	{"snapshot-addr", "快照服务监听地址", func(c *Config) *string { return &c.SnapshotAddr }},
	{"app-addr", "应用服务监听地址", func(c *Config) *string { return &c.AppAddr }},
	{"qq-db", "QQ群 爬虫数据库", func(c *Config) *string { return &c.QQDBPath }},
	{"web-db", "官网 爬虫数据库", func(c *Config) *string { return &c.WebDBPath }},
	{"store-driver", "本地存储驱动 sqlite | mysql | memory", func(c *Config) *string { return &c.StoreDriver }},
	{"store-dsn", "本地存储 DSN", func(c *Config) *string { return &c.StoreDSN }},
	{"remote-url", "远程数据 API 地址", func(c *Config) *string { return &c.RemoteBaseURL }},
	{"snapshot-url", "快照服务地址", func(c *Config) *string { return &c.SnapshotURL }},
	{"snapshot-file", "快照文件路径", func(c *Config) *string { return &c.SnapshotFile }},
}

// LoadConfig 默认值, 再依次叠加配置文件和环境变量
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("解析配置文件失败: %w", err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	for _, b := range envBindings {
		if v := os.Getenv(b.name); v != "" {
			*b.field(c) = v
		}
	}
	// MYSQL_DSN 单独设置时切换到 mysql 存储
	if dsn := os.Getenv("MYSQL_DSN"); dsn != "" {
		c.StoreDriver = db.DriverMySQL
		c.StoreDSN = dsn
	}
}

// registerFlags 注册命令行参数, 默认值为空, 只有显式传入时才覆盖
func registerFlags(cmd *cobra.Command) {
	for _, b := range flagBindings {
		cmd.PersistentFlags().String(b.name, "", b.usage)
	}
}

// applyFlags 用显式传入的命令行参数覆盖配置
func (c *Config) applyFlags(cmd *cobra.Command) error {
	flags := cmd.Flags()
	for _, b := range flagBindings {
		if !flags.Changed(b.name) {
			continue
		}
		v, err := flags.GetString(b.name)
		if err != nil {
			return err
		}
		*b.field(c) = v
	}
	return nil
}

// Store 本地存储数据库配置
func (c *Config) Store() db.Config {
	return db.Config{Driver: c.StoreDriver, DSN: c.StoreDSN}
}

// Sources 爬虫数据库位置
func (c *Config) Sources() logic.Sources {
	return logic.Sources{QQPath: c.QQDBPath, WebPath: c.WebDBPath}
}

func (c *Config) Print(logger *zap.Logger) {
	logger.Info("config",
		zap.String("api_addr", c.APIAddr),
		zap.String("snapshot_addr", c.SnapshotAddr),
		zap.String("app_addr", c.AppAddr),
		zap.String("qq_db_path", c.QQDBPath),
		zap.String("web_db_path", c.WebDBPath),
		zap.String("store_driver", c.StoreDriver),
		zap.String("remote_base_url", c.RemoteBaseURL),
		zap.String("snapshot_url", c.SnapshotURL),
		zap.String("snapshot_file", c.SnapshotFile),
	)
}
