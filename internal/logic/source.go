package logic

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"campus-notice/internal/common"
	"campus-notice/internal/db"
)

// ErrInvalidTable 表名不在四张通知表之内
var ErrInvalidTable = errors.New("无效的表名")

// ErrItemNotFound 条目不存在
var ErrItemNotFound = errors.New("项目不存在")

// Sources 两个爬虫数据库的位置
type Sources struct {
	QQPath  string `yaml:"qq_db_path"`
	WebPath string `yaml:"web_db_path"`
}

// Item 数据 API 返回的一行, 附带来源和所在表
type Item struct {
	db.NoticeRow
	Source    string `json:"source"`
	TableName string `json:"table_name,omitempty"`
}

// CategoryStat 某类型在两个来源中的条数
type CategoryStat map[string]int64

type sourceDB struct {
	name string
	path string
}

// Store 读取爬虫数据库, 每次查询打开并关闭连接, 爬虫可随时替换文件
type Store struct {
	sources Sources
	logger  *zap.Logger
}

// NewStore 创建数据库读取器
func NewStore(sources Sources, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{sources: sources, logger: logger}
}

// dbs 按来源过滤, 空字符串表示两个都查, 顺序固定为 QQ群、官网
func (s *Store) dbs(source string) []sourceDB {
	all := []sourceDB{
		{name: common.SourceChatGroup, path: s.sources.QQPath},
		{name: common.SourceOfficialSite, path: s.sources.WebPath},
	}
	if source == "" {
		return all
	}
	out := []sourceDB{}
	for _, d := range all {
		if d.name == source {
			out = append(out, d)
		}
	}
	return out
}

// each 对每个数据库执行 query, 打开或查询失败的库记录日志后跳过
func (s *Store) each(source string, query func(conn *gorm.DB, src string) error) {
	for _, d := range s.dbs(source) {
		conn, err := db.OpenSource(d.path)
		if err != nil {
			s.logger.Warn("打开数据库失败", zap.String("source", d.name), zap.String("path", d.path), zap.Error(err))
			continue
		}
		if err := query(conn, d.name); err != nil {
			s.logger.Warn("查询数据库失败", zap.String("source", d.name), zap.Error(err))
		}
		if err := db.Close(conn); err != nil {
			s.logger.Warn("关闭数据库失败", zap.String("source", d.name), zap.Error(err))
		}
	}
}

func toItems(rows []db.NoticeRow, source, table string) []Item {
	out := make([]Item, 0, len(rows))
	for _, row := range rows {
		row.PublishDate = StandardizeDate(row.PublishDate)
		out = append(out, Item{NoticeRow: row, Source: source, TableName: table})
	}
	return out
}

// List 按 publish_date 倒序读取若干张表, category 为空表示不限
func (s *Store) List(source, category string, tables ...string) []Item {
	items := []Item{}
	s.each(source, func(conn *gorm.DB, src string) error {
		// 单库内先查完所有表, 失败时整库跳过
		var found []Item
		for _, table := range tables {
			var rows []db.NoticeRow
			q := conn.Table(table)
			if category != "" {
				q = q.Where("category = ?", category)
			}
			if err := q.Order("publish_date DESC").Find(&rows).Error; err != nil {
				return fmt.Errorf("%s: %w", table, err)
			}
			found = append(found, toItems(rows, src, "")...)
		}
		items = append(items, found...)
		return nil
	})
	return items
}

// Search 在四张表的标题、内容、关键词中模糊匹配
func (s *Store) Search(keyword, source, category string) []Item {
	like := "%" + keyword + "%"
	items := []Item{}
	s.each(source, func(conn *gorm.DB, src string) error {
		var found []Item
		for _, table := range common.SourceTables {
			var rows []db.NoticeRow
			q := conn.Table(table).Where("(title LIKE ? OR content LIKE ? OR keywords LIKE ?)", like, like, like)
			if category != "" {
				q = q.Where("category = ?", category)
			}
			if err := q.Find(&rows).Error; err != nil {
				return fmt.Errorf("%s: %w", table, err)
			}
			found = append(found, toItems(rows, src, table)...)
		}
		items = append(items, found...)
		return nil
	})
	return items
}

// increment 在 QQ群 库中给 column 加一并返回更新后的行
func (s *Store) increment(table string, id int64, column string) (*db.NoticeRow, error) {
	if !common.IsSourceTable(table) {
		return nil, ErrInvalidTable
	}
	conn, err := db.OpenSource(s.sources.QQPath)
	if err != nil {
		return nil, err
	}
	defer db.Close(conn)

	if err := conn.Table(table).Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + ?", 1)).Error; err != nil {
		return nil, err
	}

	var row db.NoticeRow
	err = conn.Table(table).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// View 浏览量加一
func (s *Store) View(table string, id int64) (*db.NoticeRow, error) {
	return s.increment(table, id, "views")
}

// Favorite 收藏数加一
func (s *Store) Favorite(table string, id int64) (*db.NoticeRow, error) {
	return s.increment(table, id, "favorites")
}

// Categories 统计两个来源中每个类型的条数
func (s *Store) Categories() map[string]CategoryStat {
	stats := map[string]CategoryStat{}
	s.each("", func(conn *gorm.DB, src string) error {
		type count struct {
			Category string
			Count    int64
		}
		for _, table := range common.SourceTables {
			var counts []count
			if err := conn.Table(table).Select("category, COUNT(*) AS count").
				Where("category IS NOT NULL").Group("category").Scan(&counts).Error; err != nil {
				return fmt.Errorf("%s: %w", table, err)
			}
			for _, c := range counts {
				if _, ok := stats[c.Category]; !ok {
					stats[c.Category] = CategoryStat{common.SourceOfficialSite: 0, common.SourceChatGroup: 0}
				}
				stats[c.Category][src] += c.Count
			}
		}
		return nil
	})
	return stats
}

// DatabaseSample 单个数据库的表及每表前五行
type DatabaseSample struct {
	Path   string                      `json:"path"`
	Tables map[string][]map[string]any `json:"tables"`
	Error  string                      `json:"error,omitempty"`
}

// Sample 列出两个数据库的所有表和前五行数据, 用于排查爬虫数据
func (s *Store) Sample() map[string]*DatabaseSample {
	return map[string]*DatabaseSample{
		"qq_groups": sample(s.sources.QQPath),
		"website":   sample(s.sources.WebPath),
	}
}

func sample(path string) *DatabaseSample {
	out := &DatabaseSample{Path: path, Tables: map[string][]map[string]any{}}
	conn, err := db.OpenSource(path)
	if err != nil {
		out.Error = err.Error()
		return out
	}
	defer db.Close(conn)

	tables, err := conn.Migrator().GetTables()
	if err != nil {
		out.Error = err.Error()
		return out
	}
	for _, table := range tables {
		rows := []map[string]any{}
		if err := conn.Table(table).Limit(5).Find(&rows).Error; err != nil {
			out.Error = err.Error()
			return out
		}
		out.Tables[table] = rows
	}
	return out
}
